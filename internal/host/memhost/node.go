package memhost

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Faultbox/seedexport/internal/host"
	"github.com/Faultbox/seedexport/pkg/math"
)

type node struct {
	name     string
	typeName string
	kind     host.NodeKind
	parent   *node
	children []*node

	translate math.Vec3
	rotate    math.Vec3
	scale     math.Vec3
	keys      []key

	attrs     map[string]any
	conns     map[string][]string
	materials []string
	mesh      *mesh
}

// key is one transform keyframe. Nil channels are not keyed.
type key struct {
	time      float64
	translate *math.Vec3
	rotate    *math.Vec3
	scale     *math.Vec3
	attrs     map[string]any
}

type mesh struct {
	vertices []math.Vec3
	faces    [][]int
	keys     []meshKey
}

type meshKey struct {
	time     float64
	vertices []math.Vec3
}

func newNode(d *nodeDoc) (*node, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("%w: node without name", ErrDocument)
	}
	if d.Type == "" {
		return nil, fmt.Errorf("%w: node %q without type", ErrDocument, d.Name)
	}

	n := &node{
		name:     d.Name,
		typeName: d.Type,
		kind:     host.ParseKind(d.Type),
		scale:    math.Vec3{X: 1, Y: 1, Z: 1},
		attrs:    make(map[string]any),
		conns:    make(map[string][]string),
	}
	if n.dag() && strings.HasSuffix(n.name, "|") {
		return nil, fmt.Errorf("%w: bad path %q", ErrDocument, n.name)
	}

	var err error
	if n.translate, err = vec(d.Name, "translate", d.Translate, n.translate); err != nil {
		return nil, err
	}
	if n.rotate, err = vec(d.Name, "rotate", d.Rotate, n.rotate); err != nil {
		return nil, err
	}
	if n.scale, err = vec(d.Name, "scale", d.Scale, n.scale); err != nil {
		return nil, err
	}

	for k, v := range defaults(n.kind) {
		n.attrs[k] = v
	}
	for k, v := range d.Attrs {
		nv, err := normalize(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s.%s: %v", ErrDocument, d.Name, k, err)
		}
		n.attrs[k] = nv
	}

	for _, kd := range d.Keys {
		k, err := newKey(d.Name, kd)
		if err != nil {
			return nil, err
		}
		n.keys = append(n.keys, k)
	}
	sort.SliceStable(n.keys, func(i, j int) bool { return n.keys[i].time < n.keys[j].time })

	n.materials = d.Materials
	if d.Mesh != nil {
		if n.kind != host.KindMesh {
			return nil, fmt.Errorf("%w: %q is a %s, not a mesh", ErrDocument, d.Name, d.Type)
		}
		if n.mesh, err = newMesh(d.Name, d.Mesh); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func newKey(name string, kd keyDoc) (key, error) {
	k := key{time: kd.Time, attrs: make(map[string]any)}
	channels := []struct {
		label string
		in    []float64
		out   **math.Vec3
	}{
		{"translate", kd.Translate, &k.translate},
		{"rotate", kd.Rotate, &k.rotate},
		{"scale", kd.Scale, &k.scale},
	}
	for _, ch := range channels {
		if ch.in == nil {
			continue
		}
		v, err := vec(name, ch.label, ch.in, math.Vec3{})
		if err != nil {
			return key{}, err
		}
		*ch.out = &v
	}
	for attr, v := range kd.Attrs {
		nv, err := normalize(v)
		if err != nil {
			return key{}, fmt.Errorf("%w: %s.%s key: %v", ErrDocument, name, attr, err)
		}
		k.attrs[attr] = nv
	}
	return k, nil
}

func newMesh(name string, d *meshDoc) (*mesh, error) {
	m := &mesh{faces: d.Faces}
	var err error
	if m.vertices, err = vecs(name, d.Vertices); err != nil {
		return nil, err
	}
	for _, f := range m.faces {
		if len(f) < 3 {
			return nil, fmt.Errorf("%w: %s: face with %d vertices", ErrDocument, name, len(f))
		}
		for _, idx := range f {
			if idx < 0 || idx >= len(m.vertices) {
				return nil, fmt.Errorf("%w: %s: face index %d out of range", ErrDocument, name, idx)
			}
		}
	}
	for _, kd := range d.Keys {
		verts, err := vecs(name, kd.Vertices)
		if err != nil {
			return nil, err
		}
		if len(verts) != len(m.vertices) {
			return nil, fmt.Errorf("%w: %s: key at %g has %d vertices, want %d",
				ErrDocument, name, kd.Time, len(verts), len(m.vertices))
		}
		m.keys = append(m.keys, meshKey{time: kd.Time, vertices: verts})
	}
	sort.SliceStable(m.keys, func(i, j int) bool { return m.keys[i].time < m.keys[j].time })
	return m, nil
}

func vec(name, label string, in []float64, def math.Vec3) (math.Vec3, error) {
	switch len(in) {
	case 0:
		return def, nil
	case 3:
		return math.Vec3{X: in[0], Y: in[1], Z: in[2]}, nil
	}
	return def, fmt.Errorf("%w: %s.%s needs 3 values, got %d", ErrDocument, name, label, len(in))
}

func vecs(name string, in [][]float64) ([]math.Vec3, error) {
	out := make([]math.Vec3, len(in))
	for i, v := range in {
		var err error
		if out[i], err = vec(name, "vertices", v, math.Vec3{}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// normalize converts decoded YAML values to the types host.Scene promises.
func normalize(v any) (any, error) {
	switch x := v.(type) {
	case bool, string, float64:
		return x, nil
	case int:
		return x, nil
	case []any:
		nums := make([]float64, len(x))
		for i, e := range x {
			switch f := e.(type) {
			case int:
				nums[i] = float64(f)
			case float64:
				nums[i] = f
			default:
				return nil, fmt.Errorf("list element %v is not a number", e)
			}
		}
		if len(nums) == 3 {
			return math.Vec3{X: nums[0], Y: nums[1], Z: nums[2]}, nil
		}
		return nums, nil
	}
	return nil, fmt.Errorf("unsupported value %T", v)
}

func (n *node) dag() bool {
	return strings.HasPrefix(n.name, "|")
}

// keyedChannels lists the attributes driven by keyframes, sorted.
func (n *node) keyedChannels() []string {
	seen := make(map[string]bool)
	for _, k := range n.keys {
		if k.translate != nil {
			seen["translate"] = true
		}
		if k.rotate != nil {
			seen["rotate"] = true
		}
		if k.scale != nil {
			seen["scale"] = true
		}
		for attr := range k.attrs {
			seen[attr] = true
		}
	}
	out := make([]string, 0, len(seen))
	for ch := range seen {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out
}

func (n *node) local(t float64) math.Mat4 {
	if n.kind != host.KindTransform {
		return math.Identity()
	}
	tr := n.channel(t, n.translate, func(k key) *math.Vec3 { return k.translate })
	sc := n.channel(t, n.scale, func(k key) *math.Vec3 { return k.scale })
	rot := n.rotation(t)
	return math.Translate(tr.X, tr.Y, tr.Z).Mul(rot.ToMat4()).Mul(math.Scale(sc.X, sc.Y, sc.Z))
}

// bracket finds the keys around t among those has accepts, and the
// interpolation weight between them. Outside the keyed range both keys are
// the nearest one.
func (n *node) bracket(t float64, has func(key) bool) (a, b *key, w float64) {
	for i := range n.keys {
		k := &n.keys[i]
		if !has(*k) {
			continue
		}
		if k.time <= t {
			a = k
			continue
		}
		b = k
		break
	}
	switch {
	case a == nil && b == nil:
		return nil, nil, 0
	case a == nil:
		return b, b, 0
	case b == nil:
		return a, a, 0
	}
	return a, b, (t - a.time) / (b.time - a.time)
}

func (n *node) channel(t float64, rest math.Vec3, get func(key) *math.Vec3) math.Vec3 {
	a, b, w := n.bracket(t, func(k key) bool { return get(k) != nil })
	if a == nil {
		return rest
	}
	return get(*a).Lerp(*get(*b), w)
}

func (n *node) rotation(t float64) math.Quat {
	a, b, w := n.bracket(t, func(k key) bool { return k.rotate != nil })
	if a == nil {
		return math.QuatFromEuler(n.rotate)
	}
	return math.QuatFromEuler(*a.rotate).Slerp(math.QuatFromEuler(*b.rotate), w)
}

func (n *node) attribute(attr string, t float64) (any, bool) {
	if n.kind == host.KindTransform {
		switch attr {
		case "translate":
			return n.channel(t, n.translate, func(k key) *math.Vec3 { return k.translate }), true
		case "scale":
			return n.channel(t, n.scale, func(k key) *math.Vec3 { return k.scale }), true
		case "rotate":
			return n.rotateAt(t), true
		}
	}

	a, b, w := n.bracket(t, func(k key) bool {
		_, ok := k.attrs[attr]
		return ok
	})
	if a != nil {
		return lerpValue(a.attrs[attr], b.attrs[attr], w), true
	}
	v, ok := n.attrs[attr]
	return v, ok
}

// rotateAt reports Euler rotation for the rotate attribute. Keyed rotation
// is interpolated per channel; matrices use the slerped quaternion.
func (n *node) rotateAt(t float64) math.Vec3 {
	return n.channel(t, n.rotate, func(k key) *math.Vec3 { return k.rotate })
}

func lerpValue(a, b any, w float64) any {
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			return x + w*(y-x)
		}
	case int:
		if y, ok := b.(int); ok {
			return float64(x) + w*float64(y-x)
		}
	case math.Vec3:
		if y, ok := b.(math.Vec3); ok {
			return x.Lerp(y, w)
		}
	}
	if w < 1 {
		return a
	}
	return b
}

func (m *mesh) at(t float64) []math.Vec3 {
	if len(m.keys) == 0 {
		return m.vertices
	}
	if t <= m.keys[0].time {
		return m.keys[0].vertices
	}
	last := m.keys[len(m.keys)-1]
	if t >= last.time {
		return last.vertices
	}
	for i := 1; i < len(m.keys); i++ {
		b := m.keys[i]
		if t > b.time {
			continue
		}
		a := m.keys[i-1]
		w := (t - a.time) / (b.time - a.time)
		out := make([]math.Vec3, len(a.vertices))
		for j := range out {
			out[j] = a.vertices[j].Lerp(b.vertices[j], w)
		}
		return out
	}
	return last.vertices
}
