// Package memhost implements host.Scene over an in-memory scene graph
// loaded from a YAML scene document.
//
// A document lists nodes by name. DAG nodes use host paths ("|group|mesh")
// and take their parent from the path; shading nodes use plain names.
// Transforms carry translate/rotate/scale channels with optional keyframes,
// meshes carry a small vertex/face list that OBJWriter writes out.
//
//	format_version: "1.0"
//	name: shot010
//	time: 1
//	nodes:
//	  - name: "|ball"
//	    type: transform
//	    translate: [0, 1, 0]
//	    keys:
//	      - {time: 1, translate: [0, 1, 0]}
//	      - {time: 2, translate: [2, 1, 0]}
//	  - name: "|ball|ballShape"
//	    type: mesh
//	    materials: [red]
//	  - name: red
//	    type: lambert
//	    attrs: {color: [0.8, 0.1, 0.1]}
//	connections:
//	  - {from: checker, to: red.color}
package memhost

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/seedexport/internal/host"
	"github.com/Faultbox/seedexport/internal/naming"
	"github.com/Faultbox/seedexport/pkg/math"
)

// SupportedVersions is the range of scene document versions Load accepts.
const SupportedVersions = ">= 1.0, < 2.0"

// ErrDocument is returned for scene documents memhost cannot load.
var ErrDocument = errors.New("invalid scene document")

type document struct {
	FormatVersion string          `yaml:"format_version"`
	Name          string          `yaml:"name"`
	Time          float64         `yaml:"time"`
	Nodes         []nodeDoc       `yaml:"nodes"`
	Connections   []connectionDoc `yaml:"connections"`
}

type nodeDoc struct {
	Name      string         `yaml:"name"`
	Type      string         `yaml:"type"`
	Translate []float64      `yaml:"translate"`
	Rotate    []float64      `yaml:"rotate"` // degrees, XYZ order
	Scale     []float64      `yaml:"scale"`
	Keys      []keyDoc       `yaml:"keys"`
	Attrs     map[string]any `yaml:"attrs"`
	Materials []string       `yaml:"materials"`
	Mesh      *meshDoc       `yaml:"mesh"`
}

type keyDoc struct {
	Time      float64        `yaml:"time"`
	Translate []float64      `yaml:"translate"`
	Rotate    []float64      `yaml:"rotate"`
	Scale     []float64      `yaml:"scale"`
	Attrs     map[string]any `yaml:"attrs"`
}

type meshDoc struct {
	Vertices [][]float64  `yaml:"vertices"`
	Faces    [][]int      `yaml:"faces"`
	Keys     []meshKeyDoc `yaml:"keys"`
}

type meshKeyDoc struct {
	Time     float64     `yaml:"time"`
	Vertices [][]float64 `yaml:"vertices"`
}

type connectionDoc struct {
	From string `yaml:"from"`
	To   string `yaml:"to"` // node.attr
}

// Scene is an in-memory host scene. It is not safe for concurrent use.
type Scene struct {
	name  string
	time  float64
	nodes map[string]*node
	roots []*node
	order []*node         // document order
	curve map[string]bool // synthetic animation curve names
}

// Load reads a scene document from path. The scene name defaults to the
// file name without extension. Relative file texture names are resolved
// against the document's directory.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if s.name == "" {
		base := filepath.Base(path)
		s.name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	s.resolveTexturePaths(dir)
	return s, nil
}

// resolveTexturePaths makes relative file texture names relative to dir,
// the directory of the scene document.
func (s *Scene) resolveTexturePaths(dir string) {
	resolve := func(attrs map[string]any) {
		name, ok := attrs["fileTextureName"].(string)
		if ok && name != "" && !filepath.IsAbs(name) {
			attrs["fileTextureName"] = filepath.Join(dir, name)
		}
	}
	for _, n := range s.order {
		if n.kind != host.KindFile {
			continue
		}
		resolve(n.attrs)
		for _, k := range n.keys {
			resolve(k.attrs)
		}
	}
}

// Parse builds a scene from document bytes.
func Parse(data []byte) (*Scene, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocument, err)
	}
	if err := checkVersion(doc.FormatVersion); err != nil {
		return nil, err
	}

	s := &Scene{
		name:  doc.Name,
		time:  doc.Time,
		nodes: make(map[string]*node, len(doc.Nodes)),
		curve: make(map[string]bool),
	}

	for i := range doc.Nodes {
		n, err := newNode(&doc.Nodes[i])
		if err != nil {
			return nil, err
		}
		if _, dup := s.nodes[n.name]; dup {
			return nil, fmt.Errorf("%w: duplicate node %q", ErrDocument, n.name)
		}
		s.nodes[n.name] = n
		s.order = append(s.order, n)
	}

	for _, n := range s.order {
		if err := s.link(n); err != nil {
			return nil, err
		}
		for _, ch := range n.keyedChannels() {
			curve := curveName(n.name, ch)
			n.conns[ch] = append(n.conns[ch], curve)
			s.curve[curve] = true
		}
	}

	for _, c := range doc.Connections {
		node, attr, ok := strings.Cut(c.To, ".")
		if !ok || attr == "" {
			return nil, fmt.Errorf("%w: connection target %q is not node.attr", ErrDocument, c.To)
		}
		dst, ok := s.nodes[node]
		if !ok {
			return nil, fmt.Errorf("%w: connection to unknown node %q", ErrDocument, node)
		}
		src, _, _ := strings.Cut(c.From, ".")
		if _, ok := s.nodes[src]; !ok {
			return nil, fmt.Errorf("%w: connection from unknown node %q", ErrDocument, src)
		}
		dst.conns[attr] = append(dst.conns[attr], src)
	}

	return s, nil
}

func checkVersion(v string) error {
	if v == "" {
		return fmt.Errorf("%w: missing format_version", ErrDocument)
	}
	version, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("%w: format_version %q: %v", ErrDocument, v, err)
	}
	constraint, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		return err
	}
	if !constraint.Check(version) {
		return fmt.Errorf("%w: format_version %s not in %s", ErrDocument, version, SupportedVersions)
	}
	return nil
}

// link attaches a DAG node to the parent named by its path.
func (s *Scene) link(n *node) error {
	if !n.dag() {
		if len(n.materials) > 0 || n.mesh != nil {
			return fmt.Errorf("%w: %q: only DAG nodes carry geometry", ErrDocument, n.name)
		}
		return nil
	}
	i := strings.LastIndex(n.name, "|")
	if i == 0 {
		s.roots = append(s.roots, n)
		return nil
	}
	parent, ok := s.nodes[n.name[:i]]
	if !ok {
		return fmt.Errorf("%w: %q has no parent %q", ErrDocument, n.name, n.name[:i])
	}
	n.parent = parent
	parent.children = append(parent.children, n)
	return nil
}

func curveName(node, channel string) string {
	return naming.ShortName(node) + "_" + channel
}

func (s *Scene) lookup(name string) (*node, error) {
	n, ok := s.nodes[name]
	if !ok {
		return nil, host.NewQueryError(name, "", host.ErrNotFound)
	}
	return n, nil
}

// SceneName implements host.Scene.
func (s *Scene) SceneName() string { return s.name }

// CurrentTime implements host.Scene.
func (s *Scene) CurrentTime() float64 { return s.time }

// SetCurrentTime implements host.Scene.
func (s *Scene) SetCurrentTime(t float64) error {
	s.time = t
	return nil
}

// Roots implements host.Scene.
func (s *Scene) Roots() ([]string, error) {
	return names(s.roots), nil
}

// Children implements host.Scene.
func (s *Scene) Children(name string) ([]string, error) {
	n, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return names(n.children), nil
}

// Kind implements host.Scene. Synthetic animation curves report
// KindUnsupported.
func (s *Scene) Kind(name string) (host.NodeKind, error) {
	if s.curve[name] {
		return host.KindUnsupported, nil
	}
	n, err := s.lookup(name)
	if err != nil {
		return host.KindUnsupported, err
	}
	return n.kind, nil
}

// LocalMatrix returns name's object-to-parent matrix at the current time.
func (s *Scene) LocalMatrix(name string) (math.Mat4, error) {
	n, err := s.lookup(name)
	if err != nil {
		return math.Mat4{}, err
	}
	return n.local(s.time), nil
}

// WorldMatrix implements host.Scene.
func (s *Scene) WorldMatrix(name string) (math.Mat4, error) {
	n, err := s.lookup(name)
	if err != nil {
		return math.Mat4{}, err
	}
	m := n.local(s.time)
	for p := n.parent; p != nil; p = p.parent {
		m = p.local(s.time).Mul(m)
	}
	return m, nil
}

// Attribute implements host.Scene.
func (s *Scene) Attribute(name, attr string) (any, error) {
	n, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	v, ok := n.attribute(attr, s.time)
	if !ok {
		return nil, host.NewQueryError(name, attr, host.ErrMissingAttribute)
	}
	return v, nil
}

// Connections implements host.Scene.
func (s *Scene) Connections(name, attr string) ([]string, error) {
	n, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	if attr == host.AttrMaterials {
		return append([]string(nil), n.materials...), nil
	}
	return append([]string(nil), n.conns[attr]...), nil
}

// Nodes lists every node name in document order.
func (s *Scene) Nodes() []string {
	return names(s.order)
}

// NodesOfKind lists the nodes of kind k in document order.
func (s *Scene) NodesOfKind(k host.NodeKind) []string {
	var out []string
	for _, n := range s.order {
		if n.kind == k {
			out = append(out, n.name)
		}
	}
	return out
}

// Stats counts nodes per type name.
func (s *Scene) Stats() map[string]int {
	stats := make(map[string]int)
	for _, n := range s.order {
		stats[n.typeName]++
	}
	return stats
}

// KeyRange returns the earliest and latest keyframe times in the scene.
// ok is false for a scene without keys.
func (s *Scene) KeyRange() (start, end float64, ok bool) {
	var times []float64
	for _, n := range s.order {
		for _, k := range n.keys {
			times = append(times, k.time)
		}
		if n.mesh != nil {
			for _, k := range n.mesh.keys {
				times = append(times, k.time)
			}
		}
	}
	if len(times) == 0 {
		return 0, 0, false
	}
	sort.Float64s(times)
	return times[0], times[len(times)-1], true
}

func names(nodes []*node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.name
	}
	return out
}
