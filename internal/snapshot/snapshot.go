// Package snapshot captures the parts of a host scene an export needs, at
// every motion-blur sample time, into plain records that outlive host
// queries.
package snapshot

import (
	"github.com/Faultbox/seedexport/internal/host"
	"github.com/Faultbox/seedexport/pkg/math"
)

// Transform is a captured transform node with the shapes and transforms
// beneath it.
type Transform struct {
	Name    string // entity name
	Path    string // host path
	Parent  *Transform
	Visible bool // visible including ancestors

	// Animated is true when translate, rotate or scale has an incoming
	// connection.
	Animated bool

	// World holds one matrix per captured sample: every sample under
	// transformation blur, otherwise just the first.
	World []math.Mat4

	Transforms []*Transform
	Meshes     []*Mesh
	Lights     []*Light
	Cameras    []*Camera
}

// Mesh is a captured mesh shape.
type Mesh struct {
	Name      string
	Path      string
	Transform *Transform

	// Files are geometry files relative to the project file, one per
	// sample under deformation blur, otherwise one.
	Files []string

	// Materials are host material names in slot order.
	Materials []string
}

// Light is a captured light shape.
type Light struct {
	Name      string
	Path      string
	Transform *Transform
	Kind      host.NodeKind

	Color         math.Vec3
	Intensity     float64
	Decay         float64
	ConeAngle     float64 // spot lights only
	PenumbraAngle float64 // spot lights only

	World math.Mat4
}

// Camera is a captured camera shape.
type Camera struct {
	Name      string
	Path      string
	Transform *Transform

	FocalLength        float64 // mm
	HorizontalAperture float64 // inches
	VerticalAperture   float64 // inches
	FStop              float64
	FocusDistance      float64
	DepthOfField       bool

	// World holds one matrix per sample under camera blur, otherwise one.
	World []math.Mat4
}

// Snapshot is everything captured for one frame.
type Snapshot struct {
	Frame int
	Times []float64
	Roots []*Transform

	// Flattened views in traversal order.
	Transforms []*Transform
	Meshes     []*Mesh
	Lights     []*Light
	Cameras    []*Camera
}

// Walk visits t and every transform beneath it depth first.
func (t *Transform) Walk(fn func(*Transform)) {
	fn(t)
	for _, child := range t.Transforms {
		child.Walk(fn)
	}
}

// Camera returns the camera matching name: a host path or short name of
// either the camera shape or its transform. An empty name picks the first
// camera.
func (s *Snapshot) Camera(name string) (*Camera, bool) {
	if len(s.Cameras) == 0 {
		return nil, false
	}
	if name == "" {
		return s.Cameras[0], true
	}
	for _, c := range s.Cameras {
		if matchesNode(name, c.Path) || (c.Transform != nil && matchesNode(name, c.Transform.Path)) {
			return c, true
		}
	}
	return nil, false
}

func matchesNode(name, path string) bool {
	if name == path {
		return true
	}
	short := path
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '|' {
			short = path[i+1:]
			break
		}
	}
	return name == short
}
