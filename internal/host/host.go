// Package host defines the narrow interface the exporter uses to read a
// host-owned scene graph.
//
// The exporter never holds on to host objects. Everything it needs is read
// through Scene and copied into snapshot records, so a host only has to
// answer queries by node name.
package host

import "github.com/Faultbox/seedexport/pkg/math"

// AttrMaterials is the plug a mesh exposes its assigned materials on.
// Connections on it list material nodes in slot order.
const AttrMaterials = "materials"

// Scene is a host scene graph. Node names are host paths for DAG nodes
// ("|group|mesh") and plain names for dependency nodes.
type Scene interface {
	// SceneName is the host's scene file name without extension.
	SceneName() string

	// CurrentTime returns the host's current time in frames.
	CurrentTime() float64

	// SetCurrentTime moves the host to t. Attribute and matrix queries
	// answer for the current time.
	SetCurrentTime(t float64) error

	// Roots lists the top-level DAG nodes in a stable order.
	Roots() ([]string, error)

	// Children lists the direct DAG children of node in a stable order.
	Children(node string) ([]string, error)

	// Kind classifies node.
	Kind(node string) (NodeKind, error)

	// WorldMatrix returns node's object-to-world matrix at the current time.
	WorldMatrix(node string) (math.Mat4, error)

	// Attribute returns the value of node.attr at the current time.
	// Values are float64, int, bool, string, math.Vec3 or []float64.
	Attribute(node, attr string) (any, error)

	// Connections lists the nodes feeding node.attr. An unconnected plug
	// returns an empty list, not an error.
	Connections(node, attr string) ([]string, error)
}

// MeshExporter writes a mesh's geometry at the current host time.
type MeshExporter interface {
	// ExportMesh writes node to dest and returns the path written. With
	// overwrite false an existing dest is kept.
	ExportMesh(node, dest string, overwrite bool) (string, error)
}

// Baker renders a shading attribute to an image file.
type Baker interface {
	Bake(node, attr, dest string, resolution int) (string, error)
}

// Connection returns the first node feeding node.attr.
func Connection(s Scene, node, attr string) (string, bool, error) {
	conns, err := s.Connections(node, attr)
	if err != nil || len(conns) == 0 {
		return "", false, err
	}
	return conns[0], true, nil
}
