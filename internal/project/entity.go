// Package project holds the renderer entity graph for one exported frame
// and serializes it to project markup.
package project

import "github.com/Faultbox/seedexport/pkg/math"

// Kind identifies an entity variant. Names are unique per kind within a
// container.
type Kind int

const (
	KindColor Kind = iota
	KindTexture
	KindTextureInstance
	KindBSDF
	KindEDF
	KindSurfaceShader
	KindMaterial
	KindLight
	KindObject
	KindObjectInstance
	KindEnvironmentEDF
	KindEnvironmentShader
	KindEnvironment
	KindAssembly
	KindAssemblyInstance
	KindCamera
	KindFrame
	KindConfiguration
	kindCount
)

var kindTags = [kindCount]string{
	KindColor:             "color",
	KindTexture:           "texture",
	KindTextureInstance:   "texture_instance",
	KindBSDF:              "bsdf",
	KindEDF:               "edf",
	KindSurfaceShader:     "surface_shader",
	KindMaterial:          "material",
	KindLight:             "light",
	KindObject:            "object",
	KindObjectInstance:    "object_instance",
	KindEnvironmentEDF:    "environment_edf",
	KindEnvironmentShader: "environment_shader",
	KindEnvironment:       "environment",
	KindAssembly:          "assembly",
	KindAssemblyInstance:  "assembly_instance",
	KindCamera:            "camera",
	KindFrame:             "frame",
	KindConfiguration:     "configuration",
}

// String returns the markup element name for k.
func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "unknown"
	}
	return kindTags[k]
}

// Entity is one node of the entity graph. The set of implementations is
// closed; Emit handles each of them.
type Entity interface {
	EntityName() string
	Kind() Kind
	entity()
}

// Param is one named parameter. Values are preformatted.
type Param struct {
	Name  string
	Value string
}

// ParamGroup is a named parameter block.
type ParamGroup struct {
	Name   string
	Params []Param
}

// Color is a named RGB value with a multiplier.
type Color struct {
	Name       string
	ColorSpace string
	Values     math.Vec3
	Multiplier float64
	Alpha      float64
}

// Texture is an image on disk.
type Texture struct {
	Name       string
	Model      string
	ColorSpace string
	FileName   string
}

// TextureInstance places a texture with sampling settings.
type TextureInstance struct {
	Name    string
	Texture string
	Params  []Param
}

// ShadingNode is a bsdf, edf or surface shader.
type ShadingNode struct {
	Name   string
	Type   Kind // KindBSDF, KindEDF or KindSurfaceShader
	Model  string
	Params []Param
}

// Material binds shading nodes for one side of a surface. Empty fields are
// left out.
type Material struct {
	Name          string
	Model         string
	BSDF          string
	EDF           string
	SurfaceShader string
	AlphaMap      string
	NormalMap     string
}

// Light is a light source.
type Light struct {
	Name      string
	Model     string
	Params    []Param
	Transform math.Mat4
}

// Object is mesh geometry stored in one file, or one file per motion
// sample.
type Object struct {
	Name  string
	Model string
	Files []string
}

// MaterialAssignment binds a material to one side of an object slot.
type MaterialAssignment struct {
	Slot     string
	Side     string // front or back
	Material string
}

// ObjectInstance places an object and assigns its materials.
type ObjectInstance struct {
	Name        string
	Object      string
	Transform   math.Mat4
	Assignments []MaterialAssignment
}

// AssemblyInstance places an assembly, with one transform per time sample.
type AssemblyInstance struct {
	Name       string
	Assembly   string
	Transforms []math.Mat4
}

// EnvironmentEDF is an environment light model.
type EnvironmentEDF struct {
	Name   string
	Model  string
	Params []Param
}

// EnvironmentShader shades camera rays that leave the scene.
type EnvironmentShader struct {
	Name           string
	Model          string
	EnvironmentEDF string
}

// Environment ties an environment EDF and shader together.
type Environment struct {
	Name              string
	Model             string
	EnvironmentEDF    string
	EnvironmentShader string
}

// Camera is the render camera, with one transform per time sample.
type Camera struct {
	Name       string
	Model      string
	Params     []Param
	Transforms []math.Mat4
}

// Frame describes the rendered image.
type Frame struct {
	Name       string
	Camera     string
	ColorSpace string
	Width      int
	Height     int
}

// Configuration is a named render configuration derived from a base.
type Configuration struct {
	Name   string
	Base   string
	Params []Param
	Groups []ParamGroup
}

func (e *Color) EntityName() string             { return e.Name }
func (e *Texture) EntityName() string           { return e.Name }
func (e *TextureInstance) EntityName() string   { return e.Name }
func (e *ShadingNode) EntityName() string       { return e.Name }
func (e *Material) EntityName() string          { return e.Name }
func (e *Light) EntityName() string             { return e.Name }
func (e *Object) EntityName() string            { return e.Name }
func (e *ObjectInstance) EntityName() string    { return e.Name }
func (e *Assembly) EntityName() string          { return e.Name }
func (e *AssemblyInstance) EntityName() string  { return e.Name }
func (e *EnvironmentEDF) EntityName() string    { return e.Name }
func (e *EnvironmentShader) EntityName() string { return e.Name }
func (e *Environment) EntityName() string       { return e.Name }
func (e *Camera) EntityName() string            { return e.Name }
func (e *Frame) EntityName() string             { return e.Name }
func (e *Configuration) EntityName() string     { return e.Name }

func (*Color) Kind() Kind             { return KindColor }
func (*Texture) Kind() Kind           { return KindTexture }
func (*TextureInstance) Kind() Kind   { return KindTextureInstance }
func (e *ShadingNode) Kind() Kind     { return e.Type }
func (*Material) Kind() Kind          { return KindMaterial }
func (*Light) Kind() Kind             { return KindLight }
func (*Object) Kind() Kind            { return KindObject }
func (*ObjectInstance) Kind() Kind    { return KindObjectInstance }
func (*Assembly) Kind() Kind          { return KindAssembly }
func (*AssemblyInstance) Kind() Kind  { return KindAssemblyInstance }
func (*EnvironmentEDF) Kind() Kind    { return KindEnvironmentEDF }
func (*EnvironmentShader) Kind() Kind { return KindEnvironmentShader }
func (*Environment) Kind() Kind       { return KindEnvironment }
func (*Camera) Kind() Kind            { return KindCamera }
func (*Frame) Kind() Kind             { return KindFrame }
func (*Configuration) Kind() Kind     { return KindConfiguration }

func (*Color) entity()             {}
func (*Texture) entity()           {}
func (*TextureInstance) entity()   {}
func (*ShadingNode) entity()       {}
func (*Material) entity()          {}
func (*Light) entity()             {}
func (*Object) entity()            {}
func (*ObjectInstance) entity()    {}
func (*Assembly) entity()          {}
func (*AssemblyInstance) entity()  {}
func (*EnvironmentEDF) entity()    {}
func (*EnvironmentShader) entity() {}
func (*Environment) entity()       {}
func (*Camera) entity()            {}
func (*Frame) entity()             {}
func (*Configuration) entity()     {}
