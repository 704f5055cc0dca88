package shading

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/seedexport/internal/host"
	"github.com/Faultbox/seedexport/internal/markup"
	"github.com/Faultbox/seedexport/internal/naming"
	"github.com/Faultbox/seedexport/internal/project"
	"github.com/Faultbox/seedexport/pkg/math"
)

// Names of the fallback entities every scope can share.
const (
	DefaultMaterial      = "default_material"
	DefaultSurfaceShader = "physical_surface_shader"
)

const (
	materialModel      = "generic_material"
	surfaceShaderModel = "physical_surface_shader"
	defaultReflectance = "0.5"

	sideFront = "front"
	sideBack  = "back"

	minShininess        = 1.0
	defaultEccentricity = 0.3
)

// Side holds one side's attachments of a layered material.
type Side struct {
	BSDF          Resolved
	EDF           Resolved
	SurfaceShader Resolved
	NormalMap     Resolved
}

// Material is a resolved host material.
type Material struct {
	Host string
	Name string

	EnableFront          bool
	EnableBack           bool
	DuplicateFrontOnBack bool

	// With DuplicateFrontOnBack, Back equals Front and was not resolved
	// separately.
	Front    Side
	Back     Side
	AlphaMap Resolved
}

// EntityNames returns the material entities for the enabled sides: one
// shared material when the front is duplicated on the back, otherwise one
// per side.
func (m *Material) EntityNames() (front, back string) {
	if m.DuplicateFrontOnBack {
		if m.EnableFront {
			front = m.Name
		}
		if m.EnableBack {
			back = m.Name
		}
		return front, back
	}
	if m.EnableFront {
		front = naming.Join(m.Name, sideFront)
	}
	if m.EnableBack {
		back = naming.Join(m.Name, sideBack)
	}
	return front, back
}

// Assignments binds the material to slot on each enabled side.
func (m *Material) Assignments(slot string) []project.MaterialAssignment {
	front, back := m.EntityNames()
	var out []project.MaterialAssignment
	if front != "" {
		out = append(out, project.MaterialAssignment{Slot: slot, Side: sideFront, Material: front})
	}
	if back != "" {
		out = append(out, project.MaterialAssignment{Slot: slot, Side: sideBack, Material: back})
	}
	return out
}

// ResolveMaterial translates a host material and adds its entities to the
// scope. Layered renderer materials and the host's lambert, blinn, phong
// and surfaceShader are understood; anything else is replaced by the
// default material with a warning.
func (r *Resolver) ResolveMaterial(node string) (*Material, error) {
	if m, ok := r.materials[node]; ok {
		return m, nil
	}

	kind, err := r.host.Kind(node)
	if err != nil {
		return nil, err
	}

	var m *Material
	switch {
	case kind == host.KindMaterial:
		m, err = r.layered(node)
	case kind.IsStandardMaterial():
		m, err = r.standard(node, kind)
	default:
		r.opts.Report.Warn(component, node, (&UnsupportedShaderError{Node: node, Kind: kind}).Error()+", using "+DefaultMaterial)
		m, err = r.FallbackMaterial()
	}
	if err != nil {
		return nil, err
	}
	if err := r.addMaterials(m); err != nil {
		return nil, err
	}

	r.materials[node] = m
	r.log.Debug("material", zap.String("node", node), zap.String("name", m.Name))
	return m, nil
}

func (r *Resolver) layered(node string) (*Material, error) {
	name, err := r.entityName(node)
	if err != nil {
		return nil, err
	}
	m := &Material{Host: node, Name: name}

	if m.EnableFront, err = host.BoolOr(r.host, node, "enable_front_material", true); err != nil {
		return nil, err
	}
	if m.EnableBack, err = host.BoolOr(r.host, node, "enable_back_material", true); err != nil {
		return nil, err
	}
	if m.DuplicateFrontOnBack, err = host.BoolOr(r.host, node, "duplicate_front_attributes_on_back", true); err != nil {
		return nil, err
	}
	if !m.EnableFront && !m.EnableBack {
		r.opts.Report.Warn(component, node, "material has no enabled side")
	}

	if m.EnableFront || (m.DuplicateFrontOnBack && m.EnableBack) {
		if m.Front, err = r.side(node, sideFront); err != nil {
			return nil, err
		}
	}
	switch {
	case m.DuplicateFrontOnBack:
		m.Back = m.Front
	case m.EnableBack:
		if m.Back, err = r.side(node, sideBack); err != nil {
			return nil, err
		}
	}

	if m.AlphaMap, err = r.attachment(node, "alpha_map_color", project.KindTexture); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *Resolver) side(node, side string) (Side, error) {
	var s Side
	var err error
	if s.BSDF, err = r.attachment(node, "BSDF_"+side+"_color", project.KindBSDF); err != nil {
		return s, err
	}
	if s.EDF, err = r.attachment(node, "EDF_"+side+"_color", project.KindEDF); err != nil {
		return s, err
	}
	if s.SurfaceShader, err = r.attachment(node, "surface_shader_"+side+"_color", project.KindSurfaceShader); err != nil {
		return s, err
	}
	if s.NormalMap, err = r.attachment(node, "normal_map_"+side+"_color", project.KindTexture); err != nil {
		return s, err
	}
	return s, nil
}

// attachment resolves a material slot. Slots only take connected entities
// of the expected kind; literal values leave the slot empty.
func (r *Resolver) attachment(node, attr string, want project.Kind) (Resolved, error) {
	src, connected, err := host.Connection(r.host, node, attr)
	if err != nil || !connected {
		return Resolved{}, err
	}
	kind, err := r.host.Kind(src)
	if err != nil {
		return Resolved{}, err
	}

	switch {
	case want == project.KindTexture && kind == host.KindFile:
		return r.Resolve(node, attr, false)
	case want != project.KindTexture && kind == host.KindShadingNode:
		name, got, err := r.ResolveNode(src)
		if err != nil {
			return Resolved{}, r.warn(src, err)
		}
		if got != want {
			r.opts.Report.Warnf(component, node, "%s expects a %s, %s is a %s", attr, want, src, got)
			return Resolved{}, nil
		}
		return Resolved{Kind: ResolvedNode, Value: name}, nil
	}
	r.opts.Report.Warnf(component, node, "%s cannot take %s (%s)", attr, src, kind)
	return Resolved{}, nil
}

// standard translates the host's built-in materials to a generic material
// applied to both sides.
func (r *Resolver) standard(node string, kind host.NodeKind) (*Material, error) {
	name, err := r.entityName(node)
	if err != nil {
		return nil, err
	}
	m := &Material{Host: node, Name: name, EnableFront: true, EnableBack: true, DuplicateFrontOnBack: true}

	switch kind {
	case host.KindLambert:
		reflectance, err := r.Resolve(node, "color", true)
		if err != nil {
			return nil, err
		}
		m.Front.BSDF, err = r.bsdf(name, "lambertian_brdf", []project.Param{
			{Name: "reflectance", Value: valueOr(reflectance, defaultReflectance)},
		})
		if err != nil {
			return nil, err
		}

	case host.KindBlinn, host.KindPhong:
		diffuse, err := r.Resolve(node, "color", true)
		if err != nil {
			return nil, err
		}
		glossy, err := r.Resolve(node, "specularColor", true)
		if err != nil {
			return nil, err
		}
		shininess, err := r.shininess(node, kind)
		if err != nil {
			return nil, err
		}
		m.Front.BSDF, err = r.bsdf(name, "ashikhmin_brdf", []project.Param{
			{Name: "diffuse_reflectance", Value: valueOr(diffuse, defaultReflectance)},
			{Name: "glossy_reflectance", Value: valueOr(glossy, defaultReflectance)},
			{Name: "shininess_u", Value: markup.Float(shininess)},
			{Name: "shininess_v", Value: markup.Float(shininess)},
		})
		if err != nil {
			return nil, err
		}
	}

	emission := "incandescence"
	if kind == host.KindSurfaceShader {
		emission = "outColor"
	}
	if m.Front.EDF, err = r.emission(node, name, emission, kind == host.KindSurfaceShader); err != nil {
		return nil, err
	}

	if kind != host.KindSurfaceShader {
		if m.AlphaMap, err = r.attachment(node, "transparency", project.KindTexture); err != nil {
			return nil, err
		}
	}
	m.Back = m.Front
	return m, nil
}

func (r *Resolver) bsdf(owner, model string, params []project.Param) (Resolved, error) {
	name := naming.Join(owner, "bsdf")
	_, err := r.scope.GetOrCreate(project.KindBSDF, name, func() (project.Entity, error) {
		return &project.ShadingNode{Name: name, Type: project.KindBSDF, Model: model, Params: params}, nil
	})
	return Resolved{Kind: ResolvedNode, Value: name}, err
}

// emission adds a diffuse EDF for attr unless it is an unconnected black,
// or always when required is set.
func (r *Resolver) emission(node, owner, attr string, required bool) (Resolved, error) {
	_, connected, err := host.Connection(r.host, node, attr)
	if err != nil {
		return Resolved{}, err
	}
	if !connected && !required {
		c, err := host.Color(r.host, node, attr)
		if err != nil || c == (math.Vec3{}) {
			return Resolved{}, ignoreMissing(err)
		}
	}

	exitance, err := r.Resolve(node, attr, true)
	if err != nil || exitance.IsNone() {
		return Resolved{}, err
	}
	name := naming.Join(owner, "edf")
	_, err = r.scope.GetOrCreate(project.KindEDF, name, func() (project.Entity, error) {
		return &project.ShadingNode{
			Name:   name,
			Type:   project.KindEDF,
			Model:  "diffuse_edf",
			Params: []project.Param{{Name: "exitance", Value: exitance.Value}},
		}, nil
	})
	return Resolved{Kind: ResolvedNode, Value: name}, err
}

// shininess maps the host's specular controls to a Phong-style exponent.
func (r *Resolver) shininess(node string, kind host.NodeKind) (float64, error) {
	if kind == host.KindPhong {
		power, err := host.FloatOr(r.host, node, "cosinePower", 20)
		return max(power, minShininess), err
	}
	e, err := host.FloatOr(r.host, node, "eccentricity", defaultEccentricity)
	if err != nil {
		return 0, err
	}
	if e <= 0 {
		return 1000, nil
	}
	return max(2/(e*e)-2, minShininess), nil
}

// FallbackMaterial adds the default material to the scope: a mid-gray
// lambertian surface on both sides.
func (r *Resolver) FallbackMaterial() (*Material, error) {
	m := &Material{Name: DefaultMaterial, EnableFront: true, EnableBack: true, DuplicateFrontOnBack: true}
	var err error
	m.Front.BSDF, err = r.bsdf(DefaultMaterial, "lambertian_brdf", []project.Param{
		{Name: "reflectance", Value: defaultReflectance},
	})
	if err != nil {
		return nil, err
	}
	m.Back = m.Front
	return m, nil
}

// SurfaceShader adds the shared physical surface shader used by materials
// without one.
func (r *Resolver) SurfaceShader() (string, error) {
	_, err := r.scope.GetOrCreate(project.KindSurfaceShader, DefaultSurfaceShader, func() (project.Entity, error) {
		return &project.ShadingNode{Name: DefaultSurfaceShader, Type: project.KindSurfaceShader, Model: surfaceShaderModel}, nil
	})
	return DefaultSurfaceShader, err
}

// addMaterials creates the material entities for m's enabled sides.
func (r *Resolver) addMaterials(m *Material) error {
	front, back := m.EntityNames()
	sides := []struct {
		name string
		side Side
	}{
		{front, m.Front},
		{back, m.Back},
	}
	for _, s := range sides {
		if s.name == "" {
			continue
		}
		if err := r.addMaterial(s.name, s.side, m.AlphaMap); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) addMaterial(name string, s Side, alpha Resolved) error {
	shader := s.SurfaceShader.Value
	if s.SurfaceShader.IsNone() {
		var err error
		if shader, err = r.SurfaceShader(); err != nil {
			return err
		}
	}
	_, err := r.scope.GetOrCreate(project.KindMaterial, name, func() (project.Entity, error) {
		return &project.Material{
			Name:          name,
			Model:         materialModel,
			BSDF:          s.BSDF.Value,
			EDF:           s.EDF.Value,
			SurfaceShader: shader,
			AlphaMap:      alpha.Value,
			NormalMap:     s.NormalMap.Value,
		}, nil
	})
	return err
}

func ignoreMissing(err error) error {
	if errors.Is(err, host.ErrMissingAttribute) {
		return nil
	}
	return err
}

func valueOr(r Resolved, def string) string {
	if r.IsNone() {
		return def
	}
	return r.Value
}
