// Package shading resolves host shading networks into deduplicated
// renderer entities: shading nodes, colors, textures and materials.
package shading

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/seedexport/internal/diag"
	"github.com/Faultbox/seedexport/internal/host"
	"github.com/Faultbox/seedexport/internal/logger"
	"github.com/Faultbox/seedexport/internal/markup"
	"github.com/Faultbox/seedexport/internal/naming"
	"github.com/Faultbox/seedexport/internal/project"
	"github.com/Faultbox/seedexport/internal/texture"
	"github.com/Faultbox/seedexport/pkg/math"
)

const component = "shading"

// ResolvedKind says what a shading input turned into.
type ResolvedKind int

const (
	ResolvedNone ResolvedKind = iota
	ResolvedNode
	ResolvedTexture
	ResolvedColor
	ResolvedScalar
)

// Resolved is one translated shading input. Value is an entity name for
// Node, Texture and Color, and a literal for Scalar.
type Resolved struct {
	Kind  ResolvedKind
	Value string
}

// IsNone reports whether the input translated to nothing.
func (r Resolved) IsNone() bool {
	return r.Kind == ResolvedNone
}

// Options configures a Resolver.
type Options struct {
	Frame      int
	ColorSpace string // for color and texture entities; srgb when empty

	ConvertShadingNodes bool
	BakeResolution      int
	Baker               host.Baker

	// Converter turns source images into renderer textures. Nil references
	// source files directly.
	Converter         texture.Converter
	OverwriteTextures bool
	TextureDir        string // where converted and baked images go
	TextureRef        string // TextureDir as the project file refers to it

	Schema *Schema          // nil uses DefaultSchema
	Names  *naming.Registry // nil starts a new one
	Report *diag.Report
}

// Resolver translates shading networks into one project.Scope. Resolve
// every material of a scope through the same Resolver.
type Resolver struct {
	host      host.Scene
	scope     project.Scope
	opts      Options
	schema    *Schema
	names     *naming.Registry
	log       *zap.Logger
	materials map[string]*Material
}

// NewResolver returns a resolver filling scope.
func NewResolver(h host.Scene, scope project.Scope, opts Options) (*Resolver, error) {
	if opts.ColorSpace == "" {
		opts.ColorSpace = "srgb"
	}
	if opts.Names == nil {
		opts.Names = naming.NewRegistry()
	}
	schema := opts.Schema
	if schema == nil {
		var err error
		if schema, err = DefaultSchema(); err != nil {
			return nil, err
		}
	}
	return &Resolver{
		host:      h,
		scope:     scope,
		opts:      opts,
		schema:    schema,
		names:     opts.Names,
		log:       logger.Named(component),
		materials: make(map[string]*Material),
	}, nil
}

func (r *Resolver) entityName(hostName string) (string, error) {
	return r.names.Register(hostName)
}

// warn records a recoverable problem. Errors that are not recoverable are
// returned unchanged; recoverable ones become nil.
func (r *Resolver) warn(node string, err error) error {
	var unsupported *UnsupportedShaderError
	switch {
	case errors.As(err, &unsupported):
		r.opts.Report.Warn(component, node, err.Error())
		return nil
	case errors.Is(err, project.ErrCycle):
		r.opts.Report.Warnf(component, node, "shading cycle: %v", err)
		return nil
	}
	return err
}

// ResolveNode translates a renderer shading node and everything feeding
// it, returning the entity name. A node already translated in this scope
// is returned without any host queries beyond its model.
func (r *Resolver) ResolveNode(node string) (string, project.Kind, error) {
	model, err := r.nodeModel(node)
	if err != nil {
		return "", 0, err
	}
	name, err := r.entityName(node)
	if err != nil {
		return "", 0, err
	}

	kind := model.Kind()
	_, err = r.scope.GetOrCreate(kind, name, func() (project.Entity, error) {
		sn := &project.ShadingNode{Name: name, Type: kind, Model: model.Name}
		for _, attr := range model.Attributes {
			value, err := r.input(node, attr)
			if err != nil {
				return nil, err
			}
			if value != "" {
				sn.Params = append(sn.Params, project.Param{Name: attr.Name, Value: value})
			}
		}
		r.log.Debug("shading node", zap.String("node", node), zap.String("model", model.Name))
		return sn, nil
	})
	if err != nil {
		return "", 0, err
	}
	return name, kind, nil
}

func (r *Resolver) nodeModel(node string) (*Model, error) {
	kind, err := r.host.Kind(node)
	if err != nil {
		return nil, err
	}
	if kind != host.KindShadingNode {
		return nil, &UnsupportedShaderError{Node: node, Kind: kind}
	}
	name, err := host.String(r.host, node, "node_model")
	if err != nil {
		return nil, err
	}
	model, ok := r.schema.Lookup(name)
	if !ok {
		return nil, &UnsupportedShaderError{
			Node:       node,
			Kind:       kind,
			Model:      name,
			Suggestion: r.schema.Suggest(name),
		}
	}
	return model, nil
}

// input translates one model attribute of node to a parameter value. An
// empty value means the parameter is left out.
func (r *Resolver) input(node string, attr Attribute) (string, error) {
	switch attr.Widget {
	case WidgetEntityPicker:
		res, err := r.Resolve(node, attr.Name, false)
		if errors.Is(err, host.ErrMissingAttribute) {
			return attr.Default, nil
		}
		if err != nil {
			return "", err
		}
		return res.Value, nil

	case WidgetDropdown:
		v, err := host.StringOr(r.host, node, attr.Name, attr.Default)
		if err != nil {
			return "", err
		}
		if len(attr.Options) > 0 && !contains(attr.Options, v) {
			r.opts.Report.Warnf(component, node, "%s: %q is not one of %v, using %q", attr.Name, v, attr.Options, attr.Default)
			return attr.Default, nil
		}
		return v, nil

	default:
		return host.StringOr(r.host, node, attr.Name, attr.Default)
	}
}

// Resolve translates the input plug node.attr. A connected renderer
// shading node resolves recursively, a file node becomes a texture and an
// unconnected plug becomes a literal: a scalar when all channels are
// equal, otherwise a color entity. With forceColor set every literal
// becomes a color entity.
//
// Recoverable problems are recorded as warnings and give ResolvedNone.
func (r *Resolver) Resolve(node, attr string, forceColor bool) (Resolved, error) {
	src, connected, err := host.Connection(r.host, node, attr)
	if err != nil {
		return Resolved{}, err
	}
	if !connected {
		return r.literal(node, attr, forceColor)
	}

	res, err := r.connected(node, attr, src)
	if err != nil {
		return Resolved{}, r.warn(src, err)
	}
	return res, nil
}

func (r *Resolver) connected(node, attr, src string) (Resolved, error) {
	kind, err := r.host.Kind(src)
	if err != nil {
		return Resolved{}, err
	}

	switch kind {
	case host.KindShadingNode:
		name, _, err := r.ResolveNode(src)
		if err != nil {
			return Resolved{}, err
		}
		return Resolved{Kind: ResolvedNode, Value: name}, nil

	case host.KindFile:
		name, err := r.entityName(src)
		if err != nil {
			return Resolved{}, err
		}
		inst, err := r.FileTexture(src, naming.Join(name, "texture"))
		if err != nil {
			return Resolved{}, err
		}
		return Resolved{Kind: ResolvedTexture, Value: inst}, nil
	}

	if r.opts.ConvertShadingNodes && r.opts.Baker != nil {
		inst, err := r.bake(node, attr, src)
		if err != nil {
			return Resolved{}, err
		}
		return Resolved{Kind: ResolvedTexture, Value: inst}, nil
	}
	return Resolved{}, &UnsupportedShaderError{Node: src, Kind: kind, Plug: node + "." + attr}
}

func (r *Resolver) literal(node, attr string, forceColor bool) (Resolved, error) {
	c, err := host.Color(r.host, node, attr)
	if err != nil {
		return Resolved{}, err
	}
	if c.Uniform() && !forceColor {
		return Resolved{Kind: ResolvedScalar, Value: markup.Float(c.X)}, nil
	}

	owner, err := r.entityName(node)
	if err != nil {
		return Resolved{}, err
	}
	name, err := r.Color(naming.Join(owner, attr, "color"), c, 1)
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{Kind: ResolvedColor, Value: name}, nil
}

// Color adds a color entity named name. Channels above one are folded into
// the multiplier so the stored values stay within [0, 1].
func (r *Resolver) Color(name string, c math.Vec3, multiplier float64) (string, error) {
	_, err := r.scope.GetOrCreate(project.KindColor, name, func() (project.Entity, error) {
		values, m := normalizeRGB(c)
		return &project.Color{
			Name:       name,
			ColorSpace: r.opts.ColorSpace,
			Values:     values,
			Multiplier: m * multiplier,
			Alpha:      1,
		}, nil
	})
	return name, err
}

func normalizeRGB(c math.Vec3) (math.Vec3, float64) {
	m := c.Max()
	if m <= 1 {
		return c, 1
	}
	return c.Scale(1 / m), m
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
