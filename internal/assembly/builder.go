// Package assembly partitions a captured frame into assemblies: objects,
// their instances and materials, and lights, each with the instance that
// places it in the scene.
package assembly

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/Faultbox/seedexport/internal/diag"
	"github.com/Faultbox/seedexport/internal/host"
	"github.com/Faultbox/seedexport/internal/logger"
	"github.com/Faultbox/seedexport/internal/naming"
	"github.com/Faultbox/seedexport/internal/project"
	"github.com/Faultbox/seedexport/internal/shading"
	"github.com/Faultbox/seedexport/internal/snapshot"
	"github.com/Faultbox/seedexport/pkg/math"
)

const component = "assembly"

// MainAssembly holds everything not split into a per-root assembly.
const MainAssembly = "assembly"

const objectModel = "mesh_object"

// Options controls partitioning.
type Options struct {
	// TransformationBlur gives every animated top-level transform its own
	// assembly, placed by the root's sampled matrices.
	TransformationBlur bool

	Scale        float64 // scene scale folded into assembly instances; 0 means 1
	ExportLights bool

	// Shading is the template for each assembly's resolver. Names and
	// Report are shared across assemblies.
	Shading shading.Options

	Report *diag.Report
}

// Result is the partitioned frame. Assemblies and Instances are parallel
// and in emission order.
type Result struct {
	Assemblies []*project.Assembly
	Instances  []*project.AssemblyInstance
}

// AddTo adds the assemblies and their instances to scene.
func (r *Result) AddTo(scene *project.Scene) error {
	for _, a := range r.Assemblies {
		if err := scene.Add(a); err != nil {
			return err
		}
	}
	for _, inst := range r.Instances {
		if err := scene.Add(inst); err != nil {
			return err
		}
	}
	return nil
}

// group is one assembly being built.
type group struct {
	asm      *project.Assembly
	inst     *project.AssemblyInstance
	root     *snapshot.Transform // nil for the main assembly
	toLocal  math.Mat4           // world to assembly space
	meshes   []*snapshot.Mesh
	lights   []*snapshot.Light
	resolver *shading.Resolver
}

type builder struct {
	host host.Scene
	opts Options
	log  *zap.Logger
}

// Build partitions snap into assemblies and resolves every material the
// meshes use. h answers the shading queries; its current time should be
// the exported frame. ctx is checked before each assembly and each object.
func Build(ctx context.Context, h host.Scene, snap *snapshot.Snapshot, opts Options) (*Result, error) {
	if opts.Scale == 0 {
		opts.Scale = 1
	}
	if opts.Shading.Names == nil {
		opts.Shading.Names = naming.NewRegistry()
	}
	if opts.Shading.Report == nil {
		opts.Shading.Report = opts.Report
	}
	b := &builder{host: h, opts: opts, log: logger.Named(component)}

	groups := b.partition(snap)
	res := &Result{}
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("assembly %s: %w", g.asm.Name, err)
		}
		if err := b.fill(ctx, g); err != nil {
			return nil, fmt.Errorf("assembly %s: %w", g.asm.Name, err)
		}
		g.asm.Freeze()
		res.Assemblies = append(res.Assemblies, g.asm)
		res.Instances = append(res.Instances, g.inst)

		b.log.Debug("built assembly",
			zap.String("name", g.asm.Name),
			zap.Int("objects", g.asm.Len(project.KindObject)),
			zap.Int("materials", g.asm.Len(project.KindMaterial)),
			zap.Int("lights", g.asm.Len(project.KindLight)))
	}
	return res, nil
}

// partition assigns meshes and lights to groups. The main assembly comes
// first and is dropped when it ends up empty.
func (b *builder) partition(snap *snapshot.Snapshot) []*group {
	main := b.newGroup(MainAssembly, nil)
	groups := []*group{main}

	for _, root := range snap.Roots {
		g := main
		if b.opts.TransformationBlur && root.Animated {
			g = b.newGroup(naming.Join(root.Name, "assembly"), root)
			groups = append(groups, g)
		}
		root.Walk(func(t *snapshot.Transform) {
			g.meshes = append(g.meshes, t.Meshes...)
			if b.opts.ExportLights {
				g.lights = append(g.lights, t.Lights...)
			}
		})
	}

	if len(main.meshes) == 0 && len(main.lights) == 0 && len(groups) > 1 {
		groups = groups[1:]
	}
	return groups
}

func (b *builder) newGroup(name string, root *snapshot.Transform) *group {
	g := &group{
		asm:     project.NewAssembly(name),
		root:    root,
		toLocal: math.Identity(),
	}
	scale := math.UniformScale(b.opts.Scale)

	g.inst = &project.AssemblyInstance{Name: naming.Join(name, "inst"), Assembly: name}
	if root == nil {
		g.inst.Transforms = []math.Mat4{scale}
		return g
	}
	for _, m := range root.World {
		g.inst.Transforms = append(g.inst.Transforms, scale.Mul(m))
	}
	g.toLocal = root.World[0].Inverse()
	return g
}

func (b *builder) fill(ctx context.Context, g *group) error {
	var err error
	if g.resolver, err = shading.NewResolver(b.host, g.asm, b.opts.Shading); err != nil {
		return err
	}
	for _, m := range g.meshes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.object(g, m); err != nil {
			return err
		}
	}
	for _, l := range g.lights {
		if err := b.light(g, l); err != nil {
			return err
		}
	}
	return nil
}

// object adds the mesh object, its materials and one instance.
func (b *builder) object(g *group, m *snapshot.Mesh) error {
	obj := &project.Object{Name: m.Name, Model: objectModel, Files: m.Files}
	if err := g.asm.Add(obj); err != nil {
		return err
	}

	inst := &project.ObjectInstance{
		Name:      naming.Join(m.Name, "inst"),
		Object:    m.Name,
		Transform: g.toLocal.Mul(m.Transform.World[0]),
	}
	for slot, hostMat := range m.Materials {
		mat, err := g.resolver.ResolveMaterial(hostMat)
		if err != nil {
			return err
		}
		inst.Assignments = append(inst.Assignments, mat.Assignments(strconv.Itoa(slot))...)
	}
	if len(inst.Assignments) == 0 {
		b.opts.Report.Warn(component, m.Path, "no material, exported unshaded")
	}
	return g.asm.Add(inst)
}
