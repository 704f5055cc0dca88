package snapshot

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"go.uber.org/zap"

	"github.com/Faultbox/seedexport/internal/diag"
	"github.com/Faultbox/seedexport/internal/host"
	"github.com/Faultbox/seedexport/internal/logger"
	"github.com/Faultbox/seedexport/internal/naming"
)

const component = "snapshot"

// ErrNoExporter is returned when meshes need writing but Options carries no
// host.MeshExporter.
var ErrNoExporter = errors.New("no mesh exporter")

// Options controls a capture.
type Options struct {
	Frame              int
	TransformationBlur bool
	DeformationBlur    bool
	CameraBlur         bool
	Samples            int // motion samples when any blur is on

	// GeometryDir is where mesh files are written. GeometryRef is the same
	// directory as the project file refers to it.
	GeometryDir string
	GeometryRef string
	Exporter    host.MeshExporter

	Exclude []string // glob patterns on host paths or short names

	Names  *naming.Registry // shared with later stages; nil starts a new one
	Report *diag.Report
}

func (o Options) blur() bool {
	return o.TransformationBlur || o.DeformationBlur || o.CameraBlur
}

// SampleTimes returns the host times to sample for frame. Without blur it is
// just the frame; with blur, samples evenly spaced over [frame, frame+1]
// with at least two samples.
func SampleTimes(frame, samples int, blur bool) []float64 {
	if !blur {
		return []float64{float64(frame)}
	}
	if samples < 2 {
		samples = 2
	}
	times := make([]float64, samples)
	step := 1 / float64(samples-1)
	for i := range times {
		times[i] = float64(frame) + float64(i)*step
	}
	return times
}

type capturer struct {
	host     host.Scene
	opts     Options
	names    *naming.Registry
	excludes []glob.Glob
	snap     *Snapshot
	log      *zap.Logger
}

// Capture samples h at every motion-blur time for opts.Frame. The host's
// current time is restored before Capture returns, whatever the outcome.
func Capture(ctx context.Context, h host.Scene, opts Options) (snap *Snapshot, err error) {
	if opts.blur() && opts.Samples < 2 {
		opts.Report.Warnf(component, "", "motion samples %d clamped to 2", opts.Samples)
	}
	if opts.Names == nil {
		opts.Names = naming.NewRegistry()
	}
	excludes, err := compileExcludes(opts.Exclude)
	if err != nil {
		return nil, err
	}

	c := &capturer{
		host:     h,
		opts:     opts,
		names:    opts.Names,
		excludes: excludes,
		snap: &Snapshot{
			Frame: opts.Frame,
			Times: SampleTimes(opts.Frame, opts.Samples, opts.blur()),
		},
		log: logger.Named(component),
	}

	scope := host.EnterTime(h)
	defer func() {
		if rerr := scope.Restore(); rerr != nil && err == nil {
			snap, err = nil, rerr
		}
	}()

	for i, t := range c.snap.Times {
		if err := scope.Set(t); err != nil {
			return nil, err
		}
		if i == 0 {
			if err := c.build(); err != nil {
				return nil, err
			}
		}
		if err := c.sample(ctx, i); err != nil {
			return nil, err
		}
	}

	c.log.Debug("captured frame",
		zap.Int("frame", opts.Frame),
		zap.Int("samples", len(c.snap.Times)),
		zap.Int("transforms", len(c.snap.Transforms)),
		zap.Int("meshes", len(c.snap.Meshes)),
		zap.Int("lights", len(c.snap.Lights)),
		zap.Int("cameras", len(c.snap.Cameras)))
	return c.snap, nil
}

func compileExcludes(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '|')
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func (c *capturer) excluded(path string) bool {
	short := naming.ShortName(path)
	for _, g := range c.excludes {
		if g.Match(path) || g.Match(short) {
			return true
		}
	}
	return false
}

func (c *capturer) entityName(path string) (string, error) {
	return c.names.Register(strings.TrimPrefix(path, "|"))
}

// build walks the hierarchy once, at the first sample time.
func (c *capturer) build() error {
	roots, err := c.host.Roots()
	if err != nil {
		return err
	}
	for _, root := range roots {
		t, err := c.walk(root, nil, true)
		if err != nil {
			return err
		}
		if t != nil {
			c.snap.Roots = append(c.snap.Roots, t)
		}
	}
	return nil
}

// walk captures the node at path. It returns a non-nil Transform only when
// path is a transform.
func (c *capturer) walk(path string, parent *Transform, parentVisible bool) (*Transform, error) {
	if c.excluded(path) {
		c.log.Debug("excluded", zap.String("node", path))
		return nil, nil
	}
	kind, err := c.host.Kind(path)
	if err != nil {
		return nil, err
	}

	if kind != host.KindTransform {
		if parent == nil {
			c.opts.Report.Warnf(component, path, "%s without a parent transform skipped", kind)
			return nil, nil
		}
		return nil, c.shape(path, kind, parent, parentVisible)
	}

	visible, err := host.Visible(c.host, path)
	if err != nil {
		return nil, err
	}
	name, err := c.entityName(path)
	if err != nil {
		return nil, err
	}
	animated, err := c.animated(path)
	if err != nil {
		return nil, err
	}

	t := &Transform{
		Name:     name,
		Path:     path,
		Parent:   parent,
		Visible:  parentVisible && visible,
		Animated: animated,
	}
	c.snap.Transforms = append(c.snap.Transforms, t)

	children, err := c.host.Children(path)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		ct, err := c.walk(child, t, t.Visible)
		if err != nil {
			return nil, err
		}
		if ct != nil {
			t.Transforms = append(t.Transforms, ct)
		}
	}
	return t, nil
}

func (c *capturer) animated(path string) (bool, error) {
	for _, attr := range []string{"translate", "rotate", "scale"} {
		conns, err := c.host.Connections(path, attr)
		if err != nil {
			return false, err
		}
		if len(conns) > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (c *capturer) shape(path string, kind host.NodeKind, parent *Transform, parentVisible bool) error {
	switch {
	case kind == host.KindMesh:
		return c.mesh(path, parent, parentVisible)
	case kind == host.KindCamera:
		return c.camera(path, parent)
	case kind.IsLight():
		return c.light(path, kind, parent, parentVisible)
	}
	c.log.Debug("skipping node", zap.String("node", path), zap.Stringer("kind", kind))
	return nil
}

func (c *capturer) visible(path string, parentVisible bool) (bool, error) {
	if !parentVisible {
		return false, nil
	}
	return host.Visible(c.host, path)
}

func (c *capturer) mesh(path string, parent *Transform, parentVisible bool) error {
	visible, err := c.visible(path, parentVisible)
	if err != nil {
		return err
	}
	if !visible {
		c.log.Debug("hidden mesh skipped", zap.String("node", path))
		return nil
	}
	name, err := c.entityName(path)
	if err != nil {
		return err
	}
	materials, err := c.host.Connections(path, host.AttrMaterials)
	if err != nil {
		return err
	}

	m := &Mesh{Name: name, Path: path, Transform: parent, Materials: materials}
	parent.Meshes = append(parent.Meshes, m)
	c.snap.Meshes = append(c.snap.Meshes, m)
	return nil
}

func (c *capturer) light(path string, kind host.NodeKind, parent *Transform, parentVisible bool) error {
	visible, err := c.visible(path, parentVisible)
	if err != nil {
		return err
	}
	if !visible {
		c.log.Debug("hidden light skipped", zap.String("node", path))
		return nil
	}
	name, err := c.entityName(path)
	if err != nil {
		return err
	}

	l := &Light{Name: name, Path: path, Transform: parent, Kind: kind}
	if l.Color, err = host.Color(c.host, path, "color"); err != nil {
		return err
	}
	if l.Intensity, err = host.Float(c.host, path, "intensity"); err != nil {
		return err
	}
	if l.Decay, err = host.FloatOr(c.host, path, "decayRate", 0); err != nil {
		return err
	}
	if kind == host.KindSpotLight {
		if l.ConeAngle, err = host.Float(c.host, path, "coneAngle"); err != nil {
			return err
		}
		if l.PenumbraAngle, err = host.Float(c.host, path, "penumbraAngle"); err != nil {
			return err
		}
	}

	parent.Lights = append(parent.Lights, l)
	c.snap.Lights = append(c.snap.Lights, l)
	return nil
}

func (c *capturer) camera(path string, parent *Transform) error {
	name, err := c.entityName(path)
	if err != nil {
		return err
	}
	cam := &Camera{Name: name, Path: path, Transform: parent}

	floats := []struct {
		attr string
		dst  *float64
	}{
		{"focalLength", &cam.FocalLength},
		{"horizontalFilmAperture", &cam.HorizontalAperture},
		{"verticalFilmAperture", &cam.VerticalAperture},
		{"fStop", &cam.FStop},
		{"focusDistance", &cam.FocusDistance},
	}
	for _, f := range floats {
		if *f.dst, err = host.Float(c.host, path, f.attr); err != nil {
			return err
		}
	}
	if cam.DepthOfField, err = host.BoolOr(c.host, path, "depthOfField", false); err != nil {
		return err
	}

	parent.Cameras = append(parent.Cameras, cam)
	c.snap.Cameras = append(c.snap.Cameras, cam)
	return nil
}

// sample records everything sample i needs at the host's current time.
func (c *capturer) sample(ctx context.Context, i int) error {
	first := i == 0

	if first || c.opts.TransformationBlur {
		for _, t := range c.snap.Transforms {
			world, err := c.host.WorldMatrix(t.Path)
			if err != nil {
				return err
			}
			t.World = append(t.World, world)
		}
	}

	if first || c.opts.CameraBlur {
		for _, cam := range c.snap.Cameras {
			world, err := c.host.WorldMatrix(cam.Path)
			if err != nil {
				return err
			}
			cam.World = append(cam.World, world)
		}
	}

	if first {
		for _, l := range c.snap.Lights {
			world, err := c.host.WorldMatrix(l.Path)
			if err != nil {
				return err
			}
			l.World = world
		}
	}

	if first || c.opts.DeformationBlur {
		for _, m := range c.snap.Meshes {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("before exporting %s: %w", m.Path, err)
			}
			if err := c.exportMesh(m, i); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *capturer) exportMesh(m *Mesh, i int) error {
	if c.opts.Exporter == nil {
		return ErrNoExporter
	}
	file := m.Name + ".obj"
	if c.opts.DeformationBlur {
		file = fmt.Sprintf("%s.%03d.obj", m.Name, i)
	}

	written, err := c.opts.Exporter.ExportMesh(m.Path, filepath.Join(c.opts.GeometryDir, file), true)
	if err != nil {
		return fmt.Errorf("export mesh %s: %w", m.Path, err)
	}
	m.Files = append(m.Files, path.Join(c.opts.GeometryRef, filepath.Base(written)))
	return nil
}
