// Package export runs the per-frame pipeline: capture the host scene,
// partition it into assemblies, add the camera, environment and render
// settings, and write the project file.
package export

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/seedexport/internal/assembly"
	"github.com/Faultbox/seedexport/internal/config"
	"github.com/Faultbox/seedexport/internal/diag"
	"github.com/Faultbox/seedexport/internal/host"
	"github.com/Faultbox/seedexport/internal/logger"
	"github.com/Faultbox/seedexport/internal/naming"
	"github.com/Faultbox/seedexport/internal/project"
	"github.com/Faultbox/seedexport/internal/shading"
	"github.com/Faultbox/seedexport/internal/snapshot"
	"github.com/Faultbox/seedexport/internal/texture"
)

const component = "export"

// DefaultGenerator is written into the header of every project file.
const DefaultGenerator = "File generated by seedexport"

// Exporter exports frames of one host scene.
type Exporter struct {
	Host   host.Scene
	Config *config.Config

	Meshes    host.MeshExporter
	Baker     host.Baker        // used when shading nodes are converted
	Converter texture.Converter // nil references texture sources directly

	Generator string
}

// New returns an Exporter with the texture converter cfg names, cached
// across frames.
func New(h host.Scene, cfg *config.Config, meshes host.MeshExporter, baker host.Baker) (*Exporter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Exporter{Host: h, Config: cfg, Meshes: meshes, Baker: baker, Generator: DefaultGenerator}
	if cfg.Shading.ConvertTextures {
		conv, err := texture.New(cfg.Shading.Converter, cfg.Shading.ConverterCommand)
		if err != nil {
			return nil, err
		}
		if conv != nil {
			e.Converter = texture.NewCache(conv)
		}
	}
	return e, nil
}

// Result describes a run.
type Result struct {
	Files   []string // project files written, in frame order
	Failed  []int    // frames aborted by an error
	Report  *diag.Report
	Elapsed time.Duration
}

// Run exports every configured frame. A frame that fails on a host query
// or a name collision is recorded and the run continues; the returned
// error combines those failures. Cancellation returns ErrCancelled and an
// output failure returns ErrOutput, both at once. The host's current time
// is restored before Run returns.
func (e *Exporter) Run(ctx context.Context) (res *Result, err error) {
	start := time.Now()
	res = &Result{Report: diag.New()}
	log := logger.Named(component)

	scope := host.EnterTime(e.Host)
	defer func() {
		if rerr := scope.Restore(); rerr != nil {
			err = multierr.Append(err, rerr)
		}
		res.Elapsed = time.Since(start)
	}()

	current := int(math.Round(scope.Saved()))
	for _, frame := range e.Config.Frames(current) {
		res.Report.SetFrame(frame)
		file, ferr := e.ExportFrame(ctx, scope, frame, res.Report)

		switch {
		case ferr == nil:
			res.Files = append(res.Files, file)
			log.Info("exported frame", zap.Int("frame", frame), zap.String("file", file))
		case errors.Is(ferr, context.Canceled), errors.Is(ferr, context.DeadlineExceeded):
			log.Warn("export cancelled", zap.Int("frame", frame))
			return res, fmt.Errorf("%w at frame %d", ErrCancelled, frame)
		case errors.Is(ferr, ErrOutput):
			res.Report.Error(component, "", ferr)
			res.Failed = append(res.Failed, frame)
			return res, ferr
		default:
			res.Report.Error(component, "", ferr)
			res.Failed = append(res.Failed, frame)
			err = multierr.Append(err, fmt.Errorf("frame %d: %w", frame, ferr))
		}
	}
	return res, err
}

// ExportFrame exports one frame and returns the project file path. scope
// is moved to frame for shading queries and left there.
func (e *Exporter) ExportFrame(ctx context.Context, scope *host.TimeScope, frame int, report *diag.Report) (string, error) {
	cfg := e.Config
	sceneName := sceneBaseName(e.Host.SceneName())
	layout := NewLayout(cfg.Output.Directory, cfg.Output.FileName, sceneName, frame, cfg.Shading.AnimatedTextures)
	names := naming.NewRegistry()

	snap, err := snapshot.Capture(ctx, e.Host, snapshot.Options{
		Frame:              frame,
		TransformationBlur: cfg.Motion.TransformationBlur,
		DeformationBlur:    cfg.Motion.DeformationBlur,
		CameraBlur:         cfg.Motion.CameraBlur,
		Samples:            cfg.Motion.Samples,
		GeometryDir:        layout.GeometryDir,
		GeometryRef:        layout.GeometryRef,
		Exporter:           e.Meshes,
		Exclude:            cfg.Scene.Exclude,
		Names:              names,
		Report:             report,
	})
	if err != nil {
		return "", err
	}
	if err := scope.Set(float64(frame)); err != nil {
		return "", err
	}

	shadingOpts := shading.Options{
		Frame:               frame,
		ColorSpace:          cfg.Output.ColorSpace,
		ConvertShadingNodes: cfg.Shading.ConvertShadingNodes,
		BakeResolution:      cfg.Shading.BakeResolution,
		Baker:               e.Baker,
		Converter:           e.Converter,
		OverwriteTextures:   cfg.Shading.OverwriteTextures,
		TextureDir:          layout.TextureDir,
		TextureRef:          layout.TextureRef,
		Names:               names,
		Report:              report,
	}
	p, err := e.buildProject(ctx, snap, shadingOpts, report)
	if err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	err = project.WriteFile(layout.Project, p, project.WriteOptions{
		Generator:  e.Generator,
		BestEffort: cfg.Output.BestEffort,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrOutput, err)
	}
	return layout.Project, nil
}

func (e *Exporter) buildProject(ctx context.Context, snap *snapshot.Snapshot, shadingOpts shading.Options, report *diag.Report) (*project.Project, error) {
	cfg := e.Config

	cam, ok := snap.Camera(cfg.Output.Camera)
	if !ok {
		if cfg.Output.Camera == "" {
			return nil, ErrNoCamera
		}
		return nil, fmt.Errorf("%w: %s", ErrNoCamera, cfg.Output.Camera)
	}

	scene := project.NewScene()
	scene.Camera = CameraEntity(cam, cfg.Output.Width, cfg.Output.Height, cfg.Scene.Scale, cfg.Scene.ThinLensDefault)

	if cfg.Scene.Environment != "" {
		r, err := shading.NewResolver(e.Host, scene, shadingOpts)
		if err != nil {
			return nil, err
		}
		if _, err := r.ResolveEnvironment(cfg.Scene.Environment); err != nil {
			if !errors.Is(err, shading.ErrUnsupported) {
				return nil, err
			}
			report.Warn(component, cfg.Scene.Environment, err.Error())
		}
	}

	built, err := assembly.Build(ctx, e.Host, snap, assembly.Options{
		TransformationBlur: cfg.Motion.TransformationBlur,
		Scale:              cfg.Scene.Scale,
		ExportLights:       cfg.Scene.ExportLights,
		Shading:            shadingOpts,
		Report:             report,
	})
	if err != nil {
		return nil, err
	}
	if err := built.AddTo(scene); err != nil {
		return nil, err
	}
	scene.Freeze()

	return &project.Project{
		Scene: scene,
		Frame: &project.Frame{
			Name:       "beauty",
			Camera:     cam.Name,
			ColorSpace: cfg.Output.ColorSpace,
			Width:      cfg.Output.Width,
			Height:     cfg.Output.Height,
		},
		Configurations: Configurations(cfg.Render),
	}, nil
}
