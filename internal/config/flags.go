package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

// Flags holds command-line overrides bound to one command's flag set.
type Flags struct {
	config     *string
	debug      *bool
	output     *string
	fileName   *string
	camera     *string
	width      *int
	height     *int
	frames     *string
	samples    *int
	xformBlur  *bool
	deformBlur *bool
	cameraBlur *bool
	bestEffort *bool
	logFile    *string
}

// BindFlags registers the export overrides on fs.
func BindFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		config:     fs.String("config", "", "Path to config file (.yaml, .yml or .toml)"),
		debug:      fs.Bool("debug", false, "Enable debug logging"),
		output:     fs.String("out", "", "Output directory"),
		fileName:   fs.String("name", "", "Output file name pattern (<SceneName>, # for frame)"),
		camera:     fs.String("camera", "", "Camera node to render through"),
		width:      fs.Int("width", 0, "Output width"),
		height:     fs.Int("height", 0, "Output height"),
		frames:     fs.String("frames", "", "Frame range to export, e.g. 1-24"),
		samples:    fs.Int("samples", 0, "Motion samples"),
		xformBlur:  fs.Bool("transform-blur", false, "Enable transformation blur"),
		deformBlur: fs.Bool("deform-blur", false, "Enable deformation blur"),
		cameraBlur: fs.Bool("camera-blur", false, "Enable camera blur"),
		bestEffort: fs.Bool("best-effort", false, "Write output in place instead of through a temp file"),
		logFile:    fs.String("log", "", "Log file path"),
	}
}

// ConfigPath returns the explicit config path if provided via -config.
func (f *Flags) ConfigPath() string {
	if f == nil {
		return ""
	}
	return *f.config
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) error {
	if f == nil {
		return nil
	}
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if *f.output != "" {
		cfg.Output.Directory = *f.output
	}
	if *f.fileName != "" {
		cfg.Output.FileName = *f.fileName
	}
	if *f.camera != "" {
		cfg.Output.Camera = *f.camera
	}
	if *f.width > 0 {
		cfg.Output.Width = *f.width
	}
	if *f.height > 0 {
		cfg.Output.Height = *f.height
	}
	if *f.frames != "" {
		start, end, err := parseFrameRange(*f.frames)
		if err != nil {
			return err
		}
		cfg.Animation = AnimationConfig{Enabled: true, Start: start, End: end}
	}
	if *f.samples > 0 {
		cfg.Motion.Samples = *f.samples
	}
	if *f.xformBlur {
		cfg.Motion.TransformationBlur = true
	}
	if *f.deformBlur {
		cfg.Motion.DeformationBlur = true
	}
	if *f.cameraBlur {
		cfg.Motion.CameraBlur = true
	}
	if *f.bestEffort {
		cfg.Output.BestEffort = true
	}
	if *f.logFile != "" {
		cfg.Logging.LogFile = *f.logFile
	}
	return nil
}

// parseFrameRange parses "N" or "A-B".
func parseFrameRange(s string) (int, int, error) {
	startStr, endStr, found := strings.Cut(s, "-")
	start, err := strconv.Atoi(strings.TrimSpace(startStr))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: frame range %q", ErrInvalid, s)
	}
	if !found {
		return start, start, nil
	}
	end, err := strconv.Atoi(strings.TrimSpace(endStr))
	if err != nil || end < start {
		return 0, 0, fmt.Errorf("%w: frame range %q", ErrInvalid, s)
	}
	return start, end, nil
}
