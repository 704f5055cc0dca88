// Package config handles export settings loading and management.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is returned by Validate for settings the exporter cannot honor.
var ErrInvalid = errors.New("invalid config")

// Config holds all export settings.
type Config struct {
	Output    OutputConfig    `yaml:"output" toml:"output"`
	Motion    MotionConfig    `yaml:"motion" toml:"motion"`
	Animation AnimationConfig `yaml:"animation" toml:"animation"`
	Shading   ShadingConfig   `yaml:"shading" toml:"shading"`
	Scene     SceneConfig     `yaml:"scene" toml:"scene"`
	Render    RenderConfig    `yaml:"render" toml:"render"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

// OutputConfig controls where and how the project file is written.
type OutputConfig struct {
	Directory  string `yaml:"directory" toml:"directory"`
	FileName   string `yaml:"file_name" toml:"file_name"` // <SceneName> and # (frame) are substituted
	Camera     string `yaml:"camera" toml:"camera"`       // host camera node; empty picks the first camera
	ColorSpace string `yaml:"color_space" toml:"color_space"`
	Width      int    `yaml:"width" toml:"width"`
	Height     int    `yaml:"height" toml:"height"`
	BestEffort bool   `yaml:"best_effort" toml:"best_effort"` // write in place instead of tmp+rename
}

// MotionConfig selects the motion blur strategy.
type MotionConfig struct {
	TransformationBlur bool `yaml:"transformation_blur" toml:"transformation_blur"`
	DeformationBlur    bool `yaml:"deformation_blur" toml:"deformation_blur"`
	CameraBlur         bool `yaml:"camera_blur" toml:"camera_blur"`
	Samples            int  `yaml:"samples" toml:"samples"`
}

// AnyBlur reports whether any blur mode needs sub-frame samples.
func (m MotionConfig) AnyBlur() bool {
	return m.TransformationBlur || m.DeformationBlur || m.CameraBlur
}

// AnimationConfig holds the frame range.
type AnimationConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`
	Start   int  `yaml:"start" toml:"start"`
	End     int  `yaml:"end" toml:"end"`
}

// ShadingConfig holds material and texture translation settings.
type ShadingConfig struct {
	ConvertShadingNodes bool   `yaml:"convert_shading_nodes" toml:"convert_shading_nodes"`
	BakeResolution      int    `yaml:"bake_resolution" toml:"bake_resolution"`
	ConvertTextures     bool   `yaml:"convert_textures" toml:"convert_textures"`
	Converter           string `yaml:"converter" toml:"converter"` // native, command, copy or none
	ConverterCommand    string `yaml:"converter_command" toml:"converter_command"`
	OverwriteTextures   bool   `yaml:"overwrite_textures" toml:"overwrite_textures"`
	AnimatedTextures    bool   `yaml:"animated_textures" toml:"animated_textures"`
}

// SceneConfig holds scene-wide translation settings.
type SceneConfig struct {
	Scale           float64  `yaml:"scale" toml:"scale"`
	ExportLights    bool     `yaml:"export_lights" toml:"export_lights"`
	ThinLensDefault bool     `yaml:"thin_lens_default" toml:"thin_lens_default"`
	Environment     string   `yaml:"environment" toml:"environment"` // host environment node
	Exclude         []string `yaml:"exclude" toml:"exclude"`         // glob patterns on host paths
}

// RenderConfig holds the final render configuration.
type RenderConfig struct {
	CustomFinal    bool               `yaml:"custom_final" toml:"custom_final"`
	LightingEngine string             `yaml:"lighting_engine" toml:"lighting_engine"` // pt or drt
	MinSamples     int                `yaml:"min_samples" toml:"min_samples"`
	MaxSamples     int                `yaml:"max_samples" toml:"max_samples"`
	DRT            DRTConfig          `yaml:"drt" toml:"drt"`
	PT             PTConfig           `yaml:"pt" toml:"pt"`
	TileRenderer   TileRendererConfig `yaml:"tile_renderer" toml:"tile_renderer"`
}

// DRTConfig holds distribution ray tracer parameters.
type DRTConfig struct {
	DLBSDFSamples   int  `yaml:"dl_bsdf_samples" toml:"dl_bsdf_samples"`
	DLLightSamples  int  `yaml:"dl_light_samples" toml:"dl_light_samples"`
	EnableIBL       bool `yaml:"enable_ibl" toml:"enable_ibl"`
	IBLBSDFSamples  int  `yaml:"ibl_bsdf_samples" toml:"ibl_bsdf_samples"`
	IBLEnvSamples   int  `yaml:"ibl_env_samples" toml:"ibl_env_samples"`
	MaxPathLength   int  `yaml:"max_path_length" toml:"max_path_length"`
	RRMinPathLength int  `yaml:"rr_min_path_length" toml:"rr_min_path_length"`
}

// PTConfig holds path tracer parameters.
type PTConfig struct {
	DLLightSamples      int  `yaml:"dl_light_samples" toml:"dl_light_samples"`
	EnableCaustics      bool `yaml:"enable_caustics" toml:"enable_caustics"`
	EnableDL            bool `yaml:"enable_dl" toml:"enable_dl"`
	EnableIBL           bool `yaml:"enable_ibl" toml:"enable_ibl"`
	IBLBSDFSamples      int  `yaml:"ibl_bsdf_samples" toml:"ibl_bsdf_samples"`
	IBLEnvSamples       int  `yaml:"ibl_env_samples" toml:"ibl_env_samples"`
	MaxPathLength       int  `yaml:"max_path_length" toml:"max_path_length"`
	NextEventEstimation bool `yaml:"next_event_estimation" toml:"next_event_estimation"`
	RRMinPathLength     int  `yaml:"rr_min_path_length" toml:"rr_min_path_length"`
}

// TileRendererConfig holds generic tile renderer parameters.
type TileRendererConfig struct {
	FilterSize   int     `yaml:"filter_size" toml:"filter_size"`
	MinSamples   int     `yaml:"min_samples" toml:"min_samples"`
	MaxSamples   int     `yaml:"max_samples" toml:"max_samples"`
	MaxContrast  float64 `yaml:"max_contrast" toml:"max_contrast"`
	MaxVariation float64 `yaml:"max_variation" toml:"max_variation"`
	Sampler      string  `yaml:"sampler" toml:"sampler"` // uniform or adaptive
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Output: OutputConfig{
			Directory:  "export",
			FileName:   "<SceneName>.#.appleseed",
			ColorSpace: "srgb",
			Width:      1280,
			Height:     720,
		},
		Motion: MotionConfig{
			Samples: 2,
		},
		Shading: ShadingConfig{
			BakeResolution:  1024,
			ConvertTextures: true,
			Converter:       "native",
		},
		Scene: SceneConfig{
			Scale:        1,
			ExportLights: true,
		},
		Render: RenderConfig{
			LightingEngine: "pt",
			MinSamples:     1,
			MaxSamples:     16,
			DRT: DRTConfig{
				DLBSDFSamples:   1,
				DLLightSamples:  1,
				EnableIBL:       true,
				IBLBSDFSamples:  1,
				IBLEnvSamples:   1,
				MaxPathLength:   0,
				RRMinPathLength: 3,
			},
			PT: PTConfig{
				DLLightSamples:      1,
				EnableCaustics:      true,
				EnableDL:            true,
				EnableIBL:           true,
				IBLBSDFSamples:      1,
				IBLEnvSamples:       1,
				NextEventEstimation: true,
				RRMinPathLength:     3,
			},
			TileRenderer: TileRendererConfig{
				FilterSize:   2,
				MinSamples:   1,
				MaxSamples:   16,
				MaxContrast:  0.025,
				MaxVariation: 0.05,
				Sampler:      "uniform",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

var (
	colorSpaces = []string{"srgb", "linear_rgb", "spectral", "ciexyz"}
	converters  = []string{"native", "command", "copy", "none"}
)

// Validate checks settings that would otherwise fail deep inside an export.
func (c *Config) Validate() error {
	var problems []string

	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		problems = append(problems, fmt.Sprintf("resolution %dx%d", c.Output.Width, c.Output.Height))
	}
	if !oneOf(c.Output.ColorSpace, colorSpaces) {
		problems = append(problems, fmt.Sprintf("color space %q", c.Output.ColorSpace))
	}
	if c.Output.FileName == "" {
		problems = append(problems, "empty output file name")
	}
	if c.Scene.Scale <= 0 {
		problems = append(problems, fmt.Sprintf("scene scale %v", c.Scene.Scale))
	}
	if c.Animation.Enabled && c.Animation.End < c.Animation.Start {
		problems = append(problems, fmt.Sprintf("frame range %d-%d", c.Animation.Start, c.Animation.End))
	}
	if !oneOf(c.Shading.Converter, converters) {
		problems = append(problems, fmt.Sprintf("texture converter %q", c.Shading.Converter))
	}
	if c.Shading.Converter == "command" && strings.TrimSpace(c.Shading.ConverterCommand) == "" {
		problems = append(problems, "command converter without converter_command")
	}
	if c.Render.LightingEngine != "pt" && c.Render.LightingEngine != "drt" {
		problems = append(problems, fmt.Sprintf("lighting engine %q", c.Render.LightingEngine))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Frames returns the frames to export. currentFrame is used when the
// animation range is disabled.
func (c *Config) Frames(currentFrame int) []int {
	if !c.Animation.Enabled {
		return []int{currentFrame}
	}
	frames := make([]int, 0, c.Animation.End-c.Animation.Start+1)
	for f := c.Animation.Start; f <= c.Animation.End; f++ {
		frames = append(frames, f)
	}
	return frames
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
