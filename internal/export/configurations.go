package export

import (
	"github.com/Faultbox/seedexport/internal/config"
	"github.com/Faultbox/seedexport/internal/markup"
	"github.com/Faultbox/seedexport/internal/project"
)

// Configurations returns the interactive and final render configurations.
// The final one carries explicit settings only with CustomFinal.
func Configurations(r config.RenderConfig) []*project.Configuration {
	interactive := &project.Configuration{Name: "interactive", Base: "base_interactive"}
	final := &project.Configuration{Name: "final", Base: "base_final"}
	if !r.CustomFinal {
		return []*project.Configuration{interactive, final}
	}

	final.Params = []project.Param{
		{Name: "lighting_engine", Value: r.LightingEngine},
		{Name: "min_samples", Value: markup.Int(r.MinSamples)},
		{Name: "max_samples", Value: markup.Int(r.MaxSamples)},
	}
	final.Groups = []project.ParamGroup{
		{Name: "drt", Params: []project.Param{
			{Name: "dl_bsdf_samples", Value: markup.Int(r.DRT.DLBSDFSamples)},
			{Name: "dl_light_samples", Value: markup.Int(r.DRT.DLLightSamples)},
			{Name: "enable_ibl", Value: markup.Bool(r.DRT.EnableIBL)},
			{Name: "ibl_bsdf_samples", Value: markup.Int(r.DRT.IBLBSDFSamples)},
			{Name: "ibl_env_samples", Value: markup.Int(r.DRT.IBLEnvSamples)},
			{Name: "max_path_length", Value: markup.Int(r.DRT.MaxPathLength)},
			{Name: "rr_min_path_length", Value: markup.Int(r.DRT.RRMinPathLength)},
		}},
		{Name: "pt", Params: []project.Param{
			{Name: "dl_light_samples", Value: markup.Int(r.PT.DLLightSamples)},
			{Name: "enable_caustics", Value: markup.Bool(r.PT.EnableCaustics)},
			{Name: "enable_dl", Value: markup.Bool(r.PT.EnableDL)},
			{Name: "enable_ibl", Value: markup.Bool(r.PT.EnableIBL)},
			{Name: "ibl_bsdf_samples", Value: markup.Int(r.PT.IBLBSDFSamples)},
			{Name: "ibl_env_samples", Value: markup.Int(r.PT.IBLEnvSamples)},
			{Name: "max_path_length", Value: markup.Int(r.PT.MaxPathLength)},
			{Name: "next_event_estimation", Value: markup.Bool(r.PT.NextEventEstimation)},
			{Name: "rr_min_path_length", Value: markup.Int(r.PT.RRMinPathLength)},
		}},
		{Name: "generic_tile_renderer", Params: []project.Param{
			{Name: "filter_size", Value: markup.Int(r.TileRenderer.FilterSize)},
			{Name: "sampler", Value: r.TileRenderer.Sampler},
			{Name: "min_samples", Value: markup.Int(r.TileRenderer.MinSamples)},
			{Name: "max_samples", Value: markup.Int(r.TileRenderer.MaxSamples)},
			{Name: "max_contrast", Value: markup.Float(r.TileRenderer.MaxContrast)},
			{Name: "max_variation", Value: markup.Float(r.TileRenderer.MaxVariation)},
		}},
	}
	return []*project.Configuration{interactive, final}
}
