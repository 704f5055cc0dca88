package shading

import (
	"github.com/Faultbox/seedexport/internal/host"
	"github.com/Faultbox/seedexport/internal/naming"
	"github.com/Faultbox/seedexport/internal/project"
)

// EnvironmentModel is the environment node's model attribute.
type EnvironmentModel int

const (
	EnvConstant EnvironmentModel = iota
	EnvGradient
	EnvLatLongMap
	EnvMirrorBallMap
)

// ResolveEnvironment translates a host environment node into an
// environment EDF, an environment shader and the environment tying them
// together. It is meant for the scene scope.
func (r *Resolver) ResolveEnvironment(node string) (*project.Environment, error) {
	kind, err := r.host.Kind(node)
	if err != nil {
		return nil, err
	}
	if kind != host.KindEnvironment {
		return nil, &UnsupportedShaderError{Node: node, Kind: kind}
	}
	name, err := r.entityName(node)
	if err != nil {
		return nil, err
	}
	model, err := host.Int(r.host, node, "model")
	if err != nil {
		return nil, err
	}
	multiplier, err := host.FloatOr(r.host, node, "exitance_multiplier", 1)
	if err != nil {
		return nil, err
	}

	edf := naming.Join(name, "env_edf")
	_, err = r.scope.GetOrCreate(project.KindEnvironmentEDF, edf, func() (project.Entity, error) {
		return r.environmentEDF(node, name, edf, EnvironmentModel(model), multiplier)
	})
	if err != nil {
		return nil, err
	}

	shader := naming.Join(name, "env_shader")
	_, err = r.scope.GetOrCreate(project.KindEnvironmentShader, shader, func() (project.Entity, error) {
		return &project.EnvironmentShader{Name: shader, Model: "edf_environment_shader", EnvironmentEDF: edf}, nil
	})
	if err != nil {
		return nil, err
	}

	e, err := r.scope.GetOrCreate(project.KindEnvironment, name, func() (project.Entity, error) {
		return &project.Environment{
			Name:              name,
			Model:             "generic_environment",
			EnvironmentEDF:    edf,
			EnvironmentShader: shader,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return e.(*project.Environment), nil
}

func (r *Resolver) environmentEDF(node, owner, name string, model EnvironmentModel, multiplier float64) (*project.EnvironmentEDF, error) {
	edf := &project.EnvironmentEDF{Name: name}

	switch model {
	case EnvGradient:
		horizon, err := r.envColor(node, "gradient_horizon", "gradient_env_horizon_exitance", multiplier)
		if err != nil {
			return nil, err
		}
		zenith, err := r.envColor(node, "gradient_zenith", "gradient_env_zenith_exitance", multiplier)
		if err != nil {
			return nil, err
		}
		edf.Model = "gradient_environment_edf"
		edf.Params = []project.Param{
			{Name: "horizon_exitance", Value: horizon},
			{Name: "zenith_exitance", Value: zenith},
		}
		return edf, nil

	case EnvLatLongMap, EnvMirrorBallMap:
		attr, texture, edfModel := "latitude_longitude_exitance", naming.Join(owner, "latlong_edf_map"), "latlong_map_environment_edf"
		if model == EnvMirrorBallMap {
			attr, texture, edfModel = "mirror_ball_exitance", naming.Join(owner, "mirrorball_map_environment_edf"), "mirrorball_map_environment_edf"
		}
		src, connected, err := host.Connection(r.host, node, attr)
		if err != nil {
			return nil, err
		}
		srcKind := host.KindUnsupported
		if connected {
			if srcKind, err = r.host.Kind(src); err != nil {
				return nil, err
			}
		}
		if srcKind != host.KindFile {
			r.opts.Report.Warnf(component, node, "%s needs a file texture on %s, using a constant environment", edfModel, attr)
			break
		}
		inst, err := r.FileTexture(src, texture)
		if err != nil {
			return nil, err
		}
		edf.Model = edfModel
		edf.Params = []project.Param{{Name: "exitance", Value: inst}}
		if model == EnvLatLongMap {
			edf.Params = append(edf.Params,
				project.Param{Name: "horizontal_shift", Value: "0"},
				project.Param{Name: "vertical_shift", Value: "0"})
		}
		return edf, nil

	case EnvConstant:
	default:
		r.opts.Report.Warnf(component, node, "unknown environment model %d, using constant", model)
	}

	exitance, err := r.envColor(node, "constant_exitance", "constant_env_exitance", multiplier)
	if err != nil {
		return nil, err
	}
	edf.Model = "constant_environment_edf"
	edf.Params = []project.Param{{Name: "exitance", Value: exitance}}
	return edf, nil
}

func (r *Resolver) envColor(node, attr, name string, multiplier float64) (string, error) {
	c, err := host.Color(r.host, node, attr)
	if err != nil {
		return "", err
	}
	return r.Color(name, c, multiplier)
}
