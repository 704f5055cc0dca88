package assembly

import (
	"github.com/Faultbox/seedexport/internal/host"
	"github.com/Faultbox/seedexport/internal/markup"
	"github.com/Faultbox/seedexport/internal/naming"
	"github.com/Faultbox/seedexport/internal/project"
	"github.com/Faultbox/seedexport/internal/snapshot"
)

// light converts a captured light to a renderer light. Its color becomes
// an exitance color entity with the intensity folded into the multiplier.
func (b *builder) light(g *group, l *snapshot.Light) error {
	var model string
	switch l.Kind {
	case host.KindPointLight:
		model = "point_light"
	case host.KindSpotLight:
		model = "spot_light"
	case host.KindDirectionalLight:
		model = "directional_light"
	default:
		b.opts.Report.Warnf(component, l.Path, "%s is not supported, skipped", l.Kind)
		return nil
	}
	if l.Decay != 0 {
		b.opts.Report.Warnf(component, l.Path, "decay rate %v ignored", l.Decay)
	}

	exitance, err := g.resolver.Color(naming.Join(l.Name, "exitance"), l.Color, l.Intensity)
	if err != nil {
		return err
	}
	params := []project.Param{{Name: "exitance", Value: exitance}}
	if l.Kind == host.KindSpotLight {
		params = append(params,
			project.Param{Name: "inner_angle", Value: markup.Float(l.ConeAngle)},
			project.Param{Name: "outer_angle", Value: markup.Float(l.ConeAngle + l.PenumbraAngle)})
	}

	return g.asm.Add(&project.Light{
		Name:      l.Name,
		Model:     model,
		Params:    params,
		Transform: g.toLocal.Mul(l.World),
	})
}
