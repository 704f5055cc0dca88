package memhost

import (
	"github.com/Faultbox/seedexport/internal/host"
	"github.com/Faultbox/seedexport/pkg/math"
)

var (
	black = math.Vec3{}
	white = math.Vec3{X: 1, Y: 1, Z: 1}
	gray  = math.Vec3{X: 0.5, Y: 0.5, Z: 0.5}
)

// defaults returns the attributes a freshly created host node of kind k
// carries, so scene documents only list what differs.
func defaults(k host.NodeKind) map[string]any {
	switch k {
	case host.KindTransform:
		return map[string]any{"visibility": true}
	case host.KindMesh:
		return map[string]any{
			"visibility":         true,
			"intermediateObject": false,
			"overrideEnabled":    false,
			"overrideVisibility": true,
		}
	case host.KindCamera:
		return map[string]any{
			"focalLength":            35.0,
			"horizontalFilmAperture": 1.417,
			"verticalFilmAperture":   0.945,
			"fStop":                  5.6,
			"focusDistance":          5.0,
			"depthOfField":           false,
		}
	case host.KindPointLight, host.KindDirectionalLight, host.KindAreaLight, host.KindAmbientLight:
		return map[string]any{"visibility": true, "color": white, "intensity": 1.0, "decayRate": 0}
	case host.KindSpotLight:
		return map[string]any{
			"visibility":    true,
			"color":         white,
			"intensity":     1.0,
			"decayRate":     0,
			"coneAngle":     40.0,
			"penumbraAngle": 0.0,
		}
	case host.KindLambert:
		return map[string]any{"color": gray, "transparency": black, "incandescence": black}
	case host.KindBlinn:
		return map[string]any{
			"color":         gray,
			"transparency":  black,
			"incandescence": black,
			"specularColor": gray,
			"eccentricity":  0.3,
		}
	case host.KindPhong:
		return map[string]any{
			"color":         gray,
			"transparency":  black,
			"incandescence": black,
			"specularColor": gray,
			"cosinePower":   20.0,
		}
	case host.KindSurfaceShader:
		return map[string]any{"outColor": black}
	case host.KindFile:
		return map[string]any{
			"useFrameExtension": false,
			"frameOffset":       0,
			"alphaIsLuminance":  false,
			"colorSpace":        "srgb",
		}
	case host.KindMaterial:
		return map[string]any{
			"enable_front_material":              true,
			"enable_back_material":               true,
			"duplicate_front_attributes_on_back": true,
		}
	case host.KindEnvironment:
		return map[string]any{
			"model":                       0,
			"constant_exitance":           black,
			"gradient_horizon":            black,
			"gradient_zenith":             black,
			"exitance_multiplier":         1.0,
			"latitude_longitude_exitance": black,
			"mirror_ball_exitance":        black,
		}
	}
	return nil
}
