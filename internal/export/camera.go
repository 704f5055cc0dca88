package export

import (
	"github.com/Faultbox/seedexport/internal/markup"
	"github.com/Faultbox/seedexport/internal/project"
	"github.com/Faultbox/seedexport/internal/snapshot"
	"github.com/Faultbox/seedexport/pkg/math"
)

const inchToMeter = 0.02539999983236

// Camera models.
const (
	PinholeCamera  = "pinhole_camera"
	ThinLensCamera = "thinlens_camera"
)

// CameraEntity converts a captured camera. The film back is fitted to the
// output aspect ratio; thinLens forces the depth-of-field model.
func CameraEntity(c *snapshot.Camera, width, height int, scale float64, thinLens bool) *project.Camera {
	filmWidth, filmHeight := FilmDimensions(c.HorizontalAperture, c.VerticalAperture, width, height)

	cam := &project.Camera{Name: c.Name, Model: PinholeCamera}
	cam.Params = []project.Param{
		{Name: "film_dimensions", Value: markup.Float(filmWidth) + " " + markup.Float(filmHeight)},
		{Name: "focal_length", Value: markup.Float(c.FocalLength / 1000)},
	}
	if thinLens || c.DepthOfField {
		cam.Model = ThinLensCamera
		cam.Params = append(cam.Params,
			project.Param{Name: "focal_distance", Value: markup.Float(c.FocusDistance)},
			project.Param{Name: "f_stop", Value: markup.Float(c.FStop)},
			project.Param{Name: "diaphragm_blades", Value: "0"},
			project.Param{Name: "diaphragm_tilt_angle", Value: "0.0"})
	}

	s := math.UniformScale(scale)
	for _, m := range c.World {
		cam.Transforms = append(cam.Transforms, s.Mul(m))
	}
	return cam
}

// FilmDimensions returns the film back in meters for apertures in inches,
// keeping the wider side of the aperture and matching the image aspect.
func FilmDimensions(hAperture, vAperture float64, width, height int) (w, h float64) {
	imageAspect := float64(width) / float64(height)
	if imageAspect > hAperture/vAperture {
		w = hAperture * inchToMeter
		return w, w / imageAspect
	}
	h = vAperture * inchToMeter
	return h * imageAspect, h
}
