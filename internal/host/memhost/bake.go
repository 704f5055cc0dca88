package memhost

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/Faultbox/seedexport/internal/host"
	"github.com/Faultbox/seedexport/pkg/math"
)

// FlatBaker bakes a shading plug to a single-color PNG. The color is the
// evaluated output of the node feeding the plug, or the plug's own value
// when nothing is connected.
type FlatBaker struct {
	Scene *Scene
}

// Bake implements host.Baker.
func (b *FlatBaker) Bake(node, attr, dest string, resolution int) (string, error) {
	if resolution <= 0 {
		return "", fmt.Errorf("bake %s.%s: resolution %d", node, attr, resolution)
	}
	c, err := b.evaluate(node, attr)
	if err != nil {
		return "", err
	}

	img := image.NewNRGBA(image.Rect(0, 0, resolution, resolution))
	fill := color.NRGBA{R: channel(c.X), G: channel(c.Y), B: channel(c.Z), A: 255}
	for y := 0; y < resolution; y++ {
		for x := 0; x < resolution; x++ {
			img.SetNRGBA(x, y, fill)
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", err
	}
	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("bake %s.%s: %w", node, attr, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return dest, nil
}

func (b *FlatBaker) evaluate(node, attr string) (math.Vec3, error) {
	src, ok, err := host.Connection(b.Scene, node, attr)
	if err != nil {
		return math.Vec3{}, err
	}
	if !ok {
		return host.Color(b.Scene, node, attr)
	}
	for _, out := range []string{"outColor", "color"} {
		c, err := host.Color(b.Scene, src, out)
		if err == nil {
			return c, nil
		}
	}
	return gray, nil
}

func channel(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
