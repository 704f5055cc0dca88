package shading

import (
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/seedexport/internal/host"
	"github.com/Faultbox/seedexport/internal/naming"
	"github.com/Faultbox/seedexport/internal/project"
)

const textureModel = "disk_texture_2d"

// FileTexture adds a texture entity named name for the host file node and
// an instance named name+"_inst", returning the instance name. The image is
// converted on first use in this scope.
func (r *Resolver) FileTexture(file, name string) (string, error) {
	_, err := r.scope.GetOrCreate(project.KindTexture, name, func() (project.Entity, error) {
		src, err := r.textureSource(file)
		if err != nil {
			return nil, err
		}
		colorSpace, err := host.StringOr(r.host, file, "colorSpace", r.opts.ColorSpace)
		if err != nil {
			return nil, err
		}
		return &project.Texture{
			Name:       name,
			Model:      textureModel,
			ColorSpace: colorSpace,
			FileName:   r.convert(file, src),
		}, nil
	})
	if err != nil {
		return "", err
	}

	alphaMode := "alpha_channel"
	luminance, err := host.BoolOr(r.host, file, "alphaIsLuminance", false)
	if err != nil {
		return "", err
	}
	if luminance {
		alphaMode = "luminance"
	}
	return r.textureInstance(name, alphaMode)
}

func (r *Resolver) textureInstance(texture, alphaMode string) (string, error) {
	inst := naming.Join(texture, "inst")
	_, err := r.scope.GetOrCreate(project.KindTextureInstance, inst, func() (project.Entity, error) {
		return &project.TextureInstance{
			Name:    inst,
			Texture: texture,
			Params: []project.Param{
				{Name: "addressing_mode", Value: "wrap"},
				{Name: "filtering_mode", Value: "bilinear"},
				{Name: "alpha_mode", Value: alphaMode},
			},
		}, nil
	})
	return inst, err
}

// textureSource returns the image path for file at the current frame.
func (r *Resolver) textureSource(file string) (string, error) {
	src, err := host.String(r.host, file, "fileTextureName")
	if err != nil {
		return "", err
	}
	if src == "" {
		return "", host.NewQueryError(file, "fileTextureName", fmt.Errorf("%w: empty file name", host.ErrMissingAttribute))
	}

	animated, err := host.BoolOr(r.host, file, "useFrameExtension", false)
	if err != nil || !animated {
		return src, err
	}
	offset, err := host.FloatOr(r.host, file, "frameOffset", 0)
	if err != nil {
		return "", err
	}
	spliced, ok := SpliceFrame(src, r.opts.Frame+int(offset))
	if !ok {
		r.opts.Report.Warnf(component, file, "no frame number in %q, using it as is", src)
		return src, nil
	}
	return spliced, nil
}

// convert runs the texture converter and returns the path the project
// refers to. Conversion failures fall back to the source image.
func (r *Resolver) convert(file, src string) string {
	if r.opts.Converter == nil {
		return src
	}
	out, err := r.opts.Converter.Convert(src, r.opts.TextureDir, r.opts.OverwriteTextures)
	if err != nil {
		r.opts.Report.Warnf(component, file, "texture conversion failed, using source image: %v", err)
		return src
	}
	r.log.Debug("texture", zap.String("node", file), zap.String("src", src), zap.String("out", out))
	return path.Join(r.opts.TextureRef, filepath.Base(out))
}

// bake renders node.attr, fed by src, to an image and wraps it in a
// texture named after src.
func (r *Resolver) bake(node, attr, src string) (string, error) {
	owner, err := r.entityName(src)
	if err != nil {
		return "", err
	}
	name := naming.Join(owner, "texture")

	_, err = r.scope.GetOrCreate(project.KindTexture, name, func() (project.Entity, error) {
		dest := filepath.Join(r.opts.TextureDir, owner+".png")
		out, err := r.opts.Baker.Bake(node, attr, dest, r.opts.BakeResolution)
		if err != nil {
			return nil, fmt.Errorf("bake %s.%s: %w", node, attr, err)
		}
		r.log.Debug("baked", zap.String("plug", node+"."+attr), zap.String("out", out))
		return &project.Texture{
			Name:       name,
			Model:      textureModel,
			ColorSpace: r.opts.ColorSpace,
			FileName:   path.Join(r.opts.TextureRef, filepath.Base(out)),
		}, nil
	})
	if err != nil {
		return "", err
	}
	return r.textureInstance(name, "alpha_channel")
}

// SpliceFrame replaces the frame number in an image sequence file name
// ("wood.0001.png" or "wood.####.png") with frame, zero-padded to five
// digits. It reports false when the name has no frame field.
func SpliceFrame(name string, frame int) (string, bool) {
	dir, base := filepath.Split(name)
	parts := strings.Split(base, ".")
	if len(parts) < 3 {
		return name, false
	}
	for i := len(parts) - 2; i >= 1; i-- {
		if isFrameField(parts[i]) {
			parts[i] = fmt.Sprintf("%05d", frame)
			return dir + strings.Join(parts, "."), true
		}
	}
	return name, false
}

func isFrameField(s string) bool {
	if s == "" {
		return false
	}
	if strings.Trim(s, "#") == "" {
		return true
	}
	_, err := strconv.Atoi(s)
	return err == nil && !strings.HasPrefix(s, "-")
}
