package export

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

// SceneNameToken is replaced by the scene name in output directories and
// file names.
const SceneNameToken = "<SceneName>"

// FrameName is the four-digit form of frame used in paths.
func FrameName(frame int) string {
	return fmt.Sprintf("%04d", frame)
}

// ExpandName substitutes the scene name and, for every '#', the frame name.
func ExpandName(pattern, sceneName string, frame int) string {
	s := strings.ReplaceAll(pattern, SceneNameToken, sceneName)
	return strings.ReplaceAll(s, "#", FrameName(frame))
}

// Layout is where one frame's files go. Refs are relative to Dir, as the
// project file refers to them.
type Layout struct {
	Dir         string
	Project     string
	GeometryDir string
	GeometryRef string
	TextureDir  string
	TextureRef  string
}

// NewLayout computes the layout of frame. Geometry is always per frame;
// textures are shared unless animated textures are on.
func NewLayout(dir, fileName, sceneName string, frame int, animatedTextures bool) Layout {
	dir = strings.ReplaceAll(dir, SceneNameToken, sceneName)
	frameName := FrameName(frame)

	l := Layout{
		Dir:         dir,
		Project:     filepath.Join(dir, ExpandName(fileName, sceneName, frame)),
		GeometryRef: path.Join(frameName, "geometry"),
		TextureRef:  "textures",
	}
	if animatedTextures {
		l.TextureRef = path.Join(frameName, "textures")
	}
	l.GeometryDir = filepath.Join(dir, filepath.FromSlash(l.GeometryRef))
	l.TextureDir = filepath.Join(dir, filepath.FromSlash(l.TextureRef))
	return l
}

// sceneBaseName strips directories and the extension from a scene name.
func sceneBaseName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "Untitled"
	}
	return base
}
