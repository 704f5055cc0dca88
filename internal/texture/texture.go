// Package texture turns source images into files the renderer reads.
package texture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/seedexport/internal/logger"
)

const component = "texture"

// ErrUnsupportedFormat is returned for source images no decoder handles.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// Converter converts the image at src into destDir and returns the path
// of the written file. With overwrite unset an existing output is reused.
type Converter interface {
	Convert(src, destDir string, overwrite bool) (string, error)
}

// New returns the converter called name: native, command (which needs
// command), copy or none. None returns a nil Converter: sources are
// referenced where they are.
func New(name, command string) (Converter, error) {
	switch name {
	case "native":
		return &Native{}, nil
	case "command":
		c, err := NewCommand(command, "")
		if err != nil {
			return nil, err
		}
		return c, nil
	case "copy":
		return Copy{}, nil
	case "none", "":
		return nil, nil
	}
	return nil, fmt.Errorf("unknown texture converter %q", name)
}

// Copy places the source image into destDir unchanged.
type Copy struct{}

// Convert implements Converter.
func (Copy) Convert(src, destDir string, overwrite bool) (string, error) {
	dest := filepath.Join(destDir, filepath.Base(src))
	if skip(dest, overwrite) {
		return dest, nil
	}

	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	err = writeAtomic(dest, func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("copy %s: %w", src, err)
	}
	return dest, nil
}

// skip reports whether an existing output can be reused.
func skip(dest string, overwrite bool) bool {
	if overwrite {
		return false
	}
	if _, err := os.Stat(dest); err == nil {
		logger.Named(component).Debug("reusing " + dest)
		return true
	}
	return false
}

// withExt replaces src's extension and moves it into destDir.
func withExt(src, destDir, ext string) string {
	base := filepath.Base(src)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(destDir, base+ext)
}

// writeAtomic writes dest through a temporary file renamed into place.
func writeAtomic(dest string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
