package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/Faultbox/seedexport/internal/logger"
)

// Native decodes source images in process and writes them as PNG.
// PNG sources are copied as they are.
type Native struct{}

// Convert implements Converter.
func (n *Native) Convert(src, destDir string, overwrite bool) (string, error) {
	dest := withExt(src, destDir, ".png")
	if skip(dest, overwrite) {
		return dest, nil
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}
	format := Sniff(src, data)

	if format == "png" {
		err = writeAtomic(dest, func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		})
	} else {
		var img image.Image
		if img, err = Decode(format, data); err != nil {
			return "", fmt.Errorf("convert %s: %w", src, err)
		}
		err = writeAtomic(dest, func(w io.Writer) error {
			return png.Encode(w, img)
		})
	}
	if err != nil {
		return "", fmt.Errorf("convert %s: %w", src, err)
	}

	logger.Named(component).Debug("converted",
		zap.String("src", src),
		zap.String("format", format),
		zap.String("dest", dest))
	return dest, nil
}

// Sniff names the image format of data: the detected type's extension, or
// for formats without a signature such as TGA the file extension.
func Sniff(name string, data []byte) string {
	kind, err := filetype.Match(data)
	if err == nil && kind != filetype.Unknown {
		if kind.Extension == "tif" {
			return "tiff"
		}
		return kind.Extension
	}
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// Decode decodes data in the named format.
func Decode(format string, data []byte) (image.Image, error) {
	r := bytes.NewReader(data)
	switch format {
	case "png":
		return png.Decode(r)
	case "jpg", "jpeg":
		return jpeg.Decode(r)
	case "gif":
		return gif.Decode(r)
	case "bmp":
		return bmp.Decode(r)
	case "tif", "tiff":
		return tiff.Decode(r)
	case "webp":
		return webp.Decode(r)
	case "tga":
		return DecodeTGA(data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}
