package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// ErrTGA is wrapped by every TGA decoding error.
var ErrTGA = errors.New("tga")

// TGA image types.
const (
	tgaTrueColor    = 2
	tgaGray         = 3
	tgaTrueColorRLE = 10
	tgaGrayRLE      = 11
)

const tgaHeaderSize = 18

type tgaHeader struct {
	imageType   byte
	width       int
	height      int
	depth       int // bits per pixel
	topToBottom bool
	pixels      int // offset of the pixel data
}

func parseTGAHeader(data []byte) (tgaHeader, error) {
	if len(data) < tgaHeaderSize {
		return tgaHeader{}, fmt.Errorf("%w: header truncated", ErrTGA)
	}
	h := tgaHeader{
		imageType:   data[2],
		width:       int(data[12]) | int(data[13])<<8,
		height:      int(data[14]) | int(data[15])<<8,
		depth:       int(data[16]),
		topToBottom: data[17]&0x20 != 0,
		pixels:      tgaHeaderSize + int(data[0]),
	}

	if data[1] != 0 {
		return h, fmt.Errorf("%w: color-mapped images are not supported", ErrTGA)
	}
	switch h.imageType {
	case tgaTrueColor, tgaTrueColorRLE:
		if h.depth != 24 && h.depth != 32 {
			return h, fmt.Errorf("%w: %d-bit true-color", ErrTGA, h.depth)
		}
	case tgaGray, tgaGrayRLE:
		if h.depth != 8 {
			return h, fmt.Errorf("%w: %d-bit grayscale", ErrTGA, h.depth)
		}
	default:
		return h, fmt.Errorf("%w: image type %d", ErrTGA, h.imageType)
	}
	if h.width == 0 || h.height == 0 {
		return h, fmt.Errorf("%w: empty image", ErrTGA)
	}
	if h.pixels > len(data) {
		return h, fmt.Errorf("%w: image id truncated", ErrTGA)
	}
	return h, nil
}

// DecodeTGA decodes a true-color or grayscale TGA image, raw or run-length
// encoded. Alpha is kept unpremultiplied.
func DecodeTGA(data []byte) (image.Image, error) {
	h, err := parseTGAHeader(data)
	if err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, h.width, h.height))
	d := tgaDecoder{h: h, img: img, src: data[h.pixels:], size: h.depth / 8}

	if h.imageType == tgaTrueColorRLE || h.imageType == tgaGrayRLE {
		err = d.rle()
	} else {
		err = d.raw()
	}
	if err != nil {
		return nil, err
	}
	return img, nil
}

type tgaDecoder struct {
	h    tgaHeader
	img  *image.NRGBA
	src  []byte
	pos  int
	size int // bytes per pixel
	n    int // pixels written
}

// next reads one pixel value from the source.
func (d *tgaDecoder) next() (color.NRGBA, error) {
	if d.pos+d.size > len(d.src) {
		return color.NRGBA{}, fmt.Errorf("%w: pixel data truncated at pixel %d", ErrTGA, d.n)
	}
	p := d.src[d.pos : d.pos+d.size]
	d.pos += d.size

	switch d.size {
	case 1:
		return color.NRGBA{R: p[0], G: p[0], B: p[0], A: 255}, nil
	case 4:
		return color.NRGBA{R: p[2], G: p[1], B: p[0], A: p[3]}, nil
	}
	return color.NRGBA{R: p[2], G: p[1], B: p[0], A: 255}, nil
}

// put stores c at the next pixel in file order.
func (d *tgaDecoder) put(c color.NRGBA) {
	x, y := d.n%d.h.width, d.n/d.h.width
	if !d.h.topToBottom {
		y = d.h.height - 1 - y
	}
	d.img.SetNRGBA(x, y, c)
	d.n++
}

func (d *tgaDecoder) raw() error {
	total := d.h.width * d.h.height
	for d.n < total {
		c, err := d.next()
		if err != nil {
			return err
		}
		d.put(c)
	}
	return nil
}

// rle decodes packets: the high bit marks a run of one repeated pixel,
// otherwise a literal group follows. The low seven bits hold count-1.
func (d *tgaDecoder) rle() error {
	total := d.h.width * d.h.height
	for d.n < total {
		if d.pos >= len(d.src) {
			return fmt.Errorf("%w: packet data truncated at pixel %d", ErrTGA, d.n)
		}
		packet := d.src[d.pos]
		d.pos++
		count := min(int(packet&0x7f)+1, total-d.n)

		if packet&0x80 != 0 {
			c, err := d.next()
			if err != nil {
				return err
			}
			for i := 0; i < count; i++ {
				d.put(c)
			}
			continue
		}
		for i := 0; i < count; i++ {
			c, err := d.next()
			if err != nil {
				return err
			}
			d.put(c)
		}
	}
	return nil
}
