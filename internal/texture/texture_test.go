package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

// tgaFile builds a TGA file from a header and pixel bytes.
func tgaFile(imageType byte, w, h, depth int, descriptor byte, pixels []byte) []byte {
	hdr := make([]byte, tgaHeaderSize)
	hdr[2] = imageType
	hdr[12], hdr[13] = byte(w), byte(w>>8)
	hdr[14], hdr[15] = byte(h), byte(h>>8)
	hdr[16] = byte(depth)
	hdr[17] = descriptor
	return append(hdr, pixels...)
}

func TestDecodeTGA(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}
	half := color.NRGBA{G: 255, A: 128}

	tests := []struct {
		name string
		data []byte
		want map[image.Point]color.NRGBA
	}{
		{
			name: "raw bottom-up",
			// Row 0 in the file is the bottom row.
			data: tgaFile(tgaTrueColor, 2, 2, 24, 0, []byte{
				0, 0, 255, 0, 0, 255,
				255, 0, 0, 255, 0, 0,
			}),
			want: map[image.Point]color.NRGBA{{0, 1}: red, {1, 1}: red, {0, 0}: blue, {1, 0}: blue},
		},
		{
			name: "raw top-down with alpha",
			data: tgaFile(tgaTrueColor, 1, 2, 32, 0x20, []byte{
				0, 255, 0, 128,
				0, 0, 255, 255,
			}),
			want: map[image.Point]color.NRGBA{{0, 0}: half, {0, 1}: red},
		},
		{
			name: "rle run and literal",
			data: tgaFile(tgaTrueColorRLE, 3, 1, 24, 0x20, []byte{
				0x81, 0, 0, 255, // run of 2 red
				0x00, 255, 0, 0, // literal 1 blue
			}),
			want: map[image.Point]color.NRGBA{{0, 0}: red, {1, 0}: red, {2, 0}: blue},
		},
		{
			name: "grayscale",
			data: tgaFile(tgaGray, 2, 1, 8, 0x20, []byte{0, 200}),
			want: map[image.Point]color.NRGBA{
				{0, 0}: {A: 255},
				{1, 0}: {R: 200, G: 200, B: 200, A: 255},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := DecodeTGA(tt.data)
			require.NoError(t, err)
			nrgba := img.(*image.NRGBA)
			for p, want := range tt.want {
				assert.Equal(t, want, nrgba.NRGBAAt(p.X, p.Y), "pixel %v", p)
			}
		})
	}
}

func TestDecodeTGAErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{0, 0, 2}},
		{"color mapped", func() []byte {
			d := tgaFile(tgaTrueColor, 1, 1, 24, 0, []byte{0, 0, 0})
			d[1] = 1
			return d
		}()},
		{"unknown type", tgaFile(1, 1, 1, 8, 0, []byte{0})},
		{"16-bit", tgaFile(tgaTrueColor, 1, 1, 16, 0, []byte{0, 0})},
		{"empty", tgaFile(tgaTrueColor, 0, 0, 24, 0, nil)},
		{"truncated pixels", tgaFile(tgaTrueColor, 2, 2, 24, 0, []byte{1, 2, 3})},
		{"truncated packets", tgaFile(tgaTrueColorRLE, 4, 1, 24, 0, []byte{0x81, 0, 0, 255})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTGA(tt.data)
			assert.ErrorIs(t, err, ErrTGA)
		})
	}
}

func writeBMP(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func TestNativeConvert(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out")

	t.Run("tga", func(t *testing.T) {
		src := filepath.Join(dir, "wood.tga")
		require.NoError(t, os.WriteFile(src, tgaFile(tgaTrueColor, 1, 1, 24, 0, []byte{30, 20, 10}), 0644))

		out, err := (&Native{}).Convert(src, dest, false)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dest, "wood.png"), out)

		f, err := os.Open(out)
		require.NoError(t, err)
		defer f.Close()
		img, err := png.Decode(f)
		require.NoError(t, err)
		r, g, b, _ := img.At(0, 0).RGBA()
		assert.Equal(t, []uint32{10, 20, 30}, []uint32{r >> 8, g >> 8, b >> 8})
	})

	t.Run("bmp", func(t *testing.T) {
		src := filepath.Join(dir, "stone.bmp")
		writeBMP(t, src)
		data, err := os.ReadFile(src)
		require.NoError(t, err)
		assert.Equal(t, "bmp", Sniff("stone.dat", data))

		out, err := (&Native{}).Convert(src, dest, false)
		require.NoError(t, err)
		_, err = os.Stat(out)
		assert.NoError(t, err)
		_, err = os.Stat(out + ".tmp")
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("keeps existing output", func(t *testing.T) {
		src := filepath.Join(dir, "keep.tga")
		require.NoError(t, os.WriteFile(src, []byte("not an image"), 0644))
		existing := filepath.Join(dest, "keep.png")
		require.NoError(t, os.MkdirAll(dest, 0755))
		require.NoError(t, os.WriteFile(existing, []byte("old"), 0644))

		out, err := (&Native{}).Convert(src, dest, false)
		require.NoError(t, err)
		assert.Equal(t, existing, out)

		_, err = (&Native{}).Convert(src, dest, true)
		assert.ErrorIs(t, err, ErrTGA)
	})

	t.Run("unsupported", func(t *testing.T) {
		src := filepath.Join(dir, "notes.xyz")
		require.NoError(t, os.WriteFile(src, []byte("plain text"), 0644))
		_, err := (&Native{}).Convert(src, dest, true)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "wood.exr")
	require.NoError(t, os.WriteFile(src, []byte("exr"), 0644))

	out, err := Copy{}.Convert(src, filepath.Join(dir, "textures"), false)
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "exr", string(data))
}

func TestNewCommand(t *testing.T) {
	tests := []struct {
		name     string
		template string
		args     []string
		wantErr  bool
	}{
		{"simple", "maketx {src} -o {dest}", []string{"maketx", "{src}", "-o", "{dest}"}, false},
		{"quoted", `"/opt/my tools/maketx" --oiio {src} -o {dest}`, []string{"/opt/my tools/maketx", "--oiio", "{src}", "-o", "{dest}"}, false},
		{"empty", "", nil, true},
		{"no dest", "maketx {src}", nil, true},
		{"unbalanced quote", `maketx "{src} {dest}`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewCommand(tt.template, "")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.args, c.Args)
			assert.Equal(t, ".tx", c.Ext)
		})
	}
}

func TestCommandConvert(t *testing.T) {
	if _, err := exec.LookPath("cp"); err != nil {
		t.Skip("cp not available")
	}
	dir := t.TempDir()
	src := filepath.Join(dir, "my wood.png")
	require.NoError(t, os.WriteFile(src, []byte("png"), 0644))

	c, err := NewCommand("cp {src} {dest}", ".tex")
	require.NoError(t, err)
	out, err := c.Convert(src, filepath.Join(dir, "textures"), false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "textures", "my wood.tex"), out)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	_, err = c.Convert(filepath.Join(dir, "missing.png"), dir, true)
	assert.Error(t, err)
}

type countingConverter struct {
	calls int
	err   error
}

func (c *countingConverter) Convert(src, destDir string, overwrite bool) (string, error) {
	c.calls++
	return filepath.Join(destDir, filepath.Base(src)), c.err
}

func TestCache(t *testing.T) {
	inner := &countingConverter{}
	c := NewCache(inner)

	for i := 0; i < 3; i++ {
		out, err := c.Convert("tex/wood.png", "out", false)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("out", "wood.png"), out)
	}
	_, err := c.Convert("tex/wood.png", "other", false)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, 2, c.Len())

	failing := NewCache(&countingConverter{err: errors.New("boom")})
	_, err = failing.Convert("a.png", "out", false)
	assert.Error(t, err)
	_, err = failing.Convert("a.png", "out", false)
	assert.Error(t, err)
	assert.Equal(t, 1, failing.Converter.(*countingConverter).calls)
}

func TestNew(t *testing.T) {
	c, err := New("native", "")
	require.NoError(t, err)
	assert.IsType(t, &Native{}, c)

	c, err = New("none", "")
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = New("command", "maketx {src} -o {dest}")
	require.NoError(t, err)
	assert.IsType(t, &Command{}, c)

	_, err = New("command", "")
	assert.Error(t, err)
	_, err = New("magic", "")
	assert.Error(t, err)
}
