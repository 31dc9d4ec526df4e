package storage

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageProcessor_Dimensions(t *testing.T) {
	p := NewImageProcessor()

	w, h, format, err := p.Dimensions(pngFixture(t, 40, 20))
	require.NoError(t, err)
	assert.Equal(t, 40, w)
	assert.Equal(t, 20, h)
	assert.Equal(t, "png", format)

	_, _, _, err = p.Dimensions([]byte("<html></html>"))
	assert.Error(t, err)
}

func TestImageProcessor_ProcessImage(t *testing.T) {
	p := &ImageProcessor{
		Variants: []Variant{{Name: "small", Size: 10}, {Name: "tiny", Size: 4}},
		Quality:  80,
	}

	out, err := p.ProcessImage(pngFixture(t, 40, 20))
	require.NoError(t, err)
	require.Len(t, out, 2)

	for name, want := range map[string][2]int{"small": {10, 5}, "tiny": {4, 2}} {
		cfg, format, err := image.DecodeConfig(bytes.NewReader(out[name]))
		require.NoError(t, err, name)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, want[0], cfg.Width, name)
		assert.Equal(t, want[1], cfg.Height, name)
	}
}
