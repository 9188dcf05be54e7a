package avatars

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func encodeGIF(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestNormalize_AlwaysSquare200(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"landscape png", encodePNG(t, 640, 240)},
		{"portrait png", encodePNG(t, 90, 700)},
		{"tiny png", encodePNG(t, 3, 2)},
		{"exact png", encodePNG(t, Size, Size)},
		{"jpeg", encodeJPEG(t, 1024, 768)},
		{"gif", encodeGIF(t, 50, 120)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Normalize(tt.raw)
			require.NoError(t, err)

			cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
			require.NoError(t, err)
			assert.Equal(t, "png", format)
			assert.Equal(t, Size, cfg.Width)
			assert.Equal(t, Size, cfg.Height)
		})
	}
}

func TestNormalize_RejectsGarbage(t *testing.T) {
	_, err := Normalize([]byte("definitely not an image"))
	assert.Error(t, err)

	_, err = Normalize(nil)
	assert.Error(t, err)
}

func TestCoverRect_CentersSquare(t *testing.T) {
	assert.Equal(t, image.Rect(20, 0, 80, 60), coverRect(image.Rect(0, 0, 100, 60)))
	assert.Equal(t, image.Rect(0, 15, 30, 45), coverRect(image.Rect(0, 0, 30, 60)))
	assert.Equal(t, image.Rect(12, 10, 17, 15), coverRect(image.Rect(10, 10, 19, 15)))
}

func TestIsImage(t *testing.T) {
	png := encodePNG(t, 4, 4)

	assert.True(t, IsImage("image/png", png))
	assert.True(t, IsImage("IMAGE/JPEG", png))
	assert.False(t, IsImage("application/octet-stream", png))
	assert.False(t, IsImage("image/png", []byte("%PDF-1.4 not an image")))
	assert.False(t, IsImage("image/png", nil))
	assert.False(t, IsImage("", png))
}
