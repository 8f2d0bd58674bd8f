package thumbs

import (
	"bytes"
	"image"
	"image/color"
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
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestResize(t *testing.T) {
	t.Run("landscape scales to max edge", func(t *testing.T) {
		thumb, w, h, err := Resize(encodePNG(t, 1600, 900))
		require.NoError(t, err)
		assert.Equal(t, 1600, w)
		assert.Equal(t, 900, h)

		tw, th := decodeSize(t, thumb)
		assert.Equal(t, ThumbMaxEdge, tw)
		assert.Equal(t, 270, th)
	})

	t.Run("portrait scales on height", func(t *testing.T) {
		thumb, _, _, err := Resize(encodePNG(t, 600, 1200))
		require.NoError(t, err)

		tw, th := decodeSize(t, thumb)
		assert.Equal(t, ThumbMaxEdge, th)
		assert.Equal(t, 240, tw)
	})

	t.Run("small image is not upscaled", func(t *testing.T) {
		thumb, w, h, err := Resize(encodePNG(t, 320, 200))
		require.NoError(t, err)
		assert.Equal(t, 320, w)
		assert.Equal(t, 200, h)

		tw, th := decodeSize(t, thumb)
		assert.Equal(t, 320, tw)
		assert.Equal(t, 200, th)
	})

	t.Run("garbage input fails", func(t *testing.T) {
		_, _, _, err := Resize([]byte("not an image"))
		assert.Error(t, err)
	})
}

func TestThumbSize(t *testing.T) {
	cases := []struct {
		w, h         int
		wantW, wantH int
	}{
		{1600, 900, 480, 270},
		{900, 1600, 270, 480},
		{480, 480, 480, 480},
		{100, 100, 100, 100},
		{4800, 10, 480, 1},
	}
	for _, tc := range cases {
		gotW, gotH := thumbSize(tc.w, tc.h)
		assert.Equal(t, tc.wantW, gotW, "width for %dx%d", tc.w, tc.h)
		assert.Equal(t, tc.wantH, gotH, "height for %dx%d", tc.w, tc.h)
	}
}
