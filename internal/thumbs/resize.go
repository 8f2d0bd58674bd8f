// Package thumbs generates photo thumbnails through a Postgres-backed job
// queue worked by a pool of goroutines.
package thumbs

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	// Register decoders for the upload formats we accept.
	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

// ThumbMaxEdge is the longest edge of a generated thumbnail, in pixels.
const ThumbMaxEdge = 480

// thumbJPEGQuality trades size for quality on grid views.
const thumbJPEGQuality = 82

// Resize decodes an image and scales it so its longest edge is at most
// ThumbMaxEdge, preserving aspect ratio. Images already within bounds are
// re-encoded without scaling. Returns the JPEG thumbnail and the source
// dimensions.
func Resize(data []byte) (thumb []byte, width, height int, err error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height = bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, 0, 0, fmt.Errorf("image has zero dimension")
	}

	dstW, dstH := thumbSize(width, height)

	var out image.Image = src
	if dstW != width || dstH != height {
		dst := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		out = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: thumbJPEGQuality}); err != nil {
		return nil, 0, 0, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), width, height, nil
}

// thumbSize scales (w, h) so the longest edge is ThumbMaxEdge, never
// upscaling and never collapsing an edge below 1.
func thumbSize(w, h int) (int, int) {
	longest := w
	if h > w {
		longest = h
	}
	if longest <= ThumbMaxEdge {
		return w, h
	}

	scale := float64(ThumbMaxEdge) / float64(longest)
	dstW := int(float64(w)*scale + 0.5)
	dstH := int(float64(h)*scale + 0.5)
	if dstW < 1 {
		dstW = 1
	}
	if dstH < 1 {
		dstH = 1
	}
	return dstW, dstH
}
