// Package testutil generates synthetic images and encoded fixtures for
// pipeline tests.
package testutil

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
)

// NewSolid creates a solid-color NRGBA image.
func NewSolid(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}

// NewPortrait creates a gradient image with a darker oval blob roughly where
// a face would sit. It compresses well and survives lossy round-trips.
func NewPortrait(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(64 + (x+y)*128/(width+height))
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: 200, A: 255})
		}
	}
	// Oval "face" in the upper middle third.
	cx, cy := width/2, height/3
	rx, ry := width/6, height/5
	for y := cy - ry; y <= cy+ry; y++ {
		for x := cx - rx; x <= cx+rx; x++ {
			dx := float64(x-cx) / float64(rx)
			dy := float64(y-cy) / float64(ry)
			if dx*dx+dy*dy <= 1.0 && x >= 0 && y >= 0 && x < width && y < height {
				img.SetNRGBA(x, y, color.NRGBA{R: 224, G: 172, B: 140, A: 255})
			}
		}
	}
	return img
}

// NewHalves creates an image whose left half is one color and right half
// another, for verifying rotations on lossy formats.
func NewHalves(width, height int, left, right color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, image.Rect(0, 0, width/2, height), &image.Uniform{left}, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(width/2, 0, width, height), &image.Uniform{right}, image.Point{}, draw.Src)
	return img
}

// NewTranslucent creates an NRGBA image with a non-opaque alpha channel.
func NewTranslucent(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 180, G: 40, B: 40, A: 128})
		}
	}
	return img
}

// NewPaletted creates a two-color paletted image.
func NewPaletted(width, height int) *image.Paletted {
	palette := color.Palette{color.White, color.Black}
	img := image.NewPaletted(image.Rect(0, 0, width, height), palette)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetColorIndex(x, y, uint8((x+y)%2))
		}
	}
	return img
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

// EncodeJPEG encodes img as JPEG bytes at the given quality.
func EncodeJPEG(t *testing.T, img image.Image, quality int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)))
	return buf.Bytes()
}
