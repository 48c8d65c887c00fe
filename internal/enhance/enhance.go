// Package enhance applies the mild fixed-factor quality nudges uploaded
// photos receive before downstream use.
//
// The three adjustments are independent and order-insensitive; a failure in
// any one of them keeps the pre-adjustment pixels and continues. Enhancement
// is cosmetic and must never abort ingestion.
package enhance

import (
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
)

// Config holds the multiplicative adjustment factors. A factor of 1.0
// disables the corresponding adjustment.
type Config struct {
	Sharpness  float64 `mapstructure:"sharpness"  yaml:"sharpness"  json:"sharpness"`
	Contrast   float64 `mapstructure:"contrast"   yaml:"contrast"   json:"contrast"`
	Saturation float64 `mapstructure:"saturation" yaml:"saturation" json:"saturation"`
}

// DefaultConfig returns the fixed corrective factors used for uploads.
func DefaultConfig() Config {
	return Config{
		Sharpness:  1.10,
		Contrast:   1.05,
		Saturation: 1.05,
	}
}

// Apply runs the configured adjustments on img and returns the result.
// Each adjustment falls back to its input on failure.
func Apply(img *image.NRGBA, cfg Config) *image.NRGBA {
	if cfg.Sharpness > 1.0 {
		img = applyOrKeep(img, "sharpness", func(in *image.NRGBA) *image.NRGBA {
			// imaging.Sharpen takes a gaussian sigma rather than a
			// multiplicative amount; scale the factor into a mild radius.
			return imaging.Sharpen(in, (cfg.Sharpness-1.0)*5)
		})
	}
	if cfg.Contrast > 1.0 {
		img = applyOrKeep(img, "contrast", func(in *image.NRGBA) *image.NRGBA {
			return imaging.AdjustContrast(in, (cfg.Contrast-1.0)*100)
		})
	}
	if cfg.Saturation > 1.0 {
		img = applyOrKeep(img, "saturation", func(in *image.NRGBA) *image.NRGBA {
			return imaging.AdjustSaturation(in, (cfg.Saturation-1.0)*100)
		})
	}
	return img
}

// applyOrKeep runs a single adjustment and returns its input unchanged if the
// adjustment panics or produces nothing. This makes the swallow-and-continue
// policy an explicit branch instead of an implicit side effect.
func applyOrKeep(in *image.NRGBA, op string, fn func(*image.NRGBA) *image.NRGBA) (out *image.NRGBA) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("enhancement step failed, keeping previous image", "op", op, "panic", r)
			out = in
		}
	}()
	out = fn(in)
	if out == nil {
		out = in
	}
	return out
}
