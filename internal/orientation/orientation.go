// Package orientation corrects the pixel rotation implied by a capture
// device's EXIF Orientation tag so images display upright.
package orientation

import (
	"bytes"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/rwcarlsen/goexif/exif"
)

// EXIF orientation codes handled by Apply. Codes 2, 4, 5 and 7 (the mirrored
// variants) are rare on phone cameras and are left untouched.
const (
	codeUpright    = 1
	codeRotate180  = 3
	codeRotatedCW  = 6 // needs a 90° clockwise correction
	codeRotatedCCW = 8 // needs a 90° counter-clockwise correction
)

// Read extracts the EXIF orientation code from the raw upload bytes.
// The second return value is false when the bytes carry no parseable EXIF
// block or no orientation tag. Read never fails hard: malformed metadata is
// treated the same as missing metadata.
func Read(raw []byte) (int, bool) {
	x, err := exif.Decode(bytes.NewReader(raw))
	if err != nil {
		return 0, false
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 0, false
	}
	code, err := tag.Int(0)
	if err != nil {
		return 0, false
	}
	return code, true
}

// Apply rotates img according to the EXIF orientation found in raw.
// Absent, unrecognized or unreadable metadata leaves the image unrotated;
// this function never fails.
func Apply(img *image.NRGBA, raw []byte) *image.NRGBA {
	code, ok := Read(raw)
	if !ok {
		return img
	}
	switch code {
	case codeUpright:
		return img
	case codeRotate180:
		return imaging.Rotate180(img)
	case codeRotatedCW:
		// imaging rotates counter-clockwise, so 270° CCW == 90° CW.
		return imaging.Rotate270(img)
	case codeRotatedCCW:
		return imaging.Rotate90(img)
	default:
		slog.Debug("ignoring unhandled EXIF orientation", "code", code)
		return img
	}
}
