// Package decode turns raw upload bytes into a canonical in-memory raster.
//
// The decode path is selected once from the declared file extension: HEIC and
// HEIF go through the dedicated HEIF decoder, everything else (including
// files with no extension at all) goes through the registered stdlib and
// x/image decoders.
package decode

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/adrium/goheif"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Path identifies which decoder family handles an upload.
type Path int

const (
	// PathGeneric uses the registered image.Decode decoders
	// (JPEG, PNG, GIF, BMP, TIFF, WebP).
	PathGeneric Path = iota
	// PathHeif uses the dedicated HEIF/HEIC decoder.
	PathHeif
)

func (p Path) String() string {
	if p == PathHeif {
		return "heif"
	}
	return "generic"
}

// DecodeError wraps a decoder failure together with the path that produced it.
type DecodeError struct {
	Path Path
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode (%s path): %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Extension returns the lower-cased filename suffix after the last dot,
// without the dot. Filenames without a dot yield "".
func Extension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

// PathFor selects the decode path for the given filename. Only the declared
// extension is consulted; unknown or missing extensions fall through to the
// generic path.
func PathFor(filename string) Path {
	switch Extension(filename) {
	case "heic", "heif":
		return PathHeif
	default:
		return PathGeneric
	}
}

// Image decodes the raw bytes using the given path.
func Image(data []byte, path Path) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	if path == PathHeif {
		img, err = goheif.Decode(bytes.NewReader(data))
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return img, nil
}

// Canonicalize converts any decoded image (paletted, grayscale, alpha,
// premultiplied) into a fully opaque NRGBA raster. Alpha is dropped rather
// than composited, matching a plain three-channel conversion.
func Canonicalize(img image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xFF
	}
	return out
}
