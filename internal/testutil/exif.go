package testutil

import (
	"encoding/binary"
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

// JPEGWithOrientation encodes img as JPEG and splices in a minimal EXIF APP1
// segment carrying the given orientation code, the way mobile cameras tag
// rotated captures.
func JPEGWithOrientation(t *testing.T, img image.Image, orientationCode uint16) []byte {
	t.Helper()
	jpg := EncodeJPEG(t, img, 90)
	require.GreaterOrEqual(t, len(jpg), 2)
	require.Equal(t, []byte{0xFF, 0xD8}, jpg[:2], "missing JPEG SOI marker")

	app1 := exifApp1Segment(orientationCode)
	out := make([]byte, 0, len(jpg)+len(app1))
	out = append(out, jpg[:2]...)
	out = append(out, app1...)
	out = append(out, jpg[2:]...)
	return out
}

// exifApp1Segment builds an APP1 marker segment holding a little-endian TIFF
// block with a single IFD0 entry: tag 0x0112 (Orientation), type SHORT.
func exifApp1Segment(orientationCode uint16) []byte {
	tiff := make([]byte, 0, 26)
	tiff = append(tiff, 'I', 'I', 0x2A, 0x00) // little-endian, magic 42
	tiff = binary.LittleEndian.AppendUint32(tiff, 8)

	// IFD0: one entry.
	tiff = binary.LittleEndian.AppendUint16(tiff, 1)
	tiff = binary.LittleEndian.AppendUint16(tiff, 0x0112) // Orientation
	tiff = binary.LittleEndian.AppendUint16(tiff, 3)      // SHORT
	tiff = binary.LittleEndian.AppendUint32(tiff, 1)      // count
	tiff = binary.LittleEndian.AppendUint16(tiff, orientationCode)
	tiff = binary.LittleEndian.AppendUint16(tiff, 0) // value padding
	tiff = binary.LittleEndian.AppendUint32(tiff, 0) // no next IFD

	payload := append([]byte("Exif\x00\x00"), tiff...)

	seg := []byte{0xFF, 0xE1}
	seg = binary.BigEndian.AppendUint16(seg, uint16(len(payload)+2))
	return append(seg, payload...)
}
