package decode

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkingphoto-ai/ingest/internal/testutil"
)

func TestExtension(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"photo.jpg", "jpg"},
		{"photo.JPEG", "jpeg"},
		{"IMG_0001.HEIC", "heic"},
		{"archive.tar.gz", "gz"},
		{"noext", ""},
		{"trailing.", ""},
		{".hidden", "hidden"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Extension(tc.filename), tc.filename)
	}
}

func TestPathFor(t *testing.T) {
	assert.Equal(t, PathHeif, PathFor("a.heic"))
	assert.Equal(t, PathHeif, PathFor("a.HEIF"))
	assert.Equal(t, PathGeneric, PathFor("a.jpg"))
	assert.Equal(t, PathGeneric, PathFor("a.png"))
	assert.Equal(t, PathGeneric, PathFor("noext"))
	assert.Equal(t, PathGeneric, PathFor("a.webp"))
}

func TestImage_GenericFormats(t *testing.T) {
	src := testutil.NewPortrait(64, 48)
	for name, data := range map[string][]byte{
		"png":  testutil.EncodePNG(t, src),
		"jpeg": testutil.EncodeJPEG(t, src, 90),
	} {
		img, err := Image(data, PathGeneric)
		require.NoError(t, err, name)
		assert.Equal(t, 64, img.Bounds().Dx(), name)
		assert.Equal(t, 48, img.Bounds().Dy(), name)
	}
}

func TestImage_GarbageReturnsDecodeError(t *testing.T) {
	for _, path := range []Path{PathGeneric, PathHeif} {
		img, err := Image([]byte("not an image at all"), path)
		assert.Nil(t, img)
		require.Error(t, err)
		derr, ok := err.(*DecodeError)
		require.True(t, ok, "expected *DecodeError, got %T", err)
		assert.Equal(t, path, derr.Path)
		assert.Error(t, derr.Unwrap())
		assert.Contains(t, derr.Error(), path.String())
	}
}

func TestImage_EmptyInput(t *testing.T) {
	_, err := Image(nil, PathGeneric)
	assert.Error(t, err)
}

func TestCanonicalize_FlattensAlpha(t *testing.T) {
	out := Canonicalize(testutil.NewTranslucent(10, 10))
	require.NotNil(t, out)
	for i := 3; i < len(out.Pix); i += 4 {
		require.EqualValues(t, 0xFF, out.Pix[i], "alpha byte %d", i)
	}
	// Color channels kept as-is, not premultiplied down.
	got := out.NRGBAAt(5, 5)
	assert.Equal(t, color.NRGBA{R: 180, G: 40, B: 40, A: 255}, got)
}

func TestCanonicalize_Paletted(t *testing.T) {
	out := Canonicalize(testutil.NewPaletted(8, 8))
	require.NotNil(t, out)
	assert.Equal(t, 8, out.Bounds().Dx())
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, out.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 0, G: 0, B: 0, A: 255}, out.NRGBAAt(1, 0))
}

func TestCanonicalize_KeepsOpaqueInput(t *testing.T) {
	src := testutil.NewSolid(4, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	out := Canonicalize(src)
	assert.Equal(t, src.Pix, out.Pix)
}
