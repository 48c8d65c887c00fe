package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_ImplementsError(t *testing.T) {
	var err error = failure(KindFileTooLarge, "File too large (%.1fMB). Maximum size is %.0fMB.", 22.0, 20.0)
	assert.Equal(t, "File too large (22.0MB). Maximum size is 20MB.", err.Error())

	var perr *Error
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, KindFileTooLarge, perr.Kind)
}

func TestTroubleshootingTips_EveryKindCovered(t *testing.T) {
	kinds := []ErrorKind{
		KindFileTooLarge, KindUnsupportedFormat, KindImageTooSmall, KindProcessingFailure,
	}
	for _, kind := range kinds {
		tips := TroubleshootingTips(kind)
		assert.NotEmpty(t, tips, string(kind))
		for _, tip := range tips {
			assert.NotEmpty(t, tip, string(kind))
		}
	}
}

func TestTroubleshootingTips_KindSpecificContent(t *testing.T) {
	assert.Contains(t, TroubleshootingTips(KindUnsupportedFormat),
		"iPhone users: Go to Settings > Camera > Formats > Most Compatible")
	assert.Contains(t, TroubleshootingTips(KindFileTooLarge),
		"Use a photo editing app to compress the image")
	assert.Contains(t, TroubleshootingTips(KindImageTooSmall),
		"Use a higher resolution camera setting")
}

func TestTroubleshootingTips_UnknownKindFallsBack(t *testing.T) {
	tips := TroubleshootingTips(ErrorKind("no_such_kind"))
	assert.Equal(t, TroubleshootingTips(KindProcessingFailure), tips)
}

func TestGeneralTips(t *testing.T) {
	tips := GeneralTips()
	require.NotEmpty(t, tips)
	assert.Contains(t, tips, "Use a clear, front-facing photo with good lighting")
}
