package pipeline

import "fmt"

// ErrorKind classifies an ingestion failure into one of the closed set of
// user-actionable categories.
type ErrorKind string

const (
	// KindFileTooLarge: the upload exceeds the size ceiling.
	KindFileTooLarge ErrorKind = "file_too_large"
	// KindUnsupportedFormat: decoding failed on either decode path.
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	// KindImageTooSmall: the decoded image is below the dimension floor.
	KindImageTooSmall ErrorKind = "image_too_small"
	// KindProcessingFailure: any failure not classified by an earlier stage.
	KindProcessingFailure ErrorKind = "processing_failure"
)

// Error is the only error type Process returns. It pairs a classified kind
// with a plain-language message suitable for end users.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return e.Message }

// failure builds a classified pipeline error.
func failure(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// troubleshootingTips maps each error kind to its static remediation list.
var troubleshootingTips = map[ErrorKind][]string{
	KindFileTooLarge: {
		"Try reducing image quality in your camera settings",
		"Use a photo editing app to compress the image",
		"Take a new photo with lower resolution",
	},
	KindUnsupportedFormat: {
		"iPhone users: Go to Settings > Camera > Formats > Most Compatible",
		"Convert HEIC to JPG using your phone's editing app",
		"Try saving the image as JPG or PNG",
		"Use a different photo app to open and re-save",
		"Take a screenshot of the image and upload that",
	},
	KindImageTooSmall: {
		"Use a higher resolution camera setting",
		"Make sure the image isn't cropped too small",
		"Take a new photo instead of using an old low-res one",
	},
	KindProcessingFailure: {
		"Try refreshing the page and uploading again",
		"Make sure you have a stable internet connection",
		"Try a different photo",
		"Try using a different browser",
	},
}

// TroubleshootingTips returns the static remediation suggestions for a
// failure kind. Unknown kinds fall back to the generic processing tips.
func TroubleshootingTips(kind ErrorKind) []string {
	if tips, ok := troubleshootingTips[kind]; ok {
		return tips
	}
	return troubleshootingTips[KindProcessingFailure]
}

// GeneralTips returns the upload guidance shown regardless of outcome.
func GeneralTips() []string {
	return []string{
		"Use a clear, front-facing photo with good lighting",
		"Make sure the face is not covered or heavily shadowed",
		"JPG and PNG photos under 20MB work best",
		"Photos between 200x200 and 2048x2048 pixels need no conversion",
	}
}
