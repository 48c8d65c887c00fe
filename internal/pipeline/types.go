package pipeline

import (
	"image"

	"github.com/talkingphoto-ai/ingest/internal/facedet"
)

// UploadedBlob is a caller-owned upload: raw bytes, the original filename
// (used only to infer the declared extension) and the declared size in
// bytes. A zero Size falls back to len(Data).
type UploadedBlob struct {
	Data     []byte
	Filename string
	Size     int64
}

// declaredSize returns the size used by the upload gate.
func (b UploadedBlob) declaredSize() int64 {
	if b.Size > 0 {
		return b.Size
	}
	return int64(len(b.Data))
}

// Result is a successful ingestion outcome: the normalized image plus its
// diagnostic report.
//
// The image is guaranteed opaque three-channel NRGBA, upright, with both
// dimensions inside the configured [min, max] window, enhancement already
// applied, and re-encodable as quality-85 JPEG without further conversion.
type Result struct {
	Image       *image.NRGBA
	Diagnostics Diagnostics
}

// Diagnostics is the informational record attached to a successful outcome.
type Diagnostics struct {
	OriginalSizeMB float64            `json:"original_size_mb"`
	FinalSizeMB    float64            `json:"final_size_mb"`
	Format         string             `json:"format"`
	Width          int                `json:"width"`
	Height         int                `json:"height"`
	Face           facedet.Assessment `json:"face"`
}

// Stage identifies a pipeline stage for progress reporting.
type Stage string

// Pipeline stages in execution order.
const (
	StageSizeGate    Stage = "size_gate"
	StageDecode      Stage = "decode"
	StageOrientation Stage = "orientation"
	StageDimensions  Stage = "dimensions"
	StageEnhance     Stage = "enhance"
	StageFace        Stage = "face"
	StageEncode      Stage = "encode"
)

// stageOrder drives fractional progress reporting.
var stageOrder = []Stage{
	StageSizeGate, StageDecode, StageOrientation, StageDimensions,
	StageEnhance, StageFace, StageEncode,
}

// ProgressFunc receives a stage name and a completion fraction in [0,1]
// after each stage finishes. Callbacks run synchronously on the processing
// goroutine and should return quickly.
type ProgressFunc func(stage Stage, fraction float64)

// FaceFinder is the face-presence collaborator consumed by the pipeline.
// Implementations must be safe for concurrent use.
type FaceFinder interface {
	Assess(img image.Image) (facedet.Assessment, error)
}
