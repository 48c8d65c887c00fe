// Package pipeline validates, decodes, normalizes and quality-scores
// uploaded photos.
//
// Process is a pure function of the blob bytes: no ambient state, no
// network, no filesystem. Every failure comes back as a classified *Error;
// Process never panics. Cosmetic stages (orientation, enhancement, face
// detection) degrade gracefully and never abort the call.
package pipeline

import (
	"fmt"
	"image"
	"log/slog"
	"math"

	"github.com/disintegration/imaging"

	"github.com/talkingphoto-ai/ingest/internal/common"
	"github.com/talkingphoto-ai/ingest/internal/decode"
	"github.com/talkingphoto-ai/ingest/internal/enhance"
	"github.com/talkingphoto-ai/ingest/internal/facedet"
	"github.com/talkingphoto-ai/ingest/internal/mempool"
	"github.com/talkingphoto-ai/ingest/internal/orientation"
)

const bytesPerMB = 1024 * 1024

// Pipeline ingests uploaded photo blobs. Safe for concurrent use: each call
// operates on its own buffers and the face finder is required to be
// reentrant.
type Pipeline struct {
	cfg   Config
	faces FaceFinder
}

// New builds a pipeline with the default policy and cascade lookup.
func New() (*Pipeline, error) {
	return NewBuilder().Build()
}

// Config returns a copy of the active policy.
func (p *Pipeline) Config() Config { return p.cfg }

// Process runs the full ingestion pipeline on one upload.
// The returned error, when non-nil, is always a classified *Error.
func (p *Pipeline) Process(blob UploadedBlob) (*Result, error) {
	return p.ProcessWithProgress(blob, nil)
}

// ProcessWithProgress is Process with a per-stage progress callback.
// A nil callback disables reporting.
func (p *Pipeline) ProcessWithProgress(blob UploadedBlob, progress ProgressFunc) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("unexpected panic in ingestion pipeline", "panic", r, "filename", blob.Filename)
			res = nil
			err = failure(KindProcessingFailure, "Processing failed: %v", r)
		}
	}()

	report := func(idx int) {
		if progress != nil {
			progress(stageOrder[idx], float64(idx+1)/float64(len(stageOrder)))
		}
	}
	timer := common.NewNamedTimer("process")

	// Stage 1: size gate, before any decode work.
	originalMB := float64(blob.declaredSize()) / bytesPerMB
	if originalMB > p.cfg.MaxFileSizeMB {
		return nil, failure(KindFileTooLarge,
			"File too large (%.1fMB). Maximum size is %.0fMB.", originalMB, p.cfg.MaxFileSizeMB)
	}
	report(0)

	// Stage 2: format-aware decode and color canonicalization.
	img, derr := p.decodeStage(blob)
	if derr != nil {
		return nil, derr
	}
	report(1)

	// Stage 3: EXIF orientation fix. Never fatal.
	img = orientation.Apply(img, blob.Data)
	report(2)

	// Stage 4: dimension policy.
	img, derr = p.dimensionStage(img)
	if derr != nil {
		return nil, derr
	}
	report(3)

	// Stage 5: enhancement nudges. Never fatal.
	img = enhance.Apply(img, p.cfg.Enhance)
	report(4)

	// Stage 6: face-presence assessment. Never fatal.
	face := p.faceStage(img)
	report(5)

	// Stage 7: diagnostic re-encode and report assembly.
	finalMB, eerr := p.encodedSizeMB(img)
	if eerr != nil {
		return nil, failure(KindProcessingFailure, "Processing failed: %v", eerr)
	}
	report(6)

	bounds := img.Bounds()
	res = &Result{
		Image: img,
		Diagnostics: Diagnostics{
			OriginalSizeMB: originalMB,
			FinalSizeMB:    finalMB,
			Format:         formatTag(blob.Filename),
			Width:          bounds.Dx(),
			Height:         bounds.Dy(),
			Face:           face,
		},
	}
	slog.Debug("upload processed",
		"filename", blob.Filename,
		"format", res.Diagnostics.Format,
		"dimensions", fmt.Sprintf("%dx%d", res.Diagnostics.Width, res.Diagnostics.Height),
		"faces", face.FaceCount,
		"duration", timer.Stop())
	return res, nil
}

// decodeStage decodes the blob on the path selected by its extension and
// canonicalizes the color mode.
func (p *Pipeline) decodeStage(blob UploadedBlob) (*image.NRGBA, *Error) {
	path := decode.PathFor(blob.Filename)
	img, err := decode.Image(blob.Data, path)
	if err != nil {
		slog.Warn("upload decode failed", "filename", blob.Filename, "path", path.String(), "error", err)
		if path == decode.PathHeif {
			return nil, failure(KindUnsupportedFormat,
				"Unable to process HEIC image. Try converting to JPG first.")
		}
		return nil, failure(KindUnsupportedFormat,
			"Unable to process image. Please try a different format.")
	}
	return decode.Canonicalize(img), nil
}

// dimensionStage enforces the floor and downsizes past the ceiling with a
// single aspect-preserving scale factor.
func (p *Pipeline) dimensionStage(img *image.NRGBA) (*image.NRGBA, *Error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width < p.cfg.MinDimension || height < p.cfg.MinDimension {
		return nil, failure(KindImageTooSmall,
			"Image too small (%dx%d). Minimum size is %dx%d pixels.",
			width, height, p.cfg.MinDimension, p.cfg.MinDimension)
	}

	maxDim := p.cfg.MaxDimension
	if width <= maxDim && height <= maxDim {
		return img, nil
	}

	scale := math.Min(float64(maxDim)/float64(width), float64(maxDim)/float64(height))
	newWidth := int(math.Round(float64(width) * scale))
	newHeight := int(math.Round(float64(height) * scale))
	resized := imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	slog.Info("downscaled oversized upload",
		"from", fmt.Sprintf("%dx%d", width, height),
		"to", fmt.Sprintf("%dx%d", newWidth, newHeight))
	return resized, nil
}

// faceStage assesses face presence, substituting the optimistic default on
// any detector failure so an upload is never blocked by detection.
func (p *Pipeline) faceStage(img *image.NRGBA) facedet.Assessment {
	face, err := p.faces.Assess(img)
	if err != nil {
		slog.Warn("face detection failed, assuming face present", "error", err)
		return facedet.Optimistic()
	}
	if !face.FaceDetected && face.Confidence < p.cfg.LowConfidence {
		// Advisory only; the outcome is unchanged.
		slog.Warn("no clear face detected in upload", "confidence", face.Confidence)
	}
	return face
}

// encodedSizeMB re-encodes the normalized image as lossy JPEG to measure the
// final payload size. The bytes are diagnostic only and are discarded.
func (p *Pipeline) encodedSizeMB(img *image.NRGBA) (float64, error) {
	buf := mempool.GetBuffer()
	defer mempool.PutBuffer(buf)

	if err := imaging.Encode(buf, img, imaging.JPEG, imaging.JPEGQuality(p.cfg.JPEGQuality)); err != nil {
		return 0, fmt.Errorf("jpeg re-encode: %w", err)
	}
	return float64(buf.Len()) / bytesPerMB, nil
}

// formatTag is the diagnostic format label: the declared extension, or
// "unknown" when the filename carries none.
func formatTag(filename string) string {
	if ext := decode.Extension(filename); ext != "" {
		return ext
	}
	return "unknown"
}
