package pipeline

import "github.com/talkingphoto-ai/ingest/internal/facedet"

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg    Config
	finder FaceFinder
}

// NewBuilder creates a pipeline builder with the default policy.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole policy.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithModelsDir relocates the face cascade under the given models directory.
func (b *Builder) WithModelsDir(dir string) *Builder {
	if dir != "" {
		b.cfg.Face.UpdateCascadePath(dir)
	}
	return b
}

// WithCascadePath overrides the face cascade path directly.
func (b *Builder) WithCascadePath(path string) *Builder {
	if path != "" {
		b.cfg.Face.CascadePath = path
	}
	return b
}

// WithFaceDetection toggles the face-presence stage.
func (b *Builder) WithFaceDetection(enabled bool) *Builder {
	b.cfg.Face.Enabled = enabled
	return b
}

// WithFaceFinder injects a face-presence collaborator, bypassing cascade
// loading. Used by tests and by callers embedding their own detector.
func (b *Builder) WithFaceFinder(finder FaceFinder) *Builder {
	b.finder = finder
	return b
}

// WithMaxFileSizeMB overrides the upload size ceiling.
func (b *Builder) WithMaxFileSizeMB(mb float64) *Builder {
	if mb > 0 {
		b.cfg.MaxFileSizeMB = mb
	}
	return b
}

// WithDimensionBounds overrides the dimension floor and ceiling.
func (b *Builder) WithDimensionBounds(minDim, maxDim int) *Builder {
	if minDim > 0 {
		b.cfg.MinDimension = minDim
	}
	if maxDim > 0 {
		b.cfg.MaxDimension = maxDim
	}
	return b
}

// Build validates the policy and constructs the pipeline, loading the face
// cascade unless a FaceFinder was injected.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	finder := b.finder
	if finder == nil {
		det, err := facedet.NewDetector(b.cfg.Face)
		if err != nil {
			return nil, err
		}
		finder = det
	}
	return &Pipeline{cfg: b.cfg, faces: finder}, nil
}
