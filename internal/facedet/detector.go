// Package facedet provides best-effort frontal face detection for upload
// quality assessment using a pigo binary cascade.
//
// Detection here is a soft signal only. When the cascade is missing or the
// detector fails the package degrades to an optimistic assessment instead of
// surfacing an error to the upload flow.
package facedet

import (
	"fmt"
	"image"
	"log/slog"
	"os"

	pigo "github.com/esimov/pigo/core"

	"github.com/talkingphoto-ai/ingest/internal/models"
)

// Config controls cascade detection behavior.
type Config struct {
	Enabled     bool    `mapstructure:"enabled"      yaml:"enabled"      json:"enabled"`
	CascadePath string  `mapstructure:"cascade_path" yaml:"cascade_path" json:"cascade_path"`
	ScaleFactor float64 `mapstructure:"scale_factor" yaml:"scale_factor" json:"scale_factor"`
	ShiftFactor float64 `mapstructure:"shift_factor" yaml:"shift_factor" json:"shift_factor"`
	MinSize     int     `mapstructure:"min_size"     yaml:"min_size"     json:"min_size"`
	MaxSize     int     `mapstructure:"max_size"     yaml:"max_size"     json:"max_size"`
	// MinNeighbors is the number of overlapping raw cascade windows required
	// to accept a face, trading recall for precision.
	MinNeighbors int `mapstructure:"min_neighbors" yaml:"min_neighbors" json:"min_neighbors"`
	// OverlapThreshold is the IoU above which two raw windows count as
	// neighbors.
	OverlapThreshold float64 `mapstructure:"overlap_threshold" yaml:"overlap_threshold" json:"overlap_threshold"`
	// MinQuality filters raw windows by the cascade's quality score before
	// grouping.
	MinQuality float32 `mapstructure:"min_quality" yaml:"min_quality" json:"min_quality"`
	// OptimisticFallback makes a missing or unloadable cascade non-fatal:
	// the detector then always reports the optimistic assessment.
	OptimisticFallback bool `mapstructure:"optimistic_fallback" yaml:"optimistic_fallback" json:"optimistic_fallback"`
}

// DefaultConfig provides the standard permissive settings.
func DefaultConfig() Config {
	return Config{
		Enabled:            true,
		CascadePath:        models.GetCascadePath(""),
		ScaleFactor:        1.1,
		ShiftFactor:        0.1,
		MinSize:            20,
		MaxSize:            2000,
		MinNeighbors:       4,
		OverlapThreshold:   0.18,
		MinQuality:         5.0,
		OptimisticFallback: true,
	}
}

// UpdateCascadePath relocates the cascade under the given models directory.
func (c *Config) UpdateCascadePath(modelsDir string) {
	c.CascadePath = models.GetCascadePath(modelsDir)
}

// Detector runs a frontal face cascade over grayscale pixel data.
// A Detector with no loaded classifier always answers optimistically.
type Detector struct {
	cfg        Config
	classifier *pigo.Pigo
}

// NewDetector loads the configured cascade. With OptimisticFallback set, a
// missing or corrupt cascade yields a working detector in fallback mode;
// otherwise the load error is returned.
func NewDetector(cfg Config) (*Detector, error) {
	if !cfg.Enabled {
		return &Detector{cfg: cfg}, nil
	}

	classifier, err := loadCascade(cfg.CascadePath)
	if err != nil {
		if cfg.OptimisticFallback {
			slog.Warn("face cascade unavailable, detection degrades to optimistic mode",
				"path", cfg.CascadePath, "error", err)
			return &Detector{cfg: cfg}, nil
		}
		return nil, err
	}
	return &Detector{cfg: cfg, classifier: classifier}, nil
}

func loadCascade(path string) (*pigo.Pigo, error) {
	if err := models.ValidateCascadeExists(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: cascade path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("reading cascade: %w", err)
	}
	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpacking cascade: %w", err)
	}
	return classifier, nil
}

// Assess detects faces in img and returns the resulting assessment.
// In fallback mode it returns Optimistic with no error. A panic inside the
// cascade surfaces as an error so the caller can apply its own fallback.
func (d *Detector) Assess(img image.Image) (a Assessment, err error) {
	if d.classifier == nil {
		return Optimistic(), nil
	}

	defer func() {
		if r := recover(); r != nil {
			a = Assessment{}
			err = fmt.Errorf("cascade panicked: %v", r)
		}
	}()

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = pigo.ImgToNRGBA(img)
	}
	pixels := pigo.RgbToGrayscale(nrgba)
	cols := nrgba.Bounds().Dx()
	rows := nrgba.Bounds().Dy()

	params := pigo.CascadeParams{
		MinSize:     d.cfg.MinSize,
		MaxSize:     d.cfg.MaxSize,
		ShiftFactor: d.cfg.ShiftFactor,
		ScaleFactor: d.cfg.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	raw := d.classifier.RunCascade(params, 0.0)
	boxes := groupDetections(raw, d.cfg.MinQuality, d.cfg.OverlapThreshold, d.cfg.MinNeighbors)
	return FromBoxes(boxes), nil
}
