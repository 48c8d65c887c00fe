package pipeline

import (
	"fmt"

	"github.com/talkingphoto-ai/ingest/internal/enhance"
	"github.com/talkingphoto-ai/ingest/internal/facedet"
)

// Config holds the ingestion policy. The defaults are the contract; the
// fields exist so tests and deployments can tighten or relax individual
// limits without forking the pipeline.
type Config struct {
	// MaxFileSizeMB is the upload ceiling checked before any decoding.
	MaxFileSizeMB float64 `mapstructure:"max_file_size_mb" yaml:"max_file_size_mb" json:"max_file_size_mb"`
	// MinDimension is the floor applied to both axes after rotation.
	MinDimension int `mapstructure:"min_dimension" yaml:"min_dimension" json:"min_dimension"`
	// MaxDimension bounds the larger axis; bigger images are downscaled.
	MaxDimension int `mapstructure:"max_dimension" yaml:"max_dimension" json:"max_dimension"`
	// JPEGQuality is used for the diagnostic re-encode.
	JPEGQuality int `mapstructure:"jpeg_quality" yaml:"jpeg_quality" json:"jpeg_quality"`
	// LowConfidence is the advisory threshold below which a no-face result
	// is logged as a warning.
	LowConfidence float64 `mapstructure:"low_confidence" yaml:"low_confidence" json:"low_confidence"`

	Enhance enhance.Config `mapstructure:"enhance" yaml:"enhance" json:"enhance"`
	Face    facedet.Config `mapstructure:"face"    yaml:"face"    json:"face"`
}

// DefaultConfig returns the fixed upload policy.
func DefaultConfig() Config {
	return Config{
		MaxFileSizeMB: 20,
		MinDimension:  200,
		MaxDimension:  2048,
		JPEGQuality:   85,
		LowConfidence: 0.3,
		Enhance:       enhance.DefaultConfig(),
		Face:          facedet.DefaultConfig(),
	}
}

// Validate checks the policy for internally consistent values.
func (c Config) Validate() error {
	if c.MaxFileSizeMB <= 0 {
		return fmt.Errorf("max_file_size_mb must be positive, got %v", c.MaxFileSizeMB)
	}
	if c.MinDimension <= 0 {
		return fmt.Errorf("min_dimension must be positive, got %d", c.MinDimension)
	}
	if c.MaxDimension < c.MinDimension {
		return fmt.Errorf("max_dimension %d below min_dimension %d", c.MaxDimension, c.MinDimension)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality must be in [1,100], got %d", c.JPEGQuality)
	}
	if c.LowConfidence < 0 || c.LowConfidence > 1 {
		return fmt.Errorf("low_confidence must be in [0,1], got %v", c.LowConfidence)
	}
	return nil
}
