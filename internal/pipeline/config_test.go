package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.InDelta(t, 20.0, cfg.MaxFileSizeMB, 1e-9)
	assert.Equal(t, 200, cfg.MinDimension)
	assert.Equal(t, 2048, cfg.MaxDimension)
	assert.Equal(t, 85, cfg.JPEGQuality)
	assert.InDelta(t, 0.3, cfg.LowConfidence, 1e-9)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate_Rejections(t *testing.T) {
	mutations := map[string]func(*Config){
		"zero size ceiling":     func(c *Config) { c.MaxFileSizeMB = 0 },
		"negative floor":        func(c *Config) { c.MinDimension = -1 },
		"ceiling below floor":   func(c *Config) { c.MaxDimension = 100 },
		"quality zero":          func(c *Config) { c.JPEGQuality = 0 },
		"quality above 100":     func(c *Config) { c.JPEGQuality = 101 },
		"confidence above one":  func(c *Config) { c.LowConfidence = 1.5 },
		"confidence below zero": func(c *Config) { c.LowConfidence = -0.1 },
	}
	for name, mutate := range mutations {
		cfg := DefaultConfig()
		mutate(&cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestBuilder_Overrides(t *testing.T) {
	pl, err := NewBuilder().
		WithMaxFileSizeMB(5).
		WithDimensionBounds(100, 1024).
		WithFaceDetection(false).
		WithFaceFinder(&fakeFinder{}).
		Build()
	require.NoError(t, err)

	cfg := pl.Config()
	assert.InDelta(t, 5.0, cfg.MaxFileSizeMB, 1e-9)
	assert.Equal(t, 100, cfg.MinDimension)
	assert.Equal(t, 1024, cfg.MaxDimension)
	assert.False(t, cfg.Face.Enabled)
}

func TestBuilder_RejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JPEGQuality = 500

	pl, err := NewBuilder().WithConfig(cfg).Build()
	assert.Nil(t, pl)
	assert.Error(t, err)
}

func TestBuilder_CascadePathOverride(t *testing.T) {
	b := NewBuilder().WithCascadePath("/opt/models/facefinder")
	assert.Equal(t, "/opt/models/facefinder", b.cfg.Face.CascadePath)

	// Empty override keeps the previous value.
	b.WithCascadePath("")
	assert.Equal(t, "/opt/models/facefinder", b.cfg.Face.CascadePath)
}
