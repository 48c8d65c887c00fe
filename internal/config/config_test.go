package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.EqualValues(t, 25, cfg.Server.MaxUploadMB)
	assert.InDelta(t, 20.0, cfg.Pipeline.MaxFileSizeMB, 1e-9)
	assert.Equal(t, 0, cfg.Batch.Workers)
}

func TestValidate_Rejections(t *testing.T) {
	mutations := map[string]func(*Config){
		"bad log level":      func(c *Config) { c.LogLevel = "trace" },
		"bad output format":  func(c *Config) { c.Output.Format = "xml" },
		"port zero":          func(c *Config) { c.Server.Port = 0 },
		"port out of range":  func(c *Config) { c.Server.Port = 70000 },
		"zero upload limit":  func(c *Config) { c.Server.MaxUploadMB = 0 },
		"negative workers":   func(c *Config) { c.Batch.Workers = -1 },
		"broken pipeline":    func(c *Config) { c.Pipeline.JPEGQuality = 0 },
	}
	for name, mutate := range mutations {
		cfg := DefaultConfig()
		mutate(cfg)
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	orig, err0 := os.Getwd()
	if err0 != nil {
		t.Fatal(err0)
	}
	if err0 = os.Chdir(t.TempDir()); err0 != nil {
		t.Fatal(err0)
	}
	t.Cleanup(func() { os.Chdir(orig) })

	cfg, err := NewIsolatedLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFile_OverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ingest.yaml")
	yaml := `
log_level: debug
server:
  port: 9090
  preview_enabled: true
pipeline:
  max_file_size_mb: 10
  enhance:
    sharpness: 1.2
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := NewIsolatedLoader().LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.True(t, cfg.Server.PreviewEnabled)
	assert.InDelta(t, 10.0, cfg.Pipeline.MaxFileSizeMB, 1e-9)
	assert.InDelta(t, 1.2, cfg.Pipeline.Enhance.Sharpness, 1e-9)

	// Untouched keys keep their defaults.
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 200, cfg.Pipeline.MinDimension)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := NewIsolatedLoader().LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadFile_InvalidValuesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o600))

	_, err := NewIsolatedLoader().LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	orig, err0 := os.Getwd()
	if err0 != nil {
		t.Fatal(err0)
	}
	if err0 = os.Chdir(t.TempDir()); err0 != nil {
		t.Fatal(err0)
	}
	t.Cleanup(func() { os.Chdir(orig) })
	t.Setenv("TALKINGPHOTO_SERVER_PORT", "9999")
	t.Setenv("TALKINGPHOTO_LOG_LEVEL", "warn")

	cfg, err := NewIsolatedLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
}
