package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without
	// extension).
	ConfigFileName = "ingest"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "TALKINGPHOTO"
)

// Loader layers configuration from file, environment and bound flags.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on the global viper instance so cobra flag
// bindings take effect.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// NewIsolatedLoader creates a loader with a private viper instance, for
// tests that must not share global state.
func NewIsolatedLoader() *Loader {
	return &Loader{v: viper.New()}
}

// Load reads configuration from the search paths and environment, applies
// defaults, unmarshals and validates.
func (l *Loader) Load() (*Config, error) {
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadFile loads configuration from an explicit file path.
func (l *Loader) LoadFile(path string) (*Config, error) {
	l.v.SetConfigFile(path)
	l.setupEnvironment()
	l.setDefaults()
	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return l.unmarshalAndValidate()
}

func (l *Loader) load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironment()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// Missing config file is fine; defaults and env vars apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &cfg, nil
}

func (l *Loader) unmarshalAndValidate() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// addConfigPaths registers the config file search order: working directory,
// home, XDG config dir, then /etc.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
		l.v.AddConfigPath(filepath.Join(home, ".config", "ingest"))
	}
	l.v.AddConfigPath("/etc/ingest")
}

// setupEnvironment enables TALKINGPHOTO_* variables, with dots and dashes
// mapped to underscores (e.g. TALKINGPHOTO_SERVER_PORT).
func (l *Loader) setupEnvironment() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	l.v.AutomaticEnv()
}

// setDefaults seeds viper with the full default configuration.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("models_dir", defaults.ModelsDir)
	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)

	l.v.SetDefault("pipeline.max_file_size_mb", defaults.Pipeline.MaxFileSizeMB)
	l.v.SetDefault("pipeline.min_dimension", defaults.Pipeline.MinDimension)
	l.v.SetDefault("pipeline.max_dimension", defaults.Pipeline.MaxDimension)
	l.v.SetDefault("pipeline.jpeg_quality", defaults.Pipeline.JPEGQuality)
	l.v.SetDefault("pipeline.low_confidence", defaults.Pipeline.LowConfidence)
	l.v.SetDefault("pipeline.enhance.sharpness", defaults.Pipeline.Enhance.Sharpness)
	l.v.SetDefault("pipeline.enhance.contrast", defaults.Pipeline.Enhance.Contrast)
	l.v.SetDefault("pipeline.enhance.saturation", defaults.Pipeline.Enhance.Saturation)
	l.v.SetDefault("pipeline.face.enabled", defaults.Pipeline.Face.Enabled)
	l.v.SetDefault("pipeline.face.cascade_path", defaults.Pipeline.Face.CascadePath)
	l.v.SetDefault("pipeline.face.scale_factor", defaults.Pipeline.Face.ScaleFactor)
	l.v.SetDefault("pipeline.face.shift_factor", defaults.Pipeline.Face.ShiftFactor)
	l.v.SetDefault("pipeline.face.min_size", defaults.Pipeline.Face.MinSize)
	l.v.SetDefault("pipeline.face.max_size", defaults.Pipeline.Face.MaxSize)
	l.v.SetDefault("pipeline.face.min_neighbors", defaults.Pipeline.Face.MinNeighbors)
	l.v.SetDefault("pipeline.face.overlap_threshold", defaults.Pipeline.Face.OverlapThreshold)
	l.v.SetDefault("pipeline.face.min_quality", defaults.Pipeline.Face.MinQuality)
	l.v.SetDefault("pipeline.face.optimistic_fallback", defaults.Pipeline.Face.OptimisticFallback)

	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.dir", defaults.Output.Dir)

	l.v.SetDefault("server.host", defaults.Server.Host)
	l.v.SetDefault("server.port", defaults.Server.Port)
	l.v.SetDefault("server.cors_origin", defaults.Server.CORSOrigin)
	l.v.SetDefault("server.max_upload_mb", defaults.Server.MaxUploadMB)
	l.v.SetDefault("server.timeout_sec", defaults.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout_sec", defaults.Server.ShutdownTimeoutSec)
	l.v.SetDefault("server.preview_enabled", defaults.Server.PreviewEnabled)

	l.v.SetDefault("batch.workers", defaults.Batch.Workers)
}
