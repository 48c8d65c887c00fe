// Package config centralizes application configuration loaded from files,
// environment variables and command-line flags.
package config

import (
	"fmt"

	"github.com/talkingphoto-ai/ingest/internal/pipeline"
)

// Config is the complete configuration for the ingest application. It covers
// all commands (process, batch, serve) and supports layering from config
// file, environment and flags.
type Config struct {
	// Global settings.
	ModelsDir string `mapstructure:"models_dir" yaml:"models_dir" json:"models_dir"`
	LogLevel  string `mapstructure:"log_level"  yaml:"log_level"  json:"log_level"`
	Verbose   bool   `mapstructure:"verbose"    yaml:"verbose"    json:"verbose"`

	// Ingestion policy. Defaults are the contract; overrides are for
	// deployments that need stricter limits.
	Pipeline pipeline.Config `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`

	// Output settings for the CLI commands.
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Server settings for the serve command.
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`

	// Batch processing settings.
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// OutputConfig controls CLI output.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"` // text or json
	Dir    string `mapstructure:"dir"    yaml:"dir"    json:"dir"`    // write normalized JPEGs here when set
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host               string `mapstructure:"host"                 yaml:"host"                 json:"host"`
	Port               int    `mapstructure:"port"                 yaml:"port"                 json:"port"`
	CORSOrigin         string `mapstructure:"cors_origin"          yaml:"cors_origin"          json:"cors_origin"`
	MaxUploadMB        int64  `mapstructure:"max_upload_mb"        yaml:"max_upload_mb"        json:"max_upload_mb"`
	TimeoutSec         int    `mapstructure:"timeout_sec"          yaml:"timeout_sec"          json:"timeout_sec"`
	ShutdownTimeoutSec int    `mapstructure:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec" json:"shutdown_timeout_sec"`
	PreviewEnabled     bool   `mapstructure:"preview_enabled"      yaml:"preview_enabled"      json:"preview_enabled"`
}

// BatchConfig contains directory batch processing settings.
type BatchConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`
}

// DefaultConfig returns the complete default configuration.
func DefaultConfig() *Config {
	return &Config{
		ModelsDir: "",
		LogLevel:  "info",
		Verbose:   false,
		Pipeline:  pipeline.DefaultConfig(),
		Output: OutputConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Host:               "localhost",
			Port:               8080,
			CORSOrigin:         "*",
			MaxUploadMB:        25,
			TimeoutSec:         60,
			ShutdownTimeoutSec: 10,
			PreviewEnabled:     false,
		},
		Batch: BatchConfig{
			Workers: 0, // 0 = NumCPU
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %q (must be debug, info, warn or error)", c.LogLevel)
	}
	switch c.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid output format: %q (must be text or json)", c.Output.Format)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("server max_upload_mb must be positive, got %d", c.Server.MaxUploadMB)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch workers must be non-negative, got %d", c.Batch.Workers)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	return nil
}
