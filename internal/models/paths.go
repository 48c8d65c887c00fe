// Package models resolves on-disk paths for the bundled detection models.
package models

import (
	"fmt"
	"os"
	"path/filepath"
)

// Cascade file names.
const (
	// CascadeFrontalFace is the pigo binary cascade for frontal face detection.
	CascadeFrontalFace = "facefinder"
)

// DefaultModelsDir is the models directory relative to the working directory.
const DefaultModelsDir = "models"

// EnvModelsDir overrides the models directory when set.
const EnvModelsDir = "TALKINGPHOTO_MODELS_DIR"

// GetModelsDir returns the effective models directory. An explicit override
// wins, then the environment variable, then the default.
func GetModelsDir(override string) string {
	if override != "" {
		return override
	}
	if env := os.Getenv(EnvModelsDir); env != "" {
		return env
	}
	return DefaultModelsDir
}

// GetCascadePath returns the path of the frontal face cascade under the
// given models directory ("" means the effective default).
func GetCascadePath(modelsDir string) string {
	return filepath.Join(GetModelsDir(modelsDir), CascadeFrontalFace)
}

// ValidateCascadeExists checks that the cascade file exists and is a regular
// file.
func ValidateCascadeExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("cascade file not found: %s", path)
		}
		return fmt.Errorf("cannot access cascade file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("cascade path is a directory: %s", path)
	}
	return nil
}

// FindProjectRoot walks up from the working directory looking for go.mod.
// Used by tests to locate checked-in model files regardless of the package
// under test.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found above %s", dir)
		}
		dir = parent
	}
}
