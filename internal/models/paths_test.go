package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetModelsDir_Precedence(t *testing.T) {
	t.Setenv(EnvModelsDir, "")
	assert.Equal(t, DefaultModelsDir, GetModelsDir(""))

	t.Setenv(EnvModelsDir, "/srv/models")
	assert.Equal(t, "/srv/models", GetModelsDir(""))
	assert.Equal(t, "/explicit", GetModelsDir("/explicit"), "explicit override beats env")
}

func TestGetCascadePath(t *testing.T) {
	t.Setenv(EnvModelsDir, "")
	assert.Equal(t, filepath.Join("models", CascadeFrontalFace), GetCascadePath(""))
	assert.Equal(t, filepath.Join("/opt/m", CascadeFrontalFace), GetCascadePath("/opt/m"))
}

func TestValidateCascadeExists(t *testing.T) {
	dir := t.TempDir()

	err := ValidateCascadeExists(filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = ValidateCascadeExists(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "directory")

	path := filepath.Join(dir, CascadeFrontalFace)
	require.NoError(t, os.WriteFile(path, []byte{0x01}, 0o600))
	assert.NoError(t, ValidateCascadeExists(path))
}

func TestFindProjectRoot(t *testing.T) {
	root, err := FindProjectRoot()
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "go.mod"))
	assert.NoError(t, err)
}
