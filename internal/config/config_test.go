package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad(t *testing.T) {
	dir, err := os.MkdirTemp("", "config-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.json")

	original := Default()
	require.NoError(t, original.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, original.Version, loaded.Version)
	assert.Equal(t, original.LogLevel, loaded.LogLevel)
	assert.True(t, original.Created.Equal(loaded.Created))
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(os.TempDir(), "no-such-config.json"))
	assert.True(t, os.IsNotExist(err))
}
