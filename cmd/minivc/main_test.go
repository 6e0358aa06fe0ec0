package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minivc/internal/config"
	"minivc/internal/repo"
)

func TestResolveLogLevel(t *testing.T) {
	root, err := os.MkdirTemp("", "minivc-cli-test")
	require.NoError(t, err)
	defer os.RemoveAll(root)

	require.NoError(t, repo.Init(root))

	cfg := config.Default()
	cfg.LogLevel = "debug"
	require.NoError(t, cfg.Save(filepath.Join(root, ".minivc", "config.json")))

	t.Run("ConfigAppliesWithoutFlag", func(t *testing.T) {
		assert.Equal(t, "debug", resolveLogLevel(false, "warn", root))
	})

	t.Run("ExplicitFlagWins", func(t *testing.T) {
		assert.Equal(t, "info", resolveLogLevel(true, "info", root))
	})

	t.Run("OutsideRepositoryUsesFlagDefault", func(t *testing.T) {
		outside, err := os.MkdirTemp("", "minivc-cli-norepo")
		require.NoError(t, err)
		defer os.RemoveAll(outside)

		assert.Equal(t, "warn", resolveLogLevel(false, "warn", outside))
	})

	t.Run("EmptyConfiguredLevelUsesFlagDefault", func(t *testing.T) {
		blank, err := os.MkdirTemp("", "minivc-cli-blank")
		require.NoError(t, err)
		defer os.RemoveAll(blank)

		require.NoError(t, repo.Init(blank))
		empty := config.Default()
		empty.LogLevel = ""
		require.NoError(t, empty.Save(filepath.Join(blank, ".minivc", "config.json")))

		assert.Equal(t, "warn", resolveLogLevel(false, "warn", blank))
	})
}
