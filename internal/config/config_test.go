package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RevREB/auto-claude/internal/config"
)

func TestLoad(t *testing.T) {
	t.Run("empty path loads defaults", func(t *testing.T) {
		cfg, err := config.Load("")
		require.NoError(t, err)

		assert.Equal(t, "origin", cfg.Remote)
		assert.Equal(t, 24*time.Hour, cfg.CloneMaxAge)
		assert.Equal(t, 5*time.Minute, cfg.CommandTimeout)
		assert.NotEmpty(t, cfg.CloneBaseDir)
		assert.Empty(t, cfg.LogFile)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "remote: upstream\nclone_max_age: 1h\nlog_file: /var/log/autoclaude.log\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := config.Load(path)
		require.NoError(t, err)

		assert.Equal(t, "upstream", cfg.Remote)
		assert.Equal(t, time.Hour, cfg.CloneMaxAge)
		assert.Equal(t, "/var/log/autoclaude.log", cfg.LogFile)
		// Unset keys keep their defaults.
		assert.Equal(t, 5*time.Minute, cfg.CommandTimeout)
	})

	t.Run("environment overrides file and defaults", func(t *testing.T) {
		t.Setenv("AUTOCLAUDE_REMOTE", "fork")

		cfg, err := config.Load("")
		require.NoError(t, err)
		assert.Equal(t, "fork", cfg.Remote)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
	})
}
