package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewManager().Load("")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Submit.Concurrency)
	assert.Equal(t, MaxBatchSize, cfg.Submit.BatchSize)
	assert.Equal(t, 1000, cfg.Submit.PacingMs)
	assert.Equal(t, 60, cfg.Submit.TimeoutSec)
	assert.Equal(t, 30, cfg.Discovery.TimeoutSec)
	assert.Equal(t, "info", cfg.Logger.Level)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `submit:
  concurrency: 5
  batch_size: 500
  pacing_ms: 250
logger:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewManager().Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Submit.Concurrency)
	assert.Equal(t, 500, cfg.Submit.BatchSize)
	assert.Equal(t, 250, cfg.Submit.PacingMs)
	assert.Equal(t, "debug", cfg.Logger.Level)

	// Untouched sections keep their defaults.
	assert.Equal(t, 60, cfg.Submit.TimeoutSec)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewManager().Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Submit.Concurrency)
}

func TestLoadBatchSizeClampedToProtocolCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "submit:\n  batch_size: 50000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewManager().Load(path)
	require.NoError(t, err)
	assert.Equal(t, MaxBatchSize, cfg.Submit.BatchSize)
}

func TestReloadPicksUpFileChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("submit:\n  concurrency: 2\n"), 0644))

	m := NewManager()
	cfg, err := m.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Submit.Concurrency)

	require.NoError(t, os.WriteFile(path, []byte("submit:\n  concurrency: 7\n"), 0644))
	cfg, err = m.Reload()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Submit.Concurrency)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "submit:\n  concurrency: -1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	_, err := NewManager().Load(path)
	assert.Error(t, err)
}
