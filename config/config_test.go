package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnvReadsAllListParameters(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/demonlist")
	t.Setenv("LIST_SCORED_WINDOW", "150")
	t.Setenv("LIST_MAX_POINTS", "500")
	t.Setenv("LIST_POSITION_DECAY", "0.02")
	t.Setenv("LIST_PARTIAL_BASE", "4")
	t.Setenv("LIST_PARTIAL_DIVISOR", "8")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 150, cfg.List.ScoredWindow)
	assert.Equal(t, 500.0, cfg.List.MaxPoints)
	assert.Equal(t, 0.02, cfg.List.PositionDecay)
	assert.Equal(t, 4.0, cfg.List.PartialBase)
	assert.Equal(t, 8.0, cfg.List.PartialDivisor)
}

func TestLoadConfigAppliesListDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/demonlist")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 75, cfg.List.ScoredWindow)
	assert.Equal(t, 350.0, cfg.List.MaxPoints)
	assert.Equal(t, 0.035, cfg.List.PositionDecay)
	assert.Equal(t, 5.0, cfg.List.PartialBase)
	assert.Equal(t, 10.0, cfg.List.PartialDivisor)
	assert.Equal(t, ":9090", cfg.Observability.MetricsAddress)
}

func TestLoadConfigRejectsMalformedNumbers(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/demonlist")
	t.Setenv("LIST_PARTIAL_BASE", "not-a-number")

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LIST_PARTIAL_BASE")
}

func TestLoadConfigReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
postgres:
  dsn: postgres://localhost/demonlist
list:
  scored_window: 100
  max_points: 400
  position_decay: 0.03
  partial_base: 6
  partial_divisor: 12
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.List.ScoredWindow)
	assert.Equal(t, 400.0, cfg.List.MaxPoints)
	assert.Equal(t, 6.0, cfg.List.PartialBase)
	assert.Equal(t, 12.0, cfg.List.PartialDivisor)
}
