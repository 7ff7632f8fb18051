package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "datagen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 1000, cfg.Generation.BatchSize)
	assert.Positive(t, cfg.Generation.MaxWorkers)
	assert.Nil(t, cfg.Generation.Seed)
	assert.Equal(t, "csv", cfg.Export.Format)
	assert.Equal(t, "synthetic_data", cfg.Export.Output)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 100000, cfg.Server.MaxRows)
	assert.Equal(t, "datagen.log", cfg.LogPath)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
generation:
  batch_size: 250
  max_workers: 2
  seed: 42
export:
  format: parquet
  output: out/customers
server:
  port: "8080"
model_files:
  - models/orders.yaml
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250, cfg.Generation.BatchSize)
	assert.Equal(t, 2, cfg.Generation.MaxWorkers)
	require.NotNil(t, cfg.Generation.Seed)
	assert.Equal(t, int64(42), *cfg.Generation.Seed)
	assert.Equal(t, "parquet", cfg.Export.Format)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"models/orders.yaml"}, cfg.ModelFiles)
	// Unset keys keep their defaults.
	assert.Equal(t, 10000, cfg.Export.BatchSize)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DATAGEN_GENERATION_BATCH_SIZE", "64")
	t.Setenv("DATAGEN_GENERATION_SEED", "7")
	t.Setenv("DATAGEN_SERVER_PORT", "9090")

	cfg, err := Load(writeConfig(t, "generation:\n  batch_size: 500\n"))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Generation.BatchSize)
	require.NotNil(t, cfg.Generation.Seed)
	assert.Equal(t, int64(7), *cfg.Generation.Seed)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadViperOverride(t *testing.T) {
	v := viper.New()
	v.Set("export.format", "json")

	cfg, err := LoadViper(v, "")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Export.Format)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	bad := *cfg
	bad.Generation.BatchSize = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = *cfg
	bad.Generation.MaxWorkers = -1
	assert.ErrorContains(t, bad.Validate(), "max_workers")

	bad = *cfg
	bad.Export.Format = "sql"
	bad.Export.Dialect = "postgres"
	assert.ErrorContains(t, bad.Validate(), "dsn is required")

	bad.Export.Dialect = "sqlite"
	assert.NoError(t, bad.Validate())

	bad = *cfg
	bad.Server.MaxRows = 0
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load(writeConfig(t, "generation:\n  batch_size: -5\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
