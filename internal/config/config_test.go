package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spectral-unmixer/internal/unmix"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	forest, err := cfg.ForestEndmembers()
	require.NoError(t, err)
	assert.Equal(t, unmix.EndmemberSet{
		{0.85, 0.74},
		{0.32, 1.05},
		{0.11, 0.51},
	}, forest)

	nonForest, err := cfg.NonForestEndmembers()
	require.NoError(t, err)
	assert.Equal(t, unmix.EndmemberSet{
		{0.72, 0.74},
		{0.25, 1.05},
		{0.11, 0.51},
	}, nonForest)

	assert.GreaterOrEqual(t, cfg.Workers(), 1)
}

func TestLoad_PartialFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unmix.toml")
	content := `
worker_fraction = 0.25
forest_classes = [3, 7]

[bands]
nir = 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.25, cfg.WorkerFraction)
	assert.Equal(t, []int32{3, 7}, cfg.ForestClasses)
	assert.Equal(t, 5, cfg.Bands.NIR)
	// Untouched keys keep their defaults.
	assert.Equal(t, 3, cfg.Bands.Red)
	assert.Equal(t, 10, cfg.ChunkRows)
}

func TestLoad_EndmemberOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unmix.toml")
	content := `
forest_endmembers = [[0.9, 0.7], [0.3, 1.1], [0.1, 0.5]]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	forest, err := cfg.ForestEndmembers()
	require.NoError(t, err)
	assert.Equal(t, unmix.EndmemberSet{{0.9, 0.7}, {0.3, 1.1}, {0.1, 0.5}}, forest)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
}

func TestValidate_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero worker fraction", func(c *Config) { c.WorkerFraction = 0 }},
		{"fraction above one", func(c *Config) { c.WorkerFraction = 1.5 }},
		{"no forest classes", func(c *Config) { c.ForestClasses = nil }},
		{"bad chunk rows", func(c *Config) { c.ChunkRows = 0 }},
		{"bad progress rows", func(c *Config) { c.ProgressRows = -1 }},
		{"short endmember matrix", func(c *Config) { c.Forest = c.Forest[:2] }},
		{"ragged endmember row", func(c *Config) { c.NonForest[1] = []float64{0.4} }},
		{"zero band index", func(c *Config) { c.Bands.SWIR2 = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
