// Package config holds the run configuration: the two candidate
// endmember matrices, the land-cover codes mapped to the first set, the
// spectral band selection and the worker-pool sizing. The defaults that
// the original field campaigns calibrated live in Default, not inside
// the algorithm.
package config

import (
	"fmt"
	"runtime"

	"github.com/BurntSushi/toml"

	"spectral-unmixer/internal/unmix"
)

// Bands selects the 1-based raster bands the two spectral indices are
// derived from.
type Bands struct {
	NIR   int `toml:"nir"`
	Red   int `toml:"red"`
	SWIR3 int `toml:"swir3"`
	SWIR2 int `toml:"swir2"`
}

// Config is the full run configuration. Endmember matrices are 3 rows
// (one per surface-cover class) by 2 columns (NDVI, SWIR32).
type Config struct {
	Forest        [][]float64 `toml:"forest_endmembers"`
	NonForest     [][]float64 `toml:"nonforest_endmembers"`
	ForestClasses []int32     `toml:"forest_classes"`

	// WorkerFraction sizes the pool as a fraction of the logical CPUs,
	// floor 1 worker.
	WorkerFraction float64 `toml:"worker_fraction"`

	// ChunkRows is the number of rows grouped per dispatch unit.
	ChunkRows int `toml:"chunk_rows"`

	// ProgressRows is the row stride between progress log lines.
	ProgressRows int `toml:"progress_rows"`

	Bands Bands `toml:"bands"`
}

// Default returns the calibrated defaults: the forest and non-forest
// endmember matrices of the original campaign, forest selected by
// land-cover code 1, half the logical CPUs, 10-row chunks.
func Default() *Config {
	return &Config{
		Forest: [][]float64{
			{0.85, 0.74},
			{0.32, 1.05},
			{0.11, 0.51},
		},
		NonForest: [][]float64{
			{0.72, 0.74},
			{0.25, 1.05},
			{0.11, 0.51},
		},
		ForestClasses:  []int32{1},
		WorkerFraction: 0.5,
		ChunkRows:      10,
		ProgressRows:   100,
		Bands:          Bands{NIR: 4, Red: 3, SWIR3: 7, SWIR2: 6},
	}
}

// Load reads a TOML file over the defaults, so partial files only
// override the keys they name.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	if _, err := toEndmemberSet(c.Forest, "forest"); err != nil {
		return err
	}
	if _, err := toEndmemberSet(c.NonForest, "nonforest"); err != nil {
		return err
	}
	if len(c.ForestClasses) == 0 {
		return fmt.Errorf("forest_classes must name at least one land-cover code")
	}
	if c.WorkerFraction <= 0 || c.WorkerFraction > 1 {
		return fmt.Errorf("worker_fraction must be in (0, 1], got %g", c.WorkerFraction)
	}
	if c.ChunkRows <= 0 {
		return fmt.Errorf("chunk_rows must be positive, got %d", c.ChunkRows)
	}
	if c.ProgressRows <= 0 {
		return fmt.Errorf("progress_rows must be positive, got %d", c.ProgressRows)
	}
	for name, b := range map[string]int{
		"nir": c.Bands.NIR, "red": c.Bands.Red,
		"swir3": c.Bands.SWIR3, "swir2": c.Bands.SWIR2,
	} {
		if b < 1 {
			return fmt.Errorf("band %s must be a 1-based index, got %d", name, b)
		}
	}
	return nil
}

// ForestEndmembers returns the forest matrix as an engine EndmemberSet.
func (c *Config) ForestEndmembers() (unmix.EndmemberSet, error) {
	return toEndmemberSet(c.Forest, "forest")
}

// NonForestEndmembers returns the non-forest matrix as an engine
// EndmemberSet.
func (c *Config) NonForestEndmembers() (unmix.EndmemberSet, error) {
	return toEndmemberSet(c.NonForest, "nonforest")
}

// Workers converts the configured CPU fraction into a pool size.
func (c *Config) Workers() int {
	n := int(float64(runtime.NumCPU()) * c.WorkerFraction)
	if n < 1 {
		n = 1
	}
	return n
}

func toEndmemberSet(rows [][]float64, name string) (unmix.EndmemberSet, error) {
	var e unmix.EndmemberSet
	if len(rows) != 3 {
		return e, fmt.Errorf("%s_endmembers must have 3 rows, got %d", name, len(rows))
	}
	for i, row := range rows {
		if len(row) != 2 {
			return e, fmt.Errorf("%s_endmembers row %d must have 2 values, got %d", name, i, len(row))
		}
		e[i][0] = row[0]
		e[i][1] = row[1]
	}
	return e, nil
}
