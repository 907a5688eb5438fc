// Package pipeline wires one unmixing run end to end: spectral index
// derivation, land-use loading, the parallel unmixing pass, and result
// persistence.
package pipeline

import (
	"context"
	"time"

	"spectral-unmixer/internal/config"
	"spectral-unmixer/internal/export"
	"spectral-unmixer/internal/logger"
	"spectral-unmixer/internal/rasterio"
	"spectral-unmixer/internal/unmix"
)

// Request names the inputs and outputs of one run. DumpPath is optional;
// when set, the fraction raster is additionally exported in the binary
// dump format.
type Request struct {
	ImagePath   string
	LandUsePath string
	OutputPath  string
	DumpPath    string
}

// Coordinator executes unmixing runs against a fixed configuration.
type Coordinator struct {
	cfg *config.Config
	log logger.Logger
}

func NewCoordinator(cfg *config.Config, log logger.Logger) *Coordinator {
	if log == nil {
		log = logger.Nop{}
	}
	return &Coordinator{cfg: cfg, log: log}
}

// Run performs one full unmixing run. Inputs are validated before any
// parallel work starts; any failure aborts the run without writing a
// partial raster.
func (c *Coordinator) Run(ctx context.Context, req Request) error {
	start := time.Now()

	forestE, err := c.cfg.ForestEndmembers()
	if err != nil {
		return err
	}
	nonForestE, err := c.cfg.NonForestEndmembers()
	if err != nil {
		return err
	}

	c.log.Info("Pipeline", "computing spectral indices", map[string]interface{}{
		"image": req.ImagePath,
		"bands": c.cfg.Bands,
	})
	ndvi, swir32, ref, err := rasterio.ComputeIndices(req.ImagePath, rasterio.BandSelection{
		NIR:   c.cfg.Bands.NIR,
		Red:   c.cfg.Bands.Red,
		SWIR3: c.cfg.Bands.SWIR3,
		SWIR2: c.cfg.Bands.SWIR2,
	})
	if err != nil {
		return err
	}

	landUse, err := rasterio.LoadLandUse(req.LandUsePath)
	if err != nil {
		return err
	}

	classes := unmix.NewClassSet(c.cfg.ForestClasses...)
	dispatcher := &unmix.Dispatcher{
		Workers:      c.cfg.Workers(),
		ChunkRows:    c.cfg.ChunkRows,
		ProgressRows: c.cfg.ProgressRows,
		Progress: func(done, total int) {
			c.log.Info("Pipeline", "unmixing progress", map[string]interface{}{
				"rows_done":  done,
				"rows_total": total,
			})
		},
	}

	c.log.Info("Pipeline", "starting unmixing", map[string]interface{}{
		"width":   ndvi.Width(),
		"height":  ndvi.Height(),
		"workers": dispatcher.Workers,
	})
	raster, err := dispatcher.UnmixImage(ctx, ndvi, swir32, landUse,
		classes.Predicate(), unmix.PrecomputeTerms(forestE), unmix.PrecomputeTerms(nonForestE))
	if err != nil {
		c.log.Error("Pipeline", err, map[string]interface{}{"image": req.ImagePath})
		return err
	}

	if err := rasterio.WriteFractions(req.OutputPath, raster, ref); err != nil {
		c.log.Error("Pipeline", err, map[string]interface{}{"output": req.OutputPath})
		return err
	}

	if req.DumpPath != "" {
		if err := export.WriteDump(req.DumpPath, raster); err != nil {
			c.log.Error("Pipeline", err, map[string]interface{}{"dump": req.DumpPath})
			return err
		}
	}

	c.log.Info("Pipeline", "unmixing run completed", map[string]interface{}{
		"output":  req.OutputPath,
		"elapsed": time.Since(start).String(),
	})
	return nil
}
