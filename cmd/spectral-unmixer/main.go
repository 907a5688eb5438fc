package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"spectral-unmixer/internal/config"
	"spectral-unmixer/internal/logger"
	"spectral-unmixer/internal/pipeline"
	"spectral-unmixer/internal/shutdown"
)

const version = "1.0.0"

type options struct {
	imagePath   string
	landUsePath string
	outputPath  string
	dumpPath    string
	configPath  string

	nir, red, swir3, swir2 int
	forestClasses          []int32
	verbose                bool
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "spectral-unmixer",
		Short: "Estimate per-pixel vegetation fractions by linear spectral unmixing",
		Long: `spectral-unmixer derives NDVI and SWIR32 indices from a multiband
raster and decomposes every pixel into fractions of three reference
surface-cover signatures, switching between a forest and a non-forest
endmember set according to a land-cover classification raster.`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.imagePath, "image", "i", "", "multiband input raster (required)")
	flags.StringVarP(&opts.landUsePath, "land-use", "l", "", "land-cover classification raster (required)")
	flags.StringVarP(&opts.outputPath, "output", "o", "", "3-band fraction raster to write (required)")
	flags.StringVar(&opts.dumpPath, "dump", "", "optional compressed binary dump of the fraction raster")
	flags.StringVarP(&opts.configPath, "config", "c", "", "TOML configuration file")
	flags.IntVar(&opts.nir, "nir", 0, "1-based NIR band (overrides config)")
	flags.IntVar(&opts.red, "red", 0, "1-based Red band (overrides config)")
	flags.IntVar(&opts.swir3, "swir3", 0, "1-based SWIR3 band (overrides config)")
	flags.IntVar(&opts.swir2, "swir2", 0, "1-based SWIR2 band (overrides config)")
	flags.Int32SliceVar(&opts.forestClasses, "forest-classes", nil, "land-cover codes mapped to the forest endmembers (overrides config)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	for _, f := range []string{"image", "land-use", "output"} {
		cobra.CheckErr(cmd.MarkFlagRequired(f))
	}
	return cmd
}

func run(ctx context.Context, opts *options) error {
	level := zerolog.InfoLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	log := logger.NewConsoleLogger(level)

	ctx, cancel := shutdown.Context(ctx, log)
	defer cancel()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log.Info("Main", "configuration resolved", map[string]interface{}{
		"workers":        cfg.Workers(),
		"chunk_rows":     cfg.ChunkRows,
		"forest_classes": cfg.ForestClasses,
	})

	coordinator := pipeline.NewCoordinator(cfg, log)
	return coordinator.Run(ctx, pipeline.Request{
		ImagePath:   opts.imagePath,
		LandUsePath: opts.landUsePath,
		OutputPath:  opts.outputPath,
		DumpPath:    opts.dumpPath,
	})
}

// loadConfig resolves the effective configuration: file (or defaults)
// first, then flag overrides, then validation.
func loadConfig(opts *options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	if opts.nir > 0 {
		cfg.Bands.NIR = opts.nir
	}
	if opts.red > 0 {
		cfg.Bands.Red = opts.red
	}
	if opts.swir3 > 0 {
		cfg.Bands.SWIR3 = opts.swir3
	}
	if opts.swir2 > 0 {
		cfg.Bands.SWIR2 = opts.swir2
	}
	if len(opts.forestClasses) > 0 {
		cfg.ForestClasses = opts.forestClasses
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
