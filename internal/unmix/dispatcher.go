package unmix

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

const (
	// defaultChunkRows is how many rows one dispatch unit carries;
	// chunking amortizes scheduling overhead on large rasters.
	defaultChunkRows = 10

	// defaultProgressRows is how many completed rows pass between two
	// progress notifications when a callback is installed.
	defaultProgressRows = 100
)

// Dispatcher runs the unmixing model over a full image with a bounded
// worker pool. The zero value is usable: half the logical CPUs, 10-row
// chunks, no progress reporting.
type Dispatcher struct {
	// Workers bounds the pool; 0 selects half the logical CPUs, floor 1.
	Workers int

	// ChunkRows is the number of rows grouped into one dispatch unit;
	// 0 selects the default of 10.
	ChunkRows int

	// Progress, when non-nil, is called from the assembling goroutine
	// every ProgressRows completed rows and once at completion. Purely
	// informational.
	Progress func(done, total int)

	// ProgressRows is the notification stride; 0 selects 100.
	ProgressRows int
}

// rowSpan is a half-open range of rows forming one dispatch unit.
type rowSpan struct {
	start, end int
}

// UnmixImage applies the per-pixel model to every pixel of the image.
// band1, band2 and landUse are shared read-only across all workers for
// the duration of the call; their shapes must match exactly. Pixels
// whose land-cover code satisfies isForest evaluate against forestTerms,
// all others against nonForestTerms.
//
// Any worker failure or context cancellation aborts the whole run: the
// pool is drained, no partial raster is returned, and the first error is
// propagated. Row completion order is unspecified; assembly is addressed
// by row index only.
func (d *Dispatcher) UnmixImage(
	ctx context.Context,
	band1, band2 *Grid,
	landUse *ClassGrid,
	isForest ClassPredicate,
	forestTerms, nonForestTerms Terms,
) (*FractionRaster, error) {
	if !sameShape(band1, band2) {
		return nil, NewInputError("spectral band shapes differ: %s vs %s",
			shapeString(band1), shapeString(band2))
	}
	if !sameShape(band1, landUse) {
		return nil, NewInputError("land-use shape %s does not match spectral shape %s",
			shapeString(landUse), shapeString(band1))
	}
	if isForest == nil {
		return nil, NewInputError("nil class predicate")
	}

	width, height := band1.Width(), band1.Height()
	workers := d.workerCount()
	chunk := d.chunkRows()

	g, ctx := errgroup.WithContext(ctx)

	jobs := make(chan rowSpan)
	results := make(chan rowResult, workers)

	g.Go(func() error {
		defer close(jobs)
		for start := 0; start < height; start += chunk {
			end := start + chunk
			if end > height {
				end = height
			}
			select {
			case jobs <- rowSpan{start: start, end: end}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	// The worker pool proper. Worker exits are tracked separately from
	// the errgroup so the results channel can be closed as soon as the
	// last worker stops, before Wait is reachable.
	workerDone := make(chan struct{}, workers)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			defer func() { workerDone <- struct{}{} }()
			for span := range jobs {
				for i := span.start; i < span.end; i++ {
					row := unmixRow(i, width, band1, band2, landUse, isForest, forestTerms, nonForestTerms)
					select {
					case results <- row:
					case <-ctx.Done():
						return ctx.Err()
					}
				}
			}
			return nil
		})
	}
	go func() {
		for w := 0; w < workers; w++ {
			<-workerDone
		}
		close(results)
	}()

	// Assembly happens on the calling goroutine: it is the sole writer
	// of the output raster, indexed by row, independent of completion
	// order.
	out := newFractionRaster(width, height)
	stride := d.progressRows()
	done := 0
	for row := range results {
		out.setRow(row.index, row)
		done++
		if d.Progress != nil && (done%stride == 0 || done == height) {
			d.Progress(done, height)
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := out.checkComplete(); err != nil {
		return nil, err
	}
	return out, nil
}

// unmixRow evaluates one full row against the per-pixel class gate.
func unmixRow(
	i, width int,
	band1, band2 *Grid,
	landUse *ClassGrid,
	isForest ClassPredicate,
	forestTerms, nonForestTerms Terms,
) rowResult {
	row := rowResult{index: i}
	for b := range row.bands {
		row.bands[b] = make([]float32, width)
	}

	b1 := band1.RowView(i)
	b2 := band2.RowView(i)
	for j := 0; j < width; j++ {
		terms := nonForestTerms
		if isForest(landUse.At(i, j)) {
			terms = forestTerms
		}
		f := UnmixPixel(float64(b1[j]), float64(b2[j]), terms)
		row.bands[0][j] = f[0]
		row.bands[1][j] = f[1]
		row.bands[2][j] = f[2]
	}
	return row
}

func (d *Dispatcher) workerCount() int {
	if d.Workers > 0 {
		return d.Workers
	}
	n := runtime.NumCPU() / 2
	if n < 1 {
		n = 1
	}
	return n
}

func (d *Dispatcher) chunkRows() int {
	if d.ChunkRows > 0 {
		return d.ChunkRows
	}
	return defaultChunkRows
}

func (d *Dispatcher) progressRows() int {
	if d.ProgressRows > 0 {
		return d.ProgressRows
	}
	return defaultProgressRows
}
