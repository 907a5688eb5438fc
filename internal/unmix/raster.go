package unmix

import "fmt"

// FractionRaster is the assembled 3-band abundance output. Band order is
// class0, class1, class2; each band shares the input grids' spatial
// shape. Rows are written exactly once, addressed by row index, never by
// arrival order.
type FractionRaster struct {
	bands  [3][]float32
	width  int
	height int
	filled []bool
}

func newFractionRaster(width, height int) *FractionRaster {
	r := &FractionRaster{
		width:  width,
		height: height,
		filled: make([]bool, height),
	}
	for b := range r.bands {
		r.bands[b] = make([]float32, width*height)
	}
	return r
}

// RasterFromBands wraps three complete band slices as a FractionRaster.
// Each slice must have length width*height. Used when re-loading a
// previously exported raster.
func RasterFromBands(width, height int, class0, class1, class2 []float32) (*FractionRaster, error) {
	if width <= 0 || height <= 0 {
		return nil, NewInputError("invalid raster dimensions %dx%d", width, height)
	}
	r := &FractionRaster{
		bands:  [3][]float32{class0, class1, class2},
		width:  width,
		height: height,
		filled: make([]bool, height),
	}
	for b, band := range r.bands {
		if len(band) != width*height {
			return nil, NewInputError("band %d length %d does not match %dx%d", b, len(band), width, height)
		}
	}
	for i := range r.filled {
		r.filled[i] = true
	}
	return r, nil
}

func (r *FractionRaster) Width() int  { return r.width }
func (r *FractionRaster) Height() int { return r.height }

// At returns the fraction of endmember class band at row i, column j.
func (r *FractionRaster) At(band, i, j int) float32 {
	return r.bands[band][i*r.width+j]
}

// Band returns the full plane for one endmember class. The slice is a
// view; callers must treat it as read-only.
func (r *FractionRaster) Band(band int) []float32 {
	return r.bands[band]
}

// Pixel returns all three fractions at row i, column j.
func (r *FractionRaster) Pixel(i, j int) Fractions {
	off := i*r.width + j
	return Fractions{r.bands[0][off], r.bands[1][off], r.bands[2][off]}
}

// setRow stores one completed row. Rows are disjoint between workers, so
// concurrent calls for distinct indices need no locking; the dispatcher
// routes all calls through a single assembling goroutine regardless.
func (r *FractionRaster) setRow(i int, row rowResult) {
	off := i * r.width
	for b := 0; b < 3; b++ {
		copy(r.bands[b][off:off+r.width], row.bands[b])
	}
	r.filled[i] = true
}

// checkComplete fails if any row never arrived. An incomplete raster is
// never surfaced to callers.
func (r *FractionRaster) checkComplete() error {
	missing := 0
	for _, ok := range r.filled {
		if !ok {
			missing++
		}
	}
	if missing > 0 {
		return fmt.Errorf("%w: %d of %d rows missing", ErrIncompleteRaster, missing, r.height)
	}
	return nil
}

// rowResult is one worker's output for a single row.
type rowResult struct {
	index int
	bands [3][]float32
}
