package unmix

import "fmt"

// Grid is a single-band float32 raster backed by one contiguous slice.
// During an unmixing run it is treated as read-only and is shared by all
// workers without copying; RowView hands out sub-slices of the same
// backing array.
type Grid struct {
	data   []float32
	width  int
	height int
}

// NewGrid allocates a zero-filled grid.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, NewInputError("invalid grid dimensions %dx%d", width, height)
	}
	return &Grid{
		data:   make([]float32, width*height),
		width:  width,
		height: height,
	}, nil
}

// GridFromSlice wraps an existing backing slice without copying it.
// The slice length must be exactly width*height.
func GridFromSlice(data []float32, width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, NewInputError("invalid grid dimensions %dx%d", width, height)
	}
	if len(data) != width*height {
		return nil, NewInputError("grid data length %d does not match %dx%d", len(data), width, height)
	}
	return &Grid{data: data, width: width, height: height}, nil
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// At returns the value at row i, column j.
func (g *Grid) At(i, j int) float32 {
	return g.data[i*g.width+j]
}

// Set writes the value at row i, column j. Callers must not mutate a
// grid once it has been handed to an unmixing run.
func (g *Grid) Set(i, j int, v float32) {
	g.data[i*g.width+j] = v
}

// RowView returns row i as a view into the backing slice.
func (g *Grid) RowView(i int) []float32 {
	return g.data[i*g.width : (i+1)*g.width]
}

// ClassGrid is a single-band integer raster of land-cover codes with the
// same layout and sharing discipline as Grid.
type ClassGrid struct {
	data   []int32
	width  int
	height int
}

// ClassGridFromSlice wraps an existing code slice without copying it.
func ClassGridFromSlice(data []int32, width, height int) (*ClassGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, NewInputError("invalid grid dimensions %dx%d", width, height)
	}
	if len(data) != width*height {
		return nil, NewInputError("class data length %d does not match %dx%d", len(data), width, height)
	}
	return &ClassGrid{data: data, width: width, height: height}, nil
}

func (g *ClassGrid) Width() int  { return g.width }
func (g *ClassGrid) Height() int { return g.height }

// At returns the land-cover code at row i, column j.
func (g *ClassGrid) At(i, j int) int32 {
	return g.data[i*g.width+j]
}

type shaped interface {
	Width() int
	Height() int
}

func sameShape(a, b shaped) bool {
	return a.Width() == b.Width() && a.Height() == b.Height()
}

func shapeString(g shaped) string {
	return fmt.Sprintf("%dx%d", g.Width(), g.Height())
}
