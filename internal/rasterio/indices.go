// Package rasterio adapts raster files to the unmixing engine: it
// derives the NDVI and SWIR32 index grids from a multiband image, loads
// the land-cover classification, and writes the 3-band fraction raster,
// with georeferencing carried by world-file sidecars.
package rasterio

import (
	"fmt"

	"gocv.io/x/gocv"

	"spectral-unmixer/internal/unmix"
)

// BandSelection names the 1-based source bands for the two indices.
type BandSelection struct {
	NIR, Red, SWIR3, SWIR2 int
}

// ComputeIndices opens the raster at path and derives the two index
// grids: NDVI = (NIR-Red)/(NIR+Red) and SWIR32 = SWIR3/SWIR2. Pixels
// whose denominator is zero produce 0, matching the field tool's
// convention. Band indices outside [1, bandCount] are an input error.
func ComputeIndices(path string, sel BandSelection) (ndvi, swir32 *unmix.Grid, ref GeoReference, err error) {
	ref = Identity()

	img := gocv.IMRead(path, gocv.IMReadUnchanged)
	if img.Empty() {
		return nil, nil, ref, unmix.NewInputError("cannot open raster %s", path)
	}
	defer img.Close()

	channels := gocv.Split(img)
	defer func() {
		for i := range channels {
			channels[i].Close()
		}
	}()

	for _, b := range []struct {
		name  string
		index int
	}{
		{"NIR", sel.NIR},
		{"Red", sel.Red},
		{"SWIR3", sel.SWIR3},
		{"SWIR2", sel.SWIR2},
	} {
		if b.index < 1 || b.index > len(channels) {
			return nil, nil, ref, unmix.NewInputError(
				"invalid %s band %d: raster %s has %d bands", b.name, b.index, path, len(channels))
		}
	}

	nir, err := bandFloats(channels[sel.NIR-1])
	if err != nil {
		return nil, nil, ref, fmt.Errorf("reading NIR band: %w", err)
	}
	red, err := bandFloats(channels[sel.Red-1])
	if err != nil {
		return nil, nil, ref, fmt.Errorf("reading Red band: %w", err)
	}
	swir3, err := bandFloats(channels[sel.SWIR3-1])
	if err != nil {
		return nil, nil, ref, fmt.Errorf("reading SWIR3 band: %w", err)
	}
	swir2, err := bandFloats(channels[sel.SWIR2-1])
	if err != nil {
		return nil, nil, ref, fmt.Errorf("reading SWIR2 band: %w", err)
	}

	width, height := img.Cols(), img.Rows()
	ndviData := make([]float32, len(nir))
	swirData := make([]float32, len(nir))
	for i := range nir {
		if den := nir[i] + red[i]; den != 0 {
			ndviData[i] = (nir[i] - red[i]) / den
		}
		if swir2[i] != 0 {
			swirData[i] = swir3[i] / swir2[i]
		}
	}

	ndvi, err = unmix.GridFromSlice(ndviData, width, height)
	if err != nil {
		return nil, nil, ref, err
	}
	swir32, err = unmix.GridFromSlice(swirData, width, height)
	if err != nil {
		return nil, nil, ref, err
	}

	ref, err = ReadSidecars(path)
	if err != nil {
		return nil, nil, ref, err
	}
	return ndvi, swir32, ref, nil
}

// bandFloats copies one channel out as float32, converting from
// whatever depth the source raster stores.
func bandFloats(ch gocv.Mat) ([]float32, error) {
	f := gocv.NewMat()
	defer f.Close()
	ch.ConvertTo(&f, gocv.MatTypeCV32F)

	src, err := f.DataPtrFloat32()
	if err != nil {
		return nil, &unmix.ResourceError{Op: "band conversion", Err: err}
	}
	out := make([]float32, len(src))
	copy(out, src)
	return out, nil
}
