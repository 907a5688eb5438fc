package rasterio

import (
	"math"

	"gocv.io/x/gocv"

	"spectral-unmixer/internal/unmix"
)

// LoadLandUse reads the land-cover classification raster at path as an
// integer code grid. Multi-band files contribute their first band only.
func LoadLandUse(path string) (*unmix.ClassGrid, error) {
	img := gocv.IMRead(path, gocv.IMReadUnchanged)
	if img.Empty() {
		return nil, unmix.NewInputError("cannot open land-use raster %s", path)
	}
	defer img.Close()

	band := img
	if img.Channels() > 1 {
		channels := gocv.Split(img)
		for i := 1; i < len(channels); i++ {
			channels[i].Close()
		}
		band = channels[0]
		defer band.Close()
	}

	vals, err := bandFloats(band)
	if err != nil {
		return nil, err
	}

	codes := make([]int32, len(vals))
	for i, v := range vals {
		codes[i] = int32(math.Round(float64(v)))
	}
	return unmix.ClassGridFromSlice(codes, img.Cols(), img.Rows())
}
