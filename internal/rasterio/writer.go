package rasterio

import (
	"fmt"

	"gocv.io/x/gocv"

	"spectral-unmixer/internal/unmix"
)

// WriteFractions persists the 3-band float32 fraction raster to path
// and emits the georeferencing sidecars. The extension picks the format;
// TIFF is the one that preserves float values end to end.
func WriteFractions(path string, raster *unmix.FractionRaster, ref GeoReference) error {
	rows, cols := raster.Height(), raster.Width()

	planes := make([]gocv.Mat, 3)
	// OpenCV interprets 3-channel data as BGR and reverses it on write,
	// so stack the planes as class2, class1, class0 to land the file
	// bands in class0, class1, class2 order.
	for b := 0; b < 3; b++ {
		plane := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV32F)
		dst, err := plane.DataPtrFloat32()
		if err != nil {
			plane.Close()
			closePlanes(planes[:b])
			return &unmix.ResourceError{Op: "output plane allocation", Err: err}
		}
		copy(dst, raster.Band(2-b))
		planes[b] = plane
	}
	defer closePlanes(planes)

	merged := gocv.NewMat()
	defer merged.Close()
	gocv.Merge(planes, &merged)

	if ok := gocv.IMWrite(path, merged); !ok {
		return &unmix.ResourceError{Op: "raster write", Err: fmt.Errorf("cannot write %s", path)}
	}
	return WriteSidecars(path, ref)
}

func closePlanes(planes []gocv.Mat) {
	for i := range planes {
		planes[i].Close()
	}
}
