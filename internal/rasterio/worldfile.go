package rasterio

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// GeoReference ties a raster to map coordinates: a GDAL-style affine
// transform (origin x, pixel width, row rotation, origin y, column
// rotation, pixel height) plus a projection WKT string. OpenCV carries
// no geospatial metadata, so georeferencing travels as ESRI world-file
// (.tfw) and .prj sidecars next to the raster.
type GeoReference struct {
	Transform  [6]float64
	Projection string
}

// Identity is the georeference used when no sidecars exist: unit pixels
// anchored at the origin, no projection.
func Identity() GeoReference {
	return GeoReference{Transform: [6]float64{0, 1, 0, 0, 0, -1}}
}

// ReadSidecars loads the world file and projection next to rasterPath.
// Missing sidecars are not an error; the zero fields stay at Identity.
func ReadSidecars(rasterPath string) (GeoReference, error) {
	ref := Identity()

	wf := sidecarPath(rasterPath, ".tfw")
	if data, err := os.ReadFile(wf); err == nil {
		t, err := parseWorldFile(string(data))
		if err != nil {
			return ref, fmt.Errorf("parsing world file %s: %w", wf, err)
		}
		ref.Transform = t
	}

	pf := sidecarPath(rasterPath, ".prj")
	if data, err := os.ReadFile(pf); err == nil {
		ref.Projection = strings.TrimSpace(string(data))
	}

	return ref, nil
}

// WriteSidecars persists ref next to rasterPath. The projection sidecar
// is skipped when the WKT is empty.
func WriteSidecars(rasterPath string, ref GeoReference) error {
	wf := sidecarPath(rasterPath, ".tfw")
	if err := os.WriteFile(wf, []byte(formatWorldFile(ref.Transform)), 0o644); err != nil {
		return fmt.Errorf("writing world file %s: %w", wf, err)
	}
	if ref.Projection != "" {
		pf := sidecarPath(rasterPath, ".prj")
		if err := os.WriteFile(pf, []byte(ref.Projection+"\n"), 0o644); err != nil {
			return fmt.Errorf("writing projection file %s: %w", pf, err)
		}
	}
	return nil
}

func sidecarPath(rasterPath, ext string) string {
	base := strings.TrimSuffix(rasterPath, filepath.Ext(rasterPath))
	return base + ext
}

// parseWorldFile converts the six world-file lines into a GDAL-style
// transform. World files anchor on the center of the top-left pixel;
// the transform anchors on its corner, hence the half-pixel shift.
func parseWorldFile(content string) ([6]float64, error) {
	var t [6]float64
	fields := strings.Fields(content)
	if len(fields) < 6 {
		return t, fmt.Errorf("expected 6 coefficients, got %d", len(fields))
	}
	vals := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return t, fmt.Errorf("coefficient %d: %w", i+1, err)
		}
		vals[i] = v
	}

	// World-file order: A (pixel width), D, B, E (pixel height), C, F.
	a, d, b, e, cx, cy := vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]
	t[1], t[2] = a, b
	t[4], t[5] = d, e
	t[0] = cx - a/2 - b/2
	t[3] = cy - d/2 - e/2
	return t, nil
}

func formatWorldFile(t [6]float64) string {
	a, b := t[1], t[2]
	d, e := t[4], t[5]
	cx := t[0] + a/2 + b/2
	cy := t[3] + d/2 + e/2

	var sb strings.Builder
	for _, v := range []float64{a, d, b, e, cx, cy} {
		sb.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		sb.WriteByte('\n')
	}
	return sb.String()
}
