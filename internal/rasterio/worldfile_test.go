package rasterio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	raster := filepath.Join(dir, "fractions.tif")

	ref := GeoReference{
		Transform:  [6]float64{443200, 30, 0, 3751320, 0, -30},
		Projection: `PROJCS["WGS 84 / UTM zone 50N"]`,
	}
	require.NoError(t, WriteSidecars(raster, ref))

	got, err := ReadSidecars(raster)
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		assert.InDelta(t, ref.Transform[i], got.Transform[i], 1e-9, "coefficient %d", i)
	}
	assert.Equal(t, ref.Projection, got.Projection)
}

func TestWorldFile_CenterAnchoring(t *testing.T) {
	// The world file anchors on the pixel center, the transform on the
	// corner: a 30m pixel at corner (0, 0) must serialize as (15, -15).
	content := formatWorldFile([6]float64{0, 30, 0, 0, 0, -30})
	lines := []string{"30", "0", "0", "-30", "15", "-15"}
	assert.Equal(t, lines[0]+"\n"+lines[1]+"\n"+lines[2]+"\n"+lines[3]+"\n"+lines[4]+"\n"+lines[5]+"\n", content)

	back, err := parseWorldFile(content)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, back[0], 1e-12)
	assert.InDelta(t, 0.0, back[3], 1e-12)
}

func TestParseWorldFile_Invalid(t *testing.T) {
	_, err := parseWorldFile("30\n0\n0\n")
	require.Error(t, err)

	_, err = parseWorldFile("a\nb\nc\nd\ne\nf\n")
	require.Error(t, err)
}

func TestReadSidecars_MissingFilesGiveIdentity(t *testing.T) {
	got, err := ReadSidecars(filepath.Join(t.TempDir(), "nothing.tif"))
	require.NoError(t, err)
	assert.Equal(t, Identity(), got)
}

func TestReadSidecars_ProjectionOnly(t *testing.T) {
	dir := t.TempDir()
	raster := filepath.Join(dir, "scene.tif")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.prj"), []byte("GEOGCS[\"WGS 84\"]\n"), 0o644))

	got, err := ReadSidecars(raster)
	require.NoError(t, err)
	assert.Equal(t, Identity().Transform, got.Transform)
	assert.Equal(t, `GEOGCS["WGS 84"]`, got.Projection)
}
