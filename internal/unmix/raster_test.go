package unmix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFractionRaster_DetectsMissingRows(t *testing.T) {
	r := newFractionRaster(4, 3)
	r.setRow(0, rowResult{index: 0, bands: [3][]float32{
		make([]float32, 4), make([]float32, 4), make([]float32, 4),
	}})
	r.setRow(2, rowResult{index: 2, bands: [3][]float32{
		make([]float32, 4), make([]float32, 4), make([]float32, 4),
	}})

	err := r.checkComplete()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIncompleteRaster)
	assert.Contains(t, err.Error(), "1 of 3")
}

func TestFractionRaster_CompleteAfterAllRows(t *testing.T) {
	r := newFractionRaster(2, 2)
	for i := 0; i < 2; i++ {
		r.setRow(i, rowResult{index: i, bands: [3][]float32{
			{0.1, 0.2}, {0.3, 0.4}, {0.6, 0.4},
		}})
	}
	require.NoError(t, r.checkComplete())
	assert.Equal(t, Fractions{0.2, 0.4, 0.4}, r.Pixel(1, 1))
}

func TestRasterFromBands_ValidatesLengths(t *testing.T) {
	good := make([]float32, 6)
	_, err := RasterFromBands(3, 2, good, good, good)
	require.NoError(t, err)

	_, err = RasterFromBands(3, 2, good, make([]float32, 5), good)
	require.Error(t, err)
	assert.True(t, IsInputError(err))

	_, err = RasterFromBands(0, 2, nil, nil, nil)
	require.Error(t, err)
}

func TestRasterFromBands_RoundTripsPixels(t *testing.T) {
	r, err := RasterFromBands(2, 1,
		[]float32{0.5, 0.1},
		[]float32{0.25, 0.2},
		[]float32{0.25, 0.7},
	)
	require.NoError(t, err)
	require.NoError(t, r.checkComplete())
	assert.Equal(t, Fractions{0.5, 0.25, 0.25}, r.Pixel(0, 0))
	assert.Equal(t, Fractions{0.1, 0.2, 0.7}, r.Pixel(0, 1))
	assert.Equal(t, float32(0.2), r.At(1, 0, 1))
}
