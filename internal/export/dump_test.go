package export

import (
	"bytes"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spectral-unmixer/internal/unmix"
)

func testRaster(t *testing.T, width, height int) *unmix.FractionRaster {
	t.Helper()
	rng := rand.New(rand.NewSource(11))

	bands := make([][]float32, 3)
	for b := range bands {
		bands[b] = make([]float32, width*height)
		for i := range bands[b] {
			bands[b][i] = float32(rng.Intn(1001)) / 1000
		}
	}
	r, err := unmix.RasterFromBands(width, height, bands[0], bands[1], bands[2])
	require.NoError(t, err)
	return r
}

func TestDump_RoundTripFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fractions.frd")
	want := testRaster(t, 19, 7)

	require.NoError(t, WriteDump(path, want))

	got, err := LoadDump(path)
	require.NoError(t, err)
	require.Equal(t, want.Width(), got.Width())
	require.Equal(t, want.Height(), got.Height())
	for b := 0; b < 3; b++ {
		if diff := cmp.Diff(want.Band(b), got.Band(b)); diff != "" {
			t.Fatalf("band %d differs after round trip:\n%s", b, diff)
		}
	}
}

func TestDump_RoundTripStream(t *testing.T) {
	want := testRaster(t, 3, 5)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, want))

	got, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, want.Band(2), got.Band(2))
}

func TestDecode_RejectsBadMagic(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("XXXX12345678")))
	require.Error(t, err)
	assert.True(t, unmix.IsInputError(err))
}

func TestDecode_RejectsTruncatedHeader(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("FR")))
	require.Error(t, err)
	assert.True(t, unmix.IsInputError(err))
}

func TestDecode_RejectsTruncatedPayload(t *testing.T) {
	want := testRaster(t, 4, 4)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, want))
	truncated := buf.Bytes()[:buf.Len()-8]

	_, err := Decode(bytes.NewReader(truncated))
	require.Error(t, err)
}

func TestLoadDump_MissingFile(t *testing.T) {
	_, err := LoadDump(filepath.Join(t.TempDir(), "absent.frd"))
	require.Error(t, err)
	assert.True(t, unmix.IsInputError(err))
}
