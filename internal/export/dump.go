// Package export reads and writes the compact binary dump of a fraction
// raster: a fixed header with the dimensions followed by the three
// zstd-compressed float32 band planes. Downstream batch pipelines load
// it without a TIFF decoder.
package export

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/zstd"

	"spectral-unmixer/internal/unmix"
)

const magic = "FRD1"

// WriteDump stores raster at path in dump format.
func WriteDump(path string, raster *unmix.FractionRaster) error {
	f, err := os.Create(path)
	if err != nil {
		return &unmix.ResourceError{Op: "dump create", Err: err}
	}
	defer f.Close()

	if err := Encode(f, raster); err != nil {
		return err
	}
	return f.Sync()
}

// LoadDump reads a raster previously written by WriteDump.
func LoadDump(path string) (*unmix.FractionRaster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, unmix.NewInputError("cannot open dump %s: %v", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes the dump representation of raster to w.
func Encode(w io.Writer, raster *unmix.FractionRaster) error {
	bw := bufio.NewWriter(w)

	header := make([]byte, 12)
	copy(header, magic)
	binary.LittleEndian.PutUint32(header[4:], uint32(raster.Width()))
	binary.LittleEndian.PutUint32(header[8:], uint32(raster.Height()))
	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("dump header: %w", err)
	}

	enc, err := zstd.NewWriter(bw,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
	)
	if err != nil {
		return &unmix.ResourceError{Op: "zstd encoder", Err: err}
	}

	buf := make([]byte, raster.Width()*raster.Height()*4)
	for b := 0; b < 3; b++ {
		for i, v := range raster.Band(b) {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
		}
		if _, err := enc.Write(buf); err != nil {
			enc.Close()
			return fmt.Errorf("dump band %d: %w", b, err)
		}
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("zstd close: %w", err)
	}
	return bw.Flush()
}

// Decode reads a dump stream back into a FractionRaster.
func Decode(r io.Reader) (*unmix.FractionRaster, error) {
	header := make([]byte, 12)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, unmix.NewInputError("truncated dump header: %v", err)
	}
	if string(header[:4]) != magic {
		return nil, unmix.NewInputError("not a fraction dump (bad magic %q)", header[:4])
	}
	width := int(binary.LittleEndian.Uint32(header[4:]))
	height := int(binary.LittleEndian.Uint32(header[8:]))
	if width <= 0 || height <= 0 {
		return nil, unmix.NewInputError("invalid dump dimensions %dx%d", width, height)
	}

	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, &unmix.ResourceError{Op: "zstd decoder", Err: err}
	}
	defer dec.Close()

	n := width * height
	raw := make([]byte, 3*n*4)
	if _, err := io.ReadFull(dec, raw); err != nil {
		return nil, unmix.NewInputError("truncated dump payload: %v", err)
	}

	bands := make([][]float32, 3)
	for b := 0; b < 3; b++ {
		bands[b] = make([]float32, n)
		off := b * n * 4
		for i := 0; i < n; i++ {
			bits := binary.LittleEndian.Uint32(raw[off+i*4:])
			bands[b][i] = math.Float32frombits(bits)
		}
	}
	return unmix.RasterFromBands(width, height, bands[0], bands[1], bands[2])
}
