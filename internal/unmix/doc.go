// Package unmix implements the constrained linear unmixing engine: a
// closed-form per-pixel solver over two spectral indices and three
// endmembers, and a row-parallel driver that applies it across a full
// raster using shared read-only buffers.
package unmix
