// Package encoding implements the byte formats geosynth reads and writes.
//
// Three formats are supported:
//
//   - NPY: a single numpy array record (magic, version, a Python dict
//     literal header padded to 64 bytes, then raw elements).
//   - NPZ: a zip container of NPY records, one per named array. Members are
//     written with the compression selected through the compress package and
//     read back with any of the methods it registers.
//   - RGBE: Radiance .hdr images with run-length encoded scanlines, decoded
//     to float32 (H, W, 3) arrays.
//
// Decoding accepts big-endian and Fortran-ordered NPY records and converts
// them to the little-endian row-major layout of ndarray.Array. Encoding
// always produces little-endian, row-major, version 1.0 records that numpy
// loads unchanged.
//
// # Usage
//
//	bundle, err := encoding.ReadBundleFile("scene/depth.npz")
//	depth := bundle["depth"]
//
//	f, _ := os.Create("scene/hdr_rgb.hdr")
//	err = encoding.EncodeRGBE(f, img)
package encoding
