// Package compress provides the member compressors used inside geosynth
// bundles and dataset archives.
//
// Bundles are zip containers of array records. numpy writes their members
// with deflate, which the zip package handles natively and which remains the
// default. This package adds block codecs for the remaining compression
// types and adapts them to the zip Compressor/Decompressor hooks so that a
// bundle writer or archive reader can register them per instance.
//
// # Architecture
//
//	type Codec interface {
//	    Compress(data []byte) ([]byte, error)
//	    Decompress(data []byte) ([]byte, error)
//	}
//
// Supported codecs:
//   - None: members stored as-is (zip method 0)
//   - Zstd: Zstandard frames (zip method 93, readable by other zip tools)
//   - S2:   Snappy-compatible S2 blocks (private zip method)
//   - LZ4:  LZ4 blocks (private zip method)
//
// Deflate is not a Codec: the zip package already implements it.
//
// # Zstd backends
//
// The pure Go klauspost/compress implementation is used by default. Building
// with the gozstd tag and cgo enabled switches to the libzstd backed
// valyala/gozstd implementation.
//
// # Thread Safety
//
// All codecs are stateless values and safe for concurrent use. Encoders and
// decoders are pooled internally.
package compress
