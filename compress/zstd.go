package compress

// ZstdCompressor compresses members as standard Zstandard frames.
//
// The implementation backing Compress and Decompress is selected at build
// time, see zstd_pure.go and zstd_cgo.go.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
