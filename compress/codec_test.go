package compress

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/format"
)

// depthPayload mimics a float32 depth map: smooth and highly compressible.
func depthPayload(n int) []byte {
	out := make([]byte, 0, n*4)
	for i := range n {
		bits := math.Float32bits(1.5 + float32(i%64)*0.01)
		out = append(out, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}

	return out
}

func TestCreateCodec(t *testing.T) {
	tests := []struct {
		ct   format.CompressionType
		want Codec
	}{
		{format.CompressionNone, NoOpCompressor{}},
		{format.CompressionZstd, ZstdCompressor{}},
		{format.CompressionS2, S2Compressor{}},
		{format.CompressionLZ4, LZ4Compressor{}},
	}

	for _, tt := range tests {
		t.Run(tt.ct.String(), func(t *testing.T) {
			codec, err := CreateCodec(tt.ct, "bundle")
			require.NoError(t, err)
			require.IsType(t, tt.want, codec)
		})
	}
}

func TestCreateCodec_Invalid(t *testing.T) {
	_, err := CreateCodec(format.CompressionDeflate, "bundle")
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
	require.Contains(t, err.Error(), "bundle")

	_, err = CreateCodec(format.CompressionType(0xFF), "archive")
	require.ErrorIs(t, err, errs.ErrInvalidCompression)

	_, err = GetCodec(format.CompressionType(0xFF))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestCodecs_RoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"empty": {},
		"short": []byte("depth"),
		"depth": depthPayload(16 * 1024),
	}

	for _, ct := range []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		for name, payload := range payloads {
			t.Run(ct.String()+"/"+name, func(t *testing.T) {
				compressed, err := codec.Compress(payload)
				require.NoError(t, err)

				decompressed, err := codec.Decompress(compressed)
				require.NoError(t, err)
				require.True(t, bytes.Equal(payload, decompressed))
			})
		}
	}
}

func TestCodecs_Shrink(t *testing.T) {
	payload := depthPayload(64 * 1024)

	for _, ct := range []format.CompressionType{format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		compressed, err := codec.Compress(payload)
		require.NoError(t, err)
		require.Less(t, len(compressed), len(payload)/2, ct.String())
	}
}

func TestCodecs_CorruptInput(t *testing.T) {
	garbage := []byte("this is not a compressed block at all, just text")

	_, err := NewZstdCompressor().Decompress(garbage)
	require.Error(t, err)

	_, err = NewS2Compressor().Decompress(garbage)
	require.Error(t, err)
}

func TestLZ4_HighlyCompressible(t *testing.T) {
	// ratios beyond 4x force the decode buffer to grow
	payload := make([]byte, 1<<20)
	codec := NewLZ4Compressor()

	compressed, err := codec.Compress(payload)
	require.NoError(t, err)
	require.Less(t, len(compressed)*4, len(payload))

	decompressed, err := codec.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, payload, decompressed)
}

func BenchmarkCodecs_Compress(b *testing.B) {
	payload := depthPayload(256 * 1024)

	for _, ct := range []format.CompressionType{format.CompressionZstd, format.CompressionS2, format.CompressionLZ4} {
		codec, _ := GetCodec(ct)
		b.Run(ct.String(), func(b *testing.B) {
			b.SetBytes(int64(len(payload)))
			for b.Loop() {
				_, _ = codec.Compress(payload)
			}
		})
	}
}
