// Package format defines the enumerated types shared across geosynth packages:
// codec strategies, bundle member compression and dataset variants.
package format

import (
	"fmt"
	"strings"

	"github.com/geomagical/geosynth/errs"
)

type (
	CodecType       uint8
	CompressionType uint8
)

const (
	CodecImage         CodecType = 0x1 // CodecImage represents 8/16-bit raster images (png, tiff, bmp).
	CodecBundle        CodecType = 0x2 // CodecBundle represents compressed array bundles (npz).
	CodecBundleFloat16 CodecType = 0x3 // CodecBundleFloat16 represents npz bundles narrowed to float16 on disk.
	CodecHDR           CodecType = 0x4 // CodecHDR represents Radiance RGBE high dynamic range images.
	CodecJSON          CodecType = 0x5 // CodecJSON represents structured JSON documents.

	CompressionNone    CompressionType = 0x1 // CompressionNone stores bundle members uncompressed.
	CompressionZstd    CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2      CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4     CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
	CompressionDeflate CompressionType = 0x5 // CompressionDeflate represents deflate, the numpy default.
)

func (c CodecType) String() string {
	switch c {
	case CodecImage:
		return "Image"
	case CodecBundle:
		return "Bundle"
	case CodecBundleFloat16:
		return "BundleFloat16"
	case CodecHDR:
		return "HDR"
	case CodecJSON:
		return "JSON"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is one of the defined codec types.
func (c CodecType) Valid() bool {
	return c >= CodecImage && c <= CodecJSON
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionDeflate:
		return "Deflate"
	default:
		return "Unknown"
	}
}

// ParseCompression parses a case-insensitive compression name such as "zstd".
func ParseCompression(s string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "store":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	case "deflate", "":
		return CompressionDeflate, nil
	default:
		return 0, fmt.Errorf("%w: %q", errs.ErrInvalidCompression, s)
	}
}
