// Package codec reads and writes the on-disk formats of scene data kinds.
//
// A Codec maps between a file path and an in-memory value: raster images
// and array bundles decode to ndarray values, HDR images to float32 arrays
// and JSON documents to generic maps. Codecs are stateless and safe for
// concurrent use.
package codec

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/geomagical/geosynth/compress"
	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/format"
	"github.com/geomagical/geosynth/internal/log"
	"github.com/geomagical/geosynth/internal/options"
	"github.com/geomagical/geosynth/internal/pool"
)

// Codec decodes files into values and encodes values into files.
type Codec interface {
	// Decode reads the file at path. A missing file yields an error
	// matching errs.ErrNotFound and fs.ErrNotExist.
	Decode(path string) (any, error)
	// Encode writes v to path, replacing any existing file.
	Encode(path string, v any) error
	// Type reports the codec strategy.
	Type() format.CodecType
}

type settings struct {
	compression format.CompressionType
}

// Option configures a codec built by New.
type Option = options.Option[*settings]

// WithCompression selects the member compression of bundle codecs.
// Other codecs ignore it.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(s *settings) error {
		if _, err := compress.Method(ct); err != nil {
			return err
		}
		s.compression = ct

		return nil
	})
}

// New creates a Codec for the given strategy. key names the array when a
// bundle codec encodes a bare array; other codecs ignore it.
func New(t format.CodecType, key string, opts ...Option) (Codec, error) {
	s := &settings{compression: format.CompressionDeflate}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	switch t {
	case format.CodecImage:
		return &ImageCodec{}, nil
	case format.CodecBundle:
		return &BundleCodec{key: key, compression: s.compression}, nil
	case format.CodecBundleFloat16:
		return &Float16BundleCodec{BundleCodec{key: key, compression: s.compression}}, nil
	case format.CodecHDR:
		return &HDRCodec{}, nil
	case format.CodecJSON:
		return &JSONCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCodec, t)
	}
}

// openFile opens path for reading, mapping a missing file to errs.ErrNotFound.
func openFile(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %w", errs.ErrNotFound, err)
	}

	return f, err
}

// writeFile encodes into a pooled buffer and writes path only once encoding
// succeeded, so a failed encode never leaves a truncated file behind.
func writeFile(path string, encode func(w io.Writer) error) error {
	buf := pool.GetFileBuffer()
	defer pool.PutFileBuffer(buf)

	if err := encode(buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	log.Debug(log.CatCodec, "wrote file", "path", path, "bytes", buf.Len())

	return nil
}
