package codec

import (
	"fmt"
	"io"

	"github.com/geomagical/geosynth/encoding"
	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/format"
	"github.com/geomagical/geosynth/ndarray"
)

// BundleCodec stores arrays as NPZ bundles.
//
// Decode returns the bare *ndarray.Array when the bundle holds exactly one
// array and an ndarray.Bundle otherwise. Encode accepts either; a bare
// array is stored under the codec key.
type BundleCodec struct {
	key         string
	compression format.CompressionType
}

var _ Codec = (*BundleCodec)(nil)

func (c *BundleCodec) Type() format.CodecType { return format.CodecBundle }

// Key is the name a bare array is stored under.
func (c *BundleCodec) Key() string { return c.key }

// Compression is the member compression used on encode.
func (c *BundleCodec) Compression() format.CompressionType { return c.compression }

func (c *BundleCodec) Decode(path string) (any, error) {
	b, err := c.DecodeBundle(path)
	if err != nil {
		return nil, err
	}

	return unwrapSingle(b), nil
}

// DecodeBundle reads path and always returns the full bundle.
func (c *BundleCodec) DecodeBundle(path string) (ndarray.Bundle, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	b, err := encoding.ReadBundle(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return b, nil
}

func (c *BundleCodec) Encode(path string, v any) error {
	b, err := c.asBundle(v)
	if err != nil {
		return err
	}

	return c.write(path, b)
}

func (c *BundleCodec) write(path string, b ndarray.Bundle) error {
	return writeFile(path, func(w io.Writer) error {
		return encoding.WriteBundle(w, b, c.compression)
	})
}

func (c *BundleCodec) asBundle(v any) (ndarray.Bundle, error) {
	switch v := v.(type) {
	case *ndarray.Array:
		if v == nil {
			break
		}
		return ndarray.Bundle{c.key: v}, nil
	case ndarray.Bundle:
		return v, nil
	case map[string]*ndarray.Array:
		return ndarray.Bundle(v), nil
	}

	return nil, fmt.Errorf("%w: bundle codec cannot encode %T", errs.ErrUnsupportedValue, v)
}

func unwrapSingle(b ndarray.Bundle) any {
	if len(b) == 1 {
		for _, arr := range b {
			return arr
		}
	}

	return b
}

// Float16BundleCodec is a BundleCodec that stores every array as float16
// and hands back float32 arrays on decode.
type Float16BundleCodec struct {
	BundleCodec
}

var _ Codec = (*Float16BundleCodec)(nil)

func (c *Float16BundleCodec) Type() format.CodecType { return format.CodecBundleFloat16 }

func (c *Float16BundleCodec) Decode(path string) (any, error) {
	b, err := c.DecodeBundle(path)
	if err != nil {
		return nil, err
	}

	return unwrapSingle(b), nil
}

// DecodeBundle reads path and widens every array to Float32.
func (c *Float16BundleCodec) DecodeBundle(path string) (ndarray.Bundle, error) {
	b, err := c.BundleCodec.DecodeBundle(path)
	if err != nil {
		return nil, err
	}

	return b.AsType(ndarray.Float32), nil
}

func (c *Float16BundleCodec) Encode(path string, v any) error {
	b, err := c.asBundle(v)
	if err != nil {
		return err
	}

	return c.write(path, b.AsType(ndarray.Float16))
}
