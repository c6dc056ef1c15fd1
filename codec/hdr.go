package codec

import (
	"fmt"
	"io"

	"github.com/geomagical/geosynth/encoding"
	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/format"
	"github.com/geomagical/geosynth/ndarray"
)

// HDRCodec stores float RGB images as Radiance RGBE files. Decoded values
// are float32 (H, W, 3) arrays. Every encode failure wraps errs.ErrSave.
type HDRCodec struct{}

var _ Codec = (*HDRCodec)(nil)

func (c *HDRCodec) Type() format.CodecType { return format.CodecHDR }

func (c *HDRCodec) Decode(path string) (any, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	arr, err := encoding.DecodeRGBE(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return arr, nil
}

func (c *HDRCodec) Encode(path string, v any) error {
	arr, ok := v.(*ndarray.Array)
	if !ok || arr == nil {
		return fmt.Errorf("%w: %s: %w: hdr codec cannot encode %T", errs.ErrSave, path, errs.ErrUnsupportedValue, v)
	}

	err := writeFile(path, func(w io.Writer) error {
		return encoding.EncodeRGBE(w, arr.AsType(ndarray.Float32))
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errs.ErrSave, path, err)
	}

	return nil
}
