package codec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/ndarray"
)

func TestHDRCodec_RoundTrip(t *testing.T) {
	c := &HDRCodec{}

	want, err := ndarray.FromFloat32([]float32{
		1, 0.5, 0.25, 2, 2, 2,
		0, 0, 0, 4, 1, 0.5,
	}, 2, 2, 3)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "hdr_rgb.hdr")
	require.NoError(t, c.Encode(path, want))

	got, err := c.Decode(path)
	require.NoError(t, err)
	require.True(t, want.Equal(got.(*ndarray.Array)))
}

func TestHDRCodec_CoercesToFloat32(t *testing.T) {
	c := &HDRCodec{}

	in := ndarray.Full(ndarray.Float64, 0.5, 1, 2, 3)
	path := filepath.Join(t.TempDir(), "x.hdr")
	require.NoError(t, c.Encode(path, in))

	got, err := c.Decode(path)
	require.NoError(t, err)
	require.True(t, in.AsType(ndarray.Float32).Equal(got.(*ndarray.Array)))
}

func TestHDRCodec_SaveErrors(t *testing.T) {
	c := &HDRCodec{}
	dir := t.TempDir()

	err := c.Encode(filepath.Join(dir, "bad.hdr"), ndarray.Zeros(ndarray.Float32, 2, 2))
	require.ErrorIs(t, err, errs.ErrSave)
	require.ErrorIs(t, err, errs.ErrInvalidShape)

	err = c.Encode(filepath.Join(dir, "bad.hdr"), "pixels")
	require.ErrorIs(t, err, errs.ErrSave)
	require.ErrorIs(t, err, errs.ErrUnsupportedValue)

	err = c.Encode(filepath.Join(dir, "missing", "dir", "x.hdr"), ndarray.Zeros(ndarray.Float32, 1, 1, 3))
	require.ErrorIs(t, err, errs.ErrSave)
}

func TestHDRCodec_DecodeGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.hdr")
	require.NoError(t, os.WriteFile(path, []byte("P6\n1 1\n255\n"), 0o644))

	_, err := (&HDRCodec{}).Decode(path)
	require.ErrorIs(t, err, errs.ErrInvalidHDR)
}
