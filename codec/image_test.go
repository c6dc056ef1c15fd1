package codec

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/ndarray"
)

func rgbArray(t *testing.T) *ndarray.Array {
	t.Helper()

	arr, err := ndarray.FromUint8([]uint8{
		255, 0, 0, 0, 255, 0, 0, 0, 255,
		10, 20, 30, 40, 50, 60, 70, 80, 90,
	}, 2, 3, 3)
	require.NoError(t, err)

	return arr
}

func TestImageCodec_RoundTripFormats(t *testing.T) {
	want := rgbArray(t)
	c := &ImageCodec{}

	for _, name := range []string{"rgb.png", "rgb.tiff", "rgb.tif", "rgb.bmp", "RGB.PNG"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, c.Encode(path, want))

			got, err := c.Decode(path)
			require.NoError(t, err)
			require.True(t, want.Equal(got.(*ndarray.Array)), "got %v", got)
		})
	}
}

func TestImageCodec_ChannelOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "red.png")
	c := &ImageCodec{}
	require.NoError(t, c.Encode(path, rgbArray(t)))

	img, err := c.DecodeImage(path)
	require.NoError(t, err)
	r, g, b, _ := img.At(0, 0).RGBA()
	require.Equal(t, []uint32{0xFFFF, 0, 0}, []uint32{r, g, b}, "first pixel is red")
}

func TestImageCodec_Gray(t *testing.T) {
	c := &ImageCodec{}

	gray, err := ndarray.FromUint8([]uint8{0, 1, 2, 3, 254, 255}, 2, 3)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "labels.png")
	require.NoError(t, c.Encode(path, gray))

	got, err := c.Decode(path)
	require.NoError(t, err)
	require.True(t, gray.Equal(got.(*ndarray.Array)))

	deep, err := ndarray.FromUint16([]uint16{0, 1000, 40000, 65535}, 2, 2)
	require.NoError(t, err)
	path = filepath.Join(t.TempDir(), "deep.png")
	require.NoError(t, c.Encode(path, deep))

	got, err = c.Decode(path)
	require.NoError(t, err)
	require.True(t, deep.Equal(got.(*ndarray.Array)))
}

func TestImageCodec_EncodeImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{R: 4, G: 5, B: 6, A: 255})

	path := filepath.Join(t.TempDir(), "img.png")
	require.NoError(t, (&ImageCodec{}).Encode(path, img))

	got, err := (&ImageCodec{}).Decode(path)
	require.NoError(t, err)
	arr := got.(*ndarray.Array)
	require.Equal(t, []int{1, 2, 3}, arr.Shape(), "opaque alpha is dropped")
	data, err := arr.Uint8s()
	require.NoError(t, err)
	require.Equal(t, []uint8{1, 2, 3, 4, 5, 6}, data)
}

func TestImageCodec_Errors(t *testing.T) {
	c := &ImageCodec{}
	dir := t.TempDir()

	err := c.Encode(filepath.Join(dir, "x.webp"), rgbArray(t))
	require.ErrorIs(t, err, errs.ErrUnsupportedImage)

	err = c.Encode(filepath.Join(dir, "x.png"), ndarray.Zeros(ndarray.Float32, 2, 2, 3))
	require.ErrorIs(t, err, errs.ErrUnsupportedDType)

	notImage := filepath.Join(dir, "text.png")
	require.NoError(t, os.WriteFile(notImage, []byte("definitely not a png"), 0o644))
	_, err = c.Decode(notImage)
	require.ErrorIs(t, err, errs.ErrUnsupportedImage)

	empty := filepath.Join(dir, "empty.png")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = c.Decode(empty)
	require.ErrorIs(t, err, errs.ErrUnsupportedImage)
}
