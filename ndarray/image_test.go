package ndarray

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geomagical/geosynth/errs"
)

func TestImage_RGBRoundTrip(t *testing.T) {
	arr, err := FromUint8([]uint8{
		255, 0, 0, 0, 255, 0,
		0, 0, 255, 10, 20, 30,
	}, 2, 2, 3)
	require.NoError(t, err)

	img, err := arr.Image()
	require.NoError(t, err)
	require.Equal(t, color.RGBA{R: 255, A: 255}, img.At(0, 0))
	require.Equal(t, color.RGBA{B: 255, A: 255}, img.At(0, 1))

	back := FromImage(img)
	require.True(t, arr.Equal(back))
}

func TestImage_GrayLayouts(t *testing.T) {
	gray, err := FromUint8([]uint8{1, 2, 3, 4, 5, 6}, 2, 3)
	require.NoError(t, err)
	img, err := gray.Image()
	require.NoError(t, err)
	require.IsType(t, &image.Gray{}, img)
	require.True(t, gray.Equal(FromImage(img)))

	deep, err := FromUint16([]uint16{0, 1000, 65535, 42}, 2, 2)
	require.NoError(t, err)
	img, err = deep.Image()
	require.NoError(t, err)
	require.Equal(t, color.Gray16{Y: 1000}, img.At(1, 0))
	require.True(t, deep.Equal(FromImage(img)))
}

func TestImage_Color16RoundTrip(t *testing.T) {
	arr, err := FromUint16([]uint16{1, 2, 3, 60000, 50000, 40000}, 1, 2, 3)
	require.NoError(t, err)

	img, err := arr.Image()
	require.NoError(t, err)
	require.True(t, arr.Equal(FromImage(img)))
}

func TestImage_BoolMask(t *testing.T) {
	m, err := FromBool([]bool{true, false}, 1, 2)
	require.NoError(t, err)

	img, err := m.Image()
	require.NoError(t, err)
	require.Equal(t, color.Gray{Y: 255}, img.At(0, 0))
	require.Equal(t, color.Gray{Y: 0}, img.At(1, 0))
}

func TestFromImage_DropsAlphaAndOffsets(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	src.SetNRGBA(5, 5, color.NRGBA{R: 200, G: 100, B: 50, A: 128})
	src.SetNRGBA(6, 5, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	arr := FromImage(src)
	require.Equal(t, []int{1, 2, 3}, arr.Shape())
	require.Equal(t, []uint8{200, 100, 50, 1, 2, 3}, arr.Bytes())
}

func TestImage_Unsupported(t *testing.T) {
	_, err := Zeros(Float32, 2, 2, 3).Image()
	require.ErrorIs(t, err, errs.ErrUnsupportedDType)

	_, err = Zeros(Uint8, 4).Image()
	require.ErrorIs(t, err, errs.ErrInvalidShape)
}
