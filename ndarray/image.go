package ndarray

import (
	"fmt"
	"image"
	"image/color"

	"github.com/geomagical/geosynth/errs"
)

// FromImage converts a decoded image into an array.
//
//   - 8-bit gray: Uint8 (H, W)
//   - 16-bit gray: Uint16 (H, W)
//   - 16-bit color: Uint16 (H, W, 3)
//   - anything else: Uint8 (H, W, 3) in RGB order
//
// Alpha is dropped; color values are un-premultiplied first.
func FromImage(img image.Image) *Array {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch src := img.(type) {
	case *image.Gray:
		data := make([]byte, 0, w*h)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			off := src.PixOffset(b.Min.X, y)
			data = append(data, src.Pix[off:off+w]...)
		}

		return &Array{dtype: Uint8, shape: []int{h, w}, data: data}

	case *image.Gray16:
		data := make([]byte, 0, 2*w*h)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				data = le.AppendUint16(data, src.Gray16At(x, y).Y)
			}
		}

		return &Array{dtype: Uint16, shape: []int{h, w}, data: data}

	case *image.RGBA64, *image.NRGBA64:
		data := make([]byte, 0, 6*w*h)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
				data = le.AppendUint16(data, c.R)
				data = le.AppendUint16(data, c.G)
				data = le.AppendUint16(data, c.B)
			}
		}

		return &Array{dtype: Uint16, shape: []int{h, w, 3}, data: data}
	}

	data := make([]byte, 0, 3*w*h)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			data = append(data, c.R, c.G, c.B)
		}
	}

	return &Array{dtype: Uint8, shape: []int{h, w, 3}, data: data}
}

// Image converts a (H, W) or (H, W, 3) Uint8/Uint16 array, a (H, W, 4)
// Uint8 array or a (H, W) Bool mask into an image.
func (a *Array) Image() (image.Image, error) {
	shape := a.shape
	if len(shape) != 2 && len(shape) != 3 {
		return nil, fmt.Errorf("%w: image must be (H, W) or (H, W, C), have %v", errs.ErrInvalidShape, shape)
	}
	h, w := shape[0], shape[1]
	channels := 1
	if len(shape) == 3 {
		channels = shape[2]
	}
	rect := image.Rect(0, 0, w, h)

	switch {
	case channels == 1 && (a.dtype == Uint8 || a.dtype == Bool):
		img := image.NewGray(rect)
		for i, v := range a.data {
			if a.dtype == Bool && v != 0 {
				v = 0xFF
			}
			img.Pix[i] = v
		}

		return img, nil

	case channels == 1 && a.dtype == Uint16:
		img := image.NewGray16(rect)
		for i := range w * h {
			v := le.Uint16(a.data[2*i:])
			img.Pix[2*i], img.Pix[2*i+1] = byte(v>>8), byte(v)
		}

		return img, nil

	case channels == 3 && a.dtype == Uint8:
		img := image.NewRGBA(rect)
		for i := range w * h {
			copy(img.Pix[4*i:4*i+3], a.data[3*i:3*i+3])
			img.Pix[4*i+3] = 0xFF
		}

		return img, nil

	case channels == 4 && a.dtype == Uint8:
		img := image.NewNRGBA(rect)
		copy(img.Pix, a.data)

		return img, nil

	case channels == 3 && a.dtype == Uint16:
		img := image.NewRGBA64(rect)
		for i := range w * h {
			for c := range 3 {
				v := le.Uint16(a.data[2*(3*i+c):])
				img.Pix[8*i+2*c], img.Pix[8*i+2*c+1] = byte(v>>8), byte(v)
			}
			img.Pix[8*i+6], img.Pix[8*i+7] = 0xFF, 0xFF
		}

		return img, nil
	}

	return nil, fmt.Errorf("%w: no image layout for %s with %d channels", errs.ErrUnsupportedDType, a.dtype, channels)
}
