// Package visualize renders decoded scene data as uint8 RGB arrays.
//
// Every function returns a new (…, 3) Uint8 array and leaves its input
// untouched.
package visualize

import (
	"fmt"
	"image/color"
	"math"

	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/ndarray"
)

// ToUint8 maps [0, 1] floats to [0, 255], rounding half to even and
// clipping out of range values. NaN maps to 0.
func ToUint8(a *ndarray.Array) *ndarray.Array {
	out := ndarray.Zeros(ndarray.Uint8, a.Shape()...)
	for i := range a.Len() {
		out.SetFloat64(i, unitToByte(a.Float64At(i)))
	}

	return out
}

func unitToByte(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}

	return math.Min(math.Max(math.RoundToEven(v*255), 0), 255)
}

// ApplyPalette colormaps data with values in [0, 1] through a palette,
// interpolating linearly between neighbouring entries at a resolution of
// 1/255. The output gains a trailing RGB dimension.
//
// Palettes whose components are all 0 or 1 are treated as unit palettes and
// scaled to 255.
func ApplyPalette(palette []color.RGBA, data *ndarray.Array) (*ndarray.Array, error) {
	if len(palette) == 0 {
		return nil, fmt.Errorf("%w: empty palette", errs.ErrUnsupportedValue)
	}

	unit := true
	for _, c := range palette {
		if c.R > 1 || c.G > 1 || c.B > 1 {
			unit = false
			break
		}
	}

	last := len(palette) - 1
	shape := append(data.Shape(), 3)
	out := ndarray.Zeros(ndarray.Uint8, shape...)
	for i := range data.Len() {
		v := data.Float64At(i)
		if math.IsNaN(v) {
			v = 0
		}
		scaled := v * 255
		lo := int(math.Max(math.Min(math.Trunc(scaled), 255), 0))
		hi := min(lo+1, 255)
		frac := scaled - float64(lo)

		a, b := palette[min(lo, last)], palette[min(hi, last)]
		for c, pair := range [3][2]uint8{{a.R, b.R}, {a.G, b.G}, {a.B, b.B}} {
			mixed := float64(pair[0]) + (float64(pair[1])-float64(pair[0]))*frac
			if unit {
				out.SetFloat64(3*i+c, unitToByte(math.Min(math.Max(mixed, 0), 1)))
			} else {
				out.SetFloat64(3*i+c, math.RoundToEven(math.Min(math.Max(mixed, 0), 255)))
			}
		}
	}

	return out, nil
}

// Turbo colormaps a depth map with the Turbo polynomial approximation.
// Values are normalized to [min, max] and clipped; NaN is treated as min.
func Turbo(depth *ndarray.Array, lo, hi float64) (*ndarray.Array, error) {
	if !(hi > lo) {
		return nil, fmt.Errorf("%w: turbo range [%g, %g] is empty", errs.ErrUnsupportedValue, lo, hi)
	}

	shape := append(depth.Shape(), 3)
	out := ndarray.Zeros(ndarray.Uint8, shape...)
	for i := range depth.Len() {
		x := (depth.Float64At(i) - lo) / (hi - lo)
		if math.IsNaN(x) {
			x = 0
		}
		x = math.Min(math.Max(x, 0), 1)

		r, g, b := turbo(x)
		out.SetFloat64(3*i, unitToByte(r))
		out.SetFloat64(3*i+1, unitToByte(g))
		out.SetFloat64(3*i+2, unitToByte(b))
	}

	return out, nil
}

// turbo evaluates the degree 5 fit of the Turbo colormap.
func turbo(x float64) (r, g, b float64) {
	r = 0.13572138 + x*(4.61539260+x*(-42.66032258+x*(132.13108234+x*(-152.94239396+x*59.28637943))))
	g = 0.09140261 + x*(2.19418839+x*(4.84296658+x*(-14.18503333+x*(4.27729857+x*2.82956604))))
	b = 0.10667330 + x*(12.64194608+x*(-60.58204836+x*(110.36276771+x*(-89.90310912+x*27.34824973))))

	return r, g, b
}

// Normals maps unit xyz normals in [-1, 1] to RGB.
func Normals(normals *ndarray.Array) (*ndarray.Array, error) {
	shape := normals.Shape()
	if len(shape) == 0 || shape[len(shape)-1] != 3 {
		return nil, fmt.Errorf("%w: normals must end in 3 components, have %v", errs.ErrInvalidShape, shape)
	}

	out := ndarray.Zeros(ndarray.Uint8, shape...)
	for i := range normals.Len() {
		out.SetFloat64(i, unitToByte(normals.Float64At(i)/2+0.5))
	}

	return out, nil
}

// Labels colormaps an integer label image through a palette. It divides by
// 255 and defers to ApplyPalette so that label k picks palette entry k.
func Labels(palette []color.RGBA, labels *ndarray.Array) (*ndarray.Array, error) {
	scaled := ndarray.Zeros(ndarray.Float64, labels.Shape()...)
	for i := range labels.Len() {
		scaled.SetFloat64(i, labels.Float64At(i)/255)
	}

	return ApplyPalette(palette, scaled)
}
