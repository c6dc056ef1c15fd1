package ndarray

import (
	"fmt"
	"math"

	"github.com/geomagical/geosynth/errs"
)

// FromUint8 builds a Uint8 array. data is copied.
func FromUint8(data []uint8, shape ...int) (*Array, error) {
	return New(Uint8, append([]byte(nil), data...), shape...)
}

// FromBool builds a Bool array.
func FromBool(data []bool, shape ...int) (*Array, error) {
	raw := make([]byte, len(data))
	for i, v := range data {
		if v {
			raw[i] = 1
		}
	}

	return New(Bool, raw, shape...)
}

// FromUint16 builds a Uint16 array.
func FromUint16(data []uint16, shape ...int) (*Array, error) {
	raw := make([]byte, 0, 2*len(data))
	for _, v := range data {
		raw = le.AppendUint16(raw, v)
	}

	return New(Uint16, raw, shape...)
}

// FromInt32 builds an Int32 array.
func FromInt32(data []int32, shape ...int) (*Array, error) {
	raw := make([]byte, 0, 4*len(data))
	for _, v := range data {
		raw = le.AppendUint32(raw, uint32(v))
	}

	return New(Int32, raw, shape...)
}

// FromInt64 builds an Int64 array.
func FromInt64(data []int64, shape ...int) (*Array, error) {
	raw := make([]byte, 0, 8*len(data))
	for _, v := range data {
		raw = le.AppendUint64(raw, uint64(v))
	}

	return New(Int64, raw, shape...)
}

// FromFloat32 builds a Float32 array.
func FromFloat32(data []float32, shape ...int) (*Array, error) {
	raw := make([]byte, 0, 4*len(data))
	for _, v := range data {
		raw = le.AppendUint32(raw, math.Float32bits(v))
	}

	return New(Float32, raw, shape...)
}

// FromFloat64 builds a Float64 array.
func FromFloat64(data []float64, shape ...int) (*Array, error) {
	raw := make([]byte, 0, 8*len(data))
	for _, v := range data {
		raw = le.AppendUint64(raw, math.Float64bits(v))
	}

	return New(Float64, raw, shape...)
}

// Uint8s returns the elements of a Uint8 or Bool array. The slice is shared
// with the array.
func (a *Array) Uint8s() ([]uint8, error) {
	if a.dtype != Uint8 && a.dtype != Bool {
		return nil, fmt.Errorf("%w: want uint8, have %s", errs.ErrUnsupportedDType, a.dtype)
	}

	return a.data, nil
}

// Bools returns the elements as booleans (non-zero is true) for any dtype.
func (a *Array) Bools() []bool {
	out := make([]bool, a.Len())
	for i := range out {
		out[i] = a.Float64At(i) != 0
	}

	return out
}

// Float32s returns a converted copy of the elements as float32.
func (a *Array) Float32s() []float32 {
	out := make([]float32, a.Len())
	if a.dtype == Float32 {
		for i := range out {
			out[i] = math.Float32frombits(le.Uint32(a.data[4*i:]))
		}

		return out
	}
	for i := range out {
		out[i] = float32(a.Float64At(i))
	}

	return out
}

// Float64s returns a converted copy of the elements as float64.
func (a *Array) Float64s() []float64 {
	out := make([]float64, a.Len())
	for i := range out {
		out[i] = a.Float64At(i)
	}

	return out
}
