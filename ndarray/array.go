// Package ndarray provides the typed n-dimensional array values produced and
// consumed by geosynth codecs.
//
// An Array is a dense, row-major block of elements of a single DType. Elements
// are stored little-endian regardless of host byte order, which lets codecs
// copy payloads to and from disk without per-element work in the common case.
//
// Arrays are plain values: they own no resources and may be shared freely
// between goroutines as long as none of them mutates the array.
package ndarray

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/x448/float16"

	"github.com/geomagical/geosynth/endian"
	"github.com/geomagical/geosynth/errs"
)

var le = endian.GetLittleEndianEngine()

// Array is a dense row-major n-dimensional array.
type Array struct {
	dtype DType
	shape []int
	data  []byte
}

// New wraps raw little-endian element bytes. The length of data must equal
// the product of shape times the element size. The array takes ownership of
// data.
func New(dtype DType, data []byte, shape ...int) (*Array, error) {
	if err := checkDType(dtype); err != nil {
		return nil, err
	}
	n, err := numElements(shape)
	if err != nil {
		return nil, err
	}
	if n > math.MaxInt/dtype.Size() || len(data) != n*dtype.Size() {
		return nil, fmt.Errorf("%w: %d bytes do not fill shape %v of %s",
			errs.ErrInvalidShape, len(data), shape, dtype)
	}

	return &Array{dtype: dtype, shape: slices.Clone(shape), data: data}, nil
}

// Zeros returns a zero-filled array. It panics on an unknown dtype or a
// negative dimension.
func Zeros(dtype DType, shape ...int) *Array {
	n, err := numElements(shape)
	if err != nil {
		panic(err)
	}
	if err := checkDType(dtype); err != nil {
		panic(err)
	}

	return &Array{dtype: dtype, shape: slices.Clone(shape), data: make([]byte, n*dtype.Size())}
}

// Full returns an array with every element set to v.
func Full(dtype DType, v float64, shape ...int) *Array {
	a := Zeros(dtype, shape...)
	for i := range a.Len() {
		a.SetFloat64(i, v)
	}

	return a
}

func numElements(shape []int) (int, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return 0, fmt.Errorf("%w: negative dimension in %v", errs.ErrInvalidShape, shape)
		}
		if d != 0 && n > math.MaxInt/d {
			return 0, fmt.Errorf("%w: element count of %v overflows", errs.ErrInvalidShape, shape)
		}
		n *= d
	}

	return n, nil
}

// DType returns the element type.
func (a *Array) DType() DType { return a.dtype }

// Shape returns a copy of the array dimensions.
func (a *Array) Shape() []int { return slices.Clone(a.shape) }

// NDim returns the number of dimensions.
func (a *Array) NDim() int { return len(a.shape) }

// Len returns the total number of elements.
func (a *Array) Len() int {
	if a.dtype.Size() == 0 {
		return 0
	}

	return len(a.data) / a.dtype.Size()
}

// Bytes returns the underlying little-endian element bytes. The slice is
// shared with the array.
func (a *Array) Bytes() []byte { return a.data }

// Reshape returns a view of a with a new shape holding the same number of
// elements.
func (a *Array) Reshape(shape ...int) (*Array, error) {
	n, err := numElements(shape)
	if err != nil {
		return nil, err
	}
	if n != a.Len() {
		return nil, fmt.Errorf("%w: cannot reshape %v into %v", errs.ErrInvalidShape, a.shape, shape)
	}

	return &Array{dtype: a.dtype, shape: slices.Clone(shape), data: a.data}, nil
}

// Clone returns a deep copy.
func (a *Array) Clone() *Array {
	return &Array{dtype: a.dtype, shape: slices.Clone(a.shape), data: slices.Clone(a.data)}
}

// Offset converts a multi-dimensional index into a flat element index.
// It panics if idx does not address an element of a.
func (a *Array) Offset(idx ...int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("ndarray: %d indices for %d-d array", len(idx), len(a.shape)))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= a.shape[i] {
			panic(fmt.Sprintf("ndarray: index %v out of range for shape %v", idx, a.shape))
		}
		off = off*a.shape[i] + x
	}

	return off
}

// At returns the element at idx converted to float64.
func (a *Array) At(idx ...int) float64 {
	return a.Float64At(a.Offset(idx...))
}

// Float64At returns the element at flat index i converted to float64.
func (a *Array) Float64At(i int) float64 {
	sz := a.dtype.Size()
	b := a.data[i*sz : (i+1)*sz]
	switch a.dtype {
	case Bool:
		if b[0] != 0 {
			return 1
		}

		return 0
	case Uint8:
		return float64(b[0])
	case Int8:
		return float64(int8(b[0]))
	case Uint16:
		return float64(le.Uint16(b))
	case Int16:
		return float64(int16(le.Uint16(b)))
	case Uint32:
		return float64(le.Uint32(b))
	case Int32:
		return float64(int32(le.Uint32(b)))
	case Uint64:
		return float64(le.Uint64(b))
	case Int64:
		return float64(int64(le.Uint64(b)))
	case Float16:
		return float64(float16.Frombits(le.Uint16(b)).Float32())
	case Float32:
		return float64(math.Float32frombits(le.Uint32(b)))
	case Float64:
		return math.Float64frombits(le.Uint64(b))
	default:
		panic(fmt.Sprintf("ndarray: unsupported dtype %s", a.dtype))
	}
}

// SetFloat64 stores v at flat index i, converting it to the array dtype.
// Conversion to integer dtypes truncates toward zero.
func (a *Array) SetFloat64(i int, v float64) {
	sz := a.dtype.Size()
	b := a.data[i*sz : (i+1)*sz]
	switch a.dtype {
	case Bool:
		if v != 0 {
			b[0] = 1
		} else {
			b[0] = 0
		}
	case Uint8:
		b[0] = uint8(int64(v))
	case Int8:
		b[0] = uint8(int8(int64(v)))
	case Uint16:
		le.PutUint16(b, uint16(int64(v)))
	case Int16:
		le.PutUint16(b, uint16(int16(int64(v))))
	case Uint32:
		le.PutUint32(b, uint32(int64(v)))
	case Int32:
		le.PutUint32(b, uint32(int32(int64(v))))
	case Uint64:
		le.PutUint64(b, uint64(v))
	case Int64:
		le.PutUint64(b, uint64(int64(v)))
	case Float16:
		le.PutUint16(b, halfFromFloat64(v).Bits())
	case Float32:
		le.PutUint32(b, math.Float32bits(float32(v)))
	case Float64:
		le.PutUint64(b, math.Float64bits(v))
	default:
		panic(fmt.Sprintf("ndarray: unsupported dtype %s", a.dtype))
	}
}

// AsType returns a copy of a converted to dtype. Narrowing to Float16 rounds
// to the nearest representable half precision value.
func (a *Array) AsType(dtype DType) *Array {
	if dtype == a.dtype {
		return a.Clone()
	}
	out := Zeros(dtype, a.shape...)
	switch {
	case a.dtype == Float32 && dtype == Float16:
		for i := range a.Len() {
			f := math.Float32frombits(le.Uint32(a.data[4*i:]))
			le.PutUint16(out.data[2*i:], float16.Fromfloat32(f).Bits())
		}
	case a.dtype == Float16 && dtype == Float32:
		for i := range a.Len() {
			f := float16.Frombits(le.Uint16(a.data[2*i:])).Float32()
			le.PutUint32(out.data[4*i:], math.Float32bits(f))
		}
	default:
		for i := range a.Len() {
			out.SetFloat64(i, a.Float64At(i))
		}
	}

	return out
}

// Equal reports whether a and b have the same dtype, shape and bytes.
func (a *Array) Equal(b *Array) bool {
	if a == nil || b == nil {
		return a == b
	}

	return a.dtype == b.dtype && slices.Equal(a.shape, b.shape) && string(a.data) == string(b.data)
}

func (a *Array) String() string {
	dims := make([]string, len(a.shape))
	for i, d := range a.shape {
		dims[i] = fmt.Sprint(d)
	}

	return fmt.Sprintf("Array(%s, shape=(%s))", a.dtype, strings.Join(dims, ", "))
}

// halfFromFloat64 rounds v to the nearest half precision value, ties to
// even, in a single rounding step. The float32 intermediate is rounded to
// odd: its extra precision then preserves the sticky bit that a plain
// float32 conversion would lose.
func halfFromFloat64(v float64) float16.Float16 {
	f := float32(v)
	if math.IsNaN(v) || math.IsInf(float64(f), 0) || float64(f) == v {
		return float16.Fromfloat32(f)
	}

	bits := math.Float32bits(f)
	if math.Abs(float64(f)) > math.Abs(v) {
		bits--
	}

	return float16.Fromfloat32(math.Float32frombits(bits | 1))
}
