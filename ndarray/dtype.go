package ndarray

import (
	"fmt"

	"github.com/geomagical/geosynth/errs"
)

// DType identifies the element type of an Array.
type DType uint8

const (
	Bool DType = iota + 1
	Uint8
	Int8
	Uint16
	Int16
	Uint32
	Int32
	Uint64
	Int64
	Float16
	Float32
	Float64
)

var dtypeNames = map[DType]string{
	Bool:    "bool",
	Uint8:   "uint8",
	Int8:    "int8",
	Uint16:  "uint16",
	Int16:   "int16",
	Uint32:  "uint32",
	Int32:   "int32",
	Uint64:  "uint64",
	Int64:   "int64",
	Float16: "float16",
	Float32: "float32",
	Float64: "float64",
}

func (d DType) String() string {
	if name, ok := dtypeNames[d]; ok {
		return name
	}

	return fmt.Sprintf("DType(%d)", uint8(d))
}

// Size returns the element size in bytes, or 0 for an unknown dtype.
func (d DType) Size() int {
	switch d {
	case Bool, Uint8, Int8:
		return 1
	case Uint16, Int16, Float16:
		return 2
	case Uint32, Int32, Float32:
		return 4
	case Uint64, Int64, Float64:
		return 8
	default:
		return 0
	}
}

// IsFloat reports whether d is a floating point dtype.
func (d DType) IsFloat() bool {
	return d == Float16 || d == Float32 || d == Float64
}

// Valid reports whether d is a known dtype.
func (d DType) Valid() bool {
	return d.Size() != 0
}

func checkDType(d DType) error {
	if !d.Valid() {
		return fmt.Errorf("%w: %s", errs.ErrUnsupportedDType, d)
	}

	return nil
}
