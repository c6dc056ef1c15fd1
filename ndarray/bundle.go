package ndarray

import (
	"maps"
	"slices"
)

// Bundle is a set of named arrays, the in-memory form of a multi-array
// bundle file.
type Bundle map[string]*Array

// Keys returns the array names in sorted order.
func (b Bundle) Keys() []string {
	return slices.Sorted(maps.Keys(b))
}

// AsType converts every array in the bundle.
func (b Bundle) AsType(dtype DType) Bundle {
	out := make(Bundle, len(b))
	for k, v := range b {
		out[k] = v.AsType(dtype)
	}

	return out
}

// Equal reports whether both bundles hold equal arrays under the same keys.
func (b Bundle) Equal(o Bundle) bool {
	return maps.EqualFunc(b, o, func(x, y *Array) bool { return x.Equal(y) })
}
