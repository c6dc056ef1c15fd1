package pool

import "sync"

// Slice pools for scanline oriented image codecs.
var (
	scanlinePool = sync.Pool{
		New: func() any { return &[]byte{} },
	}
	float32SlicePool = sync.Pool{
		New: func() any { return &[]float32{} },
	}
)

// GetScanline retrieves and resizes a byte slice from the pool.
//
// The returned slice has length size and unspecified contents. The caller
// must call the returned cleanup function to return the slice to the pool.
//
// Example:
//
//	line, cleanup := pool.GetScanline(width * 4)
//	defer cleanup()
func GetScanline(size int) ([]byte, func()) {
	ptr, _ := scanlinePool.Get().(*[]byte)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]byte, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { scanlinePool.Put(ptr) }
}

// GetFloat32Slice retrieves and resizes a float32 slice from the pool.
//
// The returned slice has length size and unspecified contents. The caller
// must call the returned cleanup function to return the slice to the pool.
func GetFloat32Slice(size int) ([]float32, func()) {
	ptr, _ := float32SlicePool.Get().(*[]float32)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]float32, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { float32SlicePool.Put(ptr) }
}
