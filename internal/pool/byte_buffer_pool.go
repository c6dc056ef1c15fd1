package pool

import (
	"io"
	"sync"
)

// Default sizes of the pooled buffers.
//
// Member buffers hold a single encoded array record or zip member. File
// buffers hold a whole encoded file (an HDR image or a bundle) before it is
// written to disk.
const (
	MemberBufferDefaultSize    = 1024 * 64        // 64KiB
	MemberBufferMaxThreshold   = 1024 * 1024 * 16 // 16MiB
	FileBufferDefaultSize      = 1024 * 1024      // 1MiB
	FileBufferMaxThreshold     = 1024 * 1024 * 64 // 64MiB
	growthSmallBufferIncrement = 1024 * 16        // 16KiB
)

// ByteBuffer is an append-only byte slice wrapper reused through a ByteBufferPool.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified default size.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the buffered bytes.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer and keeps its capacity.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// MustWrite appends data, growing the buffer with Grow's policy.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.Grow(len(data))
	bb.B = append(bb.B, data...)
}

// Grow makes room for n more bytes. Buffers under 64KiB grow in 16KiB
// steps, larger ones by a quarter of their capacity, and never by less
// than n.
func (bb *ByteBuffer) Grow(n int) {
	if cap(bb.B)-len(bb.B) >= n {
		return
	}

	step := growthSmallBufferIncrement
	if cap(bb.B) > 4*growthSmallBufferIncrement {
		step = cap(bb.B) / 4
	}
	step = max(step, n)

	grown := make([]byte, len(bb.B), len(bb.B)+step)
	copy(grown, bb.B)
	bb.B = grown
}

// Write implements io.Writer so encoders can target the buffer directly.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.MustWrite(data)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool recycles ByteBuffers through a sync.Pool. Buffers whose
// capacity exceeds maxThreshold are dropped on Put.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	memberPool = NewByteBufferPool(MemberBufferDefaultSize, MemberBufferMaxThreshold)
	filePool   = NewByteBufferPool(FileBufferDefaultSize, FileBufferMaxThreshold)
)

// GetMemberBuffer retrieves a buffer sized for a single array record.
func GetMemberBuffer() *ByteBuffer {
	return memberPool.Get()
}

// PutMemberBuffer returns a buffer obtained from GetMemberBuffer.
func PutMemberBuffer(bb *ByteBuffer) {
	memberPool.Put(bb)
}

// GetFileBuffer retrieves a buffer sized for a whole encoded file.
func GetFileBuffer() *ByteBuffer {
	return filePool.Get()
}

// PutFileBuffer returns a buffer obtained from GetFileBuffer.
func PutFileBuffer(bb *ByteBuffer) {
	filePool.Put(bb)
}
