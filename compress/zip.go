package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"

	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/format"
	"github.com/geomagical/geosynth/internal/pool"
)

// Zip method identifiers used for bundle and archive members.
//
// Store, Deflate and Zstd are registered methods understood by common zip
// tools. S2 and LZ4 use private identifiers that only this package reads.
const (
	MethodStore   uint16 = zip.Store
	MethodDeflate uint16 = zip.Deflate
	MethodZstd    uint16 = zstd.ZipMethodWinZip
	MethodS2      uint16 = 0xA532
	MethodLZ4     uint16 = 0xA534
)

var methodCompression = map[uint16]format.CompressionType{
	MethodStore:   format.CompressionNone,
	MethodDeflate: format.CompressionDeflate,
	MethodZstd:    format.CompressionZstd,
	MethodS2:      format.CompressionS2,
	MethodLZ4:     format.CompressionLZ4,
}

// Method returns the zip method identifier for a compression type.
func Method(compressionType format.CompressionType) (uint16, error) {
	for method, ct := range methodCompression {
		if ct == compressionType {
			return method, nil
		}
	}

	return 0, fmt.Errorf("%w: no zip method for %s", errs.ErrInvalidCompression, compressionType)
}

// CompressionOf returns the compression type a zip method identifier maps to.
func CompressionOf(method uint16) (format.CompressionType, bool) {
	ct, ok := methodCompression[method]
	return ct, ok
}

// RegisterWriter installs a fresh compressor for compressionType on w and
// returns the method to use in member headers. Store and Deflate need no
// registration.
func RegisterWriter(w *zip.Writer, compressionType format.CompressionType) (uint16, error) {
	method, err := Method(compressionType)
	if err != nil {
		return 0, err
	}
	if method == MethodStore || method == MethodDeflate {
		return method, nil
	}

	codec, err := CreateCodec(compressionType, "zip writer")
	if err != nil {
		return 0, err
	}
	w.RegisterCompressor(method, ZipCompressor(codec))

	return method, nil
}

// RegisterReader installs decompressors for every block codec method on r.
func RegisterReader(r *zip.Reader) {
	for method, ct := range methodCompression {
		if method == MethodStore || method == MethodDeflate {
			continue
		}
		codec, err := GetCodec(ct)
		if err != nil {
			continue
		}
		r.RegisterDecompressor(method, ZipDecompressor(codec))
	}
}

// ZipCompressor adapts a block Compressor to the zip Compressor hook. The
// member is buffered and compressed as a single block on Close.
func ZipCompressor(c Compressor) zip.Compressor {
	return func(w io.Writer) (io.WriteCloser, error) {
		return &blockWriter{dst: w, codec: c, buf: pool.GetMemberBuffer()}, nil
	}
}

// ZipDecompressor adapts a block Decompressor to the zip Decompressor hook.
func ZipDecompressor(d Decompressor) zip.Decompressor {
	return func(r io.Reader) io.ReadCloser {
		return &blockReader{src: r, codec: d}
	}
}

type blockWriter struct {
	dst    io.Writer
	codec  Compressor
	buf    *pool.ByteBuffer
	closed bool
}

func (w *blockWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, io.ErrClosedPipe
	}
	w.buf.MustWrite(p)

	return len(p), nil
}

func (w *blockWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	defer pool.PutMemberBuffer(w.buf)

	compressed, err := w.codec.Compress(w.buf.Bytes())
	if err != nil {
		return err
	}
	_, err = w.dst.Write(compressed)

	return err
}

type blockReader struct {
	src    io.Reader
	codec  Decompressor
	out    *bytes.Reader
	err    error
	loaded bool
}

func (r *blockReader) load() {
	r.loaded = true

	compressed, err := io.ReadAll(r.src)
	if err != nil {
		r.err = err
		return
	}
	data, err := r.codec.Decompress(compressed)
	if err != nil {
		r.err = err
		return
	}
	r.out = bytes.NewReader(data)
}

func (r *blockReader) Read(p []byte) (int, error) {
	if !r.loaded {
		r.load()
	}
	if r.err != nil {
		return 0, r.err
	}

	return r.out.Read(p)
}

func (r *blockReader) Close() error {
	return nil
}
