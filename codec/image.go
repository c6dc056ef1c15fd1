package codec

import (
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/format"
	"github.com/geomagical/geosynth/ndarray"
)

// sniffLen covers the longest signature among the raster formats we read.
const sniffLen = 262

// ImageCodec stores raster images. PNG is the native format; TIFF and BMP
// are chosen by file extension on encode and by content on decode.
//
// Decoded values are *ndarray.Array: (H, W, 3) Uint8 RGB, (H, W) Uint8
// gray, or Uint16 for 16-bit sources. Encode accepts the same arrays or
// any image.Image.
type ImageCodec struct{}

var _ Codec = (*ImageCodec)(nil)

func (c *ImageCodec) Type() format.CodecType { return format.CodecImage }

func (c *ImageCodec) Decode(path string) (any, error) {
	img, err := c.DecodeImage(path)
	if err != nil {
		return nil, err
	}

	return ndarray.FromImage(img), nil
}

// DecodeImage reads path without converting it to an array.
func (c *ImageCodec) DecodeImage(path string) (image.Image, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}

	decode, err := imageDecoder(head)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	img, err := decode(br)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return img, nil
}

func imageDecoder(head []byte) (func(io.Reader) (image.Image, error), error) {
	kind, _ := filetype.Match(head)
	switch kind {
	case matchers.TypePng:
		return png.Decode, nil
	case matchers.TypeTiff:
		return tiff.Decode, nil
	case matchers.TypeBmp:
		return bmp.Decode, nil
	case matchers.TypeJpeg:
		return jpeg.Decode, nil
	default:
		return nil, fmt.Errorf("%w: detected %s", errs.ErrUnsupportedImage, kind.Extension)
	}
}

func (c *ImageCodec) Encode(path string, v any) error {
	img, err := asImage(v)
	if err != nil {
		return err
	}

	encode, err := imageEncoder(filepath.Ext(path))
	if err != nil {
		return err
	}

	return writeFile(path, func(w io.Writer) error { return encode(w, img) })
}

func asImage(v any) (image.Image, error) {
	switch v := v.(type) {
	case *ndarray.Array:
		return v.Image()
	case image.Image:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: image codec cannot encode %T", errs.ErrUnsupportedValue, v)
	}
}

func imageEncoder(ext string) (func(io.Writer, image.Image) error, error) {
	switch strings.ToLower(ext) {
	case ".png":
		return pngEncoder.Encode, nil
	case ".tif", ".tiff":
		return func(w io.Writer, m image.Image) error {
			return tiff.Encode(w, m, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
		}, nil
	case ".bmp":
		return bmp.Encode, nil
	default:
		return nil, fmt.Errorf("%w: cannot encode %q", errs.ErrUnsupportedImage, ext)
	}
}

var pngEncoder = &png.Encoder{BufferPool: &pngBufferPool{}}

type pngBufferPool struct {
	pool sync.Pool
}

func (p *pngBufferPool) Get() *png.EncoderBuffer {
	b, _ := p.pool.Get().(*png.EncoderBuffer)
	return b
}

func (p *pngBufferPool) Put(b *png.EncoderBuffer) {
	p.pool.Put(b)
}
