package encoding

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/geomagical/geosynth/compress"
	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/format"
	"github.com/geomagical/geosynth/ndarray"
)

const npyExt = ".npy"

// WriteBundle writes b as an NPZ container: one "<key>.npy" member per
// array, in sorted key order. CompressionDeflate matches numpy's
// savez_compressed and CompressionNone matches savez.
func WriteBundle(w io.Writer, b ndarray.Bundle, compression format.CompressionType) error {
	zw := zip.NewWriter(w)
	method, err := compress.RegisterWriter(zw, compression)
	if err != nil {
		return err
	}

	for _, key := range b.Keys() {
		arr := b[key]
		if arr == nil {
			return fmt.Errorf("%w: nil array for key %q", errs.ErrUnsupportedValue, key)
		}
		mw, err := zw.CreateHeader(&zip.FileHeader{Name: key + npyExt, Method: method})
		if err != nil {
			return err
		}
		if err := WriteNPY(mw, arr); err != nil {
			return fmt.Errorf("write %s: %w", key, err)
		}
	}

	return zw.Close()
}

// ReadBundle decodes every member of an NPZ container. Keys are member
// names with the ".npy" suffix removed.
func ReadBundle(r io.ReaderAt, size int64) (ndarray.Bundle, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrInvalidNPY, err)
	}
	compress.RegisterReader(zr)

	bundle := make(ndarray.Bundle, len(zr.File))
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		arr, err := readMember(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		bundle[strings.TrimSuffix(path.Base(f.Name), npyExt)] = arr
	}

	return bundle, nil
}

func readMember(f *zip.File) (*ndarray.Array, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return ReadNPY(rc)
}

// ReadBundleFile opens and decodes the NPZ file at name.
func ReadBundleFile(name string) (ndarray.Bundle, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}

	return ReadBundle(f, info.Size())
}

// WriteBundleFile creates or truncates name and writes b to it.
func WriteBundleFile(name string, b ndarray.Bundle, compression format.CompressionType) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := WriteBundle(f, b, compression); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
