package kind

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/geomagical/geosynth/codec"
	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/internal/fsutil"
	"github.com/geomagical/geosynth/internal/log"
	"github.com/geomagical/geosynth/lighting"
	"github.com/geomagical/geosynth/ndarray"
)

// NotFoundError reports a read of a kind whose file is absent. It matches
// both errs.ErrNotFound and fs.ErrNotExist.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", errs.ErrNotFound, e.Path)
}

func (e *NotFoundError) Is(target error) bool {
	return target == errs.ErrNotFound || target == fs.ErrNotExist
}

// Data is one kind's file inside one scene directory. It holds no open
// handles and is cheap to construct.
type Data struct {
	ScenePath string

	desc *Descriptor
}

// Name returns the canonical kind name.
func (d *Data) Name() string { return d.desc.Name }

// Descriptor returns the kind's descriptor.
func (d *Data) Descriptor() *Descriptor { return d.desc }

// Path returns ScenePath/<name><ext>.
func (d *Data) Path() string {
	return filepath.Join(d.ScenePath, d.desc.FileName())
}

// Exists reports whether the file is present on disk.
func (d *Data) Exists() bool {
	return fsutil.Exists(d.Path())
}

func (d *Data) String() string {
	return fmt.Sprintf("%s(%q)", d.desc.Name, d.ScenePath)
}

// Read decodes the file. A missing file yields a *NotFoundError carrying
// the path regardless of codec.
func (d *Data) Read() (any, error) {
	path := d.Path()
	if !d.Exists() {
		return nil, &NotFoundError{Path: path}
	}

	v, err := d.desc.codec.Decode(path)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, &NotFoundError{Path: path}
		}

		return nil, err
	}
	if d.desc.Parse != nil {
		if v, err = d.desc.Parse(v); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	log.Debug(log.CatCodec, "read kind", "kind", d.desc.Name, "path", path)

	return v, nil
}

// Write creates the scene directory when needed and encodes v.
func (d *Data) Write(v any) error {
	if err := os.MkdirAll(d.ScenePath, 0o755); err != nil {
		return err
	}

	return d.desc.codec.Encode(d.Path(), v)
}

// Visualize renders a decoded value. Kinds without a visualization return
// errs.ErrNoVisualizer.
func (d *Data) Visualize(v any) (*ndarray.Array, error) {
	if d.desc.Visualize == nil {
		return nil, fmt.Errorf("%w: %s", errs.ErrNoVisualizer, d.desc.Name)
	}

	return d.desc.Visualize(d.desc, v)
}

// ReadArray reads a kind holding a single array.
func (d *Data) ReadArray() (*ndarray.Array, error) {
	v, err := d.Read()
	if err != nil {
		return nil, err
	}
	arr, ok := v.(*ndarray.Array)
	if !ok {
		return nil, fmt.Errorf("%w: %s holds %T, not an array", errs.ErrUnsupportedValue, d.desc.Name, v)
	}

	return arr, nil
}

// ReadBundle reads a bundle kind. A single array comes back as a one
// entry bundle keyed by the kind name.
func (d *Data) ReadBundle() (ndarray.Bundle, error) {
	v, err := d.Read()
	if err != nil {
		return nil, err
	}

	switch v := v.(type) {
	case ndarray.Bundle:
		return v, nil
	case *ndarray.Array:
		return ndarray.Bundle{d.desc.Name: v}, nil
	}

	return nil, fmt.Errorf("%w: %s holds %T, not a bundle", errs.ErrUnsupportedValue, d.desc.Name, v)
}

// ReadLighting reads a lighting kind.
func (d *Data) ReadLighting() (*lighting.Lighting, error) {
	v, err := d.Read()
	if err != nil {
		return nil, err
	}

	return lighting.Parse(v)
}

// ReadImage reads an image kind without converting it to an array.
func (d *Data) ReadImage() (image.Image, error) {
	ic, ok := d.desc.codec.(*codec.ImageCodec)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an image kind", errs.ErrUnsupportedValue, d.desc.Name)
	}

	path := d.Path()
	if !d.Exists() {
		return nil, &NotFoundError{Path: path}
	}

	return ic.DecodeImage(path)
}
