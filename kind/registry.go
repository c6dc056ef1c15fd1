// Package kind is the registry of scene data kinds.
//
// A Descriptor pairs a canonical kind name with its file extension, codec
// strategy and optional visualization. A Registry maps names to descriptors
// and builds Data values, which bind a descriptor to a scene directory and
// read or write the kind's file through its codec.
//
// The builtin kinds live in the read-only registry returned by Default.
// New kinds are added to a registry from NewRegistry or Default().Clone().
package kind

import (
	"fmt"
	"image/color"
	"slices"
	"strings"
	"sync"

	"github.com/geomagical/geosynth/codec"
	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/format"
	"github.com/geomagical/geosynth/internal/log"
	"github.com/geomagical/geosynth/ndarray"
)

// VisualizeFunc renders a decoded value of kind d as a Uint8 RGB array.
type VisualizeFunc func(d *Descriptor, v any) (*ndarray.Array, error)

// ParseFunc converts a freshly decoded value into the kind's typed form.
type ParseFunc func(v any) (any, error)

// Descriptor declares one data kind.
type Descriptor struct {
	// Name is the file stem and archive name. It is canonicalized on
	// registration.
	Name string
	// Ext is the file extension including the leading dot.
	Ext string
	// Codec selects how the file is encoded.
	Codec format.CodecType
	// Palette and ClassNames describe per-pixel class labels.
	Palette    []color.RGBA
	ClassNames []string
	Visualize  VisualizeFunc
	Parse      ParseFunc
	// ArchiveName overrides the remote archive stem. Defaults to Name.
	ArchiveName string

	codec codec.Codec
}

// Archive returns the remote archive stem.
func (d *Descriptor) Archive() string {
	if d.ArchiveName != "" {
		return d.ArchiveName
	}

	return d.Name
}

// FileName returns the kind's file name inside a scene directory.
func (d *Descriptor) FileName() string {
	return d.Name + d.Ext
}

// CodecImpl returns the codec bound at registration.
func (d *Descriptor) CodecImpl() codec.Codec {
	return d.codec
}

// IsHDR reports whether the kind belongs to the high dynamic range set,
// which bulk downloads skip unless asked for explicitly.
func (d *Descriptor) IsHDR() bool {
	return strings.Contains(d.Name, "hdr_")
}

// New binds the descriptor to a scene directory.
func (d *Descriptor) New(scenePath string) *Data {
	return &Data{ScenePath: scenePath, desc: d}
}

func (d *Descriptor) String() string {
	return fmt.Sprintf("%s (%s, %s)", d.Name, d.Ext, d.Codec)
}

// Canonical normalizes a kind name: lowercase, with '-', ' ' and '.'
// replaced by '_'.
func Canonical(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '.':
			return '_'
		}

		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}

func validate(d *Descriptor) error {
	if d.Name == "" {
		return errs.ErrEmptyKindName
	}
	if d.Ext == "" || !strings.HasPrefix(d.Ext, ".") || d.Ext == "." {
		return fmt.Errorf("%w: %s.Ext %q must start with '.'", errs.ErrInvalidExtension, d.Name, d.Ext)
	}
	if !d.Codec.Valid() {
		return fmt.Errorf("%w: %s uses codec %s", errs.ErrInvalidCodec, d.Name, d.Codec)
	}

	return nil
}

// Registry maps canonical names to descriptors. It is safe for concurrent
// use.
type Registry struct {
	mu          sync.RWMutex
	kinds       map[string]*Descriptor
	compression format.CompressionType
}

// NewRegistry returns an empty registry whose bundle kinds use deflate
// member compression.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]*Descriptor), compression: format.CompressionDeflate}
}

// Register validates d, binds its codec and adds it under its canonical
// name. It fails with errs.ErrInvalidExtension, errs.ErrInvalidCodec or
// errs.ErrDuplicateKind.
func (r *Registry) Register(d Descriptor) error {
	d.Name = Canonical(d.Name)
	if err := validate(&d); err != nil {
		return err
	}

	c, err := codec.New(d.Codec, d.Name, codec.WithCompression(r.compression))
	if err != nil {
		return fmt.Errorf("%s: %w", d.Name, err)
	}
	d.codec = c

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.kinds[d.Name]; ok {
		return fmt.Errorf("%w: %s", errs.ErrDuplicateKind, d.Name)
	}
	r.kinds[d.Name] = &d
	log.Debug(log.CatRegistry, "registered kind", "name", d.Name, "ext", d.Ext, "codec", d.Codec)

	return nil
}

// Lookup returns the descriptor registered under name, canonicalizing it
// first. Unknown names yield errs.ErrUnknownKind.
func (r *Registry) Lookup(name string) (*Descriptor, error) {
	r.mu.RLock()
	d, ok := r.kinds[Canonical(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q, must be one of %v", errs.ErrUnknownKind, name, r.Names())
	}

	return d, nil
}

// MustLookup is Lookup for names known to be registered.
func (r *Registry) MustLookup(name string) *Descriptor {
	d, err := r.Lookup(name)
	if err != nil {
		panic(err)
	}

	return d
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.kinds[Canonical(name)]

	return ok
}

// New returns a Data for kind name bound to scenePath.
func (r *Registry) New(name, scenePath string) (*Data, error) {
	d, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}

	return d.New(scenePath), nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Descriptors returns the registered descriptors sorted by name.
func (r *Registry) Descriptors() []*Descriptor {
	names := r.Names()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Descriptor, len(names))
	for i, name := range names {
		out[i] = r.kinds[name]
	}

	return out
}

// Len returns the number of registered kinds.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.kinds)
}

// Clone returns an independent registry holding the same kinds.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := &Registry{kinds: make(map[string]*Descriptor, len(r.kinds)), compression: r.compression}
	for name, d := range r.kinds {
		out.kinds[name] = d
	}

	return out
}

// WithBundleCompression returns a copy of the registry whose bundle kinds
// write members with ct.
func (r *Registry) WithBundleCompression(ct format.CompressionType) (*Registry, error) {
	out := NewRegistry()
	out.compression = ct
	for _, d := range r.Descriptors() {
		if err := out.Register(*d); err != nil {
			return nil, err
		}
	}

	return out, nil
}
