// Package dataset lists the scenes of one variant of a GeoSynth download.
package dataset

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/internal/fsutil"
	"github.com/geomagical/geosynth/internal/log"
	"github.com/geomagical/geosynth/internal/options"
	"github.com/geomagical/geosynth/kind"
	"github.com/geomagical/geosynth/scene"
)

type settings struct {
	blocklist []string
	registry  *kind.Registry
}

// Option configures New.
type Option = options.Option[*settings]

// WithBlocklist skips scene directories with the given names.
func WithBlocklist(names ...string) Option {
	return options.NoError(func(s *settings) { s.blocklist = append(s.blocklist, names...) })
}

// WithRegistry resolves kind names of every scene against r.
func WithRegistry(r *kind.Registry) Option {
	return options.NoError(func(s *settings) { s.registry = r })
}

// Dataset is an immutable, indexable list of scenes. The scene list is
// fixed when the dataset is opened.
type Dataset struct {
	Path    string
	Variant string

	root   string
	scenes []string
	opts   []scene.Option
}

// New opens path/variant and lists its scene directories in directory
// order. Hidden and blocklisted names are skipped. An empty variant lists
// path itself.
func New(path, variant string, opts ...Option) (*Dataset, error) {
	s := &settings{}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	expanded, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, err
	}
	root := filepath.Join(expanded, variant)

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}

	d := &Dataset{Path: expanded, Variant: variant, root: root}
	if s.registry != nil {
		d.opts = append(d.opts, scene.WithRegistry(s.registry))
	}
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, ".") || slices.Contains(s.blocklist, name) {
			continue
		}
		d.scenes = append(d.scenes, name)
	}
	log.Debug(log.CatDataset, "opened dataset", "root", root, "scenes", len(d.scenes))

	return d, nil
}

// Root returns the directory holding the scenes.
func (d *Dataset) Root() string {
	return d.root
}

// Len returns the number of scenes.
func (d *Dataset) Len() int {
	return len(d.scenes)
}

// At returns scene i, or errs.ErrIndexOutOfRange.
func (d *Dataset) At(i int) (*scene.Scene, error) {
	if i < 0 || i >= len(d.scenes) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", errs.ErrIndexOutOfRange, i, len(d.scenes))
	}

	return scene.New(filepath.Join(d.root, d.scenes[i]), d.opts...), nil
}

// Names returns the scene directory names in order.
func (d *Dataset) Names() []string {
	return slices.Clone(d.scenes)
}

// All iterates the scenes in order.
func (d *Dataset) All() iter.Seq2[int, *scene.Scene] {
	return func(yield func(int, *scene.Scene) bool) {
		for i, name := range d.scenes {
			if !yield(i, scene.New(filepath.Join(d.root, name), d.opts...)) {
				return
			}
		}
	}
}

func (d *Dataset) String() string {
	return fmt.Sprintf("GeoSynth(path=%q, variant=%q)", d.Path, d.Variant)
}
