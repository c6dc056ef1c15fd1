// Package scene addresses the kind files of a single scene directory.
package scene

import (
	"fmt"

	"github.com/geomagical/geosynth/internal/options"
	"github.com/geomagical/geosynth/kind"
)

// Scene is a read-only view of one exemplar directory. It caches nothing;
// every lookup returns a fresh *kind.Data.
type Scene struct {
	Path string

	registry *kind.Registry
}

type settings struct {
	registry *kind.Registry
}

// Option configures a Scene.
type Option = options.Option[*settings]

// WithRegistry resolves names against r instead of kind.Default().
func WithRegistry(r *kind.Registry) Option {
	return options.NoError(func(s *settings) { s.registry = r })
}

// New returns a scene rooted at path.
func New(path string, opts ...Option) *Scene {
	s := &settings{registry: kind.Default()}
	// Scene options never fail.
	_ = options.Apply(s, opts...)

	return &Scene{Path: path, registry: s.registry}
}

// Registry returns the registry names resolve against.
func (s *Scene) Registry() *kind.Registry {
	return s.registry
}

// Get resolves a kind name. Unknown names fail with errs.ErrUnknownKind,
// never with an I/O error.
func (s *Scene) Get(name string) (*kind.Data, error) {
	return s.registry.New(name, s.Path)
}

// Kinds lists the registered kinds whose file exists in the scene.
func (s *Scene) Kinds() []string {
	var present []string
	for _, d := range s.registry.Descriptors() {
		if d.New(s.Path).Exists() {
			present = append(present, d.Name)
		}
	}

	return present
}

func (s *Scene) String() string {
	return fmt.Sprintf("Scene(path=%q)", s.Path)
}

// builtin resolves a builtin kind through the scene's registry, so named
// accessors and Get agree on codecs. Registries handed to WithRegistry are
// expected to carry the builtin kinds.
func (s *Scene) builtin(name string) *kind.Data {
	return s.registry.MustLookup(name).New(s.Path)
}
