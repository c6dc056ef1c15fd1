package scene

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/format"
	"github.com/geomagical/geosynth/kind"
	"github.com/geomagical/geosynth/ndarray"
)

func TestScene_Get(t *testing.T) {
	s := New("/data/demo/scene_a")

	d, err := s.Get("depth")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/data/demo/scene_a", "depth.npz"), d.Path())

	other, err := s.Get("depth")
	require.NoError(t, err)
	require.NotSame(t, d, other, "fresh instance per lookup")

	_, err = s.Get("thermal")
	require.ErrorIs(t, err, errs.ErrUnknownKind)
	require.NotErrorIs(t, err, errs.ErrNotFound)
}

func TestScene_Accessors(t *testing.T) {
	s := New("/data/demo/scene_a")

	accessors := map[string]func() *kind.Data{
		kind.CubeEnvironmentMap:      s.CubeEnvironmentMap,
		kind.Depth:                   s.Depth,
		kind.Extrinsics:              s.Extrinsics,
		kind.Gravity:                 s.Gravity,
		kind.HDRCubeEnvironmentMap:   s.HDRCubeEnvironmentMap,
		kind.HDRReflectance:          s.HDRReflectance,
		kind.HDRResidual:             s.HDRResidual,
		kind.HDRRGB:                  s.HDRRGB,
		kind.HDRShading:              s.HDRShading,
		kind.HDRSphereEnvironmentMap: s.HDRSphereEnvironmentMap,
		kind.InstanceSegmentation:    s.InstanceSegmentation,
		kind.Intrinsics:              s.Intrinsics,
		kind.LayoutLinesFull:         s.LayoutLinesFull,
		kind.LayoutLinesOccluded:     s.LayoutLinesOccluded,
		kind.LayoutLinesVisible:      s.LayoutLinesVisible,
		kind.Lighting:                s.Lighting,
		kind.Normals:                 s.Normals,
		kind.Reflectance:             s.Reflectance,
		kind.Residual:                s.Residual,
		kind.RGB:                     s.RGB,
		kind.SemanticSegmentation:    s.SemanticSegmentation,
		kind.Shading:                 s.Shading,
		kind.SphereEnvironmentMap:    s.SphereEnvironmentMap,
	}
	require.Len(t, accessors, kind.Default().Len())

	for name, get := range accessors {
		d := get()
		require.Equal(t, name, d.Name())
		require.Equal(t, s.Path, d.ScenePath)
	}
}

func TestScene_Kinds(t *testing.T) {
	s := New(t.TempDir())
	require.Empty(t, s.Kinds())

	require.NoError(t, s.RGB().Write(ndarray.Zeros(ndarray.Uint8, 2, 2, 3)))
	require.NoError(t, s.Depth().Write(ndarray.Zeros(ndarray.Float32, 2, 2)))
	require.NoError(t, os.WriteFile(filepath.Join(s.Path, "notes.txt"), nil, 0o644))

	require.Equal(t, []string{kind.Depth, kind.RGB}, s.Kinds())
}

func TestScene_WithRegistry(t *testing.T) {
	r := kind.Default().Clone()
	require.NoError(t, r.Register(kind.Descriptor{Name: "thermal", Ext: ".png", Codec: format.CodecImage}))

	s := New("/data/scene", WithRegistry(r))
	require.Same(t, r, s.Registry())

	d, err := s.Get("thermal")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("/data/scene", "thermal.png"), d.Path())

	_, err = New("/data/scene").Get("thermal")
	require.ErrorIs(t, err, errs.ErrUnknownKind)
}

func TestScene_AccessorsUseRegistry(t *testing.T) {
	r, err := kind.Default().WithBundleCompression(format.CompressionZstd)
	require.NoError(t, err)

	s := New(t.TempDir(), WithRegistry(r))
	d, err := s.Get(kind.Depth)
	require.NoError(t, err)
	require.Same(t, d.Descriptor(), s.Depth().Descriptor())
	require.NotSame(t, kind.Default().MustLookup(kind.Depth), s.Depth().Descriptor())
}

func TestScene_String(t *testing.T) {
	require.Equal(t, `Scene(path="/data/demo/scene_a")`, New("/data/demo/scene_a").String())
}
