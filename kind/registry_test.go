package kind

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/geomagical/geosynth/codec"
	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/format"
)

func TestDefault_Builtins(t *testing.T) {
	r := Default()
	require.Equal(t, 23, r.Len())

	names := r.Names()
	require.IsIncreasing(t, names)
	require.Contains(t, names, RGB)
	require.Contains(t, names, HDRSphereEnvironmentMap)

	for _, d := range r.Descriptors() {
		require.NotEmpty(t, d.Ext, d.Name)
		require.True(t, strings.HasPrefix(d.Ext, "."), d.Name)
		require.Equal(t, Canonical(d.Name), d.Name)
		require.NotNil(t, d.CodecImpl(), d.Name)
		require.Equal(t, d.Codec, d.CodecImpl().Type(), d.Name)
	}
}

func TestDefault_Metadata(t *testing.T) {
	r := Default()

	tests := []struct {
		name      string
		ext       string
		codec     format.CodecType
		visualize bool
	}{
		{RGB, ".png", format.CodecImage, false},
		{Depth, ".npz", format.CodecBundleFloat16, true},
		{Normals, ".npz", format.CodecBundleFloat16, true},
		{Intrinsics, ".npz", format.CodecBundle, false},
		{HDRRGB, ".hdr", format.CodecHDR, false},
		{Lighting, ".json", format.CodecJSON, false},
		{SemanticSegmentation, ".png", format.CodecImage, true},
		{InstanceSegmentation, ".npz", format.CodecBundle, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := r.MustLookup(tt.name)
			require.Equal(t, tt.ext, d.Ext)
			require.Equal(t, tt.codec, d.Codec)
			require.Equal(t, tt.visualize, d.Visualize != nil)
			require.Equal(t, tt.name, d.Archive())
		})
	}

	for _, name := range []string{InstanceSegmentation, SemanticSegmentation} {
		d := r.MustLookup(name)
		require.Len(t, d.Palette, len(d.ClassNames), name)
	}
	require.Empty(t, r.MustLookup(RGB).Palette)
}

func TestRegistry_Lookup(t *testing.T) {
	r := Default()

	for _, name := range []string{"hdr_rgb", "HDR_RGB", "hdr-rgb", " Hdr.Rgb "} {
		d, err := r.Lookup(name)
		require.NoError(t, err, name)
		require.Equal(t, HDRRGB, d.Name)
		require.True(t, r.Has(name))
	}

	_, err := r.Lookup("thermal")
	require.ErrorIs(t, err, errs.ErrUnknownKind)
	require.ErrorContains(t, err, "thermal")
	require.False(t, r.Has("thermal"))

	require.Panics(t, func() { r.MustLookup("thermal") })

	data, err := r.New("rgb", "/data/demo/scene")
	require.NoError(t, err)
	require.Equal(t, RGB, data.Name())

	_, err = r.New("thermal", "/data/demo/scene")
	require.ErrorIs(t, err, errs.ErrUnknownKind)
}

func TestRegistry_RegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		desc Descriptor
		want error
	}{
		{"no dot", Descriptor{Name: "thermal", Ext: "png", Codec: format.CodecImage}, errs.ErrInvalidExtension},
		{"empty ext", Descriptor{Name: "thermal", Codec: format.CodecImage}, errs.ErrInvalidExtension},
		{"only dot", Descriptor{Name: "thermal", Ext: ".", Codec: format.CodecImage}, errs.ErrInvalidExtension},
		{"no name", Descriptor{Ext: ".png", Codec: format.CodecImage}, errs.ErrEmptyKindName},
		{"no codec", Descriptor{Name: "thermal", Ext: ".png"}, errs.ErrInvalidCodec},
		{"duplicate", Descriptor{Name: "RGB", Ext: ".png", Codec: format.CodecImage}, errs.ErrDuplicateKind},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Default().Clone()
			require.ErrorIs(t, r.Register(tt.desc), tt.want)
			require.Equal(t, 23, r.Len())
		})
	}
}

func TestRegistry_ExtensionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ext := rapid.StringMatching(`[.a-z]{0,5}`).Draw(t, "ext")

		r := NewRegistry()
		err := r.Register(Descriptor{Name: "custom", Ext: ext, Codec: format.CodecJSON})

		valid := len(ext) > 1 && ext[0] == '.'
		if valid {
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(r.MustLookup("custom").Ext, "."))
		} else {
			require.ErrorIs(t, err, errs.ErrInvalidExtension)
			require.False(t, r.Has("custom"))
		}
	})
}

func TestRegistry_CloneIsIndependent(t *testing.T) {
	r := Default().Clone()
	require.NoError(t, r.Register(Descriptor{Name: "Thermal-Map", Ext: ".png", Codec: format.CodecImage, ArchiveName: "thermal_v2"}))

	require.True(t, r.Has("thermal_map"))
	require.False(t, Default().Has("thermal_map"))
	require.Equal(t, "thermal_v2", r.MustLookup("thermal_map").Archive())
	require.Equal(t, 24, r.Len())
}

func TestRegistry_WithBundleCompression(t *testing.T) {
	r, err := Default().WithBundleCompression(format.CompressionZstd)
	require.NoError(t, err)
	require.Equal(t, Default().Names(), r.Names())

	bundle := r.MustLookup(Intrinsics).CodecImpl().(*codec.BundleCodec)
	require.Equal(t, format.CompressionZstd, bundle.Compression())
	require.Equal(t, Intrinsics, bundle.Key())

	f16 := r.MustLookup(Depth).CodecImpl().(*codec.Float16BundleCodec)
	require.Equal(t, format.CompressionZstd, f16.Compression())

	original := Default().MustLookup(Intrinsics).CodecImpl().(*codec.BundleCodec)
	require.Equal(t, format.CompressionDeflate, original.Compression())

	_, err = Default().WithBundleCompression(format.CompressionType(0x42))
	require.ErrorIs(t, err, errs.ErrInvalidCompression)
}

func TestMustBuild_Panics(t *testing.T) {
	require.Panics(t, func() {
		mustBuild([]Descriptor{{Name: "broken", Ext: "png", Codec: format.CodecImage}})
	})
}

func TestDescriptor_IsHDR(t *testing.T) {
	var hdr []string
	for _, d := range Default().Descriptors() {
		if d.IsHDR() {
			hdr = append(hdr, d.Name)
		}
	}
	require.Equal(t, []string{
		HDRCubeEnvironmentMap, HDRReflectance, HDRResidual, HDRRGB, HDRShading, HDRSphereEnvironmentMap,
	}, hdr)
}

func TestCanonical(t *testing.T) {
	require.Equal(t, "layout_lines_full", Canonical("Layout-Lines.Full"))
	require.Equal(t, "rgb", Canonical(" RGB "))
	require.Equal(t, "a_b", Canonical("a b"))
}
