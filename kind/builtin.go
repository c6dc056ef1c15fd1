package kind

import (
	"fmt"
	"image/color"

	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/format"
	"github.com/geomagical/geosynth/lighting"
	"github.com/geomagical/geosynth/ndarray"
	"github.com/geomagical/geosynth/visualize"
)

// Builtin kind names.
const (
	CubeEnvironmentMap      = "cube_environment_map"
	Depth                   = "depth"
	Extrinsics              = "extrinsics"
	Gravity                 = "gravity"
	HDRCubeEnvironmentMap   = "hdr_cube_environment_map"
	HDRReflectance          = "hdr_reflectance"
	HDRResidual             = "hdr_residual"
	HDRRGB                  = "hdr_rgb"
	HDRShading              = "hdr_shading"
	HDRSphereEnvironmentMap = "hdr_sphere_environment_map"
	InstanceSegmentation    = "instance_segmentation"
	Intrinsics              = "intrinsics"
	LayoutLinesFull         = "layout_lines_full"
	LayoutLinesOccluded     = "layout_lines_occluded"
	LayoutLinesVisible      = "layout_lines_visible"
	Lighting                = "lighting"
	Normals                 = "normals"
	Reflectance             = "reflectance"
	Residual                = "residual"
	RGB                     = "rgb"
	SemanticSegmentation    = "semantic_segmentation"
	Shading                 = "shading"
	SphereEnvironmentMap    = "sphere_environment_map"
)

const (
	extPNG  = ".png"
	extNPZ  = ".npz"
	extHDR  = ".hdr"
	extJSON = ".json"

	// DepthMin and DepthMax bound the depth colormap, in meters.
	DepthMin = 0.0
	DepthMax = 10.0
)

// ClassNames lists the semantic classes in label order.
var ClassNames = []string{
	"background", "wall", "floor", "ceiling", "window", "door",
	"cabinet", "bed", "chair", "sofa", "table", "shelf",
	"lamp", "plant", "rug", "television", "curtain", "other",
}

// ClassPalette holds one color per entry of ClassNames.
var ClassPalette = []color.RGBA{
	{0, 0, 0, 255},
	{120, 120, 120, 255},
	{80, 50, 50, 255},
	{120, 120, 80, 255},
	{230, 230, 230, 255},
	{8, 255, 51, 255},
	{224, 5, 255, 255},
	{204, 5, 255, 255},
	{204, 70, 3, 255},
	{11, 102, 255, 255},
	{255, 6, 82, 255},
	{255, 7, 71, 255},
	{224, 255, 8, 255},
	{4, 200, 3, 255},
	{255, 9, 92, 255},
	{0, 255, 245, 255},
	{255, 51, 7, 255},
	{255, 255, 255, 255},
}

func builtins() []Descriptor {
	png := func(name string) Descriptor { return Descriptor{Name: name, Ext: extPNG, Codec: format.CodecImage} }
	npz := func(name string) Descriptor { return Descriptor{Name: name, Ext: extNPZ, Codec: format.CodecBundle} }
	hdr := func(name string) Descriptor { return Descriptor{Name: name, Ext: extHDR, Codec: format.CodecHDR} }

	depth := Descriptor{Name: Depth, Ext: extNPZ, Codec: format.CodecBundleFloat16, Visualize: visualizeDepth}
	normals := Descriptor{Name: Normals, Ext: extNPZ, Codec: format.CodecBundleFloat16, Visualize: visualizeNormals}

	instances := npz(InstanceSegmentation)
	instances.Palette, instances.ClassNames, instances.Visualize = ClassPalette, ClassNames, visualizeInstances

	semantic := png(SemanticSegmentation)
	semantic.Palette, semantic.ClassNames, semantic.Visualize = ClassPalette, ClassNames, visualizeSemantic

	return []Descriptor{
		npz(CubeEnvironmentMap),
		depth,
		npz(Extrinsics),
		npz(Gravity),
		npz(HDRCubeEnvironmentMap),
		hdr(HDRReflectance),
		hdr(HDRResidual),
		hdr(HDRRGB),
		hdr(HDRShading),
		hdr(HDRSphereEnvironmentMap),
		instances,
		npz(Intrinsics),
		npz(LayoutLinesFull),
		npz(LayoutLinesOccluded),
		npz(LayoutLinesVisible),
		{Name: Lighting, Ext: extJSON, Codec: format.CodecJSON, Parse: parseLighting},
		normals,
		png(Reflectance),
		png(Residual),
		png(RGB),
		semantic,
		png(Shading),
		png(SphereEnvironmentMap),
	}
}

var defaultRegistry = mustBuild(builtins())

// mustBuild registers every descriptor in one pass and panics on the first
// malformed entry.
func mustBuild(table []Descriptor) *Registry {
	r := NewRegistry()
	for _, d := range table {
		if err := r.Register(d); err != nil {
			panic(fmt.Sprintf("kind: builtin registry: %v", err))
		}
	}

	return r
}

// Default returns the registry of builtin kinds. It must not be modified;
// register new kinds on Default().Clone() instead.
func Default() *Registry {
	return defaultRegistry
}

func parseLighting(v any) (any, error) {
	return lighting.Parse(v)
}

func asArray(d *Descriptor, v any) (*ndarray.Array, error) {
	switch v := v.(type) {
	case *ndarray.Array:
		return v, nil
	case ndarray.Bundle:
		if arr, ok := v[d.Name]; ok && len(v) == 1 {
			return arr, nil
		}
	}

	return nil, fmt.Errorf("%w: %s cannot visualize %T", errs.ErrUnsupportedValue, d.Name, v)
}

func visualizeDepth(d *Descriptor, v any) (*ndarray.Array, error) {
	arr, err := asArray(d, v)
	if err != nil {
		return nil, err
	}

	return visualize.Turbo(arr, DepthMin, DepthMax)
}

func visualizeNormals(d *Descriptor, v any) (*ndarray.Array, error) {
	arr, err := asArray(d, v)
	if err != nil {
		return nil, err
	}

	return visualize.Normals(arr)
}

func visualizeSemantic(d *Descriptor, v any) (*ndarray.Array, error) {
	arr, err := asArray(d, v)
	if err != nil {
		return nil, err
	}

	return visualize.Labels(d.Palette, arr)
}

// visualizeInstances renders a class keyed mask bundle. A bare array is a
// bundle holding a single class and is drawn under the kind name.
func visualizeInstances(d *Descriptor, v any) (*ndarray.Array, error) {
	switch v := v.(type) {
	case ndarray.Bundle:
		return visualize.Instances(v)
	case *ndarray.Array:
		return visualize.Instances(ndarray.Bundle{d.Name: v})
	}

	return nil, fmt.Errorf("%w: %s cannot visualize %T", errs.ErrUnsupportedValue, d.Name, v)
}
