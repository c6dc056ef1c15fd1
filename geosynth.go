// Package geosynth provides access to the GeoSynth synthetic indoor scene
// dataset.
//
// A dataset variant ("demo" or "full") is a directory of scenes, and every
// scene directory holds one file per data kind: rgb.png, depth.npz,
// lighting.json and so on. Kinds are declared in a registry that binds each
// name to a file extension, a codec and an optional visualization.
//
// # Core Features
//
//   - Per kind archive download with an on-disk idempotence marker
//   - Typed decoding of images, NPZ array bundles, Radiance HDR and JSON
//   - Float16 narrowing for depth and normals bundles
//   - Visualization of depth, normals, semantic and instance segmentation
//   - Pluggable member compression (Deflate, Zstd, S2, LZ4) for bundles
//
// # Basic Usage
//
// Downloading the non-HDR kinds of the demo variant:
//
//	path, err := geosynth.Download(ctx, "", nil)
//
// Reading data back:
//
//	ds, _ := geosynth.NewDataset(path, "")
//	for _, s := range ds.All() {
//	    rgb, err := s.RGB().ReadArray()
//	    ...
//	}
//
// # Package Structure
//
// This package holds thin wrappers over the download, dataset and scene
// packages for the most common use cases. The kind package exposes the
// registry for adding kinds or changing bundle compression.
package geosynth

import (
	"context"

	"github.com/geomagical/geosynth/dataset"
	"github.com/geomagical/geosynth/download"
	"github.com/geomagical/geosynth/scene"
)

// Version is the release version, set at build time with
// -ldflags "-X github.com/geomagical/geosynth.Version=...".
var Version = "0.0.0"

// Download fetches and extracts kind archives and returns the variant
// directory holding the extracted scenes.
//
// Parameters:
//   - ctx: Checked between kinds
//   - dst: Dataset root; "" means ~/data/geosynth
//   - kinds: Kind names, or the sentinels "all" and "non-hdr"; nil means "non-hdr"
//   - opts: download.Option values (variant, force, cleanup, progress)
//
// Kinds whose archive is not published yet are reported and skipped. Any
// other failure stops the batch.
//
// Example:
//
//	path, err := geosynth.Download(ctx, "~/data/geosynth", []string{"rgb", "depth"},
//	    download.WithVariant("full"),
//	)
func Download(ctx context.Context, dst string, kinds []string, opts ...download.Option) (string, error) {
	return download.Download(ctx, dst, kinds, opts...)
}

// NewDataset opens the scenes under path/variant. An empty variant opens
// path directly, which suits the value returned by Download.
//
// Example:
//
//	ds, err := geosynth.NewDataset("~/data/geosynth", "demo")
//	s, err := ds.At(0)
func NewDataset(path, variant string, opts ...dataset.Option) (*dataset.Dataset, error) {
	return dataset.New(path, variant, opts...)
}

// NewScene returns a view of a single scene directory.
func NewScene(path string, opts ...scene.Option) *scene.Scene {
	return scene.New(path, opts...)
}
