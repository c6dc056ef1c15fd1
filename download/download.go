// Package download fetches and unpacks kind archives for a dataset
// variant.
//
// Kinds are processed one at a time. A kind whose archive has not been
// published yet is reported and skipped; every other failure aborts the
// batch. Extracted archives are replaced by a zero byte marker so later
// runs skip them without touching the network.
package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/dustin/go-humanize"

	"github.com/geomagical/geosynth/archive"
	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/format"
	"github.com/geomagical/geosynth/internal/fsutil"
	"github.com/geomagical/geosynth/internal/hash"
	"github.com/geomagical/geosynth/internal/log"
	"github.com/geomagical/geosynth/internal/options"
	"github.com/geomagical/geosynth/kind"
	"github.com/geomagical/geosynth/progress"
	"github.com/geomagical/geosynth/remote"
)

// Kind name sentinels accepted by Download.
const (
	All    = "all"
	NonHDR = "non-hdr"
)

// UnavailableFunc is told about a kind whose archive is not published for
// the variant.
type UnavailableFunc func(name string, variant format.Variant)

type settings struct {
	variant     format.Variant
	force       bool
	cleanup     bool
	reporter    progress.Reporter
	fetcher     remote.Fetcher
	baseURL     string
	registry    *kind.Registry
	unavailable UnavailableFunc
}

// Option configures Download.
type Option = options.Option[*settings]

// WithVariant selects the dataset variant. Defaults to demo.
func WithVariant(variant string) Option {
	return options.New(func(s *settings) error {
		v, err := format.ParseVariant(variant)
		if err != nil {
			return err
		}
		s.variant = v

		return nil
	})
}

// WithForce refetches archives that are already present.
func WithForce(force bool) Option {
	return options.NoError(func(s *settings) { s.force = force })
}

// WithCleanup controls whether extracted archives are replaced by a zero
// byte marker. Defaults to true.
func WithCleanup(cleanup bool) Option {
	return options.NoError(func(s *settings) { s.cleanup = cleanup })
}

// WithProgress reports per kind progress to r.
func WithProgress(r progress.Reporter) Option {
	return options.NoError(func(s *settings) {
		if r != nil {
			s.reporter = r
		}
	})
}

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f remote.Fetcher) Option {
	return options.NoError(func(s *settings) { s.fetcher = f })
}

// WithBaseURL replaces the remote bucket URL.
func WithBaseURL(url string) Option {
	return options.NoError(func(s *settings) { s.baseURL = url })
}

// WithRegistry resolves kind names against r instead of kind.Default().
func WithRegistry(r *kind.Registry) Option {
	return options.NoError(func(s *settings) { s.registry = r })
}

// WithUnavailableFunc replaces the default warning logged for unpublished
// kinds.
func WithUnavailableFunc(fn UnavailableFunc) Option {
	return options.NoError(func(s *settings) { s.unavailable = fn })
}

func logUnavailable(name string, variant format.Variant) {
	log.Warn(log.CatDownload, "kind has not been uploaded yet, check back later", "kind", name, "variant", variant)
}

// Download fetches the archives of kinds into dst/<variant> and extracts
// them there, returning that directory. dst defaults to ~/data/geosynth.
//
// An empty kinds list, or one containing "non-hdr", selects every
// registered kind except the HDR ones; "all" selects every kind. Unknown
// names fail with errs.ErrUnknownKind before anything is downloaded.
// ctx is checked between kinds.
func Download(ctx context.Context, dst string, kinds []string, opts ...Option) (string, error) {
	s := &settings{
		variant:     format.VariantDemo,
		cleanup:     true,
		reporter:    progress.Nop,
		baseURL:     remote.DefaultBaseURL,
		registry:    kind.Default(),
		unavailable: logUnavailable,
	}
	if err := options.Apply(s, opts...); err != nil {
		return "", err
	}
	if s.fetcher == nil {
		s.fetcher = remote.NewHTTPFetcher(nil)
	}

	descs, err := Resolve(s.registry, kinds)
	if err != nil {
		return "", err
	}

	if dst == "" {
		dst = fsutil.DefaultDatasetDir
	}
	root, err := fsutil.ExpandHome(dst)
	if err != nil {
		return "", err
	}
	out := filepath.Join(root, s.variant.String())

	tasks := make([]progress.Task, len(descs))
	for i, d := range descs {
		tasks[i] = s.reporter.Task(d.Name + " downloading")
	}

	for i, d := range descs {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := fetchKind(ctx, s, d, root, out, tasks[i]); err != nil {
			return "", err
		}
	}

	return out, nil
}

// Resolve expands the kind name sentinels and validates every name
// against r. Sentinel expansions come back in sorted name order; literal
// names keep their order with duplicates dropped.
func Resolve(r *kind.Registry, kinds []string) ([]*kind.Descriptor, error) {
	if len(kinds) == 0 || slices.Contains(kinds, NonHDR) {
		var out []*kind.Descriptor
		for _, d := range r.Descriptors() {
			if !d.IsHDR() {
				out = append(out, d)
			}
		}

		return out, nil
	}
	if slices.Contains(kinds, All) {
		return r.Descriptors(), nil
	}

	out := make([]*kind.Descriptor, 0, len(kinds))
	for _, name := range kinds {
		d, err := r.Lookup(name)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}

	return out, nil
}

func fetchKind(ctx context.Context, s *settings, d *kind.Descriptor, root, out string, task progress.Task) error {
	zipPath, err := d.DownloadZip(ctx, root,
		kind.WithVariant(s.variant.String()),
		kind.WithForce(s.force),
		kind.WithReportHook(progress.Hook(task)),
		kind.WithFetcher(s.fetcher),
		kind.WithBaseURL(s.baseURL),
	)
	if errors.Is(err, errs.ErrNotPublished) {
		s.unavailable(d.Name, s.variant)
		task.Stop(d.Name + " Unavailable")

		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", d.Name, err)
	}

	size, err := fsutil.Size(zipPath)
	if err != nil {
		return err
	}
	if size > 0 {
		if err := extract(d, zipPath, out, size, task); err != nil {
			return err
		}
		if s.cleanup {
			if err := replaceWithMarker(zipPath); err != nil {
				return err
			}
		}
	}
	task.Describe(d.Name + " complete")

	return nil
}

func extract(d *kind.Descriptor, zipPath, out string, size int64, task progress.Task) error {
	if log.Enabled(slog.LevelDebug) {
		if sum, _, err := hash.File(zipPath); err == nil {
			log.Debug(log.CatDownload, "archive digest", "kind", d.Name, "xxh64", hash.Hex(sum))
		}
	}

	members, err := archive.Members(zipPath)
	if err != nil {
		return fmt.Errorf("%s: %w", d.Name, err)
	}
	task.Describe(d.Name + " extracting")
	task.Start(int64(len(members)))
	task.SetCompleted(0)

	n, err := archive.Extract(zipPath, out, func(string) { task.Advance(1) })
	if err != nil {
		return fmt.Errorf("%s: %w", d.Name, err)
	}
	log.Info(log.CatDownload, "extracted kind", "kind", d.Name, "members", n, "size", humanize.IBytes(uint64(size)))

	return nil
}

// replaceWithMarker swaps an extracted archive for an empty file at the
// same path.
func replaceWithMarker(zipPath string) error {
	if err := os.Remove(zipPath); err != nil {
		return err
	}

	return os.WriteFile(zipPath, nil, 0o644)
}
