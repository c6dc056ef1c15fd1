package kind

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/geomagical/geosynth/format"
	"github.com/geomagical/geosynth/internal/fsutil"
	"github.com/geomagical/geosynth/internal/log"
	"github.com/geomagical/geosynth/internal/options"
	"github.com/geomagical/geosynth/remote"
)

const (
	zipExt = ".zip"
	tmpExt = ".tmp"
)

type downloadSettings struct {
	variant format.Variant
	force   bool
	hook    remote.ReportHook
	fetcher remote.Fetcher
	baseURL string
}

// DownloadOption configures DownloadZip.
type DownloadOption = options.Option[*downloadSettings]

// WithVariant selects the dataset variant, case-insensitively. Invalid
// names fail with errs.ErrInvalidVariant before any I/O.
func WithVariant(variant string) DownloadOption {
	return options.New(func(s *downloadSettings) error {
		v, err := format.ParseVariant(variant)
		if err != nil {
			return err
		}
		s.variant = v

		return nil
	})
}

// WithForce redownloads even when the archive is already present.
func WithForce(force bool) DownloadOption {
	return options.NoError(func(s *downloadSettings) { s.force = force })
}

// WithReportHook receives transfer progress.
func WithReportHook(hook remote.ReportHook) DownloadOption {
	return options.NoError(func(s *downloadSettings) { s.hook = hook })
}

// WithFetcher replaces the HTTP fetcher.
func WithFetcher(f remote.Fetcher) DownloadOption {
	return options.NoError(func(s *downloadSettings) { s.fetcher = f })
}

// WithBaseURL replaces the remote bucket URL.
func WithBaseURL(url string) DownloadOption {
	return options.NoError(func(s *downloadSettings) { s.baseURL = url })
}

// DownloadZip fetches the kind's archive for a variant into
// outputDir/<variant>/<archive>.zip and returns that path.
//
// A leftover <archive>.tmp from an interrupted transfer is always removed.
// The transfer is skipped when the zip already exists, including the zero
// byte marker left by a cleaned up download, unless forced; the hook then
// receives a single completion report. A missing remote archive fails with
// errs.ErrNotPublished, any other fetch failure with errs.ErrTransfer.
func (d *Descriptor) DownloadZip(ctx context.Context, outputDir string, opts ...DownloadOption) (string, error) {
	s := &downloadSettings{variant: format.VariantFull, baseURL: remote.DefaultBaseURL}
	if err := options.Apply(s, opts...); err != nil {
		return "", err
	}
	if s.fetcher == nil {
		s.fetcher = remote.NewHTTPFetcher(nil)
	}

	root, err := fsutil.ExpandHome(outputDir)
	if err != nil {
		return "", err
	}
	dir := filepath.Join(root, s.variant.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	zipPath := filepath.Join(dir, d.Archive()+zipExt)
	tmpPath := filepath.Join(dir, d.Archive()+tmpExt)
	if err := os.Remove(tmpPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	if !s.force && fsutil.Exists(zipPath) {
		log.Debug(log.CatDownload, "archive present, skipping", "kind", d.Name, "path", zipPath)
		if s.hook != nil {
			s.hook(1, 1, 1)
		}

		return zipPath, nil
	}

	url := remote.ArchiveURL(s.baseURL, s.variant, d.Archive())
	if err := fetchTo(ctx, s.fetcher, url, tmpPath, s.hook); err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, zipPath); err != nil {
		return "", err
	}

	return zipPath, nil
}

// fetchTo streams url into path, removing the partial file on failure.
func fetchTo(ctx context.Context, f remote.Fetcher, url, path string, hook remote.ReportHook) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}

	_, err = f.Fetch(ctx, url, out, hook)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("download %s: %w", filepath.Base(path), err)
	}

	return nil
}
