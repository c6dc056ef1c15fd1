// Package remote fetches published dataset archives over HTTP.
//
// A Fetcher streams one URL into a writer and reports progress through an
// optional ReportHook. A missing remote resource is reported as
// errs.ErrNotPublished so callers can tell "not uploaded yet" apart from
// every other failure, which wraps errs.ErrTransfer.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/format"
	"github.com/geomagical/geosynth/internal/log"
)

const (
	// DefaultBaseURL is the public bucket holding every variant.
	DefaultBaseURL = "https://storage.googleapis.com/geomagical-geosynth-public"

	// DefaultBlockSize is the read size between progress reports.
	DefaultBlockSize = 8 * 1024
)

// ReportHook receives transfer progress: the number of blocks read so far,
// the block size and the total size in bytes, or -1 when unknown. It is
// called once before the first block and once after every block.
type ReportHook func(blockNum, blockSize int, totalSize int64)

// Fetcher downloads a single URL.
type Fetcher interface {
	// Fetch streams url into dst and returns the number of bytes written.
	Fetch(ctx context.Context, url string, dst io.Writer, hook ReportHook) (int64, error)
}

// ArchiveURL returns "<base>/<variant>/<archive>.zip".
func ArchiveURL(base string, variant format.Variant, archive string) string {
	return fmt.Sprintf("%s/%s/%s.zip", strings.TrimRight(base, "/"), variant, archive)
}

// HTTPFetcher is a Fetcher backed by net/http.
type HTTPFetcher struct {
	client    *http.Client
	blockSize int
}

var _ Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher returns a fetcher using client, or http.DefaultClient when
// client is nil.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPFetcher{client: client, blockSize: DefaultBlockSize}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string, dst io.Writer, hook ReportHook) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", errs.ErrTransfer, url, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", errs.ErrTransfer, url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return 0, fmt.Errorf("%w: %s", errs.ErrNotPublished, url)
	case resp.StatusCode != http.StatusOK:
		return 0, fmt.Errorf("%w: %s: %s", errs.ErrTransfer, url, resp.Status)
	}

	total := resp.ContentLength
	log.Debug(log.CatDownload, "fetching", "url", url, "size", sizeString(total))

	n, err := copyBlocks(dst, resp.Body, f.blockSize, total, hook)
	if err != nil {
		return n, fmt.Errorf("%w: %s: %w", errs.ErrTransfer, url, err)
	}
	if total >= 0 && n != total {
		return n, fmt.Errorf("%w: %s: short read, got %d of %d bytes", errs.ErrTransfer, url, n, total)
	}
	log.Info(log.CatDownload, "fetched", "url", url, "size", humanize.IBytes(uint64(n)))

	return n, nil
}

// copyBlocks copies src to dst one block at a time, reporting after each.
func copyBlocks(dst io.Writer, src io.Reader, blockSize int, total int64, hook ReportHook) (int64, error) {
	if hook != nil {
		hook(0, blockSize, total)
	}

	buf := make([]byte, blockSize)
	var written int64
	for block := 1; ; block++ {
		n, err := io.ReadFull(src, buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, werr
			}
			written += int64(n)
			if hook != nil {
				hook(block, blockSize, total)
			}
		}
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return written, nil
		}
		if err != nil {
			return written, err
		}
	}
}

func sizeString(n int64) string {
	if n < 0 {
		return "unknown"
	}

	return humanize.IBytes(uint64(n))
}
