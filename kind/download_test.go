package kind

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/format"
	"github.com/geomagical/geosynth/remote"
)

// countingFetcher serves body for every URL and records the calls.
type countingFetcher struct {
	calls atomic.Int32
	urls  []string
	body  string
	err   error
}

func (f *countingFetcher) Fetch(ctx context.Context, url string, dst io.Writer, hook remote.ReportHook) (int64, error) {
	f.calls.Add(1)
	f.urls = append(f.urls, url)
	if f.err != nil {
		dst.Write([]byte("partial"))
		return 7, f.err
	}
	if hook != nil {
		hook(0, 4, int64(len(f.body)))
		hook(1, 4, int64(len(f.body)))
	}
	n, err := io.WriteString(dst, f.body)

	return int64(n), err
}

func TestDownloadZip_InvalidVariant(t *testing.T) {
	root := filepath.Join(t.TempDir(), "geosynth")
	fetcher := &countingFetcher{}

	_, err := Default().MustLookup(RGB).DownloadZip(context.Background(), root,
		WithVariant("partial"), WithFetcher(fetcher))
	require.ErrorIs(t, err, errs.ErrInvalidVariant)
	require.ErrorContains(t, err, `"partial"`)
	require.ErrorContains(t, err, `["demo", "full"]`)

	_, statErr := os.Stat(root)
	require.ErrorIs(t, statErr, fs.ErrNotExist, "nothing created")
	require.Zero(t, fetcher.calls.Load())
}

func TestDownloadZip_Fetches(t *testing.T) {
	root := t.TempDir()
	fetcher := &countingFetcher{body: "PK zip bytes"}

	var reports [][3]int64
	hook := func(block, size int, total int64) { reports = append(reports, [3]int64{int64(block), int64(size), total}) }

	path, err := Default().MustLookup(Depth).DownloadZip(context.Background(), root,
		WithVariant("DEMO"), WithFetcher(fetcher), WithReportHook(hook), WithBaseURL("http://bucket"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "demo", "depth.zip"), path)
	require.Equal(t, []string{"http://bucket/demo/depth.zip"}, fetcher.urls)
	require.Len(t, reports, 2)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "PK zip bytes", string(got))
	_, err = os.Stat(filepath.Join(root, "demo", "depth.tmp"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDownloadZip_DefaultsToFullVariant(t *testing.T) {
	fetcher := &countingFetcher{body: "zip"}
	path, err := Default().MustLookup(RGB).DownloadZip(context.Background(), t.TempDir(), WithFetcher(fetcher))
	require.NoError(t, err)
	require.Equal(t, "full", filepath.Base(filepath.Dir(path)))
	require.Equal(t, remote.ArchiveURL(remote.DefaultBaseURL, format.VariantFull, RGB), fetcher.urls[0])
}

func TestDownloadZip_MarkerSkipsTransfer(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "demo")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	marker := filepath.Join(dir, "rgb.zip")
	require.NoError(t, os.WriteFile(marker, nil, 0o644))

	fetcher := &countingFetcher{body: "zip"}
	var reports [][3]int64
	hook := func(block, size int, total int64) { reports = append(reports, [3]int64{int64(block), int64(size), total}) }

	path, err := Default().MustLookup(RGB).DownloadZip(context.Background(), root,
		WithVariant("demo"), WithFetcher(fetcher), WithReportHook(hook))
	require.NoError(t, err)
	require.Equal(t, marker, path)
	require.Zero(t, fetcher.calls.Load(), "no transfer")
	require.Equal(t, [][3]int64{{1, 1, 1}}, reports, "hook still signals completion")

	info, err := os.Stat(marker)
	require.NoError(t, err)
	require.Zero(t, info.Size())

	path, err = Default().MustLookup(RGB).DownloadZip(context.Background(), root,
		WithVariant("demo"), WithFetcher(fetcher), WithForce(true))
	require.NoError(t, err)
	require.Equal(t, int32(1), fetcher.calls.Load(), "force refetches")
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "zip", string(got))
}

func TestDownloadZip_RemovesStaleTemp(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "demo")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rgb.zip"), []byte("done"), 0o644))
	stale := filepath.Join(dir, "rgb.tmp")
	require.NoError(t, os.WriteFile(stale, []byte("half"), 0o644))

	_, err := Default().MustLookup(RGB).DownloadZip(context.Background(), root,
		WithVariant("demo"), WithFetcher(&countingFetcher{}))
	require.NoError(t, err)

	_, err = os.Stat(stale)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDownloadZip_FailureRemovesPartial(t *testing.T) {
	root := t.TempDir()
	fetcher := &countingFetcher{err: errs.ErrTransfer}

	_, err := Default().MustLookup(Normals).DownloadZip(context.Background(), root,
		WithVariant("demo"), WithFetcher(fetcher))
	require.ErrorIs(t, err, errs.ErrTransfer)

	entries, err := os.ReadDir(filepath.Join(root, "demo"))
	require.NoError(t, err)
	require.Empty(t, entries, "no zip and no partial tmp")
}

func TestDownloadZip_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/demo/thermal_v2.zip":
			w.Write([]byte("archive"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	r := Default().Clone()
	require.NoError(t, r.Register(Descriptor{Name: "thermal", Ext: ".png", Codec: format.CodecImage, ArchiveName: "thermal_v2"}))

	root := t.TempDir()
	fetcher := WithFetcher(remote.NewHTTPFetcher(srv.Client()))

	path, err := r.MustLookup("thermal").DownloadZip(context.Background(), root,
		WithVariant("demo"), WithBaseURL(srv.URL), fetcher)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "demo", "thermal_v2.zip"), path)

	_, err = r.MustLookup(RGB).DownloadZip(context.Background(), root,
		WithVariant("demo"), WithBaseURL(srv.URL), fetcher)
	require.ErrorIs(t, err, errs.ErrNotPublished)
	require.NotErrorIs(t, err, errs.ErrTransfer)
	_, err = os.Stat(filepath.Join(root, "demo", "rgb.tmp"))
	require.ErrorIs(t, err, fs.ErrNotExist)
}
