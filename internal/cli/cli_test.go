package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/geomagical/geosynth"
	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/kind"
	"github.com/geomagical/geosynth/ndarray"
	"github.com/geomagical/geosynth/scene"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())

	return stdout.String(), stderr.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	return home
}

func TestVersionFlag(t *testing.T) {
	isolate(t)
	for _, flag := range []string{"--version", "-v"} {
		out, _, err := run(t, flag)
		require.NoError(t, err)
		require.Equal(t, geosynth.Version+"\n", out)
	}
}

func TestKinds(t *testing.T) {
	isolate(t)
	out, _, err := run(t, "kinds")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, kind.Default().Len()+1)
	require.True(t, strings.HasPrefix(lines[0], "NAME"))
	require.Contains(t, out, "depth.npz")
	require.Contains(t, out, "lighting.json")
}

func TestKinds_Scene(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	s := scene.New(dir)
	require.NoError(t, s.RGB().Write(ndarray.Zeros(ndarray.Uint8, 4, 4, 3)))

	out, _, err := run(t, "kinds", "--scene", dir)
	require.NoError(t, err)
	require.Contains(t, out, "rgb.png")
	require.NotContains(t, out, "depth")
}

func TestConfig(t *testing.T) {
	isolate(t)
	t.Setenv("GEOSYNTH_VARIANT", "full")

	out, _, err := run(t, "config")
	require.NoError(t, err)
	require.Contains(t, out, "variant: full")
	require.Contains(t, out, "cleanup: true")
}

func TestConfig_Init(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "geosynth.yaml")

	_, _, err := run(t, "config", "init", path)
	require.NoError(t, err)
	require.FileExists(t, path)

	out, _, err := run(t, "--config", path, "config")
	require.NoError(t, err)
	require.Contains(t, out, "variant: demo")
}

func TestInvalidConfig(t *testing.T) {
	isolate(t)
	t.Setenv("GEOSYNTH_VARIANT", "beta")

	_, _, err := run(t, "kinds")
	require.ErrorIs(t, err, errs.ErrInvalidVariant)
}

func TestDownload(t *testing.T) {
	isolate(t)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("scene_a/rgb.png")
	require.NoError(t, err)
	_, err = w.Write([]byte("png"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/full/rgb.zip" {
			http.NotFound(w, r)
			return
		}
		w.Write(buf.Bytes())
	}))
	defer srv.Close()
	t.Setenv("GEOSYNTH_DOWNLOAD_ROOT", srv.URL)

	dst := t.TempDir()
	out, stderr, err := run(t, "download", "--dst", dst, "--variant", "full", "rgb", "depth")
	require.NoError(t, err)
	require.Equal(t, "Downloaded contents to "+filepath.Join(dst, "full")+".\n", out)
	require.Contains(t, stderr, `depth for variant "full" has not been uploaded yet.`)
	require.Contains(t, stderr, "depth Unavailable")

	require.FileExists(t, filepath.Join(dst, "full", "scene_a", "rgb.png"))
	info, err := os.Stat(filepath.Join(dst, "full", "rgb.zip"))
	require.NoError(t, err)
	require.Zero(t, info.Size())
}

func TestDownload_UnknownKind(t *testing.T) {
	isolate(t)
	dst := t.TempDir()

	_, _, err := run(t, "download", "--dst", dst, "thermal")
	require.ErrorIs(t, err, errs.ErrUnknownKind)

	entries, err := os.ReadDir(dst)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestBarReporter(t *testing.T) {
	var out bytes.Buffer
	r := newBarReporter(&out)

	task := r.Task("rgb downloading")
	task.Start(10)
	task.SetCompleted(10)
	task.Describe("rgb extracting")
	task.Start(2)
	task.Advance(2)
	task.Describe("rgb complete")

	other := r.Task("depth downloading")
	other.Stop("depth Unavailable")
	r.Close()

	require.Contains(t, out.String(), "depth Unavailable\n")
}
