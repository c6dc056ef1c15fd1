// Package archive extracts downloaded zip archives into a dataset root.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"github.com/klauspost/compress/zip"

	"github.com/geomagical/geosynth/compress"
	"github.com/geomagical/geosynth/errs"
	"github.com/geomagical/geosynth/internal/log"
)

// headerLen is the prefix filetype needs to recognize archive signatures.
const headerLen = 262

// Sniff reports whether path starts with an archive signature.
func Sniff(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	head := make([]byte, headerLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return err
	}
	if !filetype.IsArchive(head[:n]) {
		return fmt.Errorf("%w: %s", errs.ErrNotArchive, path)
	}

	return nil
}

func open(path string) (*zip.ReadCloser, error) {
	if err := Sniff(path); err != nil {
		return nil, err
	}

	// Insecure member names are rejected per member by Extract.
	rc, err := zip.OpenReader(path)
	if err != nil && !(errors.Is(err, zip.ErrInsecurePath) && rc != nil) {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrNotArchive, path, err)
	}
	compress.RegisterReader(&rc.Reader)

	return rc, nil
}

// Members lists the member names of the archive at path.
func Members(path string) ([]string, error) {
	rc, err := open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	names := make([]string, len(rc.File))
	for i, f := range rc.File {
		names[i] = f.Name
	}

	return names, nil
}

// Extract writes every member of the archive at path below destDir and
// returns the number of members processed. fn, when non-nil, is called
// after each member. A member whose target would land outside destDir
// fails the extraction with errs.ErrUnsafePath before anything is written
// for it.
func Extract(path, destDir string, fn func(name string)) (int, error) {
	rc, err := open(path)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, err
	}

	for i, f := range rc.File {
		target, err := memberPath(destDir, f.Name)
		if err != nil {
			return i, err
		}
		if err := extractMember(f, target); err != nil {
			return i, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		if fn != nil {
			fn(f.Name)
		}
	}
	log.Debug(log.CatArchive, "extracted archive", "path", path, "members", len(rc.File), "dest", destDir)

	return len(rc.File), nil
}

// memberPath resolves name below destDir, rejecting absolute names and
// names that climb out of it.
func memberPath(destDir, name string) (string, error) {
	clean := filepath.FromSlash(strings.TrimSuffix(name, "/"))
	if clean == "" || !filepath.IsLocal(clean) {
		return "", fmt.Errorf("%w: %q", errs.ErrUnsafePath, name)
	}

	return filepath.Join(destDir, clean), nil
}

func extractMember(f *zip.File, target string) error {
	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}

	return dst.Close()
}
