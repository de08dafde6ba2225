package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/pkg/fileutil"
)

const fileScheme = "file://"

// Filesystem stores blobs as files under a directory.
type Filesystem struct {
	dir string
}

// NewFilesystem creates dir if needed.
func NewFilesystem(dir string) (*Filesystem, error) {
	if dir == "" {
		return nil, errors.New("filesystem blob store requires a directory")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", dir)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", abs)
	}
	return &Filesystem{dir: abs}, nil
}

// Put writes data atomically and returns a file:// URL.
func (f *Filesystem) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	path, err := f.path(key)
	if err != nil {
		return "", err
	}
	if err := fileutil.WriteFileMkdir(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "storing %s", key)
	}
	return fileScheme + filepath.ToSlash(path), nil
}

// Get reads a file:// URL inside the store directory.
func (f *Filesystem) Get(_ context.Context, url string) ([]byte, error) {
	p, ok := strings.CutPrefix(url, fileScheme)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidURL, "%q", url)
	}
	p = filepath.FromSlash(p)
	if rel, err := filepath.Rel(f.dir, p); err != nil || !filepath.IsLocal(rel) {
		return nil, errors.Wrapf(ErrInvalidURL, "%q is outside %s", url, f.dir)
	}
	data, err := fileutil.ReadFileWithLimit(p)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", url)
	}
	return data, nil
}

func (f *Filesystem) path(key string) (string, error) {
	if key == "" || !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", errors.Newf("invalid blob key %q", key)
	}
	return filepath.Join(f.dir, filepath.FromSlash(key)), nil
}
