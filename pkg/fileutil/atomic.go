// Package fileutil provides file system helpers shared by the exporters,
// the config writer and the backup manager: atomic writes and size-limited
// reads.
package fileutil

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/ccdir/internal/errors"
)

// AtomicWrite streams the output of write into a temp file next to path,
// syncs it and renames it over path. Readers see the old file or the new
// one, never a mix. If write fails, path is untouched. The parent
// directory must exist.
func AtomicWrite(path string, perm os.FileMode, write func(io.Writer) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return errors.Wrap(err, "writing temp file")
	}
	if err = tmp.Chmod(perm); err != nil {
		return errors.Wrap(err, "setting file permissions")
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrap(err, "syncing temp file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}
	return nil
}

// AtomicWriteFile writes data to path atomically.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	return AtomicWrite(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// AtomicWriteJSON writes v as two-space indented JSON with a trailing
// newline and mode 0644. HTML characters are left unescaped so prompt text
// stays readable.
func AtomicWriteJSON(path string, v any) error {
	return AtomicWrite(path, 0o644, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return errors.Wrap(enc.Encode(v), "marshaling JSON")
	})
}

// AtomicWriteYAML writes v as YAML indented by two spaces.
func AtomicWriteYAML(path string, v any, perm os.FileMode) error {
	return AtomicWrite(path, perm, func(w io.Writer) (err error) {
		// yaml.v3 panics on types it cannot represent, such as channels.
		defer func() {
			if r := recover(); r != nil {
				err = errors.Newf("marshaling YAML: %v", r)
			}
		}()
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "marshaling YAML")
		}
		return enc.Close()
	})
}

// WriteFileMkdir creates the parent directories of path and then writes
// data atomically.
func WriteFileMkdir(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	return AtomicWriteFile(path, data, perm)
}
