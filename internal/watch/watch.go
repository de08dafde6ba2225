// Package watch reloads the catalog when content files change on disk.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/logging"
)

// DefaultDebounce is how long the tree must stay quiet before a reload.
const DefaultDebounce = 300 * time.Millisecond

// Reloader rebuilds the served catalog. *catalog.Live implements it.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

// Watcher triggers a debounced reload on changes to markdown and YAML files
// under a set of content directories.
type Watcher struct {
	reloader Reloader
	dirs     []string
	debounce time.Duration
	logger   *slog.Logger
	fsw      *fsnotify.Watcher
}

// New creates a watcher over dirs, recursively. Directories created later
// are picked up as they appear.
func New(reloader Reloader, dirs []string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}
	w := &Watcher{
		reloader: reloader,
		dirs:     dirs,
		debounce: DefaultDebounce,
		logger:   logging.NewDiscard(),
		fsw:      fsw,
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, dir := range dirs {
		if err := w.addTree(dir); err != nil {
			_ = fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run processes events until ctx is cancelled. It closes the watcher on
// return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	// Each relevant event restarts the quiet period.
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.handle(event) {
				continue
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			w.logger.Info("content changed, reloading catalog")
			if err := w.reloader.Reload(ctx); err != nil {
				w.logger.Error("reload failed", "error", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// handle reports whether event should trigger a reload, and starts watching
// new directories.
func (w *Watcher) handle(event fsnotify.Event) bool {
	if event.Has(fsnotify.Create) && isDir(event.Name) {
		if err := w.addTree(event.Name); err != nil {
			w.logger.Warn("cannot watch new directory", "path", event.Name, "error", err)
		}
		return !skip(filepath.Base(event.Name))
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if !isContentFile(filepath.Base(event.Name)) {
		return false
	}
	w.logger.Debug("content file changed", "path", event.Name, "op", event.Op.String())
	return true
}

// isContentFile reports whether a file name can hold corpus content.
func isContentFile(name string) bool {
	if skip(name) {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".yaml", ".yml":
		return true
	}
	return false
}

// addTree watches root and every directory below it. A root that is not a
// directory is ignored.
func (w *Watcher) addTree(root string) error {
	if !isDir(root) {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skip(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			return errors.Wrapf(err, "watching %s", path)
		}
		return nil
	})
}

// skip ignores dotfiles, .git and editor temp files.
func skip(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
