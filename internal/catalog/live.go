package catalog

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/logging"
)

// LoadFunc builds a fresh catalog, typically by rescanning every source.
type LoadFunc func(ctx context.Context) (*Catalog, error)

// Live holds the current catalog and replaces it on Reload.
type Live struct {
	load   LoadFunc
	logger *slog.Logger

	current atomic.Pointer[Catalog]
	// reloadMu serializes reloads; readers never take it.
	reloadMu sync.Mutex

	subsMu sync.Mutex
	subs   []func(*Catalog)
}

// NewLive performs the initial load. The returned Live always holds a
// non-nil catalog.
func NewLive(ctx context.Context, logger *slog.Logger, load LoadFunc) (*Live, error) {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	l := &Live{load: load, logger: logger}

	c, err := load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "initial catalog load")
	}
	l.current.Store(c)
	return l, nil
}

// Current returns the catalog in effect.
func (l *Live) Current() *Catalog {
	return l.current.Load()
}

// Reload builds a new catalog and swaps it in. On failure the previous
// catalog stays in place.
func (l *Live) Reload(ctx context.Context) error {
	l.reloadMu.Lock()
	defer l.reloadMu.Unlock()

	c, err := l.load(ctx)
	if err != nil {
		l.logger.Error("catalog reload failed, keeping previous catalog", "error", err)
		return errors.Wrap(err, "reloading catalog")
	}
	l.current.Store(c)
	l.logger.Info("catalog reloaded", "resources", len(c.Resources()))

	l.subsMu.Lock()
	subs := append([]func(*Catalog){}, l.subs...)
	l.subsMu.Unlock()
	for _, fn := range subs {
		fn(c)
	}
	return nil
}

// OnReload registers fn to run after every successful reload.
func (l *Live) OnReload(fn func(*Catalog)) {
	l.subsMu.Lock()
	defer l.subsMu.Unlock()
	l.subs = append(l.subs, fn)
}
