package commands

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/fatih/color"

	"github.com/thoreinstein/ccdir/internal/backup"
	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/config"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/logging"
	"github.com/thoreinstein/ccdir/internal/paths"
	"github.com/thoreinstein/ccdir/internal/resource"
	"github.com/thoreinstein/ccdir/internal/source"
)

// Table styles.
var (
	bold  = color.New(color.Bold).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
)

// currentConfig returns the loaded configuration, or the defaults when a
// command runs without the root pre-run (as in tests).
func currentConfig() *config.Config {
	if appConfig == nil {
		return config.Default()
	}
	return appConfig
}

// backupFiles snapshots files before a command overwrites them. Tests
// replace it.
var backupFiles = backup.EnsureBackedUp

// catalogLoader builds a catalog loader for cfg. Tests replace it.
var catalogLoader = func(cfg *config.Config, logger *slog.Logger) catalog.LoadFunc {
	return func(ctx context.Context) (*catalog.Catalog, error) {
		sources := source.ContentSources(cfg, paths.SourcesCacheDir(), logger)
		return catalog.Load(ctx, logger, sources...)
	}
}

// loadCatalog loads the merged catalog of every configured source.
func loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	logger := logging.FromContext(ctx)
	c, err := catalogLoader(currentConfig(), logger)(ctx)
	if err != nil {
		return nil, errors.NewSystemError(err, "Run: ccdir validate -v")
	}
	for _, p := range c.Problems() {
		logger.Warn("skipped content file", "source", p.Source, "path", p.Path, "error", p.Err)
	}
	return c, nil
}

// parseTypeArg parses an optional resource type flag or argument.
func parseTypeArg(raw string) (resource.ResourceType, error) {
	if raw == "" {
		return "", nil
	}
	t, ok := resource.ParseType(raw)
	if !ok {
		return "", errors.NewUserError(errors.Newf("unknown type %q", raw),
			"Valid types: config, prompt, tool")
	}
	return t, nil
}

// notFound converts a catalog lookup failure into a user error.
func notFound(err error, slug string) error {
	if errors.Is(err, errors.ErrNotFound) {
		return errors.NewUserError(err, "Run: ccdir search "+slug)
	}
	return err
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(v), "encoding output")
}
