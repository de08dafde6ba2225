package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/cmd"
	"github.com/thoreinstein/ccdir/internal/api"
	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/logging"
	"github.com/thoreinstein/ccdir/internal/paths"
	"github.com/thoreinstein/ccdir/internal/source"
	"github.com/thoreinstein/ccdir/internal/watch"
)

var (
	serveAddr  string
	serveWatch bool
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload when files in local sources change (default: server.watch)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the directory as a read-only JSON API",
	Long: `Serve the catalog over HTTP.

Routes live under /api/v1 (stats, categories, resources, configs, prompts,
tools and prompt rendering); /health, /version and /metrics sit at the root.
With --watch, local sources are watched and the catalog reloads when their
markdown or YAML files change. A failed reload keeps the previous catalog.`,
	Example: `  # Default address from config
  ccdir serve

  # Development against a local content tree
  ccdir source add --path ./content --name dev
  ccdir serve --addr 127.0.0.1:8080 --watch

  See Also: ccdir mcp`,
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := currentConfig()
		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		watching := cfg.Server.Watch
		if c.Flags().Changed("watch") {
			watching = serveWatch
		}
		return runServe(ctx, addr, watching)
	},
}

// newLive performs the first load of a reloadable catalog.
func newLive(ctx context.Context) (*catalog.Live, error) {
	logger := logging.FromContext(ctx)
	live, err := catalog.NewLive(ctx, logger, catalogLoader(currentConfig(), logger))
	if err != nil {
		return nil, errors.NewSystemError(err, "Run: ccdir validate")
	}
	return live, nil
}

func runServe(ctx context.Context, addr string, watching bool) error {
	logger := logging.FromContext(ctx)
	live, err := newLive(ctx)
	if err != nil {
		return err
	}

	if watching {
		if err := startWatcher(ctx, live); err != nil {
			return err
		}
	}

	info := cmd.Info()
	srv := api.NewServer(live, api.Options{
		Version:     info.Version,
		Commit:      info.Commit,
		CORSOrigins: currentConfig().Server.CORSOrigins,
		Logger:      logger,
	})
	return srv.ListenAndServe(ctx, addr)
}

// startWatcher watches every local source directory until ctx ends. The
// built-in corpus and git clones only change through ccdir itself.
func startWatcher(ctx context.Context, live *catalog.Live) error {
	logger := logging.FromContext(ctx)

	var dirs []string
	for _, e := range source.Entries(currentConfig(), paths.SourcesCacheDir()) {
		if e.IsLocal() {
			dirs = append(dirs, e.Dir)
		}
	}
	if len(dirs) == 0 {
		logger.Warn("--watch has no local sources to watch")
		return nil
	}

	w, err := watch.New(live, dirs, watch.WithLogger(logger))
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	go func() {
		if err := w.Run(ctx); err != nil {
			logger.Error("watcher stopped", "error", err)
		}
	}()
	logger.Info("watching local sources", "dirs", dirs)
	return nil
}
