package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/export"
	"github.com/thoreinstein/ccdir/internal/store"
	"github.com/thoreinstein/ccdir/pkg/fileutil"
)

var (
	exportFormat string
	exportOut    string
	exportDB     bool
	exportDriver string
	exportDSN    string
)

func init() {
	f := exportCmd.Flags()
	f.StringVarP(&exportFormat, "format", "f", "json", "json, yaml, toml or markdown")
	f.StringVarP(&exportOut, "out", "o", "", "output file, or directory for markdown (default: stdout)")
	f.BoolVar(&exportDB, "db", false, "write to the SQL store instead of a file")
	f.StringVar(&exportDriver, "driver", "", "store driver: sqlite or postgres (default: store.driver)")
	f.StringVar(&exportDSN, "dsn", "", "store data source name (default: store.dsn)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog as a bundle, a content tree or SQL rows",
	Long: `Export the merged catalog.

The json, yaml and toml formats write one bundle document holding the stats,
categories, configs, prompts and tools. The markdown format writes a content
tree (categories.yaml plus one front-matter file per record) that ccdir can
load back as a source.

With --db the catalog is upserted into the configured SQL database instead;
rows for records that no longer exist are removed.`,
	Example: `  # Bundle to stdout
  ccdir export

  # TOML file
  ccdir export -f toml -o directory.toml

  # Round-trippable content tree
  ccdir export -f markdown -o ./content

  # SQLite snapshot
  ccdir export --db --dsn ./directory.db

  See Also: ccdir publish, ccdir source add --path`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runExportWithWriter(cmd.Context(), cmd.OutOrStdout())
	},
}

// runExportWithWriter allows injecting a writer for testing.
func runExportWithWriter(ctx context.Context, w io.Writer) error {
	c, err := loadCatalog(ctx)
	if err != nil {
		return err
	}

	if exportDB {
		return exportToStore(ctx, w, c)
	}

	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return errors.NewUserError(err, "Valid formats: json, yaml, toml, markdown")
	}
	bundle := export.FromCatalog(c, time.Now().UTC())

	if format == export.FormatMarkdown {
		if exportOut == "" {
			return errors.NewUserError(errors.New("markdown export needs a directory"), "Pass --out <dir>")
		}
		if err := export.WriteTree(exportOut, bundle); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s Wrote content tree to %s\n", green("✓"), exportOut)
		return nil
	}

	data, err := export.Encode(bundle, format)
	if err != nil {
		return err
	}
	if exportOut == "" || exportOut == "-" {
		_, err := w.Write(data)
		return errors.Wrap(err, "writing output")
	}
	if err := fileutil.WriteFileMkdir(exportOut, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", exportOut)
	}
	fmt.Fprintf(w, "%s Wrote %s bundle to %s\n", green("✓"), format, filepath.Clean(exportOut))
	return nil
}

func exportToStore(ctx context.Context, w io.Writer, c *catalog.Catalog) error {
	cfg := currentConfig()
	driver, dsn := cfg.Store.Driver, cfg.Store.DSN
	if exportDriver != "" {
		driver = exportDriver
	}
	if exportDSN != "" {
		dsn = exportDSN
	}

	s, err := store.Open(ctx, driver, dsn)
	if err != nil {
		if errors.Is(err, store.ErrUnsupportedDriver) {
			return errors.NewUserError(err, "Use --driver sqlite or --driver postgres")
		}
		return errors.NewSystemError(err, "Check store.dsn")
	}
	defer s.Close()

	sum, err := s.Save(ctx, c)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s Saved %d categories and %d records to %s (%d removed)\n",
		green("✓"), sum.Categories, sum.Resources, driver, sum.Removed)
	return nil
}
