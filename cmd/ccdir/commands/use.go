package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/internal/backup"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/paths"
	"github.com/thoreinstein/ccdir/pkg/fileutil"
)

var useForce bool

func init() {
	useCmd.Flags().BoolVarP(&useForce, "force", "f", false, "overwrite an existing CLAUDE.md")
	rootCmd.AddCommand(useCmd)
}

var useCmd = &cobra.Command{
	Use:   "use <config-slug> [project-dir]",
	Short: "Write a Claude.md config into a project",
	Long: `Write the content of a Claude.md config to CLAUDE.md in the project
directory (the current directory by default). An existing file is kept
unless --force is given; a replaced file is backed up first and can be
brought back with ccdir backup restore instructions.`,
	Example: `  # Start a project from a config
  ccdir use nextjs-typescript

  # Replace the instructions of another project
  ccdir use go-microservices ~/src/api --force`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 2 {
			dir = args[1]
		}
		return runUseWithWriter(cmd.Context(), cmd.OutOrStdout(), args[0], dir)
	},
}

// runUseWithWriter allows injecting a writer for testing.
func runUseWithWriter(ctx context.Context, w io.Writer, slug, dir string) error {
	c, err := loadCatalog(ctx)
	if err != nil {
		return err
	}
	cfg, err := c.Config(slug)
	if err != nil {
		return notFound(err, slug)
	}

	target := paths.InstructionsPath(dir)
	if _, err := os.Stat(target); err == nil {
		if !useForce {
			return errors.NewUserError(errors.Newf("%s already exists", target), "Pass --force to overwrite it")
		}
		if err := backupFiles(backup.ScopeInstructions, []string{target}); err != nil {
			return errors.NewSystemError(err, "Check the backup directory, or move the file away")
		}
	}

	content := cfg.Content
	if len(content) > 0 && content[len(content)-1] != '\n' {
		content += "\n"
	}
	if err := fileutil.AtomicWriteFile(target, []byte(content), 0o644); err != nil {
		return errors.Wrap(err, "writing instructions file")
	}

	fmt.Fprintf(w, "%s Wrote %s from %q\n", green("✓"), target, cfg.Title)
	return nil
}
