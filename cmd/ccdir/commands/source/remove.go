package source

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/internal/backup"
	"github.com/thoreinstein/ccdir/internal/config"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/source"
)

func init() {
	Cmd.AddCommand(removeCmd)
}

var removeCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a content source",
	Long: `Remove a source from the configuration.

The cached clone of a git source is deleted too. Local directories are left
untouched.`,
	Example: `  ccdir source remove team-content`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRemoveWithWriter(cmd.OutOrStdout(), args[0], config.FilePath())
	},
}

// runRemoveWithWriter allows injecting a writer for testing.
func runRemoveWithWriter(w io.Writer, name, configPath string) error {
	if err := backupConfig(backup.ScopeConfig, []string{configPath}); err != nil {
		return errors.NewSystemError(err, "Check permissions on the backup directory")
	}
	if err := source.NewManager(configPath).Remove(name); err != nil {
		if errors.Is(err, source.ErrNotFound) {
			return errors.NewUserError(
				errors.Newf("source %q not found", name),
				"Run: ccdir source list to see configured sources",
			)
		}
		// Cache cleanup failure is a warning, not a fatal error
		if errors.Is(err, source.ErrCacheCleanupFailed) {
			fmt.Fprintf(w, "✓ Source %q removed\n", name)
			fmt.Fprintf(w, "⚠ Warning: %v\n", err)
			return nil
		}
		return errors.NewSystemError(
			errors.Wrapf(err, "removing source %q", name),
			"Check file permissions on the cache directory",
		)
	}

	fmt.Fprintf(w, "✓ Source %q removed\n", name)
	return nil
}
