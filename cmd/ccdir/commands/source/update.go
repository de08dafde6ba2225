package source

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/internal/config"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/logging"
	"github.com/thoreinstein/ccdir/internal/source"
)

func init() {
	Cmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update [name]",
	Short: "Update git sources",
	Long: `Update git sources by pulling the latest changes.

If a name is provided, only that source is updated. If no name is provided,
every git source is updated. Local directories need no update and are
skipped.`,
	Example: `  # Update all sources
  ccdir source update

  # Update one source
  ccdir source update team-content`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var name string
		if len(args) > 0 {
			name = args[0]
		}
		return runUpdateWithIO(cmd.Context(), cmd.OutOrStdout(), name, config.FilePath())
	},
}

// runUpdateWithIO allows injecting a writer for testing.
func runUpdateWithIO(ctx context.Context, w io.Writer, name, configPath string) error {
	manager := source.NewManager(configPath,
		source.WithOutput(os.Stderr),
		source.WithLogger(logging.FromContext(ctx)))

	updated, err := manager.Update(ctx, name)
	for _, p := range updated {
		if p.Changed() {
			fmt.Fprintf(w, "✓ %s updated %s..%s\n", p.Name, shortHash(p.From), shortHash(p.To))
		} else {
			fmt.Fprintf(w, "✓ %s already up to date at %s\n", p.Name, shortHash(p.To))
		}
	}
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			return errors.NewUserError(err, "Run: ccdir source list to see configured sources")
		}
		return errors.NewSystemError(err, "Check network access and git credentials")
	}

	if len(updated) == 0 {
		fmt.Fprintln(w, "No git sources to update.")
		return nil
	}

	if name != "" {
		if e, err := manager.Get(name); err == nil {
			printContentSummary(ctx, w, e)
		}
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
