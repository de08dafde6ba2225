// Package source provides CLI commands for managing content sources.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/internal/backup"
	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/logging"
	"github.com/thoreinstein/ccdir/internal/resource"
	"github.com/thoreinstein/ccdir/internal/source"
)

// backupConfig snapshots the config file before a source change rewrites it.
var backupConfig = backup.EnsureBackedUp

// Cmd is the root source command.
var Cmd = &cobra.Command{
	Use:   "source",
	Short: "Manage content sources",
	Long: `Manage the content trees layered over the built-in corpus.

A source is either a git repository, shallow cloned to the local cache, or a
local directory used in place. Each follows the content layout:
categories.yaml plus claude-configs/, prompts/ and tools/ directories of markdown
files with YAML front matter. Sources load after the built-in corpus in name
order; when two sources define the same slug the first one wins.`,
	Example: `  # Add a team repository
  ccdir source add https://github.com/example/claude-content.git

  # Use a local checkout while editing it
  ccdir source add --path ~/src/claude-content --name dev

  # Pull every git source
  ccdir source update

  See Also:
    ccdir source add    - Add a source
    ccdir source list   - List configured sources
    ccdir source update - Pull git sources
    ccdir source remove - Remove a source`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

// printContentSummary loads the tree of e on its own and reports what it
// holds, with any files that failed to load.
func printContentSummary(ctx context.Context, w io.Writer, e *source.Entry) {
	c, err := catalog.Load(ctx, logging.FromContext(ctx),
		resource.Source{Name: e.Name, Origin: e.Origin(), FS: os.DirFS(e.Dir)})
	if err != nil {
		fmt.Fprintf(w, "⚠ Could not load content: %v\n", err)
		return
	}

	fmt.Fprintf(w, "  Content: %d config(s), %d prompt(s), %d tool(s), %d categories\n",
		len(c.Configs()), len(c.Prompts()), len(c.Tools()), len(c.Categories()))

	problems := c.Problems()
	if len(problems) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "⚠ Files that failed to load:")
	for _, p := range problems {
		fmt.Fprintf(w, "  %s: %v\n", p.Path, p.Err)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
