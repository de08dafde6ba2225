package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/cmd"
	"github.com/thoreinstein/ccdir/internal/logging"
	"github.com/thoreinstein/ccdir/internal/mcp"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the directory to MCP clients over stdio",
	Long: `Run a Model Context Protocol server on stdin and stdout.

Tools: search_resources, get_resource and directory_stats. Every Claude.md
config is a resource at ccdir://claude-md/<slug> and every tool at
ccdir://tools/<slug>. Every prompt template is an MCP prompt whose
arguments are its variables.

Logs go to stderr; use --log-file to keep them.`,
	Example: `  # Register with Claude Code
  claude mcp add ccdir -- ccdir mcp

  See Also: ccdir serve`,
	Args: cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		ctx := c.Context()
		live, err := newLive(ctx)
		if err != nil {
			return err
		}
		return mcp.NewServer(live, cmd.Info().Version, logging.FromContext(ctx)).ServeStdio()
	},
}
