package source

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/internal/backup"
	"github.com/thoreinstein/ccdir/internal/config"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/git"
	"github.com/thoreinstein/ccdir/internal/logging"
	"github.com/thoreinstein/ccdir/internal/source"
)

// Package-level flag variables for source add command.
var (
	nameFlag string
	refFlag  string
	pathFlag bool
)

func init() {
	addCmd.Flags().StringVar(&nameFlag, "name", "", "custom name for the source")
	addCmd.Flags().StringVar(&refFlag, "ref", "", "branch or tag to check out")
	addCmd.Flags().BoolVar(&pathFlag, "path", false, "treat the argument as a local directory")
	Cmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <url | --path dir>",
	Short: "Add a content source",
	Long: `Add a git repository or local directory as a content source.

Repositories are shallow cloned to the local cache. Local directories are
read in place on every load. The name is derived from the URL or directory
unless overridden with --name; "builtin" is reserved.`,
	Example: `  # Add from GitHub
  ccdir source add https://github.com/example/claude-content.git

  # Pin a tag
  ccdir source add https://github.com/example/claude-content.git --ref v1.2.0

  # Local directory
  ccdir source add --path ./content --name dev`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAddWithIO(cmd.Context(), cmd.OutOrStdout(), args[0], config.FilePath())
	},
}

// runAddWithIO allows injecting a writer for testing.
func runAddWithIO(ctx context.Context, w io.Writer, target, configPath string) error {
	if err := backupConfig(backup.ScopeConfig, []string{configPath}); err != nil {
		return errors.NewSystemError(err, "Check permissions on the backup directory")
	}

	manager := source.NewManager(configPath,
		source.WithOutput(os.Stderr),
		source.WithLogger(logging.FromContext(ctx)))

	var opts []source.AddOption
	if nameFlag != "" {
		opts = append(opts, source.WithName(nameFlag))
	}

	var (
		entry *source.Entry
		err   error
	)
	if pathFlag {
		entry, err = manager.AddPath(target, opts...)
	} else {
		if refFlag != "" {
			opts = append(opts, source.WithRef(refFlag))
		}
		entry, err = manager.Add(ctx, target, opts...)
	}
	if err != nil {
		return handleAddError(err)
	}

	fmt.Fprintf(w, "✓ Source '%s' added from %s\n", entry.Name, entry.Origin())
	fmt.Fprintf(w, "  Directory: %s\n", entry.Dir)
	printContentSummary(ctx, w, entry)
	return nil
}

// handleAddError returns a user-friendly error for known error types.
func handleAddError(err error) error {
	switch {
	case errors.Is(err, source.ErrInvalidName):
		return errors.NewUserError(err, "Names are lowercase letters, digits and single hyphens; pass --name")
	case errors.Is(err, source.ErrNameCollision):
		return errors.NewUserError(err, "Pass --name to choose another name, or run: ccdir source list")
	case errors.Is(err, source.ErrNotDirectory), errors.Is(err, os.ErrNotExist):
		return errors.NewUserError(err, "Check the directory path")
	case errors.Is(err, git.ErrInvalidURL):
		return errors.NewUserError(err, "Use an https, ssh or git URL, or pass --path for a directory")
	default:
		return errors.NewSystemError(err, "Check network access and git credentials")
	}
}
