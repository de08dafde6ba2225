package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/internal/backup"
	"github.com/thoreinstein/ccdir/internal/errors"
)

var backupListJSON bool

// backupManager is the manager the backup commands use. Tests replace it.
var backupManager = func() *backup.Manager { return backup.NewManager() }

func init() {
	backupListCmd.Flags().BoolVar(&backupListJSON, "json", false, "output in JSON format")
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "List and restore file backups",
	Long: `ccdir backs up a file before overwriting it: the config file before
config set, config edit and source changes, and CLAUDE.md before use --force.
Backups are grouped by scope ("config" or "instructions") and the newest
five per scope are kept.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list [scope]",
	Short: "List available backups",
	Example: `  # List every backup
  ccdir backup list

  # Only config file backups, as JSON
  ccdir backup list config --json

  See Also: ccdir backup restore`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var scope string
		if len(args) == 1 {
			scope = args[0]
		}
		return runBackupListWithWriter(cmd.OutOrStdout(), scope)
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <scope> [backup-id]",
	Short: "Restore files from a backup",
	Long: `Restore the files of a backup to their original locations, preserving
permissions. Without a backup ID the most recent backup of the scope is used.
Existing files are overwritten.`,
	Example: `  # Undo the last config change
  ccdir backup restore config

  # Restore a specific CLAUDE.md backup
  ccdir backup restore instructions 20250123T100712.123456`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var id string
		if len(args) == 2 {
			id = args[1]
		}
		return runBackupRestoreWithWriter(cmd.OutOrStdout(), args[0], id)
	},
}

type backupListOutput struct {
	Scope   string             `json:"scope"`
	Backups []backupInfoOutput `json:"backups"`
}

type backupInfoOutput struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Files     []string  `json:"files"`
	Version   string    `json:"ccdir_version"`
}

func runBackupListWithWriter(w io.Writer, scope string) error {
	mgr := backupManager()

	scopes := []string{scope}
	if scope == "" {
		var err error
		if scopes, err = mgr.Scopes(); err != nil {
			return err
		}
	}

	output := make([]backupListOutput, 0, len(scopes))
	for _, s := range scopes {
		manifests, err := mgr.List(s)
		switch {
		case errors.Is(err, backup.ErrInvalidScope):
			return errors.NewUserError(err, "Scopes: config, instructions")
		case err != nil && !errors.Is(err, backup.ErrNoBackupsFound):
			return errors.Wrapf(err, "listing %s backups", s)
		}

		infos := make([]backupInfoOutput, len(manifests))
		for i, m := range manifests {
			files := make([]string, len(m.Files))
			for j, f := range m.Files {
				files[j] = f.OriginalPath
			}
			infos[i] = backupInfoOutput{ID: m.ID, CreatedAt: m.CreatedAt, Files: files, Version: m.ToolVersion}
		}
		output = append(output, backupListOutput{Scope: s, Backups: infos})
	}

	if backupListJSON {
		return writeJSON(w, output)
	}

	total := 0
	for _, o := range output {
		total += len(o.Backups)
	}
	if total == 0 {
		fmt.Fprintln(w, "No backups available.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Backups are created automatically before ccdir overwrites a file.")
		return nil
	}

	for i, o := range output {
		if len(o.Backups) == 0 {
			continue
		}
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s\n", bold("Scope:"), o.Scope)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", bold("ID"), bold("CREATED"), bold("FILES"))
		for _, b := range o.Backups {
			fmt.Fprintf(tw, "  %s\t%s\t%d\n", green(b.ID), b.CreatedAt.Local().Format(time.DateTime), len(b.Files))
		}
		if err := tw.Flush(); err != nil {
			return errors.Wrap(err, "flushing tabwriter")
		}
	}
	return nil
}

func runBackupRestoreWithWriter(w io.Writer, scope, id string) error {
	mgr := backupManager()

	if id == "" {
		manifests, err := mgr.List(scope)
		if err != nil {
			if errors.Is(err, backup.ErrNoBackupsFound) || errors.Is(err, backup.ErrInvalidScope) {
				return errors.NewUserError(err, "Run: ccdir backup list")
			}
			return errors.Wrap(err, "listing backups")
		}
		id = manifests[0].ID
		fmt.Fprintf(w, "Using most recent backup: %s\n", id)
	}

	manifest, err := mgr.Restore(scope, id)
	if err != nil {
		switch {
		case errors.Is(err, backup.ErrNoBackupsFound), errors.Is(err, backup.ErrInvalidScope):
			return errors.NewUserError(err, "Run: ccdir backup list "+scope)
		case errors.Is(err, backup.ErrBackupCorrupted):
			return errors.NewSystemError(err, "Pick an older backup")
		}
		return errors.Wrap(err, "restoring backup")
	}

	for _, f := range manifest.Files {
		fmt.Fprintf(w, "%s Restored %s\n", green("✓"), f.OriginalPath)
	}
	return nil
}
