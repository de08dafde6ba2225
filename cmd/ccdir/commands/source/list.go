package source

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/internal/config"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/source"
)

var listJSON bool

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	Cmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured content sources",
	Long:  `List the git repositories and local directories registered as content sources.`,
	Example: `  # List all sources
  ccdir source list

  # Output as JSON
  ccdir source list --json

  See Also:
    ccdir source add    - Add a source
    ccdir source remove - Remove a source`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runListWithWriter(cmd.OutOrStdout(), config.FilePath())
	},
}

// sourceJSON represents a source in JSON output format.
type sourceJSON struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Origin  string `json:"origin"`
	Ref     string `json:"ref,omitempty"`
	Dir     string `json:"dir"`
	AddedAt string `json:"added_at,omitempty"`
}

// runListWithWriter allows injecting a writer for testing.
func runListWithWriter(w io.Writer, configPath string) error {
	entries, err := source.NewManager(configPath).List()
	if err != nil {
		return errors.Wrap(err, "listing sources")
	}

	if listJSON {
		output := make([]sourceJSON, len(entries))
		for i, e := range entries {
			output[i] = sourceJSON{
				Name:    e.Name,
				Kind:    e.Kind(),
				Origin:  e.Origin(),
				Ref:     e.Ref,
				Dir:     e.Dir,
				AddedAt: e.AddedAt,
			}
		}
		return errors.Wrap(writeJSON(w, output), "encoding output")
	}
	return outputListTabular(w, entries)
}

var (
	bold  = color.New(color.Bold).SprintFunc()
	green = color.New(color.FgGreen).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
)

// outputListTabular outputs sources in tabular format.
func outputListTabular(w io.Writer, entries []source.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No sources configured; only the built-in corpus is loaded.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Add a source with:")
		fmt.Fprintln(w, "  ccdir source add <url>")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", bold("NAME"), bold("KIND"), bold("ORIGIN"), bold("ADDED"))
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", green(e.Name), e.Kind(), e.Origin(), gray(formatAdded(e.AddedAt)))
	}
	return errors.Wrap(tw.Flush(), "flushing tabwriter")
}

// formatAdded renders an RFC 3339 timestamp as a human-readable relative time.
func formatAdded(stamp string) string {
	t, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return "unknown"
	}
	return formatRelativeTime(t, time.Now())
}

func formatRelativeTime(t, now time.Time) string {
	d := now.Sub(t)

	plural := func(n int, unit string) string {
		if n == 1 {
			return "1 " + unit + " ago"
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	case d < 30*24*time.Hour:
		return plural(int(d.Hours()/(24*7)), "week")
	case d < 365*24*time.Hour:
		return plural(int(d.Hours()/(24*30)), "month")
	default:
		return plural(int(d.Hours()/(24*365)), "year")
	}
}
