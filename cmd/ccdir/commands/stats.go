package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/resource"
)

var statsJSON bool

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print directory totals",
	Long: `Print the number of entries, categories and distinct contributors,
the summed copy count and the most recent update date.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStatsWithWriter(cmd.Context(), cmd.OutOrStdout())
	},
}

// statsOutput adds per-type counts to the directory snapshot.
type statsOutput struct {
	resource.Stats
	Configs int `json:"configs"`
	Prompts int `json:"prompts"`
	Tools   int `json:"tools"`
}

// runStatsWithWriter allows injecting a writer for testing.
func runStatsWithWriter(ctx context.Context, w io.Writer) error {
	c, err := loadCatalog(ctx)
	if err != nil {
		return err
	}

	out := statsOutput{
		Stats:   c.Stats(),
		Configs: len(c.Configs()),
		Prompts: len(c.Prompts()),
		Tools:   len(c.Tools()),
	}
	if statsJSON {
		return writeJSON(w, out)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%d\n", bold("Resources"), out.TotalResources)
	fmt.Fprintf(tw, "  configs\t%d\n", out.Configs)
	fmt.Fprintf(tw, "  prompts\t%d\n", out.Prompts)
	fmt.Fprintf(tw, "  tools\t%d\n", out.Tools)
	fmt.Fprintf(tw, "%s\t%d\n", bold("Categories"), out.TotalCategories)
	fmt.Fprintf(tw, "%s\t%d\n", bold("Contributors"), out.TotalContributors)
	fmt.Fprintf(tw, "%s\t%d\n", bold("Copies"), out.TotalCopies)
	fmt.Fprintf(tw, "%s\t%s\n", bold("Last updated"), out.LastUpdated)
	return errors.Wrap(tw.Flush(), "flushing tabwriter")
}
