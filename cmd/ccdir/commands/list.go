package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/resource"
)

var (
	listCategory string
	listJSON     bool
)

func init() {
	listCmd.Flags().StringVar(&listCategory, "category", "", "only entries in this category id")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output in JSON format")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [configs|prompts|tools|categories]",
	Short: "List directory entries",
	Long: `List every entry in the directory, or only one kind of entry.

Entries are listed in listing order: configs, then prompts, then tools,
each in the order their files load. 'ccdir list categories' prints the
category taxonomy with the number of entries in each.`,
	Example: `  # Everything
  ccdir list

  # Only prompt templates in the testing category
  ccdir list prompts --category testing

  # The category taxonomy as JSON
  ccdir list categories --json

  See Also: ccdir search, ccdir show`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"configs", "prompts", "tools", "categories"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runListWithWriter(cmd.Context(), cmd.OutOrStdout(), args)
	},
}

// runListWithWriter allows injecting a writer for testing.
func runListWithWriter(ctx context.Context, w io.Writer, args []string) error {
	c, err := loadCatalog(ctx)
	if err != nil {
		return err
	}

	if len(args) == 1 && (args[0] == "categories" || args[0] == "category") {
		return listCategories(w, c)
	}

	var t resource.ResourceType
	if len(args) == 1 {
		if t, err = parseTypeArg(args[0]); err != nil {
			return err
		}
	}

	var entries []resource.Resource
	for _, r := range c.Resources() {
		if t != "" && r.Type != t {
			continue
		}
		if listCategory != "" && r.CategoryID != listCategory {
			continue
		}
		entries = append(entries, r)
	}

	if listJSON {
		if entries == nil {
			entries = []resource.Resource{}
		}
		return writeJSON(w, entries)
	}
	return outputResourcesTabular(w, entries)
}

func listCategories(w io.Writer, c *catalog.Catalog) error {
	cats := c.Categories()
	if listJSON {
		return writeJSON(w, cats)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", bold("ID"), bold("NAME"), bold("SLUG"), bold("ENTRIES"))
	for _, cat := range cats {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", green(cat.ID), cat.Name, gray(cat.Slug), cat.ResourceCount)
	}
	return errors.Wrap(tw.Flush(), "flushing tabwriter")
}

// outputResourcesTabular prints listing entries as a table.
func outputResourcesTabular(w io.Writer, entries []resource.Resource) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
		bold("TYPE"), bold("SLUG"), bold("TITLE"), bold("CATEGORY"), bold("DIFFICULTY"))
	for _, r := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Type.Label(), green(r.Slug), r.Title, gray(r.CategoryID), r.Difficulty)
	}
	return errors.Wrap(tw.Flush(), "flushing tabwriter")
}
