package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/resource"
)

var (
	searchType        string
	searchCategory    string
	searchDifficulty  string
	searchTags        []string
	searchLanguage    string
	searchFramework   string
	searchFeatured    bool
	searchSort        string
	searchLimit       int
	searchPage        int
	searchJSON        bool
	searchInteractive bool
)

func init() {
	f := searchCmd.Flags()
	f.StringVarP(&searchType, "type", "t", "", "filter by type: config, prompt, tool")
	f.StringVar(&searchCategory, "category", "", "filter by category id")
	f.StringVar(&searchDifficulty, "difficulty", "", "filter by difficulty: beginner, intermediate, advanced")
	f.StringSliceVar(&searchTags, "tag", nil, "require a tag (repeatable)")
	f.StringVar(&searchLanguage, "language", "", "filter configs by language")
	f.StringVar(&searchFramework, "framework", "", "filter configs by framework")
	f.BoolVar(&searchFeatured, "featured", false, "only featured configs")
	f.StringVar(&searchSort, "sort", "", "sort: relevance, votes, copies, recent, title")
	f.IntVar(&searchLimit, "limit", resource.DefaultLimit, "results per page (max 100)")
	f.IntVar(&searchPage, "page", 1, "result page")
	f.BoolVar(&searchJSON, "json", false, "output in JSON format")
	f.BoolVarP(&searchInteractive, "interactive", "i", false, "pick a result with a fuzzy finder")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the directory",
	Long: `Search configs, prompt templates and tools.

The query matches titles, slugs, taglines, descriptions and tags without
regard to case. When nothing contains the query, a fuzzy match on titles,
slugs and tags is tried instead. Without a query every entry passing the
filters is listed.`,
	Example: `  # Text search
  ccdir search "react testing"

  # Filters only
  ccdir search --type config --difficulty beginner --sort votes

  # Pick interactively and show the choice
  ccdir search -i

  See Also: ccdir list, ccdir show`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := searchFilters(args, cmd.Flags().Changed("featured"))
		if err != nil {
			return err
		}
		return runSearchWithWriter(cmd.Context(), cmd.OutOrStdout(), filters)
	},
}

// searchFilters builds filters from the flags. featuredSet distinguishes
// --featured=false from an absent flag.
func searchFilters(args []string, featuredSet bool) (resource.SearchFilters, error) {
	f := resource.SearchFilters{
		CategoryID: searchCategory,
		Tags:       searchTags,
		Language:   searchLanguage,
		Framework:  searchFramework,
		Sort:       resource.SortOrder(strings.ToLower(searchSort)),
		Page:       searchPage,
		Limit:      searchLimit,
	}
	if len(args) > 0 {
		f.Query = args[0]
	}

	t, err := parseTypeArg(searchType)
	if err != nil {
		return f, err
	}
	f.Type = t

	if searchDifficulty != "" {
		d, ok := resource.ParseDifficulty(searchDifficulty)
		if !ok {
			return f, errors.NewUserError(errors.Newf("unknown difficulty %q", searchDifficulty),
				"Valid difficulties: beginner, intermediate, advanced")
		}
		f.Difficulty = d
	}
	if featuredSet {
		featured := searchFeatured
		f.Featured = &featured
	}
	return f, nil
}

// runSearchWithWriter allows injecting a writer for testing.
func runSearchWithWriter(ctx context.Context, w io.Writer, filters resource.SearchFilters) error {
	c, err := loadCatalog(ctx)
	if err != nil {
		return err
	}

	if searchInteractive {
		// The finder narrows the list itself; hand it every match.
		matches, err := allMatches(c, filters)
		if err != nil {
			return searchError(err)
		}
		return runInteractiveSearch(ctx, w, matches)
	}

	results, err := c.Search(filters)
	if err != nil {
		return searchError(err)
	}
	if searchJSON {
		return writeJSON(w, results)
	}

	if err := outputResourcesTabular(w, results.Resources); err != nil {
		return err
	}
	if results.Total > 0 {
		fmt.Fprintf(w, "\n%s\n", gray(fmt.Sprintf("%d match(es), page %d of %d",
			results.Total, results.Page, results.TotalPages)))
	}
	return nil
}

// allMatches collects every page of a search.
func allMatches(c *catalog.Catalog, filters resource.SearchFilters) ([]resource.Resource, error) {
	filters.Page, filters.Limit = 1, resource.MaxLimit
	var all []resource.Resource
	for {
		res, err := c.Search(filters)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Resources...)
		if filters.Page >= res.TotalPages {
			return all, nil
		}
		filters.Page++
	}
}

func searchError(err error) error {
	if errors.Is(err, resource.ErrInvalidFilter) {
		return errors.NewUserError(err, "Run: ccdir search --help")
	}
	return err
}
