package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/resource"
)

// runInteractiveSearch narrows matches in a fuzzy finder and shows the
// chosen entry.
func runInteractiveSearch(ctx context.Context, w io.Writer, matches []resource.Resource) error {
	if len(matches) == 0 {
		fmt.Fprintln(w, "No entries found.")
		return nil
	}

	idx, err := fuzzyfinder.Find(matches, func(i int) string { return finderLine(matches[i]) },
		fuzzyfinder.WithContext(ctx),
		fuzzyfinder.WithHeader(fmt.Sprintf("%d entries; enter shows, esc quits", len(matches))),
		fuzzyfinder.WithPreviewWindow(func(i, width, _ int) string {
			if i < 0 {
				return ""
			}
			return finderPreview(matches[i], width)
		}),
	)
	switch {
	case errors.Is(err, fuzzyfinder.ErrAbort):
		return nil
	case err != nil:
		return errors.Wrap(err, "interactive search failed")
	}

	picked := matches[idx]
	showType = string(picked.Type)
	return runShowWithWriter(ctx, w, picked.Slug)
}

// finderLine is what the finder matches against: type, title, slug and
// tags, so typing a tag narrows the list too.
func finderLine(r resource.Resource) string {
	line := fmt.Sprintf("%-6s %s (%s)", r.Type.Label(), r.Title, r.Slug)
	if len(r.Tags) > 0 {
		line += "  #" + strings.Join(r.Tags, " #")
	}
	return line
}

func finderPreview(r resource.Resource, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", r.Title, strings.Repeat("─", min(max(width-4, 1), len(r.Title)+8)))
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%-11s %s\n", name+":", value)
		}
	}
	field("Type", r.Type.Label())
	field("Category", r.CategoryID)
	field("Difficulty", string(r.Difficulty))
	field("Language", r.Language)
	field("Framework", r.Framework)
	field("Author", r.Author.Name)
	field("Updated", r.LastUpdated)
	fmt.Fprintf(&b, "%-11s %d votes, %d copies\n", "Stats:", r.Stats.Votes, r.Stats.Copies)
	if r.Featured {
		b.WriteString("★ featured\n")
	}
	fmt.Fprintf(&b, "\n%s\n\n%s\n", r.Tagline, r.Description)
	return b.String()
}
