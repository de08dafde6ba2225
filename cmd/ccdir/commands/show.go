package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/cli/prompt"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/logging"
	"github.com/thoreinstein/ccdir/internal/render"
	"github.com/thoreinstein/ccdir/internal/resource"
)

var (
	showType string
	showJSON bool
	showRaw  bool
)

func init() {
	showCmd.Flags().StringVarP(&showType, "type", "t", "", "entry type when the slug is shared: config, prompt, tool")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output the full record as JSON")
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "print markdown without terminal styling")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Show a directory entry",
	Long: `Show one config, prompt template or tool.

Markdown is styled for the terminal with the render.style and render.width
settings. When several entry types share the slug you are asked to pick one,
or pass --type.`,
	Example: `  # Read a Claude.md config
  ccdir show nextjs-typescript

  # Disambiguate a shared slug
  ccdir show code-review --type prompt

  # Full record for scripting
  ccdir show ripgrep --json

  See Also: ccdir use, ccdir render`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShowWithWriter(cmd.Context(), cmd.OutOrStdout(), args[0])
	},
}

// selectResource picks one of several entries sharing a slug. Tests
// replace it.
var selectResource = func(slug string, matches []resource.Resource) (*resource.Resource, error) {
	if !logging.IsTTY(os.Stdin) {
		return nil, errors.NewUserError(errors.Newf("%q names %d entries", slug, len(matches)),
			"Pass --type config, --type prompt or --type tool")
	}
	return prompt.NewSelector().SelectResource(slug, matches)
}

// runShowWithWriter allows injecting a writer for testing.
func runShowWithWriter(ctx context.Context, w io.Writer, slug string) error {
	c, err := loadCatalog(ctx)
	if err != nil {
		return err
	}

	t, err := parseTypeArg(showType)
	if err != nil {
		return err
	}
	r, err := resolveEntry(c, t, slug)
	if err != nil {
		return err
	}

	record, doc, err := describe(c, r)
	if err != nil {
		return err
	}
	if showJSON {
		return writeJSON(w, record)
	}
	if showRaw {
		_, err := io.WriteString(w, doc)
		return errors.Wrap(err, "writing output")
	}
	return writeMarkdown(w, doc)
}

// resolveEntry finds the entry named slug, asking the user when the slug is
// shared across types and t is empty.
func resolveEntry(c *catalog.Catalog, t resource.ResourceType, slug string) (resource.Resource, error) {
	if t != "" {
		r, err := c.Get(t, slug)
		return r, notFound(err, slug)
	}

	matches := c.FindAll(slug)
	switch len(matches) {
	case 0:
		return resource.Resource{}, notFound(errors.Wrapf(errors.ErrNotFound, "entry %q", slug), slug)
	case 1:
		return matches[0], nil
	}
	picked, err := selectResource(slug, matches)
	if err != nil {
		return resource.Resource{}, err
	}
	return *picked, nil
}

// writeMarkdown styles doc for a terminal, or prints it plain when w is not
// one.
func writeMarkdown(w io.Writer, doc string) error {
	cfg := currentConfig()
	style := cfg.Render.Style
	if !logging.IsTTY(w) {
		style = render.StyleNoTTY
	}
	out, err := render.Markdown(doc, render.MarkdownOptions{Style: style, Width: cfg.Render.Width})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return errors.Wrap(err, "writing output")
}

// describe returns the full record behind r and a markdown document for it.
func describe(c *catalog.Catalog, r resource.Resource) (any, string, error) {
	switch r.Type {
	case resource.TypeClaudeMd:
		cfg, err := c.Config(r.Slug)
		if err != nil {
			return nil, "", err
		}
		return cfg, configDoc(cfg), nil
	case resource.TypePrompt:
		p, err := c.Prompt(r.Slug)
		if err != nil {
			return nil, "", err
		}
		return p, promptDoc(p), nil
	case resource.TypeTool:
		tool, err := c.Tool(r.Slug)
		if err != nil {
			return nil, "", err
		}
		return tool, toolDoc(tool), nil
	}
	return nil, "", errors.Newf("unknown entry type %q", r.Type)
}

func configDoc(cfg resource.ClaudeMdConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", cfg.Title)
	if cfg.Tagline != "" {
		fmt.Fprintf(&b, "> %s\n\n", cfg.Tagline)
	}
	meta := []string{
		"**Category:** " + cfg.Category,
		"**Difficulty:** " + string(cfg.Difficulty),
	}
	if cfg.Language != "" {
		meta = append(meta, "**Language:** "+cfg.Language)
	}
	if cfg.Framework != "" {
		meta = append(meta, "**Framework:** "+cfg.Framework)
	}
	fmt.Fprintf(&b, "%s\n\n", strings.Join(meta, " | "))
	if len(cfg.Tags) > 0 {
		fmt.Fprintf(&b, "Tags: %s\n\n", strings.Join(cfg.Tags, ", "))
	}
	b.WriteString("---\n\n")
	b.WriteString(cfg.Content)
	b.WriteString("\n")
	return b.String()
}

func promptDoc(p resource.PromptTemplate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", p.Title, p.Description)
	fmt.Fprintf(&b, "**Category:** %s | **Difficulty:** %s\n\n", p.Category, p.Difficulty)

	if len(p.Variables) > 0 {
		b.WriteString("## Variables\n\n")
		b.WriteString("| Name | Required | Default | Description |\n")
		b.WriteString("|------|----------|---------|-------------|\n")
		for _, v := range p.Variables {
			required := "no"
			if v.Required {
				required = "yes"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", v.Name, required, v.Default, v.Description)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Prompt\n\n```\n")
	b.WriteString(strings.TrimRight(p.Prompt, "\n"))
	b.WriteString("\n```\n")

	for _, ex := range p.Examples {
		fmt.Fprintf(&b, "\n### Example: %s\n\n", ex.Title)
		if ex.Description != "" {
			fmt.Fprintf(&b, "%s\n\n", ex.Description)
		}
		for _, v := range p.Variables {
			if val, ok := ex.Variables[v.Name]; ok {
				fmt.Fprintf(&b, "- `%s`: %s\n", v.Name, val)
			}
		}
	}
	return b.String()
}

func toolDoc(t resource.Tool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n> %s\n\n", t.Title, t.Tagline)
	fmt.Fprintf(&b, "**Type:** %s | **Category:** %s | **Difficulty:** %s\n\n", t.Type, t.Category, t.Difficulty)
	fmt.Fprintf(&b, "<%s>\n", t.URL)
	if t.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", t.Description)
	}
	return b.String()
}
