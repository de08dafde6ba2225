package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/ccdir/internal/config"
	"github.com/thoreinstein/ccdir/internal/editor"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/resource"
	"github.com/thoreinstein/ccdir/pkg/fileutil"
	"github.com/thoreinstein/ccdir/pkg/frontmatter"
)

var (
	newTitle    string
	newCategory string
	newAuthor   string
	newDir      string
	newNoEdit   bool
)

func init() {
	f := newCmd.Flags()
	f.StringVar(&newTitle, "title", "", "title (default: derived from the slug)")
	f.StringVar(&newCategory, "category", "", "category id")
	f.StringVar(&newAuthor, "author", "", "author name (default: $USER)")
	f.StringVarP(&newDir, "dir", "C", ".", "content tree root")
	f.BoolVar(&newNoEdit, "no-edit", false, "do not open the new file in $EDITOR")
	rootCmd.AddCommand(newCmd)
}

var newCmd = &cobra.Command{
	Use:   "new <config|prompt|tool> <slug>",
	Short: "Scaffold a content file",
	Long: `Create a new record file in a content tree with a generated id, today's
date and placeholder fields, then open it in $EDITOR.

The file goes to <dir>/claude-md, <dir>/prompts or <dir>/tools. Run
'ccdir validate' after editing; register the tree with 'ccdir source add
--path <dir>' to include it in the catalog.`,
	Example: `  # New prompt in the current content tree
  ccdir new prompt api-design --category backend

  # New config in another tree without opening an editor
  ccdir new config rails-monolith -C ~/team-content --no-edit

  See Also: ccdir validate, ccdir source add`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := runNewWithWriter(cmd.OutOrStdout(), args[0], args[1])
		if err != nil || newNoEdit {
			return err
		}
		return openEditor(cmd.Context(), path)
	},
}

// openEditor is replaced in tests.
var openEditor = editor.Open

// runNewWithWriter writes the scaffold and returns its path.
func runNewWithWriter(w io.Writer, kind, slug string) (string, error) {
	t, err := parseTypeArg(kind)
	if err != nil {
		return "", err
	}
	if !config.ValidSourceName(slug) {
		return "", errors.NewUserError(errors.Newf("invalid slug %q", slug),
			"Use lowercase letters, digits and single hyphens")
	}

	path := filepath.Join(newDir, resource.Dir(t), slug+".md")
	if _, err := os.Stat(path); err == nil {
		return "", errors.NewUserError(errors.Newf("%s already exists", path), "Choose another slug")
	}

	matter, body := scaffold(t, slug, time.Now())
	data, err := frontmatter.Format(matter, body)
	if err != nil {
		return "", err
	}
	if err := fileutil.WriteFileMkdir(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}

	fmt.Fprintf(w, "%s Created %s\n", green("✓"), path)
	return path, nil
}

// scaffold returns the frontmatter record and body of a new file.
func scaffold(t resource.ResourceType, slug string, now time.Time) (any, string) {
	title := newTitle
	if title == "" {
		title = titleFromSlug(slug)
	}
	author := resource.Author{Name: newAuthor}
	if author.Name == "" {
		author.Name = os.Getenv("USER")
	}
	id := uuid.NewString()
	date := now.Format(time.DateOnly)
	tags := []string{}

	switch t {
	case resource.TypePrompt:
		return resource.PromptTemplate{
			ID:          id,
			Title:       title,
			Slug:        slug,
			Description: "What this prompt helps with.",
			Category:    newCategory,
			Tags:        tags,
			Difficulty:  resource.Beginner,
			Variables: []resource.PromptVariable{
				{Name: "subject", Description: "What the prompt is about", Required: true},
			},
			Examples:    []resource.PromptExample{},
			Author:      author,
			LastUpdated: date,
		}, "Write the prompt here. Reference variables as {{ subject }}.\n"
	case resource.TypeTool:
		return resource.Tool{
			ID:          id,
			Title:       title,
			Slug:        slug,
			Tagline:     "One line on what the tool does.",
			Category:    newCategory,
			Type:        resource.ToolCLI,
			URL:         "https://example.com/" + slug,
			Tags:        tags,
			Author:      author,
			Difficulty:  resource.Beginner,
			LastUpdated: date,
		}, "Longer description, installation and usage.\n"
	default:
		return resource.ClaudeMdConfig{
			ID:          id,
			Title:       title,
			Slug:        slug,
			Tagline:     "One line on the project this config suits.",
			Description: "Who should use this configuration and why.",
			Category:    newCategory,
			Tags:        tags,
			Author:      author,
			Difficulty:  resource.Beginner,
			LastUpdated: date,
		}, "# " + title + "\n\n## Project overview\n\n## Commands\n\n## Conventions\n"
	}
}

func titleFromSlug(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
