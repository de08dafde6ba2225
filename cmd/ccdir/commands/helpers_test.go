package commands

import (
	"context"
	"log/slog"
	"testing"

	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/config"
	"github.com/thoreinstein/ccdir/internal/logging"
	"github.com/thoreinstein/ccdir/internal/resource"
)

func testContent() resource.Content {
	author := resource.Author{Name: "Directory Team", URL: "https://example.com/team"}
	return resource.Content{
		Source: "builtin",
		Categories: []resource.Category{
			{ID: "backend", Name: "Backend", Slug: "backend", Description: "Servers", Icon: "server", Color: "#3366ff", Order: 1},
			{ID: "terminal", Name: "Terminal", Slug: "terminal-tools", Description: "Shell", Icon: "terminal", Color: "#22aa22", Order: 2},
		},
		Configs: []resource.ClaudeMdConfig{{
			ID: "cfg-go", Title: "Go Microservices", Slug: "go-microservices", Tagline: "gRPC services",
			Description: "For Go teams.", Category: "backend", Tags: []string{"go", "grpc"}, Author: author,
			Difficulty: resource.Advanced, Language: "Go", Content: "# Go services\n\nUse contexts.",
			LastUpdated: "2025-01-02", Stats: resource.ResourceStats{Votes: 10, Copies: 4}, Featured: true,
		}},
		Prompts: []resource.PromptTemplate{{
			ID: "p-review", Title: "Code Review", Slug: "code-review", Description: "Review code. Thoroughly.",
			Category: "backend", Tags: []string{"review"}, Difficulty: resource.Beginner,
			Prompt: "Review this {{ language }} code for {{ focus }}:\n{{ code }}",
			Variables: []resource.PromptVariable{
				{Name: "language", Description: "Language", Default: "Go"},
				{Name: "focus", Description: "Focus", Default: "correctness"},
				{Name: "code", Description: "Code", Required: true},
			},
			Examples: []resource.PromptExample{
				{Title: "Python snippet", Variables: map[string]string{"language": "Python", "code": "print(1)"}},
			},
			Author: author, LastUpdated: "2025-01-03",
		}},
		Tools: []resource.Tool{
			{
				ID: "t-rg", Title: "ripgrep", Slug: "ripgrep", Tagline: "Fast search", Description: "Recursive grep.",
				Category: "terminal", Type: resource.ToolCLI, URL: "https://github.com/BurntSushi/ripgrep",
				Tags: []string{"cli", "search"}, Author: author, Difficulty: resource.Beginner, LastUpdated: "2025-01-01",
				Stats: resource.ResourceStats{Votes: 3, Copies: 1},
			},
			{
				ID: "t-review", Title: "Review Bot", Slug: "code-review", Tagline: "Automated review", Description: "Reviews pull requests.",
				Category: "backend", Type: resource.ToolService, URL: "https://example.com/review-bot",
				Tags: []string{"review"}, Author: author, Difficulty: resource.Intermediate, LastUpdated: "2024-12-01",
			},
		},
	}
}

// useCatalog makes every command read a catalog built from contents, and
// resets command state afterwards.
func useCatalog(t *testing.T, contents ...resource.Content) {
	t.Helper()
	if len(contents) == 0 {
		contents = []resource.Content{testContent()}
	}

	prevLoader, prevConfig := catalogLoader, appConfig
	catalogLoader = func(*config.Config, *slog.Logger) catalog.LoadFunc {
		return func(context.Context) (*catalog.Catalog, error) {
			return catalog.New(contents...), nil
		}
	}
	appConfig = config.Default()
	stubBackups(t)
	t.Cleanup(func() {
		catalogLoader, appConfig = prevLoader, prevConfig
		resetFlags()
	})
}

// stubBackups records snapshot requests instead of writing to the user's
// data directory.
func stubBackups(t *testing.T) *[]string {
	t.Helper()
	var calls []string
	prev := backupFiles
	backupFiles = func(scope string, files []string) error {
		for _, f := range files {
			calls = append(calls, scope+":"+f)
		}
		return nil
	}
	t.Cleanup(func() { backupFiles = prev })
	return &calls
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return logging.NewContext(context.Background(), logging.ForTest(t))
}

func resetFlags() {
	listCategory, listJSON = "", false
	showType, showJSON, showRaw = "", false, false
	searchType, searchCategory, searchDifficulty = "", "", ""
	searchTags, searchLanguage, searchFramework = nil, "", ""
	searchFeatured, searchSort = false, ""
	searchLimit, searchPage = resource.DefaultLimit, 1
	searchJSON, searchInteractive = false, false
	validateJSON, validateStrict = false, false
	statsJSON = false
	renderVars, renderExample = nil, ""
	useForce = false
	exportFormat, exportOut, exportDB, exportDriver, exportDSN = "json", "", false, "", ""
	publishFormat, publishKey = "json", ""
	newTitle, newCategory, newAuthor, newDir, newNoEdit = "", "", "", ".", false
	configJSON = false
	versionJSON = false
	doctorJSON, doctorQuiet, doctorVerbose = false, false, false
	backupListJSON = false
}
