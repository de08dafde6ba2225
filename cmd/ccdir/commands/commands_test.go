package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/render"
	"github.com/thoreinstein/ccdir/internal/resource"
)

func TestList(t *testing.T) {
	useCatalog(t)
	var buf bytes.Buffer

	require.NoError(t, runListWithWriter(testContext(t), &buf, nil))
	out := buf.String()
	assert.Contains(t, out, "go-microservices")
	assert.Contains(t, out, "code-review")
	assert.Contains(t, out, "ripgrep")

	buf.Reset()
	require.NoError(t, runListWithWriter(testContext(t), &buf, []string{"tools"}))
	assert.NotContains(t, buf.String(), "go-microservices")
	assert.Contains(t, buf.String(), "ripgrep")

	buf.Reset()
	listCategory = "terminal"
	listJSON = true
	require.NoError(t, runListWithWriter(testContext(t), &buf, nil))
	var entries []resource.Resource
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "ripgrep", entries[0].Slug)
}

func TestList_Categories(t *testing.T) {
	useCatalog(t)
	listJSON = true

	var buf bytes.Buffer
	require.NoError(t, runListWithWriter(testContext(t), &buf, []string{"categories"}))
	var cats []resource.Category
	require.NoError(t, json.Unmarshal(buf.Bytes(), &cats))
	require.Len(t, cats, 2)
	assert.Equal(t, "backend", cats[0].ID)
	assert.Equal(t, 3, cats[0].ResourceCount)
}

func TestList_UnknownType(t *testing.T) {
	useCatalog(t)

	err := runListWithWriter(testContext(t), &bytes.Buffer{}, []string{"widgets"})
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestShow(t *testing.T) {
	useCatalog(t)
	showRaw = true

	var buf bytes.Buffer
	require.NoError(t, runShowWithWriter(testContext(t), &buf, "go-microservices"))
	out := buf.String()
	assert.Contains(t, out, "# Go Microservices")
	assert.Contains(t, out, "> gRPC services")
	assert.Contains(t, out, "**Language:** Go")
	assert.Contains(t, out, "Use contexts.")
}

func TestShow_PromptDocument(t *testing.T) {
	useCatalog(t)
	showRaw = true
	showType = "prompt"

	var buf bytes.Buffer
	require.NoError(t, runShowWithWriter(testContext(t), &buf, "code-review"))
	out := buf.String()
	assert.Contains(t, out, "| code | yes |  | Code |")
	assert.Contains(t, out, "| language | no | Go | Language |")
	assert.Contains(t, out, "Review this {{ language }} code")
	assert.Contains(t, out, "### Example: Python snippet")
}

func TestShow_StyledOutputForPipes(t *testing.T) {
	useCatalog(t)

	var buf bytes.Buffer
	require.NoError(t, runShowWithWriter(testContext(t), &buf, "ripgrep"))
	assert.Contains(t, buf.String(), "ripgrep")
	assert.Contains(t, buf.String(), "Recursive grep.")
}

func TestShow_JSON(t *testing.T) {
	useCatalog(t)
	showJSON = true
	showType = "tool"

	var buf bytes.Buffer
	require.NoError(t, runShowWithWriter(testContext(t), &buf, "code-review"))
	var tool resource.Tool
	require.NoError(t, json.Unmarshal(buf.Bytes(), &tool))
	assert.Equal(t, "t-review", tool.ID)
	assert.Equal(t, resource.ToolService, tool.Type)
}

func TestShow_SharedSlugAsksForChoice(t *testing.T) {
	useCatalog(t)
	showJSON = true

	prev := selectResource
	t.Cleanup(func() { selectResource = prev })
	var offered []resource.Resource
	selectResource = func(_ string, matches []resource.Resource) (*resource.Resource, error) {
		offered = matches
		return &matches[1], nil
	}

	var buf bytes.Buffer
	require.NoError(t, runShowWithWriter(testContext(t), &buf, "code-review"))
	require.Len(t, offered, 2)
	assert.Equal(t, resource.TypePrompt, offered[0].Type)
	assert.Contains(t, buf.String(), `"t-review"`)
}

func TestShow_NotFound(t *testing.T) {
	useCatalog(t)

	err := runShowWithWriter(testContext(t), &bytes.Buffer{}, "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
	assert.Contains(t, errors.Suggestion(err), "ccdir search nope")
}

func TestSearch(t *testing.T) {
	useCatalog(t)
	searchJSON = true

	filters, err := searchFilters([]string{"review"}, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, runSearchWithWriter(testContext(t), &buf, filters))
	var results resource.SearchResults
	require.NoError(t, json.Unmarshal(buf.Bytes(), &results))
	assert.Equal(t, 2, results.Total)
	assert.Equal(t, "review", results.Query)
}

func TestSearch_Filters(t *testing.T) {
	useCatalog(t)

	searchType = "config"
	searchDifficulty = "advanced"
	searchFeatured = true
	searchTags = []string{"go"}
	filters, err := searchFilters(nil, true)
	require.NoError(t, err)
	assert.Equal(t, resource.TypeClaudeMd, filters.Type)
	assert.Equal(t, resource.Advanced, filters.Difficulty)
	require.NotNil(t, filters.Featured)
	assert.True(t, *filters.Featured)

	var buf bytes.Buffer
	require.NoError(t, runSearchWithWriter(testContext(t), &buf, filters))
	assert.Contains(t, buf.String(), "go-microservices")
	assert.Contains(t, buf.String(), "1 match(es), page 1 of 1")
}

func TestSearch_InvalidInput(t *testing.T) {
	useCatalog(t)

	searchDifficulty = "expert"
	_, err := searchFilters(nil, false)
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))

	searchDifficulty = ""
	searchSort = "sideways"
	filters, err := searchFilters(nil, false)
	require.NoError(t, err)
	err = runSearchWithWriter(testContext(t), &bytes.Buffer{}, filters)
	require.Error(t, err)
	assert.True(t, errors.Is(err, resource.ErrInvalidFilter))
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestSearch_PagePastEnd(t *testing.T) {
	useCatalog(t)
	searchJSON = true

	filters, err := searchFilters(nil, false)
	require.NoError(t, err)
	filters.Page, filters.Limit = math.MaxInt, resource.MaxLimit

	var buf bytes.Buffer
	require.NoError(t, runSearchWithWriter(testContext(t), &buf, filters))
	var results resource.SearchResults
	require.NoError(t, json.Unmarshal(buf.Bytes(), &results))
	assert.Empty(t, results.Resources)
	assert.Positive(t, results.Total)
}

func TestAllMatches(t *testing.T) {
	tools := make([]resource.Tool, 2*resource.MaxLimit+5)
	for i := range tools {
		slug := fmt.Sprintf("tool-%03d", i)
		tools[i] = resource.Tool{ID: slug, Slug: slug, Title: slug, Category: "cli", Type: resource.ToolCLI}
	}
	c := catalog.New(resource.Content{Source: "builtin", Tools: tools})

	all, err := allMatches(c, resource.SearchFilters{Query: "tool", Page: 3, Limit: 5})
	require.NoError(t, err)
	require.Len(t, all, len(tools))
	assert.Equal(t, "tool-000", all[0].Slug)
	assert.Equal(t, fmt.Sprintf("tool-%03d", len(tools)-1), all[len(all)-1].Slug)

	none, err := allMatches(c, resource.SearchFilters{Type: resource.TypePrompt})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStats(t *testing.T) {
	useCatalog(t)
	statsJSON = true

	var buf bytes.Buffer
	require.NoError(t, runStatsWithWriter(testContext(t), &buf))
	var out statsOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 4, out.TotalResources)
	assert.Equal(t, 1, out.Configs)
	assert.Equal(t, 1, out.Prompts)
	assert.Equal(t, 2, out.Tools)
	assert.Equal(t, 5, out.TotalCopies)
	assert.Equal(t, 1, out.TotalContributors)
	assert.Equal(t, "2025-01-03", out.LastUpdated)
}

func TestRender(t *testing.T) {
	useCatalog(t)
	renderVars = []string{"code=x := 1", "focus=style"}

	var buf bytes.Buffer
	require.NoError(t, runRenderWithWriter(testContext(t), &buf, "code-review"))
	assert.Equal(t, "Review this Go code for style:\nx := 1\n", buf.String())
}

func TestRender_Example(t *testing.T) {
	useCatalog(t)
	renderExample = "python snippet"

	var buf bytes.Buffer
	require.NoError(t, runRenderWithWriter(testContext(t), &buf, "code-review"))
	assert.Equal(t, "Review this Python code for correctness:\nprint(1)\n", buf.String())

	renderExample = "missing"
	err := runRenderWithWriter(testContext(t), &bytes.Buffer{}, "code-review")
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestRender_Errors(t *testing.T) {
	useCatalog(t)

	err := runRenderWithWriter(testContext(t), &bytes.Buffer{}, "code-review")
	require.Error(t, err)
	assert.True(t, errors.Is(err, render.ErrMissingVariable))
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))

	renderVars = []string{"no-equals"}
	err = runRenderWithWriter(testContext(t), &bytes.Buffer{}, "code-review")
	require.Error(t, err)
	assert.True(t, errors.Is(err, render.ErrInvalidAssignment))

	renderVars = nil
	err = runRenderWithWriter(testContext(t), &bytes.Buffer{}, "ripgrep")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestUse(t *testing.T) {
	useCatalog(t)
	dir := t.TempDir()

	var buf bytes.Buffer
	require.NoError(t, runUseWithWriter(testContext(t), &buf, "go-microservices", dir))
	data, err := os.ReadFile(filepath.Join(dir, "CLAUDE.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Go services\n\nUse contexts.\n", string(data))
	assert.Contains(t, buf.String(), "Wrote")

	err = runUseWithWriter(testContext(t), &buf, "go-microservices", dir)
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))

	backups := stubBackups(t)
	useForce = true
	require.NoError(t, runUseWithWriter(testContext(t), &buf, "go-microservices", dir))
	assert.Equal(t, []string{"instructions:" + filepath.Join(dir, "CLAUDE.md")}, *backups)
}

func TestVersion(t *testing.T) {
	t.Cleanup(resetFlags)

	var buf bytes.Buffer
	require.NoError(t, runVersionWithWriter(&buf))
	assert.Contains(t, buf.String(), "ccdir version")

	buf.Reset()
	versionJSON = true
	require.NoError(t, runVersionWithWriter(&buf))
	var out map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Contains(t, out, "commit")
}
