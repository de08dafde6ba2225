package catalog

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/logging"
	"github.com/thoreinstein/ccdir/internal/resource"
)

func testContents() []resource.Content {
	author := resource.Author{Name: "Team"}
	return []resource.Content{
		{
			Source: "builtin",
			Categories: []resource.Category{
				{ID: "devops", Slug: "devops", Name: "DevOps", Order: 2},
				{ID: "backend", Slug: "backend", Name: "Backend", Order: 1},
			},
			Configs: []resource.ClaudeMdConfig{
				{ID: "c1", Slug: "go-micro", Title: "Go Micro", Category: "backend", Author: author,
					Stats: resource.ResourceStats{Copies: 5}, LastUpdated: "2025-01-01"},
				{ID: "c2", Slug: "devcontainer", Title: "DevContainer", Category: "devops", Author: author},
			},
			Prompts: []resource.PromptTemplate{
				{ID: "p1", Slug: "code-review", Title: "Code Review", Category: "backend", Author: author},
			},
			Tools: []resource.Tool{
				{ID: "t1", Slug: "ripgrep", Title: "ripgrep", Category: "devops", Author: resource.Author{Name: "Andrew"},
					Stats: resource.ResourceStats{Copies: 7}, LastUpdated: "2025-02-01"},
			},
		},
		{
			Source: "team",
			Categories: []resource.Category{
				{ID: "backend", Slug: "backend-dup", Name: "Shadowed", Order: 0},
			},
			Configs: []resource.ClaudeMdConfig{
				{ID: "c9", Slug: "go-micro", Title: "Team Go Micro", Category: "backend"},
			},
			Prompts: []resource.PromptTemplate{
				// Same slug as a config, different type: not a duplicate.
				{ID: "p2", Slug: "go-micro", Title: "Go Micro Prompt", Category: "backend"},
			},
			Problems: []resource.Problem{{Source: "team", Path: "tools/bad.md", Err: errors.New("bad")}},
		},
	}
}

func TestNew(t *testing.T) {
	c := New(testContents()...)

	t.Run("first slug wins", func(t *testing.T) {
		cfg, err := c.Config("go-micro")
		require.NoError(t, err)
		assert.Equal(t, "c1", cfg.ID)
		assert.Len(t, c.Configs(), 2)
		assert.Equal(t, "builtin", c.Origin(resource.TypeClaudeMd, "go-micro"))
	})

	t.Run("slugs are per type", func(t *testing.T) {
		p, err := c.Prompt("go-micro")
		require.NoError(t, err)
		assert.Equal(t, "p2", p.ID)
		assert.Len(t, c.FindAll("go-micro"), 2)
	})

	t.Run("duplicates reported", func(t *testing.T) {
		dups := c.Duplicates()
		require.Len(t, dups, 1)
		assert.Equal(t, resource.TypeClaudeMd, dups[0].Type)
		assert.Equal(t, []Occurrence{{Source: "builtin", ID: "c1"}, {Source: "team", ID: "c9"}}, dups[0].Occurrences)
	})

	t.Run("categories merged and counted", func(t *testing.T) {
		cats := c.Categories()
		require.Len(t, cats, 2)
		assert.Equal(t, "backend", cats[0].ID, "ordered by order field")
		assert.Equal(t, "Backend", cats[0].Name, "first definition wins")
		// go-micro config, code-review prompt, go-micro prompt.
		assert.Equal(t, 3, cats[0].ResourceCount)
		assert.Equal(t, 2, cats[1].ResourceCount)

		cat, err := c.Category("devops")
		require.NoError(t, err)
		assert.Equal(t, "DevOps", cat.Name)
		_, err = c.Category("nope")
		assert.True(t, errors.Is(err, errors.ErrNotFound))
	})

	t.Run("resources ordered by type then title", func(t *testing.T) {
		var got []string
		for _, r := range c.Resources() {
			got = append(got, string(r.Type)+":"+r.Slug)
		}
		assert.Equal(t, []string{
			"CLAUDE_MD:devcontainer",
			"CLAUDE_MD:go-micro",
			"PROMPT:code-review",
			"PROMPT:go-micro",
			"TOOL:ripgrep",
		}, got)
	})

	t.Run("stats", func(t *testing.T) {
		st := c.Stats()
		assert.Equal(t, 5, st.TotalResources)
		assert.Equal(t, 2, st.TotalCategories)
		assert.Equal(t, 2, st.TotalContributors)
		assert.Equal(t, 12, st.TotalCopies)
		assert.Equal(t, "2025-02-01", st.LastUpdated)
	})

	t.Run("problems", func(t *testing.T) {
		require.Len(t, c.Problems(), 1)
		assert.Equal(t, "tools/bad.md", c.Problems()[0].Path)
	})
}

func TestLookups_NotFound(t *testing.T) {
	c := New(testContents()...)

	_, err := c.Config("missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	_, err = c.Prompt("missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	_, err = c.Tool("missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	_, err = c.Find("missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	_, err = c.Get(resource.TypeTool, "go-micro")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestFind(t *testing.T) {
	c := New(testContents()...)

	r, err := c.Find("ripgrep")
	require.NoError(t, err)
	assert.Equal(t, resource.TypeTool, r.Type)

	tool, err := c.Tool("ripgrep")
	require.NoError(t, err)
	assert.Equal(t, "t1", tool.ID)

	r, err = c.Find("go-micro")
	require.NoError(t, err)
	assert.Equal(t, resource.TypeClaudeMd, r.Type, "configs are checked first")
}

func TestSearch(t *testing.T) {
	c := New(testContents()...)
	res, err := c.Search(resource.SearchFilters{Query: "go micro"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Resources)
	assert.Equal(t, "go-micro", res.Resources[0].Slug)

	_, err = c.Search(resource.SearchFilters{Sort: "bogus"})
	assert.True(t, errors.Is(err, resource.ErrInvalidFilter))
}

func TestNew_Empty(t *testing.T) {
	c := New()
	assert.Empty(t, c.Resources())
	assert.Empty(t, c.Duplicates())
	assert.Equal(t, resource.Stats{}, c.Stats())
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"categories.yaml": {Data: []byte("categories:\n  - id: terminal\n    name: Terminal\n    slug: terminal\n    order: 1\n")},
		"tools/fzf.md": {Data: []byte("---\nid: tool-fzf\ntitle: fzf\ncategory: terminal\ntype: CLI\n" +
			"url: https://github.com/junegunn/fzf\ntags: [cli]\nauthor:\n  name: Junegunn Choi\n" +
			"difficulty: BEGINNER\nlastUpdated: \"2024-12-22\"\n---\nFuzzy finder.\n")},
	}

	c, err := Load(context.Background(), logging.ForTest(t), resource.Source{Name: "local", FS: fsys})
	require.NoError(t, err)

	tool, err := c.Tool("fzf")
	require.NoError(t, err)
	assert.Equal(t, "Fuzzy finder.", tool.Description)
	assert.Equal(t, 1, c.Categories()[0].ResourceCount)
	assert.False(t, c.LoadedAt().IsZero())
}

func TestLoad_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, nil, resource.Source{Name: "x", FS: fstest.MapFS{}})
	assert.Error(t, err)
}
