package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/render"
	"github.com/thoreinstein/ccdir/internal/resource"
)

func testContent() resource.Content {
	author := resource.Author{Name: "Directory Team"}
	return resource.Content{
		Source:     "builtin",
		Categories: []resource.Category{{ID: "backend", Name: "Backend", Slug: "backend", Order: 1}},
		Configs: []resource.ClaudeMdConfig{{
			ID: "cfg-go", Title: "Go Microservices", Slug: "go-microservices", Tagline: "gRPC services",
			Category: "backend", Tags: []string{"go"}, Author: author, Difficulty: resource.Advanced,
			Content: "# Go services", LastUpdated: "2025-01-02", Stats: resource.ResourceStats{Copies: 3},
		}},
		Prompts: []resource.PromptTemplate{{
			ID: "p-review", Title: "Code Review", Slug: "code-review", Description: "Review code.",
			Category: "backend", Tags: []string{"review"}, Difficulty: resource.Beginner,
			Prompt: "Review this {{ language }} code:\n{{ code }}",
			Variables: []resource.PromptVariable{
				{Name: "language", Default: "Go"},
				{Name: "code", Required: true},
			},
			Author: author, LastUpdated: "2025-01-03",
		}},
		Tools: []resource.Tool{{
			ID: "t-rg", Title: "ripgrep", Slug: "ripgrep", Tagline: "Fast search", Description: "Recursive grep.",
			Category: "backend", Type: resource.ToolCLI, URL: "https://github.com/BurntSushi/ripgrep",
			Tags: []string{"cli", "search"}, Author: author, Difficulty: resource.Beginner, LastUpdated: "2025-01-01",
		}},
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	live, err := catalog.NewLive(context.Background(), nil, func(context.Context) (*catalog.Catalog, error) {
		return catalog.New(testContent()), nil
	})
	require.NoError(t, err)
	return NewServer(live, "1.2.3", nil)
}

func callTool(t *testing.T, handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	res, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "want text content, got %T", res.Content[0])
	return text.Text, res.IsError
}

func TestSearchTool(t *testing.T) {
	s := newTestServer(t)

	text, isErr := callTool(t, s.handleSearch, map[string]any{"query": "ripgrep", "type": "tool"})
	require.False(t, isErr, text)

	var results resource.SearchResults
	require.NoError(t, json.Unmarshal([]byte(text), &results))
	require.Equal(t, 1, results.Total)
	assert.Equal(t, "ripgrep", results.Resources[0].Slug)

	text, isErr = callTool(t, s.handleSearch, map[string]any{"type": "widget"})
	assert.True(t, isErr)
	assert.Contains(t, text, "unknown type")

	text, isErr = callTool(t, s.handleSearch, map[string]any{"sort": "sideways"})
	assert.True(t, isErr)
	assert.Contains(t, text, "search failed")
}

func TestGetTool(t *testing.T) {
	s := newTestServer(t)

	text, isErr := callTool(t, s.handleGet, map[string]any{"slug": "code-review"})
	require.False(t, isErr, text)
	var p resource.PromptTemplate
	require.NoError(t, json.Unmarshal([]byte(text), &p))
	assert.Equal(t, "p-review", p.ID)
	assert.Len(t, p.Variables, 2)

	text, isErr = callTool(t, s.handleGet, map[string]any{"slug": "go-microservices", "type": "config"})
	require.False(t, isErr, text)
	assert.Contains(t, text, "# Go services")

	_, isErr = callTool(t, s.handleGet, map[string]any{"slug": "ripgrep", "type": "prompt"})
	assert.True(t, isErr)

	_, isErr = callTool(t, s.handleGet, map[string]any{"slug": "nope"})
	assert.True(t, isErr)

	text, isErr = callTool(t, s.handleGet, map[string]any{})
	assert.True(t, isErr)
	assert.Contains(t, text, "slug parameter is required")
}

func TestStatsTool(t *testing.T) {
	s := newTestServer(t)

	text, isErr := callTool(t, s.handleStats, nil)
	require.False(t, isErr)
	var st resource.Stats
	require.NoError(t, json.Unmarshal([]byte(text), &st))
	assert.Equal(t, 3, st.TotalResources)
	assert.Equal(t, 1, st.TotalCategories)
	assert.Equal(t, 3, st.TotalCopies)
}

func TestReadResources(t *testing.T) {
	s := newTestServer(t)

	var req mcp.ReadResourceRequest
	req.Params.URI = ConfigURIPrefix + "go-microservices"
	contents, err := s.readConfig(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text := contents[0].(mcp.TextResourceContents)
	assert.Equal(t, "# Go services", text.Text)
	assert.Equal(t, "text/markdown", text.MIMEType)

	req.Params.URI = ToolURIPrefix + "ripgrep"
	contents, err = s.readTool(context.Background(), req)
	require.NoError(t, err)
	text = contents[0].(mcp.TextResourceContents)
	assert.Contains(t, text.Text, "# ripgrep")
	assert.Contains(t, text.Text, "URL: https://github.com/BurntSushi/ripgrep")

	req.Params.URI = ToolURIPrefix + "missing"
	_, err = s.readTool(context.Background(), req)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestGetPrompt(t *testing.T) {
	s := newTestServer(t)

	var req mcp.GetPromptRequest
	req.Params.Name = "code-review"
	req.Params.Arguments = map[string]string{"code": "x := 1"}
	res, err := s.getPrompt(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, mcp.RoleUser, res.Messages[0].Role)
	text := res.Messages[0].Content.(mcp.TextContent)
	assert.Equal(t, "Review this Go code:\nx := 1", text.Text)

	req.Params.Arguments = nil
	_, err = s.getPrompt(context.Background(), req)
	assert.True(t, errors.Is(err, render.ErrMissingVariable))
}

func TestSync_TracksRegistrations(t *testing.T) {
	s := newTestServer(t)
	assert.Len(t, s.registered, 3)

	s.sync(s.live.Current())
	assert.Len(t, s.registered, 3)
}
