package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/logging"
	"github.com/thoreinstein/ccdir/internal/resource"
)

// ServerName is reported to clients during initialization.
const ServerName = "ccdir"

// URI prefixes for directory resources.
const (
	ConfigURIPrefix = "ccdir://claude-md/"
	ToolURIPrefix   = "ccdir://tools/"
)

// Server wraps the live catalog to provide MCP access.
type Server struct {
	live   *catalog.Live
	server *server.MCPServer
	logger *slog.Logger

	mu         sync.Mutex
	registered map[string]struct{}
}

// NewServer creates an MCP server over live. Resources and prompts are
// registered from the current catalog and again after every reload.
func NewServer(live *catalog.Live, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	s := &Server{
		live:       live,
		logger:     logger,
		registered: make(map[string]struct{}),
	}

	s.server = server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
	)

	s.registerTools()
	s.sync(live.Current())
	live.OnReload(s.sync)
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.server
}

// ServeStdio serves MCP over stdin and stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	if err := server.ServeStdio(s.server); err != nil {
		return errors.Wrap(err, "serving MCP over stdio")
	}
	return nil
}

func (s *Server) registerTools() {
	s.server.AddTool(
		mcp.NewTool("search_resources",
			mcp.WithDescription("Search the Claude Code directory for Claude.md configs, prompt templates and tools."),
			mcp.WithString("query",
				mcp.Description("Free-text query matched against title, slug, tagline, description and tags"),
			),
			mcp.WithString("type",
				mcp.Description("Filter by type: config, prompt or tool"),
			),
			mcp.WithString("category",
				mcp.Description("Filter by category id"),
			),
			mcp.WithString("difficulty",
				mcp.Description("Filter by difficulty: BEGINNER, INTERMEDIATE or ADVANCED"),
			),
			mcp.WithString("tags",
				mcp.Description("Comma-separated tags that must all be present"),
			),
			mcp.WithString("sort",
				mcp.Description("relevance (default), votes, copies, recent or title"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of results (default: 20, max: 100)"),
			),
			mcp.WithNumber("page",
				mcp.Description("Result page, starting at 1"),
			),
		),
		s.handleSearch,
	)

	s.server.AddTool(
		mcp.NewTool("get_resource",
			mcp.WithDescription("Get the full record of a directory entry by slug."),
			mcp.WithString("slug",
				mcp.Required(),
				mcp.Description("Slug of the entry (e.g. 'code-review')"),
			),
			mcp.WithString("type",
				mcp.Description("Type to disambiguate slugs shared across types: config, prompt or tool"),
			),
		),
		s.handleGet,
	)

	s.server.AddTool(
		mcp.NewTool("directory_stats",
			mcp.WithDescription("Get directory statistics: resource, category, contributor and copy totals."),
		),
		s.handleStats,
	)
}

func (s *Server) handleSearch(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filters := resource.SearchFilters{
		Query:      request.GetString("query", ""),
		CategoryID: request.GetString("category", ""),
		Sort:       resource.SortOrder(strings.ToLower(request.GetString("sort", ""))),
		Page:       request.GetInt("page", 0),
		Limit:      request.GetInt("limit", 0),
	}
	if raw := request.GetString("type", ""); raw != "" {
		t, ok := resource.ParseType(raw)
		if !ok {
			return mcp.NewToolResultError("unknown type " + raw), nil
		}
		filters.Type = t
	}
	if raw := request.GetString("difficulty", ""); raw != "" {
		filters.Difficulty = resource.Difficulty(strings.ToUpper(raw))
	}
	for tag := range strings.SplitSeq(request.GetString("tags", ""), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			filters.Tags = append(filters.Tags, tag)
		}
	}

	results, err := s.live.Current().Search(filters)
	if err != nil {
		return mcp.NewToolResultError("search failed: " + err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) handleGet(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug := request.GetString("slug", "")
	if slug == "" {
		return mcp.NewToolResultError("slug parameter is required"), nil
	}

	c := s.live.Current()
	t := resource.ResourceType("")
	if raw := request.GetString("type", ""); raw != "" {
		parsed, ok := resource.ParseType(raw)
		if !ok {
			return mcp.NewToolResultError("unknown type " + raw), nil
		}
		t = parsed
	} else {
		r, err := c.Find(slug)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		t = r.Type
	}

	record, err := fullRecord(c, t, slug)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(record)
}

func (s *Server) handleStats(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.live.Current().Stats())
}

// fullRecord returns the kind-specific record rather than its listing form.
func fullRecord(c *catalog.Catalog, t resource.ResourceType, slug string) (any, error) {
	switch t {
	case resource.TypeClaudeMd:
		return c.Config(slug)
	case resource.TypePrompt:
		return c.Prompt(slug)
	case resource.TypeTool:
		return c.Tool(slug)
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "resource type %q", t)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("encoding result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
