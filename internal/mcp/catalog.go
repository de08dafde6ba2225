package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/render"
)

// sync registers a resource for every config and tool and a prompt for
// every template in c. Entries already registered are replaced so their
// descriptions follow edits. Handlers read the live catalog, so an entry
// that disappears on reload answers not found.
func (s *Server) sync(c *catalog.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, cfg := range c.Configs() {
		uri := ConfigURIPrefix + cfg.Slug
		s.server.AddResource(
			mcp.NewResource(uri, cfg.Title,
				mcp.WithResourceDescription(cfg.Tagline),
				mcp.WithMIMEType("text/markdown"),
			),
			s.readConfig,
		)
		added += s.mark(uri)
	}
	for _, tool := range c.Tools() {
		uri := ToolURIPrefix + tool.Slug
		s.server.AddResource(
			mcp.NewResource(uri, tool.Title,
				mcp.WithResourceDescription(tool.Tagline),
				mcp.WithMIMEType("text/markdown"),
			),
			s.readTool,
		)
		added += s.mark(uri)
	}
	for _, p := range c.Prompts() {
		opts := []mcp.PromptOption{mcp.WithPromptDescription(p.Description)}
		for _, v := range p.Variables {
			argOpts := []mcp.ArgumentOption{mcp.ArgumentDescription(v.Description)}
			if v.Required && v.Default == "" {
				argOpts = append(argOpts, mcp.RequiredArgument())
			}
			opts = append(opts, mcp.WithArgument(v.Name, argOpts...))
		}
		s.server.AddPrompt(mcp.NewPrompt(p.Slug, opts...), s.getPrompt)
		added += s.mark("prompt:" + p.Slug)
	}
	s.logger.Debug("mcp catalog synced", "new", added, "total", len(s.registered))
}

func (s *Server) mark(key string) int {
	if _, ok := s.registered[key]; ok {
		return 0
	}
	s.registered[key] = struct{}{}
	return 1
}

func (s *Server) readConfig(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	cfg, err := s.live.Current().Config(strings.TrimPrefix(uri, ConfigURIPrefix))
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "text/markdown", Text: cfg.Content},
	}, nil
}

func (s *Server) readTool(_ context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := request.Params.URI
	tool, err := s.live.Current().Tool(strings.TrimPrefix(uri, ToolURIPrefix))
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("# " + tool.Title + "\n\n")
	b.WriteString(tool.Tagline + "\n\n")
	b.WriteString("Type: " + string(tool.Type) + "\n")
	b.WriteString("URL: " + tool.URL + "\n")
	if tool.Description != "" {
		b.WriteString("\n" + tool.Description + "\n")
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "text/markdown", Text: b.String()},
	}, nil
}

func (s *Server) getPrompt(_ context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	tpl, err := s.live.Current().Prompt(request.Params.Name)
	if err != nil {
		return nil, err
	}
	text, err := render.Prompt(tpl, request.Params.Arguments)
	if err != nil {
		return nil, errors.Wrap(err, "rendering prompt")
	}
	return mcp.NewGetPromptResult(tpl.Title, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	}), nil
}
