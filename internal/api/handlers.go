package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/render"
	"github.com/thoreinstein/ccdir/internal/resource"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports liveness and the state of the served catalog.
type HealthResponse struct {
	Status    string    `json:"status"`
	Resources int       `json:"resources"`
	Problems  int       `json:"problems"`
	LoadedAt  time.Time `json:"loadedAt"`
	Uptime    string    `json:"uptime"`
}

// VersionResponse reports the build.
type VersionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
}

// CategoryResponse is a category with the resources filed under it.
type CategoryResponse struct {
	resource.Category
	Resources []resource.Resource `json:"resources"`
}

// RenderRequest carries prompt variable values.
type RenderRequest struct {
	Variables map[string]string `json:"variables"`
}

// RenderResponse is a filled-in prompt.
type RenderResponse struct {
	Slug   string `json:"slug"`
	Prompt string `json:"prompt"`
}

func (s *Server) catalog() *catalog.Catalog {
	return s.live.Current()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	c := s.catalog()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Resources: len(c.Resources()),
		Problems:  len(c.Problems()),
		LoadedAt:  c.LoadedAt().UTC(),
		Uptime:    time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.opts.Version, Commit: s.opts.Commit})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog().Stats())
}

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.catalog().Categories()))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	c := s.catalog()
	cat, err := c.Category(chi.URLParam(r, "idOrSlug"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	resp := CategoryResponse{Category: cat, Resources: []resource.Resource{}}
	for _, res := range c.Resources() {
		if res.CategoryID == cat.ID {
			resp.Resources = append(resp.Resources, res)
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	filters, err := ParseFilters(r.URL.Query())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	results, err := s.catalog().Search(filters)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	out := []resource.ClaudeMdConfig{}
	for _, cfg := range s.catalog().Configs() {
		if category == "" || cfg.Category == category {
			out = append(out, cfg)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.catalog().Config(chi.URLParam(r, "slug"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	out := []resource.PromptTemplate{}
	for _, p := range s.catalog().Prompts() {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog().Prompt(chi.URLParam(r, "slug"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleRenderPrompt(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog().Prompt(chi.URLParam(r, "slug"))
	if err != nil {
		s.writeErr(w, err)
		return
	}

	var req RenderRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	out, err := render.Prompt(p, req.Variables)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RenderResponse{Slug: p.Slug, Prompt: out})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	category, kind := q.Get("category"), resource.ToolKind(q.Get("type"))
	out := []resource.Tool{}
	for _, t := range s.catalog().Tools() {
		if (category == "" || t.Category == category) && (kind == "" || t.Type == kind) {
			out = append(out, t)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTool(w http.ResponseWriter, r *http.Request) {
	t, err := s.catalog().Tool(chi.URLParam(r, "slug"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// writeErr maps domain errors to status codes. Unexpected errors are logged
// and reported without detail.
func (s *Server) writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, resource.ErrInvalidFilter),
		errors.Is(err, render.ErrMissingVariable):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
