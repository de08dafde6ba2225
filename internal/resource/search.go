package resource

import (
	"cmp"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/thoreinstein/ccdir/internal/errors"
)

// Paging defaults.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrInvalidFilter indicates a search filter value is out of range.
var ErrInvalidFilter = errors.New("invalid search filter")

// SortOrder selects how search results are ordered.
type SortOrder string

// Sort orders.
const (
	SortRelevance SortOrder = "relevance"
	SortVotes     SortOrder = "votes"
	SortCopies    SortOrder = "copies"
	SortRecent    SortOrder = "recent"
	SortTitle     SortOrder = "title"
)

// Valid reports whether o is a known sort order. Empty means relevance.
func (o SortOrder) Valid() bool {
	switch o {
	case "", SortRelevance, SortVotes, SortCopies, SortRecent, SortTitle:
		return true
	}
	return false
}

// SearchFilters is the query shape for Search. Zero values match everything.
type SearchFilters struct {
	Query      string       `json:"query,omitempty"`
	CategoryID string       `json:"categoryId,omitempty"`
	Type       ResourceType `json:"type,omitempty"`
	Difficulty Difficulty   `json:"difficulty,omitempty"`
	// Tags must all be present on a match, compared case-insensitively.
	Tags      []string `json:"tags,omitempty"`
	Language  string   `json:"language,omitempty"`
	Framework string   `json:"framework,omitempty"`
	// Featured is tri-state: nil matches both.
	Featured *bool     `json:"featured,omitempty"`
	Sort     SortOrder `json:"sort,omitempty"`
	Page     int       `json:"page,omitempty"`
	Limit    int       `json:"limit,omitempty"`
}

// Normalize validates f and fills paging defaults. A limit above MaxLimit
// is clamped.
func (f SearchFilters) Normalize() (SearchFilters, error) {
	if f.Type != "" && !f.Type.Valid() {
		return f, errors.Wrapf(ErrInvalidFilter, "unknown type %q", f.Type)
	}
	if f.Difficulty != "" && !f.Difficulty.Valid() {
		return f, errors.Wrapf(ErrInvalidFilter, "unknown difficulty %q", f.Difficulty)
	}
	if !f.Sort.Valid() {
		return f, errors.Wrapf(ErrInvalidFilter, "unknown sort %q", f.Sort)
	}
	if f.Page < 0 {
		return f, errors.Wrapf(ErrInvalidFilter, "page must be >= 1, got %d", f.Page)
	}
	if f.Limit < 0 {
		return f, errors.Wrapf(ErrInvalidFilter, "limit must be >= 1, got %d", f.Limit)
	}

	if f.Sort == "" {
		f.Sort = SortRelevance
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	f.Limit = min(f.Limit, MaxLimit)
	f.Query = strings.TrimSpace(f.Query)
	return f, nil
}

// Facets counts the filtered set by type, difficulty and category.
type Facets struct {
	Types        map[ResourceType]int `json:"types"`
	Difficulties map[Difficulty]int   `json:"difficulties"`
	Categories   map[string]int       `json:"categories"`
}

// SearchResults is one page of matches.
type SearchResults struct {
	Resources  []Resource `json:"resources"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"totalPages"`
	Query      string     `json:"query"`
	Facets     Facets     `json:"facets"`
}

// Search finds resources matching the filters.
//
// Query matching is case-insensitive against title, slug, tagline,
// description and tags. When nothing matches as a substring, a fuzzy match
// over title, slug and tags is attempted. An empty query matches every
// resource that passes the filters.
func Search(resources []Resource, filters SearchFilters) (SearchResults, error) {
	f, err := filters.Normalize()
	if err != nil {
		return SearchResults{}, err
	}

	type scored struct {
		r     Resource
		score int
	}

	query := strings.ToLower(f.Query)
	var (
		matches  []scored
		leftover []Resource
	)
	for _, r := range resources {
		if !matchesFilters(r, f) {
			continue
		}
		if query == "" {
			matches = append(matches, scored{r: r})
			continue
		}
		if s := scoreMatch(r, query); s > 0 {
			matches = append(matches, scored{r: r, score: s})
			continue
		}
		leftover = append(leftover, r)
	}

	if query != "" && len(leftover) > 0 {
		haystack := make([]string, len(leftover))
		for i, r := range leftover {
			haystack[i] = strings.ToLower(r.Title + " " + r.Slug + " " + strings.Join(r.Tags, " "))
		}
		for _, m := range fuzzy.Find(query, haystack) {
			matches = append(matches, scored{r: leftover[m.Index], score: ScoreFuzzy})
		}
	}

	slices.SortStableFunc(matches, func(a, b scored) int {
		var c int
		switch f.Sort {
		case SortVotes:
			c = cmp.Compare(b.r.Stats.Votes, a.r.Stats.Votes)
		case SortCopies:
			c = cmp.Compare(b.r.Stats.Copies, a.r.Stats.Copies)
		case SortRecent:
			c = cmp.Compare(b.r.LastUpdated, a.r.LastUpdated)
		case SortRelevance:
			c = cmp.Compare(b.score, a.score)
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.r.Title), strings.ToLower(b.r.Title))
	})

	res := SearchResults{
		Total: len(matches),
		Page:  f.Page,
		Limit: f.Limit,
		Query: f.Query,
		Facets: Facets{
			Types:        make(map[ResourceType]int),
			Difficulties: make(map[Difficulty]int),
			Categories:   make(map[string]int),
		},
		Resources: []Resource{},
	}
	res.TotalPages = (res.Total + f.Limit - 1) / f.Limit

	for _, m := range matches {
		res.Facets.Types[m.r.Type]++
		if m.r.Difficulty != "" {
			res.Facets.Difficulties[m.r.Difficulty]++
		}
		if m.r.CategoryID != "" {
			res.Facets.Categories[m.r.CategoryID]++
		}
	}

	// Pages past the end are empty; the offset is only computed once the
	// page is known to be in range, so it cannot overflow.
	if f.Page <= res.TotalPages {
		start := (f.Page - 1) * f.Limit
		end := min(start+f.Limit, len(matches))
		for _, m := range matches[start:end] {
			res.Resources = append(res.Resources, m.r)
		}
	}

	return res, nil
}

// matchesFilters checks if a resource passes every non-query filter.
func matchesFilters(r Resource, f SearchFilters) bool {
	if f.Type != "" && r.Type != f.Type {
		return false
	}
	if f.CategoryID != "" && r.CategoryID != f.CategoryID {
		return false
	}
	if f.Difficulty != "" && r.Difficulty != f.Difficulty {
		return false
	}
	if f.Language != "" && !strings.EqualFold(r.Language, f.Language) {
		return false
	}
	if f.Framework != "" && !strings.EqualFold(r.Framework, f.Framework) {
		return false
	}
	if f.Featured != nil && r.Featured != *f.Featured {
		return false
	}
	for _, want := range f.Tags {
		if !hasTag(r, want) {
			return false
		}
	}
	return true
}

func hasTag(r Resource, tag string) bool {
	return slices.ContainsFunc(r.Tags, func(t string) bool {
		return strings.EqualFold(t, tag)
	})
}

// Match scores. Higher is better.
const (
	ScoreExact    = 100
	ScorePrefix   = 75
	ScoreContains = 50
	ScoreTag      = 40
	ScoreText     = 25
	ScoreFuzzy    = 10
)

// scoreMatch returns the substring match quality of r for a lowercased query,
// or 0 when nothing contains it.
func scoreMatch(r Resource, query string) int {
	title := strings.ToLower(r.Title)
	slug := strings.ToLower(r.Slug)

	switch {
	case title == query || slug == query:
		return ScoreExact
	case strings.HasPrefix(title, query) || strings.HasPrefix(slug, query):
		return ScorePrefix
	case strings.Contains(title, query) || strings.Contains(slug, query):
		return ScoreContains
	}

	for _, t := range r.Tags {
		if strings.Contains(strings.ToLower(t), query) {
			return ScoreTag
		}
	}

	if strings.Contains(strings.ToLower(r.Tagline), query) || strings.Contains(strings.ToLower(r.Description), query) {
		return ScoreText
	}
	return 0
}
