package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/resource"
)

// ParseFilters reads search filters from query parameters:
//
//	q, category, type, difficulty, tags (comma separated, or repeated tag),
//	language, framework, featured, sort, page, limit
//
// Type and difficulty are case-insensitive and type accepts the CLI aliases.
func ParseFilters(q url.Values) (resource.SearchFilters, error) {
	f := resource.SearchFilters{
		Query:      q.Get("q"),
		CategoryID: q.Get("category"),
		Language:   q.Get("language"),
		Framework:  q.Get("framework"),
		Sort:       resource.SortOrder(strings.ToLower(q.Get("sort"))),
	}

	if v := q.Get("type"); v != "" {
		t, ok := resource.ParseType(v)
		if !ok {
			return f, errors.Wrapf(resource.ErrInvalidFilter, "unknown type %q", v)
		}
		f.Type = t
	}
	if v := q.Get("difficulty"); v != "" {
		d, ok := resource.ParseDifficulty(v)
		if !ok {
			return f, errors.Wrapf(resource.ErrInvalidFilter, "unknown difficulty %q", v)
		}
		f.Difficulty = d
	}

	for _, v := range append(q["tags"], q["tag"]...) {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				f.Tags = append(f.Tags, tag)
			}
		}
	}

	if v := q.Get("featured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, errors.Wrapf(resource.ErrInvalidFilter, "featured must be a boolean, got %q", v)
		}
		f.Featured = &b
	}

	var err error
	if f.Page, err = intParam(q, "page"); err != nil {
		return f, err
	}
	if f.Limit, err = intParam(q, "limit"); err != nil {
		return f, err
	}
	return f, nil
}

func intParam(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(resource.ErrInvalidFilter, "%s must be an integer, got %q", name, v)
	}
	if n < 1 {
		return 0, errors.Wrapf(resource.ErrInvalidFilter, "%s must be >= 1, got %d", name, n)
	}
	return n, nil
}
