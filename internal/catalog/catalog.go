package catalog

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/logging"
	"github.com/thoreinstein/ccdir/internal/resource"
)

// Catalog is an immutable, merged view over loaded content.
type Catalog struct {
	contents   []resource.Content
	categories []resource.Category

	configs []resource.ClaudeMdConfig
	prompts []resource.PromptTemplate
	tools   []resource.Tool

	rawConfigs []resource.ClaudeMdConfig
	rawPrompts []resource.PromptTemplate
	rawTools   []resource.Tool

	// raw holds every record as a listing entry in load order: configs,
	// then prompts, then tools. origins is parallel to raw.
	raw       []resource.Resource
	origins   []string
	promptOff int
	toolOff   int
	index     *resource.Index

	resources []resource.Resource
	stats     resource.Stats
	loadedAt  time.Time
}

// Load scans sources and builds a Catalog. Malformed files do not fail the
// load; they are available from Problems.
func Load(ctx context.Context, logger *slog.Logger, sources ...resource.Source) (*Catalog, error) {
	if logger == nil {
		logger = logging.NewDiscard()
	}

	start := time.Now()
	contents, err := resource.NewScanner(logger).ScanAll(ctx, sources)
	if err != nil {
		return nil, errors.Wrap(err, "loading catalog")
	}

	c := New(contents...)
	logger.Info("catalog loaded",
		"sources", len(sources),
		"resources", len(c.resources),
		"problems", len(c.Problems()),
		"duration", time.Since(start))
	return c, nil
}

// New builds a Catalog from already scanned content, in the given order.
func New(contents ...resource.Content) *Catalog {
	c := &Catalog{
		contents: contents,
		loadedAt: time.Now().UTC(),
	}

	var cfgOrigin, prOrigin, toolOrigin []string
	seenCategory := make(map[string]bool)
	for _, ct := range contents {
		for _, cat := range ct.Categories {
			if seenCategory[cat.ID] {
				continue
			}
			seenCategory[cat.ID] = true
			c.categories = append(c.categories, cat)
		}
		for _, r := range ct.Configs {
			c.rawConfigs = append(c.rawConfigs, r)
			cfgOrigin = append(cfgOrigin, ct.Source)
		}
		for _, r := range ct.Prompts {
			c.rawPrompts = append(c.rawPrompts, r)
			prOrigin = append(prOrigin, ct.Source)
		}
		for _, r := range ct.Tools {
			c.rawTools = append(c.rawTools, r)
			toolOrigin = append(toolOrigin, ct.Source)
		}
	}

	for _, r := range c.rawConfigs {
		c.raw = append(c.raw, r.AsResource())
	}
	c.promptOff = len(c.raw)
	for _, r := range c.rawPrompts {
		c.raw = append(c.raw, r.AsResource())
	}
	c.toolOff = len(c.raw)
	for _, r := range c.rawTools {
		c.raw = append(c.raw, r.AsResource())
	}
	c.origins = slices.Concat(cfgOrigin, prOrigin, toolOrigin)
	c.index = resource.NewIndex(c.raw)

	for i, r := range c.raw {
		if !c.index.Primary(c.raw, i) {
			continue
		}
		c.resources = append(c.resources, r)
		switch {
		case i < c.promptOff:
			c.configs = append(c.configs, c.rawConfigs[i])
		case i < c.toolOff:
			c.prompts = append(c.prompts, c.rawPrompts[i-c.promptOff])
		default:
			c.tools = append(c.tools, c.rawTools[i-c.toolOff])
		}
	}

	counts := make(map[string]int)
	for _, r := range c.resources {
		counts[r.CategoryID]++
	}
	for i := range c.categories {
		c.categories[i].ResourceCount = counts[c.categories[i].ID]
	}
	slices.SortStableFunc(c.categories, func(a, b resource.Category) int {
		return cmp.Compare(a.Order, b.Order)
	})

	typeRank := map[resource.ResourceType]int{
		resource.TypeClaudeMd: 0,
		resource.TypePrompt:   1,
		resource.TypeTool:     2,
	}
	slices.SortStableFunc(c.resources, func(a, b resource.Resource) int {
		if d := cmp.Compare(typeRank[a.Type], typeRank[b.Type]); d != 0 {
			return d
		}
		return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	})

	c.stats = resource.ComputeStats(c.resources, c.categories)
	return c
}

// Categories returns the merged categories ordered by their order field.
func (c *Catalog) Categories() []resource.Category {
	return c.categories
}

// Category returns the category with the given id or slug.
func (c *Catalog) Category(idOrSlug string) (resource.Category, error) {
	for _, cat := range c.categories {
		if cat.ID == idOrSlug || cat.Slug == idOrSlug {
			return cat, nil
		}
	}
	return resource.Category{}, errors.Wrapf(errors.ErrNotFound, "category %q", idOrSlug)
}

// Configs returns the Claude.md configs in load order.
func (c *Catalog) Configs() []resource.ClaudeMdConfig {
	return c.configs
}

// Prompts returns the prompt templates in load order.
func (c *Catalog) Prompts() []resource.PromptTemplate {
	return c.prompts
}

// Tools returns the tools in load order.
func (c *Catalog) Tools() []resource.Tool {
	return c.tools
}

// Resources returns every record as a listing entry, ordered by type and
// then title.
func (c *Catalog) Resources() []resource.Resource {
	return c.resources
}

// Config returns the Claude.md config with the given slug.
func (c *Catalog) Config(slug string) (resource.ClaudeMdConfig, error) {
	i, ok := c.index.Lookup(resource.TypeClaudeMd, slug)
	if !ok {
		return resource.ClaudeMdConfig{}, errors.Wrapf(errors.ErrNotFound, "config %q", slug)
	}
	return c.rawConfigs[i], nil
}

// Prompt returns the prompt template with the given slug.
func (c *Catalog) Prompt(slug string) (resource.PromptTemplate, error) {
	i, ok := c.index.Lookup(resource.TypePrompt, slug)
	if !ok {
		return resource.PromptTemplate{}, errors.Wrapf(errors.ErrNotFound, "prompt %q", slug)
	}
	return c.rawPrompts[i-c.promptOff], nil
}

// Tool returns the tool with the given slug.
func (c *Catalog) Tool(slug string) (resource.Tool, error) {
	i, ok := c.index.Lookup(resource.TypeTool, slug)
	if !ok {
		return resource.Tool{}, errors.Wrapf(errors.ErrNotFound, "tool %q", slug)
	}
	return c.rawTools[i-c.toolOff], nil
}

// Find returns the first record with slug, checking configs, prompts and
// tools in that order.
func (c *Catalog) Find(slug string) (resource.Resource, error) {
	matches := c.FindAll(slug)
	if len(matches) == 0 {
		return resource.Resource{}, errors.Wrapf(errors.ErrNotFound, "resource %q", slug)
	}
	return matches[0], nil
}

// FindAll returns every record with slug, one per type at most.
func (c *Catalog) FindAll(slug string) []resource.Resource {
	var out []resource.Resource
	for _, t := range resource.Types() {
		if i, ok := c.index.Lookup(t, slug); ok {
			out = append(out, c.raw[i])
		}
	}
	return out
}

// Get returns the listing entry with type t and slug.
func (c *Catalog) Get(t resource.ResourceType, slug string) (resource.Resource, error) {
	i, ok := c.index.Lookup(t, slug)
	if !ok {
		return resource.Resource{}, errors.Wrapf(errors.ErrNotFound, "%s %q", t.Label(), slug)
	}
	return c.raw[i], nil
}

// Search runs a filtered search over every record.
func (c *Catalog) Search(filters resource.SearchFilters) (resource.SearchResults, error) {
	return resource.Search(c.resources, filters)
}

// Stats returns the derived directory snapshot.
func (c *Catalog) Stats() resource.Stats {
	return c.stats
}

// LoadedAt reports when the catalog was built.
func (c *Catalog) LoadedAt() time.Time {
	return c.loadedAt
}

// Contents returns the raw per-source scan results, duplicates included.
func (c *Catalog) Contents() []resource.Content {
	return c.contents
}

// Problems returns every file that failed to load.
func (c *Catalog) Problems() []resource.Problem {
	var out []resource.Problem
	for _, ct := range c.contents {
		out = append(out, ct.Problems...)
	}
	return out
}

// DerivedSlugs returns every record whose slug came from its file name.
func (c *Catalog) DerivedSlugs() []resource.DerivedSlug {
	var out []resource.DerivedSlug
	for _, ct := range c.contents {
		out = append(out, ct.DerivedSlugs...)
	}
	return out
}

// Occurrence is one copy of a duplicated record.
type Occurrence struct {
	Source string
	ID     string
}

// Duplicate is a (type, slug) pair defined more than once.
type Duplicate struct {
	resource.Key
	Occurrences []Occurrence
}

// Duplicates returns every slug defined more than once for the same type.
// The first occurrence is the one lookups return.
func (c *Catalog) Duplicates() []Duplicate {
	var out []Duplicate
	for _, d := range c.index.Duplicates() {
		dup := Duplicate{Key: d.Key}
		for _, p := range d.Positions {
			dup.Occurrences = append(dup.Occurrences, Occurrence{Source: c.origins[p], ID: c.raw[p].ID})
		}
		out = append(out, dup)
	}
	return out
}

// Origin returns the source name a listing entry was loaded from.
func (c *Catalog) Origin(t resource.ResourceType, slug string) string {
	if i, ok := c.index.Lookup(t, slug); ok {
		return c.origins[i]
	}
	return ""
}
