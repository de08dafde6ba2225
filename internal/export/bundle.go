// Package export serializes the catalog: as a single bundle document in
// JSON, YAML or TOML, or back out as a markdown content tree that loads like
// any other source.
package export

import (
	"time"

	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/resource"
)

// BundleVersion is the schema version written into every bundle.
const BundleVersion = 1

// Bundle is the full directory in one document.
type Bundle struct {
	Version     int                       `json:"version"`
	GeneratedAt string                    `json:"generatedAt"`
	Stats       resource.Stats            `json:"stats"`
	Categories  []resource.Category       `json:"categories"`
	Configs     []resource.ClaudeMdConfig `json:"configs"`
	Prompts     []resource.PromptTemplate `json:"prompts"`
	Tools       []resource.Tool           `json:"tools"`
}

// FromCatalog snapshots c. Records are the deduplicated set the catalog
// serves.
func FromCatalog(c *catalog.Catalog, now time.Time) *Bundle {
	return &Bundle{
		Version:     BundleVersion,
		GeneratedAt: now.UTC().Format(time.RFC3339),
		Stats:       c.Stats(),
		Categories:  nonNil(c.Categories()),
		Configs:     nonNil(c.Configs()),
		Prompts:     nonNil(c.Prompts()),
		Tools:       nonNil(c.Tools()),
	}
}

// Content converts the bundle back into scanned content under source name.
func (b *Bundle) Content(source string) resource.Content {
	return resource.Content{
		Source:     source,
		Categories: b.Categories,
		Configs:    b.Configs,
		Prompts:    b.Prompts,
		Tools:      b.Tools,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
