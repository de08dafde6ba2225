// Package resource defines the directory records (Claude.md configs, prompt
// templates and tools), the scanner that loads them from a content tree, and
// the search over their generic listing form.
package resource

import (
	"strings"
)

// ResourceType identifies the kind of directory entry.
type ResourceType string

// Resource type constants.
const (
	TypeClaudeMd ResourceType = "CLAUDE_MD"
	TypePrompt   ResourceType = "PROMPT"
	TypeTool     ResourceType = "TOOL"
)

// Types returns every resource type in listing order.
func Types() []ResourceType {
	return []ResourceType{TypeClaudeMd, TypePrompt, TypeTool}
}

// Valid reports whether t is a known resource type.
func (t ResourceType) Valid() bool {
	switch t {
	case TypeClaudeMd, TypePrompt, TypeTool:
		return true
	}
	return false
}

// ParseType accepts the canonical names plus the lowercase aliases used on
// the command line ("config", "prompt", "tool").
func ParseType(s string) (ResourceType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "claude_md", "claude-md", "claudemd", "config", "configs":
		return TypeClaudeMd, true
	case "prompt", "prompts":
		return TypePrompt, true
	case "tool", "tools":
		return TypeTool, true
	}
	return "", false
}

// Label is the short human name of the type.
func (t ResourceType) Label() string {
	switch t {
	case TypeClaudeMd:
		return "config"
	case TypePrompt:
		return "prompt"
	case TypeTool:
		return "tool"
	}
	return string(t)
}

// Difficulty is the skill level a resource targets.
type Difficulty string

// Difficulty levels.
const (
	Beginner     Difficulty = "BEGINNER"
	Intermediate Difficulty = "INTERMEDIATE"
	Advanced     Difficulty = "ADVANCED"
)

// Difficulties returns every difficulty in ascending order.
func Difficulties() []Difficulty {
	return []Difficulty{Beginner, Intermediate, Advanced}
}

// Valid reports whether d is one of the known levels.
func (d Difficulty) Valid() bool {
	switch d {
	case Beginner, Intermediate, Advanced:
		return true
	}
	return false
}

// ParseDifficulty parses a difficulty case-insensitively.
func ParseDifficulty(s string) (Difficulty, bool) {
	d := Difficulty(strings.ToUpper(strings.TrimSpace(s)))
	return d, d.Valid()
}

// ToolKind classifies a Tool entry.
type ToolKind string

// Tool kinds.
const (
	ToolCLI       ToolKind = "CLI"
	ToolMCPServer ToolKind = "MCP_SERVER"
	ToolExtension ToolKind = "EXTENSION"
	ToolLibrary   ToolKind = "LIBRARY"
	ToolService   ToolKind = "SERVICE"
)

// Valid reports whether k is a known tool kind.
func (k ToolKind) Valid() bool {
	switch k {
	case ToolCLI, ToolMCPServer, ToolExtension, ToolLibrary, ToolService:
		return true
	}
	return false
}

// Category is a taxonomy leaf grouping resources. ResourceCount is derived
// when the catalog loads.
type Category struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Slug          string `json:"slug" yaml:"slug"`
	Description   string `json:"description" yaml:"description"`
	Icon          string `json:"icon" yaml:"icon"`
	Color         string `json:"color" yaml:"color"`
	Order         int    `json:"order" yaml:"order"`
	ResourceCount int    `json:"resourceCount" yaml:"resourceCount,omitempty"`
}

// Author credits the person or organization behind an entry.
type Author struct {
	Name   string `json:"name" yaml:"name"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// ResourceStats holds the community counters of an entry.
type ResourceStats struct {
	Votes  int `json:"votes" yaml:"votes"`
	Copies int `json:"copies" yaml:"copies"`
}

// Resource is the generic directory listing entry every kind converts to.
type Resource struct {
	ID          string        `json:"id" yaml:"id"`
	Title       string        `json:"title" yaml:"title"`
	Slug        string        `json:"slug" yaml:"slug"`
	Tagline     string        `json:"tagline" yaml:"tagline"`
	Description string        `json:"description" yaml:"description"`
	CategoryID  string        `json:"categoryId" yaml:"categoryId"`
	Type        ResourceType  `json:"type" yaml:"type"`
	URL         string        `json:"url,omitempty" yaml:"url,omitempty"`
	Content     string        `json:"content,omitempty" yaml:"content,omitempty"`
	Tags        []string      `json:"tags" yaml:"tags"`
	Author      Author        `json:"author" yaml:"author"`
	Stats       ResourceStats `json:"stats" yaml:"stats"`
	Difficulty  Difficulty    `json:"difficulty" yaml:"difficulty"`
	Language    string        `json:"language,omitempty" yaml:"language,omitempty"`
	Framework   string        `json:"framework,omitempty" yaml:"framework,omitempty"`
	LastUpdated string        `json:"lastUpdated" yaml:"lastUpdated"`
	Featured    bool          `json:"featured" yaml:"featured"`
}

// ClaudeMdConfig is a long-form Claude.md project configuration example.
type ClaudeMdConfig struct {
	ID          string        `json:"id" yaml:"id"`
	Title       string        `json:"title" yaml:"title"`
	Slug        string        `json:"slug" yaml:"slug"`
	Tagline     string        `json:"tagline" yaml:"tagline"`
	Description string        `json:"description" yaml:"description"`
	Category    string        `json:"category" yaml:"category"`
	Tags        []string      `json:"tags" yaml:"tags"`
	Author      Author        `json:"author" yaml:"author"`
	Stats       ResourceStats `json:"stats" yaml:"stats"`
	Difficulty  Difficulty    `json:"difficulty" yaml:"difficulty"`
	Language    string        `json:"language,omitempty" yaml:"language,omitempty"`
	Framework   string        `json:"framework,omitempty" yaml:"framework,omitempty"`
	Content     string        `json:"content" yaml:"content,omitempty"`
	LastUpdated string        `json:"lastUpdated" yaml:"lastUpdated"`
	Featured    bool          `json:"featured" yaml:"featured"`
}

// AsResource converts c to its generic listing form.
func (c ClaudeMdConfig) AsResource() Resource {
	return Resource{
		ID:          c.ID,
		Title:       c.Title,
		Slug:        c.Slug,
		Tagline:     c.Tagline,
		Description: c.Description,
		CategoryID:  c.Category,
		Type:        TypeClaudeMd,
		Content:     c.Content,
		Tags:        c.Tags,
		Author:      c.Author,
		Stats:       c.Stats,
		Difficulty:  c.Difficulty,
		Language:    c.Language,
		Framework:   c.Framework,
		LastUpdated: c.LastUpdated,
		Featured:    c.Featured,
	}
}

// PromptVariable is a placeholder a prompt body references as {{ name }}.
type PromptVariable struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Required    bool   `json:"required" yaml:"required"`
	Default     string `json:"default,omitempty" yaml:"default,omitempty"`
}

// PromptExample is a worked set of variable values for a prompt.
type PromptExample struct {
	Title       string            `json:"title" yaml:"title"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Variables   map[string]string `json:"variables" yaml:"variables"`
}

// PromptTemplate is a reusable instructional prompt with declared variables.
type PromptTemplate struct {
	ID          string           `json:"id" yaml:"id"`
	Title       string           `json:"title" yaml:"title"`
	Slug        string           `json:"slug" yaml:"slug"`
	Description string           `json:"description" yaml:"description"`
	Category    string           `json:"category" yaml:"category"`
	Tags        []string         `json:"tags" yaml:"tags"`
	Difficulty  Difficulty       `json:"difficulty" yaml:"difficulty"`
	Prompt      string           `json:"prompt" yaml:"prompt,omitempty"`
	Variables   []PromptVariable `json:"variables" yaml:"variables"`
	Examples    []PromptExample  `json:"examples" yaml:"examples"`
	Author      Author           `json:"author" yaml:"author"`
	LastUpdated string           `json:"lastUpdated" yaml:"lastUpdated"`
}

// Variable returns the declared variable called name.
func (p PromptTemplate) Variable(name string) (PromptVariable, bool) {
	for _, v := range p.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return PromptVariable{}, false
}

// AsResource converts p to its generic listing form. Prompts carry no
// tagline, so the first sentence of the description stands in.
func (p PromptTemplate) AsResource() Resource {
	return Resource{
		ID:          p.ID,
		Title:       p.Title,
		Slug:        p.Slug,
		Tagline:     firstSentence(p.Description),
		Description: p.Description,
		CategoryID:  p.Category,
		Type:        TypePrompt,
		Content:     p.Prompt,
		Tags:        p.Tags,
		Author:      p.Author,
		Difficulty:  p.Difficulty,
		LastUpdated: p.LastUpdated,
	}
}

// Tool documents an external CLI, MCP server, extension, library or service.
type Tool struct {
	ID          string        `json:"id" yaml:"id"`
	Title       string        `json:"title" yaml:"title"`
	Slug        string        `json:"slug" yaml:"slug"`
	Tagline     string        `json:"tagline" yaml:"tagline"`
	Description string        `json:"description" yaml:"description,omitempty"`
	Category    string        `json:"category" yaml:"category"`
	Type        ToolKind      `json:"type" yaml:"type"`
	URL         string        `json:"url" yaml:"url"`
	Tags        []string      `json:"tags" yaml:"tags"`
	Author      Author        `json:"author" yaml:"author"`
	Stats       ResourceStats `json:"stats" yaml:"stats"`
	Difficulty  Difficulty    `json:"difficulty" yaml:"difficulty"`
	LastUpdated string        `json:"lastUpdated" yaml:"lastUpdated"`
}

// AsResource converts t to its generic listing form. The long description
// becomes the listing content.
func (t Tool) AsResource() Resource {
	return Resource{
		ID:          t.ID,
		Title:       t.Title,
		Slug:        t.Slug,
		Tagline:     t.Tagline,
		Description: t.Tagline,
		CategoryID:  t.Category,
		Type:        TypeTool,
		URL:         t.URL,
		Content:     t.Description,
		Tags:        t.Tags,
		Author:      t.Author,
		Stats:       t.Stats,
		Difficulty:  t.Difficulty,
		LastUpdated: t.LastUpdated,
	}
}

// Stats is a derived snapshot of the whole directory.
type Stats struct {
	TotalResources    int    `json:"totalResources" yaml:"totalResources"`
	TotalCategories   int    `json:"totalCategories" yaml:"totalCategories"`
	TotalContributors int    `json:"totalContributors" yaml:"totalContributors"`
	TotalCopies       int    `json:"totalCopies" yaml:"totalCopies"`
	LastUpdated       string `json:"lastUpdated" yaml:"lastUpdated"`
}

// ComputeStats derives the directory snapshot from listing entries.
func ComputeStats(resources []Resource, categories []Category) Stats {
	st := Stats{
		TotalResources:  len(resources),
		TotalCategories: len(categories),
	}
	contributors := make(map[string]struct{})
	for _, r := range resources {
		st.TotalCopies += r.Stats.Copies
		if name := strings.TrimSpace(r.Author.Name); name != "" {
			contributors[strings.ToLower(name)] = struct{}{}
		}
		// YYYY-MM-DD compares lexically.
		if r.LastUpdated > st.LastUpdated {
			st.LastUpdated = r.LastUpdated
		}
	}
	st.TotalContributors = len(contributors)
	return st
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".\n"); i >= 0 {
		return strings.TrimSpace(s[:i+1])
	}
	return s
}
