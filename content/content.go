// Package content embeds the built-in directory corpus.
//
// The tree layout is shared with external sources:
//
//	categories.yaml
//	claude-configs/<slug>.md
//	prompts/<slug>.md
//	tools/<slug>.md
//
// Each markdown file carries its metadata as YAML frontmatter; the body is
// the config content, the prompt text or the tool's long description.
package content

import "embed"

// FS holds the built-in corpus.
//
//go:embed categories.yaml claude-configs prompts tools
var FS embed.FS

// SourceName names the embedded corpus among content sources.
const SourceName = "builtin"
