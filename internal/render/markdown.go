package render

import (
	"slices"

	"github.com/charmbracelet/glamour"

	"github.com/thoreinstein/ccdir/internal/errors"
)

// Markdown styles accepted by MarkdownOptions.Style.
const (
	StyleAuto  = "auto"
	StyleDark  = "dark"
	StyleLight = "light"
	StyleNoTTY = "notty"
)

// Styles lists the accepted markdown styles.
var Styles = []string{StyleAuto, StyleDark, StyleLight, StyleNoTTY}

// ErrUnknownStyle is returned for a style outside Styles.
var ErrUnknownStyle = errors.New("unknown markdown style")

// MarkdownOptions controls terminal markdown rendering.
type MarkdownOptions struct {
	// Style is one of Styles; empty means auto.
	Style string
	// Width is the word wrap column; 0 keeps glamour's default.
	Width int
}

// Markdown lays out md for a terminal.
func Markdown(md string, opts MarkdownOptions) (string, error) {
	style := opts.Style
	if style == "" {
		style = StyleAuto
	}
	if !slices.Contains(Styles, style) {
		return "", errors.Wrapf(ErrUnknownStyle, "%q", style)
	}

	var options []glamour.TermRendererOption
	if style == StyleAuto {
		options = append(options, glamour.WithAutoStyle())
	} else {
		options = append(options, glamour.WithStandardStyle(style))
	}
	if opts.Width > 0 {
		options = append(options, glamour.WithWordWrap(opts.Width))
	}

	r, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return "", errors.Wrap(err, "creating markdown renderer")
	}
	out, err := r.Render(md)
	if err != nil {
		return "", errors.Wrap(err, "rendering markdown")
	}
	return out, nil
}
