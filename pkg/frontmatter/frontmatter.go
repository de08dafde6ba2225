package frontmatter

import (
	"bytes"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingFrontmatter is returned by MustParse when no frontmatter is found.
	ErrMissingFrontmatter = errors.New("missing frontmatter")

	// ErrUnterminated is returned when the closing delimiter is missing.
	ErrUnterminated = errors.New("missing closing frontmatter delimiter")
)

// Parse extracts YAML frontmatter and body content from a reader.
// If no frontmatter is present, matter is left untouched and the full
// content is returned as body.
func Parse[T any](r io.Reader, matter *T) (body []byte, err error) {
	return parse(r, matter, false)
}

// MustParse is like Parse but returns ErrMissingFrontmatter if no
// frontmatter is found. Content files always carry metadata, so the scanner
// uses this variant.
func MustParse[T any](r io.Reader, matter *T) (body []byte, err error) {
	return parse(r, matter, true)
}

func parse[T any](r io.Reader, matter *T, required bool) ([]byte, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading content")
	}

	fm, body, found, err := Split(content)
	if err != nil {
		return nil, err
	}
	if !found {
		if required {
			return nil, ErrMissingFrontmatter
		}
		return content, nil
	}

	if err := yaml.Unmarshal(fm, matter); err != nil {
		return nil, errors.Wrap(err, "decoding frontmatter")
	}
	return body, nil
}

// Split separates raw frontmatter from the body. found reports whether the
// content opens with a delimiter line.
func Split(content []byte) (fm, body []byte, found bool, err error) {
	var rest []byte
	switch {
	case bytes.HasPrefix(content, []byte("---\n")):
		rest = content[4:]
	case bytes.HasPrefix(content, []byte("---\r\n")):
		rest = content[5:]
	default:
		return nil, content, false, nil
	}

	// An empty block closes immediately.
	if bytes.HasPrefix(rest, []byte("---")) {
		return nil, trimDelimiterEOL(rest[3:]), true, nil
	}

	idx := bytes.Index(rest, []byte("\n---"))
	if idx < 0 {
		return nil, nil, true, ErrUnterminated
	}

	fm = bytes.TrimSuffix(rest[:idx], []byte("\r"))
	return fm, trimDelimiterEOL(rest[idx+4:]), true, nil
}

func trimDelimiterEOL(b []byte) []byte {
	b = bytes.TrimPrefix(b, []byte("\r"))
	return bytes.TrimPrefix(b, []byte("\n"))
}

// NormalizeBody returns body with leading blank lines and trailing
// whitespace removed. Stored record bodies are always normalized.
func NormalizeBody(body []byte) string {
	s := strings.TrimLeft(string(body), "\r\n")
	return strings.TrimRight(s, " \t\r\n")
}

// Format formats content with YAML frontmatter.
// The matter is serialized to YAML and wrapped in "---" delimiters, then a
// blank line and the body follow.
func Format(matter any, body string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(matter); err != nil {
		return nil, errors.Wrap(err, "encoding frontmatter")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encoding frontmatter")
	}

	buf.WriteString("---\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}
