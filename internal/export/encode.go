package export

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/ccdir/internal/errors"
)

// Format is a bundle encoding.
type Format string

// Bundle encodings. FormatMarkdown is a directory tree, written by WriteTree.
const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatTOML     Format = "toml"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported export format.
var Formats = []Format{FormatJSON, FormatYAML, FormatTOML, FormatMarkdown}

// ErrUnknownFormat is returned for a format outside Formats.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat parses a format name; "yml" and "md" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "yml":
		return FormatYAML, nil
	case "md":
		return FormatMarkdown, nil
	default:
		if slices.Contains(Formats, f) {
			return f, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownFormat, "%q", s)
}

// Extension returns the file extension for single-document formats.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return ""
	}
	return "." + string(f)
}

// Encode serializes b. YAML and TOML keys match the JSON field names.
func Encode(b *Bundle, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		out, err := json.MarshalIndent(b, "", "  ")
		if err != nil {
			return nil, errors.Wrap(err, "marshaling json")
		}
		return append(out, '\n'), nil
	case FormatYAML:
		doc, err := generic(b)
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, errors.Wrap(err, "marshaling yaml")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, "marshaling yaml")
		}
		return buf.Bytes(), nil
	case FormatTOML:
		doc, err := generic(b)
		if err != nil {
			return nil, err
		}
		out, err := toml.Marshal(doc)
		if err != nil {
			return nil, errors.Wrap(err, "marshaling toml")
		}
		return out, nil
	}
	return nil, errors.Wrapf(ErrUnknownFormat, "%q cannot be encoded to a single document", format)
}

// Decode parses a bundle written by Encode.
func Decode(data []byte, format Format) (*Bundle, error) {
	var doc any
	switch format {
	case FormatJSON:
		var b Bundle
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, errors.Wrap(err, "unmarshaling json")
		}
		return &b, nil
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, "unmarshaling yaml")
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, "unmarshaling toml")
		}
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q cannot be decoded", format)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "converting document")
	}
	var b Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, errors.Wrap(err, "decoding bundle")
	}
	return &b, nil
}

// generic converts b to maps and slices keyed by JSON names. Nulls are
// dropped, since TOML cannot represent them, and whole numbers become
// integers.
func generic(b *Bundle) (any, error) {
	raw, err := json.Marshal(b)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling bundle")
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding bundle")
	}
	return normalize(doc), nil
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if val == nil {
				delete(t, k)
				continue
			}
			t[k] = normalize(val)
		}
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
	case float64:
		if t == math.Trunc(t) {
			return int64(t)
		}
	}
	return v
}
