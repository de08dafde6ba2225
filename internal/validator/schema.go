package validator

import (
	"embed"
	"encoding/json"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/thoreinstein/ccdir/internal/errors"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const schemaBase = "https://claudecode.directory/schemas/"

// Schema names, one per record kind.
const (
	SchemaCategory = "category.schema.json"
	SchemaClaudeMd = "claude-md.schema.json"
	SchemaPrompt   = "prompt.schema.json"
	SchemaTool     = "tool.schema.json"
)

// Schemas validates records against the embedded JSON schemas.
type Schemas struct {
	compiled map[string]*jsonschema.Schema
}

// CompileSchemas compiles every embedded schema.
func CompileSchemas() (*Schemas, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7

	entries, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, errors.Wrap(err, "reading embedded schemas")
	}
	for _, e := range entries {
		data, err := schemaFS.ReadFile(path.Join("schemas", e.Name()))
		if err != nil {
			return nil, errors.Wrapf(err, "reading schema %s", e.Name())
		}
		if err := c.AddResource(schemaBase+e.Name(), strings.NewReader(string(data))); err != nil {
			return nil, errors.Wrapf(err, "adding schema %s", e.Name())
		}
	}

	s := &Schemas{compiled: make(map[string]*jsonschema.Schema)}
	for _, name := range []string{SchemaCategory, SchemaClaudeMd, SchemaPrompt, SchemaTool} {
		sch, err := c.Compile(schemaBase + name)
		if err != nil {
			return nil, errors.Wrapf(err, "compiling schema %s", name)
		}
		s.compiled[name] = sch
	}
	return s, nil
}

// SchemaViolation is one failed schema keyword.
type SchemaViolation struct {
	// Location is a JSON pointer into the record, e.g. "/tags/3".
	Location string
	Message  string
}

// Check marshals v to JSON and validates it against the named schema.
func (s *Schemas) Check(name string, v any) ([]SchemaViolation, error) {
	sch, ok := s.compiled[name]
	if !ok {
		return nil, errors.Newf("unknown schema %q", name)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling record")
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding record")
	}

	err = sch.Validate(doc)
	if err == nil {
		return nil, nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return nil, errors.Wrap(err, "validating record")
	}
	return leafViolations(verr, nil), nil
}

// leafViolations flattens the error tree to its most specific causes.
func leafViolations(e *jsonschema.ValidationError, out []SchemaViolation) []SchemaViolation {
	if len(e.Causes) == 0 {
		loc := e.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return append(out, SchemaViolation{Location: loc, Message: e.Message})
	}
	for _, c := range e.Causes {
		out = leafViolations(c, out)
	}
	return out
}
