package render

import (
	"maps"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/resource"
)

// ErrMissingVariable is returned when a required prompt variable has neither
// a value nor a default.
var ErrMissingVariable = errors.New("missing required variable")

// ErrInvalidAssignment is returned for a name=value argument without "=".
var ErrInvalidAssignment = errors.New("invalid variable assignment")

// Values resolves the value of every declared variable: the caller's value,
// then the default, then the empty string for optional variables. Values for
// undeclared names are passed through.
func Values(tpl resource.PromptTemplate, vars map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(tpl.Variables)+len(vars))
	maps.Copy(out, vars)

	var missing []string
	for _, v := range tpl.Variables {
		if val, ok := vars[v.Name]; ok && val != "" {
			continue
		}
		switch {
		case v.Default != "":
			out[v.Name] = v.Default
		case v.Required:
			missing = append(missing, v.Name)
		default:
			out[v.Name] = ""
		}
	}
	if len(missing) > 0 {
		return nil, errors.WithDetailf(
			errors.Wrapf(ErrMissingVariable, "%s", strings.Join(missing, ", ")),
			"prompt %q", tpl.Slug)
	}
	return out, nil
}

// Prompt renders the body of tpl with vars. Output is not HTML-escaped.
func Prompt(tpl resource.PromptTemplate, vars map[string]string) (string, error) {
	values, err := Values(tpl, vars)
	if err != nil {
		return "", err
	}

	t, err := pongo2.FromString("{% autoescape off %}" + tpl.Prompt + "{% endautoescape %}")
	if err != nil {
		return "", errors.Wrapf(err, "parsing prompt %q", tpl.Slug)
	}

	ctx := make(pongo2.Context, len(values))
	for k, v := range values {
		ctx[k] = v
	}
	out, err := t.Execute(ctx)
	if err != nil {
		return "", errors.Wrapf(err, "rendering prompt %q", tpl.Slug)
	}
	return out, nil
}

// ParseAssignments parses name=value pairs as given on the command line.
// Later pairs override earlier ones.
func ParseAssignments(args []string) (map[string]string, error) {
	vars := make(map[string]string, len(args))
	for _, a := range args {
		name, value, ok := strings.Cut(a, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.Wrapf(ErrInvalidAssignment, "%q (want name=value)", a)
		}
		vars[name] = value
	}
	return vars, nil
}
