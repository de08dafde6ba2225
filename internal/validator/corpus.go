package validator

import (
	"encoding/json"
	"maps"
	"net/url"
	"reflect"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/resource"
)

// DateLayout is the lastUpdated format.
const DateLayout = "2006-01-02"

// templateVar matches a pongo2 variable reference and captures its name,
// ignoring filters: {{ code }}, {{ code|upper }}.
var templateVar = regexp.MustCompile(`\{\{-?\s*([A-Za-z_][A-Za-z0-9_]*)[^}]*\}\}`)

// TemplateVariables returns the distinct variable names referenced in body,
// in order of first use.
func TemplateVariables(body string) []string {
	var names []string
	for _, m := range templateVar.FindAllStringSubmatch(body, -1) {
		if !slices.Contains(names, m[1]) {
			names = append(names, m[1])
		}
	}
	return names
}

// Subject formats the record name used on issues, e.g. "prompt/code-review".
func Subject(t resource.ResourceType, slug string) string {
	if slug == "" {
		slug = "(no slug)"
	}
	return t.Label() + "/" + slug
}

// CorpusValidator checks every record of a catalog, including duplicates
// and files that failed to load.
type CorpusValidator struct {
	schemas *Schemas
}

// NewCorpusValidator compiles the embedded schemas.
func NewCorpusValidator() (*CorpusValidator, error) {
	s, err := CompileSchemas()
	if err != nil {
		return nil, err
	}
	return &CorpusValidator{schemas: s}, nil
}

// Validate runs every per-record and cross-record check.
func (v *CorpusValidator) Validate(c *catalog.Catalog) *Result {
	result := &Result{}

	for _, p := range c.Problems() {
		result.Add(Issue{
			Severity: SeverityError,
			Subject:  p.Source + ":" + p.Path,
			Message:  "file could not be loaded: " + p.Err.Error(),
		})
	}

	for _, d := range c.DerivedSlugs() {
		result.Add(Issue{
			Severity: SeverityWarning,
			Subject:  Subject(d.Type, d.Slug),
			Field:    "slug",
			Message:  "slug is missing; derived from the file name",
			Value:    d.Slug,
			Context:  map[string]string{"source": d.Source, "path": d.Path},
		})
	}

	known := make(map[string]bool)
	for _, cat := range c.Categories() {
		known[cat.ID] = true
	}

	ids := make(map[resource.ResourceType]map[string]string)
	trackID := func(t resource.ResourceType, id, subject, source string) {
		if id == "" {
			return
		}
		if ids[t] == nil {
			ids[t] = make(map[string]string)
		}
		if prev, ok := ids[t][id]; ok {
			result.Add(Issue{
				Severity: SeverityError,
				Subject:  subject,
				Field:    "id",
				Message:  "id is already used by " + prev,
				Value:    id,
				Context:  map[string]string{"source": source},
			})
			return
		}
		ids[t][id] = subject
	}

	seenCategory := make(map[string]string)
	for _, ct := range c.Contents() {
		for _, cat := range ct.Categories {
			subject := "category/" + cat.ID
			if prev, ok := seenCategory[cat.ID]; ok && cat.ID != "" {
				result.Add(Issue{Severity: SeverityError, Subject: subject, Field: "id",
					Message: "category id already defined in source " + prev, Context: map[string]string{"source": ct.Source}})
			}
			seenCategory[cat.ID] = ct.Source
			v.checkCategory(result, subject, ct.Source, cat)
		}

		for _, cfg := range ct.Configs {
			subject := Subject(resource.TypeClaudeMd, cfg.Slug)
			r := &recordCheck{result: result, subject: subject, source: ct.Source}
			r.common(cfg.AsResource(), known)
			r.required("tagline", cfg.Tagline)
			r.required("description", cfg.Description)
			r.required("content", cfg.Content)
			r.roundTrip(cfg, &resource.ClaudeMdConfig{})
			v.checkSchema(r, SchemaClaudeMd, cfg)
			trackID(resource.TypeClaudeMd, cfg.ID, subject, ct.Source)
		}

		for _, p := range ct.Prompts {
			subject := Subject(resource.TypePrompt, p.Slug)
			r := &recordCheck{result: result, subject: subject, source: ct.Source}
			r.common(p.AsResource(), known)
			r.required("description", p.Description)
			r.required("prompt", p.Prompt)
			r.promptVariables(p)
			r.roundTrip(p, &resource.PromptTemplate{})
			v.checkSchema(r, SchemaPrompt, p)
			trackID(resource.TypePrompt, p.ID, subject, ct.Source)
		}

		for _, t := range ct.Tools {
			subject := Subject(resource.TypeTool, t.Slug)
			r := &recordCheck{result: result, subject: subject, source: ct.Source}
			r.common(t.AsResource(), known)
			r.required("tagline", t.Tagline)
			r.required("description", t.Description)
			r.required("url", t.URL)
			r.absoluteURL("url", t.URL)
			r.roundTrip(t, &resource.Tool{})
			v.checkSchema(r, SchemaTool, t)
			trackID(resource.TypeTool, t.ID, subject, ct.Source)
		}
	}

	for _, d := range c.Duplicates() {
		sources := make([]string, len(d.Occurrences))
		for i, o := range d.Occurrences {
			sources[i] = o.Source
		}
		result.Add(Issue{
			Severity: SeverityError,
			Subject:  Subject(d.Type, d.Slug),
			Field:    "slug",
			Message:  "slug is defined more than once; the first definition is used",
			Context:  map[string]string{"sources": strings.Join(sources, ",")},
		})
	}

	if len(c.Categories()) == 0 {
		result.AddWarning("", "", "no categories defined", nil)
	}

	return result
}

func (v *CorpusValidator) checkCategory(result *Result, subject, source string, cat resource.Category) {
	r := &recordCheck{result: result, subject: subject, source: source}
	r.required("id", cat.ID)
	r.required("name", cat.Name)
	r.required("slug", cat.Slug)
	v.checkSchema(r, SchemaCategory, cat)
}

func (v *CorpusValidator) checkSchema(r *recordCheck, name string, rec any) {
	violations, err := v.schemas.Check(name, rec)
	if err != nil {
		r.errorf("", "schema check failed: "+err.Error(), nil)
		return
	}
	for _, sv := range violations {
		r.errorf(strings.TrimPrefix(sv.Location, "/"), "schema: "+sv.Message, nil)
	}
}

// recordCheck accumulates issues for one record.
type recordCheck struct {
	result  *Result
	subject string
	source  string
}

func (r *recordCheck) add(sev Severity, field, msg string, value any) {
	r.result.Add(Issue{
		Severity: sev,
		Subject:  r.subject,
		Field:    field,
		Message:  msg,
		Value:    value,
		Context:  map[string]string{"source": r.source},
	})
}

func (r *recordCheck) errorf(field, msg string, value any) {
	r.add(SeverityError, field, msg, value)
}

func (r *recordCheck) warnf(field, msg string, value any) {
	r.add(SeverityWarning, field, msg, value)
}

func (r *recordCheck) required(field, value string) {
	if strings.TrimSpace(value) == "" {
		r.errorf(field, field+" is required", nil)
	}
}

// common checks the fields every kind shares, through its listing form.
func (r *recordCheck) common(res resource.Resource, knownCategories map[string]bool) {
	r.required("id", res.ID)
	r.required("title", res.Title)
	r.required("slug", res.Slug)
	r.required("category", res.CategoryID)

	if res.CategoryID != "" && !knownCategories[res.CategoryID] {
		r.warnf("category", "category is not defined", res.CategoryID)
	}

	if !res.Difficulty.Valid() {
		r.errorf("difficulty", "difficulty must be one of BEGINNER, INTERMEDIATE, ADVANCED", string(res.Difficulty))
	}

	if len(res.Tags) == 0 {
		r.errorf("tags", "at least one tag is required", nil)
	}
	for i, tag := range res.Tags {
		if strings.TrimSpace(tag) == "" {
			r.errorf("tags", "tag must not be empty", i)
		}
	}

	if strings.TrimSpace(res.Author.Name) == "" {
		r.errorf("author.name", "author name is required", nil)
	}
	if res.Author.URL != "" {
		r.absoluteURL("author.url", res.Author.URL)
	}

	switch {
	case res.LastUpdated == "":
		r.warnf("lastUpdated", "lastUpdated is missing", nil)
	default:
		if _, err := time.Parse(DateLayout, res.LastUpdated); err != nil {
			r.errorf("lastUpdated", "lastUpdated must be a YYYY-MM-DD date", res.LastUpdated)
		}
	}
}

func (r *recordCheck) absoluteURL(field, raw string) {
	if raw == "" {
		return
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		r.errorf(field, "must be an absolute http(s) URL", raw)
	}
}

// roundTrip checks the record survives JSON encoding unchanged. fresh must
// be a pointer to a zero value of the record's type.
func (r *recordCheck) roundTrip(rec any, fresh any) {
	data, err := json.Marshal(rec)
	if err != nil {
		r.errorf("", "record is not JSON serializable: "+err.Error(), nil)
		return
	}
	if err := json.Unmarshal(data, fresh); err != nil {
		r.errorf("", "record JSON does not decode: "+err.Error(), nil)
		return
	}
	if !reflect.DeepEqual(rec, reflect.ValueOf(fresh).Elem().Interface()) {
		r.errorf("", "record changes across a JSON round trip", nil)
	}
}

func (r *recordCheck) promptVariables(p resource.PromptTemplate) {
	used := TemplateVariables(p.Prompt)

	declared := make(map[string]bool, len(p.Variables))
	for _, v := range p.Variables {
		if declared[v.Name] {
			r.errorf("variables", "variable declared more than once", v.Name)
		}
		declared[v.Name] = true
		if !slices.Contains(used, v.Name) {
			r.warnf("variables", "variable is declared but not used in the prompt", v.Name)
		}
	}
	for _, name := range used {
		if !declared[name] {
			r.warnf("prompt", "prompt uses an undeclared variable", name)
		}
	}

	for _, ex := range p.Examples {
		for _, name := range slices.Sorted(maps.Keys(ex.Variables)) {
			if !declared[name] {
				r.warnf("examples", "example sets an undeclared variable", ex.Title+": "+name)
			}
		}
		for _, v := range p.Variables {
			if _, ok := ex.Variables[v.Name]; v.Required && !ok {
				r.warnf("examples", "example omits a required variable", ex.Title+": "+v.Name)
			}
		}
	}
}
