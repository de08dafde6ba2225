package validator

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestReporter_Report(t *testing.T) {
	color.NoColor = true

	result := &Result{}
	result.AddError("prompt/code-review", "slug", "is required", nil)
	result.AddWarning("prompt/code-review", "variables", "declared but unused", "focus")
	result.AddWarning("", "", "no categories defined", nil)
	result.Issues[0].Context = map[string]string{"source": "builtin"}

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewReporter(&buf, FormatText).Report(result); err != nil {
			t.Fatalf("Report() error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"Validation failed",
			"1 error(s)",
			"2 warning(s)",
			"prompt/code-review",
			"slug: is required",
			"(source=builtin)",
			"[focus]",
			"no categories defined",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("json format", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewReporter(&buf, FormatJSON).Report(result); err != nil {
			t.Fatalf("Report() error: %v", err)
		}

		var decoded struct {
			Valid    bool    `json:"valid"`
			Errors   int     `json:"errors"`
			Warnings int     `json:"warnings"`
			Issues   []Issue `json:"issues"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("failed to decode JSON output: %v", err)
		}
		if decoded.Valid || decoded.Errors != 1 || decoded.Warnings != 2 {
			t.Errorf("summary = %+v", decoded)
		}
		if len(decoded.Issues) != 3 || decoded.Issues[0].Subject != "prompt/code-review" {
			t.Errorf("issues = %+v", decoded.Issues)
		}
	})

	t.Run("warnings only", func(t *testing.T) {
		r := &Result{}
		r.AddWarning("tool/x", "lastUpdated", "missing", nil)
		var buf bytes.Buffer
		if err := NewReporter(&buf, FormatText).Report(r); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "Validation passed with") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("empty result", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewReporter(&buf, FormatText).Report(&Result{}); err != nil {
			t.Fatalf("Report() error: %v", err)
		}
		if !strings.Contains(buf.String(), "Validation passed") {
			t.Error("output missing success message")
		}

		buf.Reset()
		if err := NewReporter(&buf, FormatJSON).Report(&Result{}); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), `"issues": []`) {
			t.Errorf("empty JSON report should have an empty issues array: %s", buf.String())
		}
	})

	t.Run("nil result", func(t *testing.T) {
		var buf bytes.Buffer
		if err := NewReporter(&buf, FormatText).Report(nil); err != nil || buf.Len() != 0 {
			t.Errorf("Report(nil) = %v, wrote %q", err, buf.String())
		}
	})
}
