package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/thoreinstein/ccdir/internal/errors"
)

// Format specifies the output format for validation reports.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// Reporter formats and writes validation results.
type Reporter struct {
	out    io.Writer
	format Format
}

// NewReporter creates a new Reporter.
func NewReporter(out io.Writer, format Format) *Reporter {
	return &Reporter{
		out:    out,
		format: format,
	}
}

// Report writes the validation result to the output.
func (r *Reporter) Report(result *Result) error {
	if result == nil {
		return nil
	}

	switch r.format {
	case FormatJSON:
		return r.reportJSON(result)
	default:
		return r.reportText(result)
	}
}

type jsonReport struct {
	Valid    bool    `json:"valid"`
	Errors   int     `json:"errors"`
	Warnings int     `json:"warnings"`
	Issues   []Issue `json:"issues"`
}

func (r *Reporter) reportJSON(result *Result) error {
	report := jsonReport{
		Valid:    !result.HasErrors(),
		Errors:   len(result.Errors()),
		Warnings: len(result.Warnings()),
		Issues:   result.Issues,
	}
	if report.Issues == nil {
		report.Issues = []Issue{}
	}
	encoder := json.NewEncoder(r.out)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(report), "encoding JSON report")
}

func (r *Reporter) reportText(result *Result) error {
	errs := result.Errors()
	warnings := result.Warnings()

	if len(errs) == 0 && len(warnings) == 0 {
		fmt.Fprintln(r.out, color.GreenString("✓ Validation passed"))
		return nil
	}

	summary := []string{}
	if len(errs) > 0 {
		summary = append(summary, color.RedString("%d error(s)", len(errs)))
	}
	if len(warnings) > 0 {
		summary = append(summary, color.YellowString("%d warning(s)", len(warnings)))
	}
	if len(errs) > 0 {
		fmt.Fprintf(r.out, "Validation failed: %s\n\n", strings.Join(summary, ", "))
	} else {
		fmt.Fprintf(r.out, "Validation passed with %s\n\n", strings.Join(summary, ", "))
	}

	if len(errs) > 0 {
		fmt.Fprintln(r.out, "Errors:")
		r.printGroup(errs, color.FgRed)
		fmt.Fprintln(r.out)
	}
	if len(warnings) > 0 {
		fmt.Fprintln(r.out, "Warnings:")
		r.printGroup(warnings, color.FgYellow)
		fmt.Fprintln(r.out)
	}

	return nil
}

// printGroup prints issues under their subject, subjects in first-seen order.
func (r *Reporter) printGroup(issues []Issue, c color.Attribute) {
	var subjects []string
	bySubject := make(map[string][]Issue)
	for _, i := range issues {
		if _, ok := bySubject[i.Subject]; !ok {
			subjects = append(subjects, i.Subject)
		}
		bySubject[i.Subject] = append(bySubject[i.Subject], i)
	}

	for _, s := range subjects {
		indent := "  "
		if s != "" {
			fmt.Fprintf(r.out, "  %s\n", color.New(color.Bold).Sprint(s))
			indent = "    "
		}
		for _, i := range bySubject[s] {
			r.printIssue(indent, i, c)
		}
	}
}

func (r *Reporter) printIssue(indent string, i Issue, c color.Attribute) {
	printer := color.New(c).SprintFunc()
	dim := color.New(color.FgHiBlack)

	var sb strings.Builder
	sb.WriteString(indent)
	sb.WriteString("• ")

	if i.Field != "" {
		sb.WriteString(printer(i.Field))
		sb.WriteString(": ")
	}
	sb.WriteString(i.Message)

	if len(i.Context) > 0 {
		parts := make([]string, 0, len(i.Context))
		for k, v := range i.Context {
			parts = append(parts, k+"="+v)
		}
		slices.Sort(parts)
		sb.WriteString(" ")
		sb.WriteString(dim.Sprintf("(%s)", strings.Join(parts, ", ")))
	}

	if i.Value != nil {
		valStr := fmt.Sprintf("%v", i.Value)
		if len(valStr) > 50 {
			valStr = valStr[:47] + "..."
		}
		sb.WriteString(dim.Sprintf(" [%s]", valStr))
	}

	fmt.Fprintln(r.out, sb.String())
}
