// Package doctor runs diagnostic checks over the ccdir installation: the
// config file, content sources, the git binary, the cache and the catalog.
package doctor

import (
	"time"

	"github.com/thoreinstein/ccdir/internal/errors"
)

// Severity ranks a check outcome. Higher values are worse.
type Severity int

const (
	SeverityPass Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

var severityNames = [...]string{"pass", "info", "warning", "error"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name, so JSON reports read back.
func (s *Severity) UnmarshalText(text []byte) error {
	for i, name := range severityNames {
		if name == string(text) {
			*s = Severity(i)
			return nil
		}
	}
	return errors.Newf("unknown severity %q", text)
}

// Result is the outcome of one check. Name and Category are filled from
// the check when left empty.
type Result struct {
	Name     string         `json:"name"`
	Category string         `json:"category"`
	Status   Severity       `json:"status"`
	Message  string         `json:"message"`
	Details  map[string]any `json:"details,omitempty"`
	Hint     string         `json:"hint,omitempty"`
	Elapsed  time.Duration  `json:"elapsed_ns"`
}

// Summary counts results per severity.
type Summary struct {
	Passed   int `json:"passed"`
	Info     int `json:"info"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

func (s *Summary) add(sev Severity) {
	switch sev {
	case SeverityPass:
		s.Passed++
	case SeverityInfo:
		s.Info++
	case SeverityWarning:
		s.Warnings++
	case SeverityError:
		s.Errors++
	}
}

// Report is a complete diagnostic run.
type Report struct {
	StartedAt time.Time `json:"started_at"`
	Results   []*Result `json:"results"`
	Summary   Summary   `json:"summary"`
}

// Worst returns the most severe status in the report, or SeverityPass for
// an empty one.
func (r *Report) Worst() Severity {
	worst := SeverityPass
	for _, res := range r.Results {
		worst = max(worst, res.Status)
	}
	return worst
}

// AtLeast returns the results whose status is min or worse, in run order.
func (r *Report) AtLeast(min Severity) []*Result {
	var out []*Result
	for _, res := range r.Results {
		if res.Status >= min {
			out = append(out, res)
		}
	}
	return out
}
