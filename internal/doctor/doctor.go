package doctor

import (
	"context"
	"time"
)

// Check is one diagnostic.
type Check interface {
	Name() string
	Category() string
	Run(ctx context.Context) *Result
}

// Runner executes checks in registration order.
type Runner struct {
	checks []Check
	now    func() time.Time
}

// NewRunner creates a runner with the given checks.
func NewRunner(checks ...Check) *Runner {
	return &Runner{checks: checks, now: time.Now}
}

// Add registers more checks.
func (r *Runner) Add(checks ...Check) {
	r.checks = append(r.checks, checks...)
}

// Run executes every check and returns the report. Once ctx is done the
// remaining checks are skipped.
func (r *Runner) Run(ctx context.Context) *Report {
	report := &Report{
		StartedAt: r.now().UTC(),
		Results:   make([]*Result, 0, len(r.checks)),
	}

	for _, check := range r.checks {
		if ctx.Err() != nil {
			break
		}
		start := r.now()
		res := check.Run(ctx)
		if res == nil {
			res = &Result{Status: SeverityPass}
		}
		res.Elapsed = r.now().Sub(start)
		if res.Name == "" {
			res.Name = check.Name()
		}
		if res.Category == "" {
			res.Category = check.Category()
		}
		report.Results = append(report.Results, res)
		report.Summary.add(res.Status)
	}
	return report
}
