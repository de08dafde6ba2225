package errors

import (
	"fmt"
	"io"
	"strings"

	crdb "github.com/cockroachdb/errors"
	"github.com/fatih/color"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid input, configuration, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, network, permissions, etc.).
	ExitSystem = 2
)

// Sentinel errors for common failure conditions.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = crdb.New("resource not found")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = crdb.New("invalid configuration")

	// ErrInvalidContent indicates a content file could not be parsed.
	ErrInvalidContent = crdb.New("invalid content")

	// ErrValidationFailed indicates the corpus did not pass validation.
	ErrValidationFailed = crdb.New("validation failed")
)

// Re-exported helpers so callers only import this package.
var (
	New        = crdb.New
	Newf       = crdb.Newf
	Wrap       = crdb.Wrap
	Wrapf      = crdb.Wrapf
	WithDetail = crdb.WithDetail
	Is         = crdb.Is
	As         = crdb.As
	Join       = crdb.Join
)

// WithDetailf is errors.WithDetailf from cockroachdb/errors.
func WithDetailf(err error, format string, args ...any) error {
	return crdb.WithDetailf(err, format, args...)
}

// ExitError tags an error with the process exit code main should use.
// Suggestions travel as cockroachdb hints on the wrapped error.
type ExitError struct {
	Code int
	err  error
}

// NewExitError tags err with code.
func NewExitError(err error, code int) error {
	return &ExitError{Code: code, err: err}
}

// NewUserError marks err as the user's to fix (ExitUser) with an optional
// suggestion such as the command to run next.
func NewUserError(err error, suggestion string) error {
	return &ExitError{Code: ExitUser, err: withHint(err, suggestion)}
}

// NewSystemError marks err as an environment failure (ExitSystem).
func NewSystemError(err error, suggestion string) error {
	return &ExitError{Code: ExitSystem, err: withHint(err, suggestion)}
}

// NewConfigError marks a configuration problem and points at the config
// commands.
func NewConfigError(err error) error {
	return NewUserError(err, "Run: ccdir config list")
}

func withHint(err error, hint string) error {
	if err == nil || hint == "" {
		return err
	}
	return crdb.WithHint(err, hint)
}

func (e *ExitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.err
}

// ExitCode reports the exit code carried by err. Errors without an
// ExitError in their chain map to ExitSystem; nil maps to ExitSuccess.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitSystem
}

// Suggestion returns the hints attached anywhere in err's chain, one per
// line.
func Suggestion(err error) string {
	if err == nil {
		return ""
	}
	return strings.Join(crdb.GetAllHints(err), "\n")
}

// Print writes err for a terminal user: the message, then any details
// attached with WithDetail, then the hints.
func Print(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %v\n", color.RedString("Error:"), err)
	for _, d := range crdb.GetAllDetails(err) {
		fmt.Fprintf(w, "  %s\n", d)
	}
	for _, h := range crdb.GetAllHints(err) {
		fmt.Fprintf(w, "%s %s\n", color.CyanString("Hint:"), h)
	}
}
