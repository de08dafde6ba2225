package config

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/thoreinstein/ccdir/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrVersionTooLow indicates the version field is below the minimum.
	ErrVersionTooLow = errors.New("version must be >= 1")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")

	// ErrInvalidValue indicates a field holds a value outside its allowed set.
	ErrInvalidValue = errors.New("invalid value")

	// ErrInvalidSource indicates a malformed source entry.
	ErrInvalidSource = errors.New("invalid source")
)

var sourceNamePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidSourceName reports whether name is usable as a source key:
// lowercase alphanumeric segments joined by single hyphens.
func ValidSourceName(name string) bool {
	return sourceNamePattern.MatchString(name)
}

var (
	renderStyles = []string{"auto", "dark", "light", "notty"}
	storeDrivers = []string{"sqlite", "postgres"}
)

// Validate checks a Config for validity.
// Returns nil if valid, or every validation error found.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if cfg.Version < 1 {
		errs = append(errs, ErrVersionTooLow)
	}

	for name, src := range cfg.Sources {
		if err := validateSource(name, src); err != nil {
			errs = append(errs, err)
		}
	}

	if cfg.Server.Addr == "" {
		errs = append(errs, &FieldError{Field: "server.addr", Err: ErrInvalidValue})
	}

	if cfg.Render.Style != "" && !slices.Contains(renderStyles, cfg.Render.Style) {
		errs = append(errs, &FieldError{Field: "render.style", Value: cfg.Render.Style, Err: ErrInvalidValue})
	}
	if cfg.Render.Width < 0 {
		errs = append(errs, &FieldError{Field: "render.width", Value: "negative", Err: ErrInvalidValue})
	}

	if cfg.Store.Driver != "" && !slices.Contains(storeDrivers, cfg.Store.Driver) {
		errs = append(errs, &FieldError{Field: "store.driver", Value: cfg.Store.Driver, Err: ErrInvalidValue})
	}

	switch cfg.Publish.Driver {
	case "", "fs":
		if err := validatePath(cfg.Publish.Directory); err != nil {
			errs = append(errs, &FieldError{Field: "publish.directory", Value: cfg.Publish.Directory, Err: err})
		}
	case "s3":
		if cfg.Publish.Bucket == "" {
			errs = append(errs, &FieldError{Field: "publish.bucket", Err: ErrInvalidValue})
		}
	default:
		errs = append(errs, &FieldError{Field: "publish.driver", Value: cfg.Publish.Driver, Err: ErrInvalidValue})
	}

	return errs
}

func validateSource(name string, src SourceConfig) error {
	if !ValidSourceName(name) {
		return &FieldError{Field: "sources", Value: name, Err: ErrInvalidSource}
	}
	if (src.URL == "") == (src.Path == "") {
		return &FieldError{Field: "sources." + name, Value: "exactly one of url or path", Err: ErrInvalidSource}
	}
	if src.Path != "" {
		if err := validatePath(src.Path); err != nil {
			return &FieldError{Field: "sources." + name + ".path", Value: src.Path, Err: err}
		}
	}
	return nil
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists. Empty means "use default".
func validatePath(path string) error {
	if path == "" {
		return nil
	}
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}
	if cleaned := filepath.Clean(path); cleaned == "" || cleaned == "." {
		return ErrInvalidPath
	}
	return nil
}

// FieldError represents an error for a specific config field.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Value == "" {
		return e.Field + ": " + e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
