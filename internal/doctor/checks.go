package doctor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/config"
	"github.com/thoreinstein/ccdir/internal/logging"
	"github.com/thoreinstein/ccdir/internal/resource"
	"github.com/thoreinstein/ccdir/internal/source"
)

// maxConfigPerm is the widest mode the config file should have; it can
// hold database credentials.
const maxConfigPerm os.FileMode = 0o600

// ConfigCheck validates the config file and its permissions.
type ConfigCheck struct {
	Path string
}

var _ Check = (*ConfigCheck)(nil)

func (c *ConfigCheck) Name() string     { return "config-file" }
func (c *ConfigCheck) Category() string { return "config" }

// Run loads and validates the file. A missing file is informational.
func (c *ConfigCheck) Run(context.Context) *Result {
	info, err := os.Stat(c.Path)
	if os.IsNotExist(err) {
		return &Result{
			Status:  SeverityInfo,
			Message: "no config file; defaults are in use",
			Details: map[string]any{"path": c.Path},
			Hint:    "ccdir config edit",
		}
	}
	if err != nil {
		return &Result{
			Status:  SeverityError,
			Message: fmt.Sprintf("cannot stat config file: %v", err),
			Details: map[string]any{"path": c.Path},
		}
	}

	cfg, err := config.Load(c.Path)
	if err != nil {
		return &Result{
			Status:  SeverityError,
			Message: err.Error(),
			Details: map[string]any{"path": c.Path},
			Hint:    "ccdir config edit",
		}
	}

	details := map[string]any{
		"path":        c.Path,
		"sources":     len(cfg.Sources),
		"store":       cfg.Store.Driver,
		"store_dsn":   logging.MaskURL(cfg.Store.DSN),
		"publish":     cfg.Publish.Driver,
		"permissions": formatPermissions(info.Mode()),
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&^maxConfigPerm != 0 {
		return &Result{
			Status:  SeverityWarning,
			Message: fmt.Sprintf("config file mode %s is wider than %s", formatPermissions(info.Mode()), formatOctal(maxConfigPerm)),
			Details: details,
			Hint:    "chmod 600 " + c.Path,
		}
	}
	return &Result{Status: SeverityPass, Message: "config file is valid", Details: details}
}

// SourcesCheck verifies that every registered source has a content
// directory on disk.
type SourcesCheck struct {
	Config   *config.Config
	CacheDir string
}

var _ Check = (*SourcesCheck)(nil)

func (c *SourcesCheck) Name() string     { return "source-directories" }
func (c *SourcesCheck) Category() string { return "sources" }

func (c *SourcesCheck) Run(context.Context) *Result {
	entries := source.Entries(c.Config, c.CacheDir)
	if len(entries) == 0 {
		return &Result{Status: SeverityInfo, Message: "no sources configured; only the built-in corpus is loaded"}
	}

	var (
		missing []string
		empty   []string
		hint    string
	)
	for _, e := range entries {
		info, err := os.Stat(e.Dir)
		if err != nil || !info.IsDir() {
			missing = append(missing, e.Name)
			if e.IsLocal() {
				hint = "ccdir source remove " + e.Name
			} else {
				hint = "ccdir source remove " + e.Name + " && ccdir source add " + e.URL
			}
			continue
		}
		if !hasContentDirs(e.Dir) {
			empty = append(empty, e.Name)
		}
	}

	details := map[string]any{"sources": len(entries)}
	switch {
	case len(missing) > 0:
		details["missing"] = missing
		return &Result{
			Status:  SeverityError,
			Message: fmt.Sprintf("%d source(s) have no directory on disk", len(missing)),
			Details: details,
			Hint:    hint,
		}
	case len(empty) > 0:
		details["empty"] = empty
		return &Result{
			Status:  SeverityWarning,
			Message: fmt.Sprintf("%d source(s) contain no content directories", len(empty)),
			Details: details,
			Hint:    "Sources need claude-configs/, prompts/ or tools/ directories",
		}
	}
	return &Result{
		Status:  SeverityPass,
		Message: fmt.Sprintf("all %d source directories present", len(entries)),
		Details: details,
	}
}

func hasContentDirs(dir string) bool {
	for _, t := range resource.Types() {
		if info, err := os.Stat(filepath.Join(dir, resource.Dir(t))); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// GitCheck looks for the git binary, which only git sources need.
type GitCheck struct {
	Config *config.Config

	// LookPath defaults to exec.LookPath.
	LookPath func(string) (string, error)
}

var _ Check = (*GitCheck)(nil)

func (c *GitCheck) Name() string     { return "git-binary" }
func (c *GitCheck) Category() string { return "sources" }

func (c *GitCheck) Run(context.Context) *Result {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	needed := false
	for _, src := range c.Config.Sources {
		if !src.IsLocal() {
			needed = true
			break
		}
	}

	path, err := lookPath("git")
	switch {
	case err == nil:
		return &Result{Status: SeverityPass, Message: "git found", Details: map[string]any{"path": path}}
	case needed:
		return &Result{
			Status:  SeverityError,
			Message: "git is not installed but git sources are configured",
			Hint:    "Install git, or replace git sources with local directories",
		}
	default:
		return &Result{Status: SeverityInfo, Message: "git not found; only local sources can be added"}
	}
}

// CacheCheck verifies the source cache directory is writable.
type CacheCheck struct {
	Dir string
}

var _ Check = (*CacheCheck)(nil)

func (c *CacheCheck) Name() string     { return "cache-directory" }
func (c *CacheCheck) Category() string { return "sources" }

func (c *CacheCheck) Run(context.Context) *Result {
	details := map[string]any{"path": c.Dir}

	info, err := os.Stat(c.Dir)
	if os.IsNotExist(err) {
		return &Result{Status: SeverityPass, Message: "cache directory not created yet", Details: details}
	}
	if err != nil {
		return &Result{Status: SeverityError, Message: fmt.Sprintf("cannot stat cache directory: %v", err), Details: details}
	}
	if !info.IsDir() {
		return &Result{
			Status:  SeverityError,
			Message: "expected directory but found file",
			Details: details,
			Hint:    "rm " + c.Dir,
		}
	}
	if !isDirectoryWritable(c.Dir) {
		return &Result{
			Status:  SeverityError,
			Message: "cache directory is not writable",
			Details: details,
			Hint:    "chmod u+w " + c.Dir,
		}
	}
	return &Result{Status: SeverityPass, Message: "cache directory is writable", Details: details}
}

// CatalogCheck loads the merged catalog and reports files that failed to
// load and slugs defined more than once.
type CatalogCheck struct {
	Load catalog.LoadFunc
}

var _ Check = (*CatalogCheck)(nil)

func (c *CatalogCheck) Name() string     { return "catalog" }
func (c *CatalogCheck) Category() string { return "content" }

func (c *CatalogCheck) Run(ctx context.Context) *Result {
	cat, err := c.Load(ctx)
	if err != nil {
		return &Result{Status: SeverityError, Message: err.Error(), Hint: "ccdir validate"}
	}

	details := map[string]any{
		"configs":    len(cat.Configs()),
		"prompts":    len(cat.Prompts()),
		"tools":      len(cat.Tools()),
		"categories": len(cat.Categories()),
	}

	problems := cat.Problems()
	dups := cat.Duplicates()
	if len(problems) == 0 && len(dups) == 0 {
		return &Result{
			Status:  SeverityPass,
			Message: fmt.Sprintf("%d entries loaded", len(cat.Resources())),
			Details: details,
		}
	}

	files := make([]string, len(problems))
	for i, p := range problems {
		files[i] = p.Source + ":" + p.Path
	}
	slugs := make([]string, len(dups))
	for i, d := range dups {
		slugs[i] = d.Type.Label() + "/" + d.Slug
	}
	details["failed_files"] = files
	details["duplicate_slugs"] = slugs
	return &Result{
		Status:  SeverityWarning,
		Message: fmt.Sprintf("%d file(s) failed to load, %d duplicate slug(s)", len(problems), len(dups)),
		Details: details,
		Hint:    "ccdir validate",
	}
}

// isDirectoryWritable tests if a directory is writable by creating a temp file.
func isDirectoryWritable(path string) bool {
	f, err := os.CreateTemp(path, ".ccdir-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return true
}

func formatPermissions(mode fs.FileMode) string {
	return formatOctal(mode.Perm())
}

func formatOctal(mode fs.FileMode) string {
	return fmt.Sprintf("%04o", uint32(mode.Perm()))
}
