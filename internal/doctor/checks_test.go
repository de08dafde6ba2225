package doctor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/viper"

	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/config"
	"github.com/thoreinstein/ccdir/internal/resource"
)

func writeFile(t *testing.T, path, data string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(data), perm); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, perm); err != nil {
		t.Fatal(err)
	}
}

func TestConfigCheck(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	config.Init()
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		perm    os.FileMode
		want    Severity
		unix    bool
	}{
		{name: "valid", content: "version: 1\n", perm: 0o600, want: SeverityPass},
		{name: "invalid", content: "version: 0\n", perm: 0o600, want: SeverityError},
		{name: "world readable", content: "version: 1\n", perm: 0o644, want: SeverityWarning, unix: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.unix && runtime.GOOS == "windows" {
				t.Skip("unix permissions")
			}
			path := filepath.Join(dir, tt.name+".yaml")
			writeFile(t, path, tt.content, tt.perm)

			got := (&ConfigCheck{Path: path}).Run(context.Background())
			if got.Status != tt.want {
				t.Errorf("Status = %v (%s), want %v", got.Status, got.Message, tt.want)
			}
		})
	}

	t.Run("missing", func(t *testing.T) {
		got := (&ConfigCheck{Path: filepath.Join(dir, "absent.yaml")}).Run(context.Background())
		if got.Status != SeverityInfo {
			t.Errorf("Status = %v, want info", got.Status)
		}
	})
}

func TestSourcesCheck(t *testing.T) {
	root := t.TempDir()
	content := filepath.Join(root, "content")
	if err := os.MkdirAll(filepath.Join(content, "prompts"), 0o755); err != nil {
		t.Fatal(err)
	}
	bare := filepath.Join(root, "bare")
	if err := os.MkdirAll(bare, 0o755); err != nil {
		t.Fatal(err)
	}
	cache := filepath.Join(root, "cache")

	tests := []struct {
		name    string
		sources map[string]config.SourceConfig
		want    Severity
	}{
		{name: "none", want: SeverityInfo},
		{name: "present", sources: map[string]config.SourceConfig{"team": {Path: content}}, want: SeverityPass},
		{name: "no content dirs", sources: map[string]config.SourceConfig{"bare": {Path: bare}}, want: SeverityWarning},
		{
			name:    "git clone missing",
			sources: map[string]config.SourceConfig{"remote": {URL: "https://example.com/c.git"}},
			want:    SeverityError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Sources = tt.sources
			got := (&SourcesCheck{Config: cfg, CacheDir: cache}).Run(context.Background())
			if got.Status != tt.want {
				t.Errorf("Status = %v (%s), want %v", got.Status, got.Message, tt.want)
			}
		})
	}
}

func TestGitCheck(t *testing.T) {
	found := func(string) (string, error) { return "/usr/bin/git", nil }
	missing := func(string) (string, error) { return "", errors.New("not found") }

	gitSources := config.Default()
	gitSources.Sources = map[string]config.SourceConfig{"remote": {URL: "https://example.com/c.git"}}

	tests := []struct {
		name     string
		cfg      *config.Config
		lookPath func(string) (string, error)
		want     Severity
	}{
		{"found", gitSources, found, SeverityPass},
		{"missing and needed", gitSources, missing, SeverityError},
		{"missing and unused", config.Default(), missing, SeverityInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := (&GitCheck{Config: tt.cfg, LookPath: tt.lookPath}).Run(context.Background())
			if got.Status != tt.want {
				t.Errorf("Status = %v, want %v", got.Status, tt.want)
			}
		})
	}
}

func TestCacheCheck(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	writeFile(t, file, "x", 0o644)

	tests := []struct {
		name string
		dir  string
		want Severity
	}{
		{"writable", dir, SeverityPass},
		{"not created", filepath.Join(dir, "later"), SeverityPass},
		{"file", file, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := (&CacheCheck{Dir: tt.dir}).Run(context.Background())
			if got.Status != tt.want {
				t.Errorf("Status = %v (%s), want %v", got.Status, got.Message, tt.want)
			}
		})
	}
}

func TestCatalogCheck(t *testing.T) {
	tool := resource.Tool{ID: "t", Title: "jq", Slug: "jq", Type: resource.ToolCLI}
	load := func(contents ...resource.Content) catalog.LoadFunc {
		return func(context.Context) (*catalog.Catalog, error) {
			return catalog.New(contents...), nil
		}
	}

	t.Run("clean", func(t *testing.T) {
		got := (&CatalogCheck{Load: load(resource.Content{Source: "a", Tools: []resource.Tool{tool}})}).Run(context.Background())
		if got.Status != SeverityPass {
			t.Errorf("Status = %v (%s), want pass", got.Status, got.Message)
		}
	})

	t.Run("duplicates", func(t *testing.T) {
		got := (&CatalogCheck{Load: load(
			resource.Content{Source: "a", Tools: []resource.Tool{tool}},
			resource.Content{Source: "b", Tools: []resource.Tool{tool}},
		)}).Run(context.Background())
		if got.Status != SeverityWarning {
			t.Fatalf("Status = %v, want warning", got.Status)
		}
		slugs, _ := got.Details["duplicate_slugs"].([]string)
		if len(slugs) != 1 || slugs[0] != "tool/jq" {
			t.Errorf("duplicate_slugs = %v", got.Details["duplicate_slugs"])
		}
	})

	t.Run("load failure", func(t *testing.T) {
		failing := func(context.Context) (*catalog.Catalog, error) { return nil, errors.New("boom") }
		got := (&CatalogCheck{Load: failing}).Run(context.Background())
		if got.Status != SeverityError {
			t.Errorf("Status = %v, want error", got.Status)
		}
	})
}
