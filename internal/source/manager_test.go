package source

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/thoreinstein/ccdir/content"
	"github.com/thoreinstein/ccdir/internal/config"
	"github.com/thoreinstein/ccdir/internal/errors"
)

func newTestManager(t *testing.T) (*Manager, string) {
	t.Helper()
	tmpDir := t.TempDir()
	m := NewManager(filepath.Join(tmpDir, "config.yaml"), WithCacheDir(filepath.Join(tmpDir, "cache")))
	m.now = func() time.Time { return time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC) }
	return m, tmpDir
}

func TestDeriveName(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{"HTTPS URL with .git suffix", "https://github.com/user/team-content.git", "team-content"},
		{"HTTPS URL without .git suffix", "https://github.com/user/team-content", "team-content"},
		{"SSH URL", "git@github.com:user/team-content.git", "team-content"},
		{"uppercase", "https://github.com/user/TeamContent.git", "teamcontent"},
		{"trailing slash", "https://github.com/user/repo/", "repo"},
		{"local path", "/home/me/My_Prompts", "my-prompts"},
		{"dots and spaces", "/srv/claude dir.v2", "claude-dir-v2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveName(tt.origin); got != tt.want {
				t.Errorf("deriveName(%q) = %q, want %q", tt.origin, got, tt.want)
			}
		})
	}
}

func TestManager_AddPath(t *testing.T) {
	m, tmpDir := newTestManager(t)
	dir := filepath.Join(tmpDir, "Team Prompts")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	entry, err := m.AddPath(dir)
	if err != nil {
		t.Fatalf("AddPath() error = %v", err)
	}
	if entry.Name != "team-prompts" || entry.Dir != dir || entry.Kind() != "local" {
		t.Errorf("AddPath() = %+v", entry)
	}
	if entry.AddedAt != "2025-02-01T09:30:00Z" {
		t.Errorf("AddedAt = %q", entry.AddedAt)
	}

	got, err := m.Get("team-prompts")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Path != dir {
		t.Errorf("Get().Path = %q, want %q", got.Path, dir)
	}

	if _, err := m.AddPath(dir); !errors.Is(err, ErrNameCollision) {
		t.Errorf("second AddPath() error = %v, want ErrNameCollision", err)
	}
	if _, err := m.AddPath(dir, WithName("other")); err != nil {
		t.Errorf("AddPath() with new name error = %v", err)
	}

	entries, err := m.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "other" || entries[1].Name != "team-prompts" {
		t.Errorf("List() = %+v, want other, team-prompts", entries)
	}

	if err := m.Remove("team-prompts"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Remove() touched the local directory: %v", err)
	}
	if _, err := m.Get("team-prompts"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Remove error = %v, want ErrNotFound", err)
	}
}

func TestManager_AddPath_Errors(t *testing.T) {
	m, tmpDir := newTestManager(t)

	file := filepath.Join(tmpDir, "file.md")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddPath(file); !errors.Is(err, ErrNotDirectory) {
		t.Errorf("AddPath(file) error = %v, want ErrNotDirectory", err)
	}
	if _, err := m.AddPath(filepath.Join(tmpDir, "missing")); err == nil {
		t.Error("AddPath(missing) expected error")
	}
	if _, err := m.AddPath(tmpDir, WithName(content.SourceName)); !errors.Is(err, ErrInvalidName) {
		t.Errorf("AddPath(builtin) error = %v, want ErrInvalidName", err)
	}
	if _, err := m.AddPath(tmpDir, WithName("Bad_Name")); !errors.Is(err, ErrInvalidName) {
		t.Errorf("AddPath(Bad_Name) error = %v, want ErrInvalidName", err)
	}
}

func TestManager_NotFound(t *testing.T) {
	m, _ := newTestManager(t)

	if err := m.Remove("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove() error = %v, want ErrNotFound", err)
	}
	if _, err := m.Update(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
	updated, err := m.Update(context.Background(), "")
	if err != nil || len(updated) != 0 {
		t.Errorf("Update(\"\") = %v, %v; want nothing", updated, err)
	}
}

func TestManager_Add_InvalidURL(t *testing.T) {
	m, _ := newTestManager(t)
	if _, err := m.Add(context.Background(), "github.com/user/repo"); err == nil {
		t.Error("Add() expected error for URL without scheme")
	}
}

func TestManager_Git_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	m, tmpDir := newTestManager(t)
	repoDir := filepath.Join(tmpDir, "team-content")
	createLocalGitRepo(t, repoDir)

	entry, err := m.Add(ctx, "file://"+repoDir)
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if entry.Name != "team-content" || entry.Kind() != "git" {
		t.Errorf("Add() = %+v", entry)
	}
	if _, err := os.Stat(filepath.Join(entry.Dir, "prompts", "hello.md")); err != nil {
		t.Errorf("clone missing content: %v", err)
	}

	if _, err := m.Add(ctx, "file://"+repoDir); !errors.Is(err, ErrNameCollision) {
		t.Errorf("second Add() error = %v, want ErrNameCollision", err)
	}

	updated, err := m.Update(ctx, "")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(updated) != 1 || updated[0].Name != "team-content" {
		t.Fatalf("Update() = %v", updated)
	}
	if updated[0].Changed() || len(updated[0].To) != 40 {
		t.Errorf("Update() on an unchanged remote = %+v", updated[0])
	}

	if err := m.Remove("team-content"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(entry.Dir); !os.IsNotExist(err) {
		t.Errorf("Remove() left clone at %s", entry.Dir)
	}
}

func TestContentSources(t *testing.T) {
	tmpDir := t.TempDir()
	local := filepath.Join(tmpDir, "local")
	if err := os.Mkdir(local, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Sources = map[string]config.SourceConfig{
		"zeta":    {Path: local},
		"alpha":   {Path: local},
		"missing": {URL: "https://example.com/missing.git"},
	}

	sources := ContentSources(cfg, filepath.Join(tmpDir, "cache"), nil)

	var names []string
	for _, s := range sources {
		names = append(names, s.Name)
	}
	if got := strings.Join(names, ","); got != "builtin,alpha,zeta" {
		t.Errorf("ContentSources() names = %s, want builtin,alpha,zeta", got)
	}
	if sources[1].Origin != local {
		t.Errorf("Origin = %q, want %q", sources[1].Origin, local)
	}
}

func createLocalGitRepo(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(dir, "prompts"), 0o755); err != nil {
		t.Fatal(err)
	}

	runGit := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %s failed: %v\nOutput: %s", strings.Join(args, " "), err, out)
		}
	}

	runGit("init")
	runGit("config", "user.email", "test@example.com")
	runGit("config", "user.name", "Test User")

	prompt := "---\nid: p-hello\ntitle: Hello\nslug: hello\n---\n\nSay hello.\n"
	if err := os.WriteFile(filepath.Join(dir, "prompts", "hello.md"), []byte(prompt), 0o644); err != nil {
		t.Fatal(err)
	}

	runGit("add", ".")
	runGit("commit", "-m", "initial commit")
}
