package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/ccdir/internal/catalog"
	"github.com/thoreinstein/ccdir/internal/config"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/export"
	"github.com/thoreinstein/ccdir/internal/resource"
	"github.com/thoreinstein/ccdir/internal/store"
)

func TestExport_JSONToStdout(t *testing.T) {
	useCatalog(t)

	var buf bytes.Buffer
	require.NoError(t, runExportWithWriter(testContext(t), &buf))
	b, err := export.Decode(buf.Bytes(), export.FormatJSON)
	require.NoError(t, err)
	assert.Len(t, b.Configs, 1)
	assert.Len(t, b.Prompts, 1)
	assert.Len(t, b.Tools, 2)
	assert.Equal(t, 4, b.Stats.TotalResources)
}

func TestExport_File(t *testing.T) {
	useCatalog(t)
	exportFormat = "yaml"
	exportOut = filepath.Join(t.TempDir(), "out", "catalog.yaml")

	var buf bytes.Buffer
	require.NoError(t, runExportWithWriter(testContext(t), &buf))
	assert.Contains(t, buf.String(), "Wrote yaml bundle")

	data, err := os.ReadFile(exportOut)
	require.NoError(t, err)
	b, err := export.Decode(data, export.FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "go-microservices", b.Configs[0].Slug)
}

func TestExport_MarkdownTreeLoadsBack(t *testing.T) {
	useCatalog(t)
	exportFormat = "markdown"
	exportOut = t.TempDir()

	require.NoError(t, runExportWithWriter(testContext(t), &bytes.Buffer{}))

	c, err := catalog.Load(context.Background(), nil, resource.Source{Name: "tree", FS: os.DirFS(exportOut)})
	require.NoError(t, err)
	assert.Empty(t, c.Problems())
	assert.Len(t, c.Categories(), 2)

	p, err := c.Prompt("code-review")
	require.NoError(t, err)
	assert.Equal(t, "Review this {{ language }} code for {{ focus }}:\n{{ code }}", p.Prompt)
	tool, err := c.Tool("ripgrep")
	require.NoError(t, err)
	assert.Equal(t, "Recursive grep.", tool.Description)
}

func TestExport_MarkdownNeedsDirectory(t *testing.T) {
	useCatalog(t)
	exportFormat = "md"

	err := runExportWithWriter(testContext(t), &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestExport_UnknownFormat(t *testing.T) {
	useCatalog(t)
	exportFormat = "xml"

	err := runExportWithWriter(testContext(t), &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, export.ErrUnknownFormat))
}

func TestExport_Database(t *testing.T) {
	useCatalog(t)
	exportDB = true
	exportDriver = "sqlite"
	exportDSN = filepath.Join(t.TempDir(), "db", "catalog.db")

	var buf bytes.Buffer
	require.NoError(t, runExportWithWriter(testContext(t), &buf))
	assert.Contains(t, buf.String(), "Saved 2 categories and 4 records to sqlite")

	s, err := store.Open(context.Background(), "sqlite", exportDSN)
	require.NoError(t, err)
	defer s.Close()
	n, err := s.Count(context.Background(), resource.TypeTool)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestExport_UnsupportedDriver(t *testing.T) {
	useCatalog(t)
	exportDB = true
	exportDriver = "oracle"

	err := runExportWithWriter(testContext(t), &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrUnsupportedDriver))
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestPublish_Filesystem(t *testing.T) {
	useCatalog(t)
	dir := t.TempDir()
	appConfig.Publish = config.PublishConfig{Driver: "fs", Directory: dir, Key: "site/catalog.json"}
	publishFormat = "toml"

	var buf bytes.Buffer
	require.NoError(t, runPublishWithWriter(testContext(t), &buf))
	url := strings.TrimSpace(buf.String())
	assert.True(t, strings.HasPrefix(url, "file://"), url)
	assert.True(t, strings.HasSuffix(url, "site/catalog.toml"), url)

	data, err := os.ReadFile(filepath.Join(dir, "site", "catalog.toml"))
	require.NoError(t, err)
	b, err := export.Decode(data, export.FormatTOML)
	require.NoError(t, err)
	assert.Len(t, b.Tools, 2)
}

func TestPublish_ExplicitKey(t *testing.T) {
	useCatalog(t)
	dir := t.TempDir()
	appConfig.Publish = config.PublishConfig{Driver: "fs", Directory: dir, Key: "catalog.json"}
	publishKey = "v2/bundle.json"

	require.NoError(t, runPublishWithWriter(testContext(t), &bytes.Buffer{}))
	assert.FileExists(t, filepath.Join(dir, "v2", "bundle.json"))
}

func TestPublish_RejectsMarkdown(t *testing.T) {
	useCatalog(t)
	publishFormat = "markdown"

	err := runPublishWithWriter(testContext(t), &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestNew_ScaffoldsLoadableFiles(t *testing.T) {
	useCatalog(t)
	newDir = t.TempDir()
	newCategory = "backend"
	newAuthor = "Jane Doe"

	tests := []struct {
		kind string
		slug string
		want resource.ResourceType
	}{
		{"config", "rust-cli", resource.TypeClaudeMd},
		{"prompt", "explain-diff", resource.TypePrompt},
		{"tool", "jq", resource.TypeTool},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			var buf bytes.Buffer
			path, err := runNewWithWriter(&buf, tt.kind, tt.slug)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(newDir, resource.Dir(tt.want), tt.slug+".md"), path)
			assert.Contains(t, buf.String(), "Created")
		})
	}

	c, err := catalog.Load(context.Background(), nil, resource.Source{Name: "scratch", FS: os.DirFS(newDir)})
	require.NoError(t, err)
	assert.Empty(t, c.Problems())

	cfg, err := c.Config("rust-cli")
	require.NoError(t, err)
	assert.Equal(t, "Rust Cli", cfg.Title)
	assert.Equal(t, "Jane Doe", cfg.Author.Name)
	assert.Contains(t, cfg.Content, "## Project overview")
	assert.Len(t, cfg.ID, 36)

	p, err := c.Prompt("explain-diff")
	require.NoError(t, err)
	assert.Contains(t, p.Prompt, "{{ subject }}")
	_, ok := p.Variable("subject")
	assert.True(t, ok)

	tool, err := c.Tool("jq")
	require.NoError(t, err)
	assert.Equal(t, resource.ToolCLI, tool.Type)
}

func TestNew_Errors(t *testing.T) {
	useCatalog(t)
	newDir = t.TempDir()

	_, err := runNewWithWriter(&bytes.Buffer{}, "widget", "x")
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))

	_, err = runNewWithWriter(&bytes.Buffer{}, "tool", "Bad Slug")
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))

	_, err = runNewWithWriter(&bytes.Buffer{}, "tool", "jq")
	require.NoError(t, err)
	_, err = runNewWithWriter(&bytes.Buffer{}, "tool", "jq")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestTitleFromSlug(t *testing.T) {
	assert.Equal(t, "Go Microservices", titleFromSlug("go-microservices"))
	assert.Equal(t, "X", titleFromSlug("x"))
}

func TestValidate_BuiltinCorpus(t *testing.T) {
	prevLoader, prevConfig := catalogLoader, appConfig
	t.Cleanup(func() {
		catalogLoader, appConfig = prevLoader, prevConfig
		resetFlags()
	})
	appConfig = config.Default()
	validateJSON = true

	var buf bytes.Buffer
	require.NoError(t, runValidateWithWriter(testContext(t), &buf))

	var out struct {
		Valid  bool `json:"valid"`
		Errors int  `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.True(t, out.Valid)
	assert.Zero(t, out.Errors)
}

func TestValidate_Errors(t *testing.T) {
	bad := testContent()
	bad.Configs[0].Tags = nil
	useCatalog(t, bad)

	var buf bytes.Buffer
	err := runValidateWithWriter(testContext(t), &buf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrValidationFailed))
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
	assert.Contains(t, buf.String(), "tags")
}

func TestValidate_StrictWarnings(t *testing.T) {
	warn := testContent()
	warn.Tools[1].LastUpdated = ""
	useCatalog(t, warn)

	require.NoError(t, runValidateWithWriter(testContext(t), &bytes.Buffer{}))

	validateStrict = true
	err := runValidateWithWriter(testContext(t), &bytes.Buffer{})
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestLoadCatalog_LoaderFailure(t *testing.T) {
	useCatalog(t)
	catalogLoader = func(*config.Config, *slog.Logger) catalog.LoadFunc {
		return func(context.Context) (*catalog.Catalog, error) {
			return nil, errors.New("disk on fire")
		}
	}

	_, err := loadCatalog(testContext(t))
	require.Error(t, err)
	assert.Equal(t, errors.ExitSystem, errors.ExitCode(err))
}
