package resource

import (
	"bytes"
	"context"
	"io/fs"
	"log/slog"
	"path"
	"runtime"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/logging"
	"github.com/thoreinstein/ccdir/pkg/fileutil"
	"github.com/thoreinstein/ccdir/pkg/frontmatter"
)

// Layout of a content tree.
const (
	CategoriesFile = "categories.yaml"
	DirClaudeMd    = "claude-configs"
	DirPrompts     = "prompts"
	DirTools       = "tools"
)

// Dir returns the content directory holding records of type t.
func Dir(t ResourceType) string {
	switch t {
	case TypeClaudeMd:
		return DirClaudeMd
	case TypePrompt:
		return DirPrompts
	case TypeTool:
		return DirTools
	}
	return ""
}

// Source is one content tree to scan.
type Source struct {
	// Name identifies the source in logs and problems ("builtin" for the
	// embedded corpus).
	Name string

	// Origin is where the tree came from (a git URL or directory path).
	Origin string

	// FS is rooted at the content tree.
	FS fs.FS
}

// Problem records a content file that could not be loaded.
type Problem struct {
	Source string `json:"source"`
	Path   string `json:"path"`
	Err    error  `json:"-"`
}

func (p Problem) Error() string {
	return p.Source + ":" + p.Path + ": " + p.Err.Error()
}

func (p Problem) Unwrap() error {
	return p.Err
}

// Content is everything found in one source, in file-name order.
type Content struct {
	Source     string
	Categories []Category
	Configs    []ClaudeMdConfig
	Prompts    []PromptTemplate
	Tools      []Tool
	Problems   []Problem

	// DerivedSlugs lists records whose frontmatter had no slug.
	DerivedSlugs []DerivedSlug
}

// DerivedSlug records a slug taken from a file name because the
// frontmatter did not declare one.
type DerivedSlug struct {
	Source string
	Type   ResourceType
	Path   string
	Slug   string
}

// Scanner loads records from content trees.
type Scanner struct {
	logger *slog.Logger

	mu       sync.Mutex
	problems []Problem
}

// NewScanner creates a Scanner. A nil logger discards output.
func NewScanner(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &Scanner{logger: logger}
}

// Problems returns every problem recorded by this scanner so far.
func (s *Scanner) Problems() []Problem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Problem(nil), s.problems...)
}

func (s *Scanner) record(c *Content, rel string, err error) {
	p := Problem{Source: c.Source, Path: rel, Err: err}
	s.logger.Warn("skipping content file",
		"source", c.Source,
		"path", rel,
		"error", err)
	c.Problems = append(c.Problems, p)

	s.mu.Lock()
	s.problems = append(s.problems, p)
	s.mu.Unlock()
}

// Scan reads one content tree. Missing kind directories are not errors;
// unreadable or malformed files are skipped and recorded as problems.
func (s *Scanner) Scan(src Source) Content {
	c := Content{Source: src.Name}

	s.scanCategories(src.FS, &c)

	for _, rel := range s.markdownFiles(src.FS, DirClaudeMd, &c) {
		var cfg ClaudeMdConfig
		body, err := parseFile(src.FS, rel, &cfg)
		if err != nil {
			s.record(&c, rel, err)
			continue
		}
		if b := frontmatter.NormalizeBody(body); b != "" {
			cfg.Content = b
		}
		cfg.Slug = slugFor(&c, TypeClaudeMd, rel, cfg.Slug)
		c.Configs = append(c.Configs, cfg)
	}

	for _, rel := range s.markdownFiles(src.FS, DirPrompts, &c) {
		var p PromptTemplate
		body, err := parseFile(src.FS, rel, &p)
		if err != nil {
			s.record(&c, rel, err)
			continue
		}
		if b := frontmatter.NormalizeBody(body); b != "" {
			p.Prompt = b
		}
		p.Slug = slugFor(&c, TypePrompt, rel, p.Slug)
		c.Prompts = append(c.Prompts, p)
	}

	for _, rel := range s.markdownFiles(src.FS, DirTools, &c) {
		var t Tool
		body, err := parseFile(src.FS, rel, &t)
		if err != nil {
			s.record(&c, rel, err)
			continue
		}
		if b := frontmatter.NormalizeBody(body); b != "" {
			t.Description = b
		}
		t.Slug = slugFor(&c, TypeTool, rel, t.Slug)
		c.Tools = append(c.Tools, t)
	}

	s.logger.Debug("scanned source",
		"source", src.Name,
		"categories", len(c.Categories),
		"configs", len(c.Configs),
		"prompts", len(c.Prompts),
		"tools", len(c.Tools),
		"problems", len(c.Problems))

	return c
}

// ScanAll scans multiple sources concurrently with a worker pool limited to
// GOMAXPROCS. Results are returned in source order.
func (s *Scanner) ScanAll(ctx context.Context, sources []Source) ([]Content, error) {
	if len(sources) == 0 {
		return nil, nil
	}

	workers := min(runtime.GOMAXPROCS(0), len(sources))

	work := make(chan int, len(sources))
	results := make([]Content, len(sources))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				if ctx.Err() != nil {
					continue
				}
				results[i] = s.Scan(sources[i])
			}
		}()
	}

	for i := range sources {
		work <- i
	}
	close(work)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning sources")
	}
	return results, nil
}

type categoriesFile struct {
	Categories []Category `yaml:"categories"`
}

func (s *Scanner) scanCategories(fsys fs.FS, c *Content) {
	data, err := fileutil.ReadFSWithLimit(fsys, CategoriesFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.record(c, CategoriesFile, err)
		}
		return
	}

	var file categoriesFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		s.record(c, CategoriesFile, errors.Wrap(errors.Join(errors.ErrInvalidContent, err), "decoding categories"))
		return
	}
	c.Categories = file.Categories
}

// markdownFiles lists the *.md files directly under dir, skipping README.md
// and dotfiles. fs.ReadDir returns entries sorted by name.
func (s *Scanner) markdownFiles(fsys fs.FS, dir string, c *Content) []string {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.record(c, dir, err)
		}
		return nil
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".md") || strings.HasPrefix(name, ".") || strings.EqualFold(name, "README.md") {
			continue
		}
		files = append(files, path.Join(dir, name))
	}
	return files
}

func parseFile[T any](fsys fs.FS, rel string, matter *T) ([]byte, error) {
	data, err := fileutil.ReadFSWithLimit(fsys, rel)
	if err != nil {
		return nil, err
	}
	body, err := frontmatter.MustParse(bytes.NewReader(data), matter)
	if err != nil {
		return nil, errors.Join(errors.ErrInvalidContent, err)
	}
	return body, nil
}

// slugFor falls back to the file name without extension and records the
// fallback on c.
func slugFor(c *Content, t ResourceType, rel, slug string) string {
	if slug != "" {
		return slug
	}
	slug = strings.TrimSuffix(path.Base(rel), ".md")
	c.DerivedSlugs = append(c.DerivedSlugs, DerivedSlug{Source: c.Source, Type: t, Path: rel, Slug: slug})
	return slug
}
