// Package source manages the content sources layered over the built-in
// corpus: git repositories cloned into the cache and local directories, all
// registered in the config file.
package source

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/thoreinstein/ccdir/content"
	"github.com/thoreinstein/ccdir/internal/config"
	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/git"
	"github.com/thoreinstein/ccdir/internal/logging"
	"github.com/thoreinstein/ccdir/internal/paths"
	"github.com/thoreinstein/ccdir/internal/resource"
)

// Sentinel errors for source operations.
var (
	ErrNotFound           = errors.New("source not found")
	ErrNameCollision      = errors.New("source with this name already exists")
	ErrInvalidName        = errors.New("invalid source name")
	ErrNotDirectory       = errors.New("source path is not a directory")
	ErrCacheCleanupFailed = errors.New("cache cleanup failed")
)

// Entry is a registered source.
type Entry struct {
	Name string `json:"name"`
	config.SourceConfig
	// Dir is where the content tree lives on disk.
	Dir string `json:"dir"`
}

// Kind is "git" or "local".
func (e Entry) Kind() string {
	if e.IsLocal() {
		return "local"
	}
	return "git"
}

// Origin is the URL or path the source was added from.
func (e Entry) Origin() string {
	if e.IsLocal() {
		return e.Path
	}
	return e.URL
}

// Option configures a Manager.
type Option func(*Manager)

// WithCacheDir overrides the clone cache directory.
func WithCacheDir(dir string) Option {
	return func(m *Manager) { m.cacheDir = dir }
}

// WithOutput sends git progress output to w.
func WithOutput(w io.Writer) Option {
	return func(m *Manager) { m.out = w }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// AddOption configures Add and AddPath.
type AddOption func(*addOptions)

type addOptions struct {
	name string
	ref  string
}

// WithName overrides the source name derived from the URL or path.
func WithName(name string) AddOption {
	return func(o *addOptions) { o.name = name }
}

// WithRef checks out a branch or tag instead of the default branch.
func WithRef(ref string) AddOption {
	return func(o *addOptions) { o.ref = ref }
}

// Manager adds, lists, updates and removes content sources.
type Manager struct {
	configPath string
	cacheDir   string
	out        io.Writer
	logger     *slog.Logger
	now        func() time.Time
}

// NewManager creates a manager persisting to the config file at
// configPath.
func NewManager(configPath string, opts ...Option) *Manager {
	m := &Manager{
		configPath: configPath,
		cacheDir:   paths.SourcesCacheDir(),
		logger:     logging.NewDiscard(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add shallow-clones a git repository and registers it.
func (m *Manager) Add(ctx context.Context, url string, opts ...AddOption) (*Entry, error) {
	options := applyAdd(opts)

	if err := git.ValidateURL(url); err != nil {
		return nil, err
	}

	name := options.name
	if name == "" {
		name = deriveName(url)
	}
	cfg, err := m.prepareAdd(name)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(m.cacheDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating cache directory")
	}
	dest := filepath.Join(m.cacheDir, name)

	m.logger.Info("cloning source", "name", name, "url", logging.MaskURL(url), "ref", options.ref)
	if err := git.Clone(ctx, url, dest, git.CloneOptions{Depth: 1, Ref: options.ref, Output: m.out}); err != nil {
		if cleanupErr := os.RemoveAll(dest); cleanupErr != nil {
			return nil, errors.Wrapf(err, "cloning source (cleanup also failed: %v)", cleanupErr)
		}
		return nil, errors.Wrap(err, "cloning source")
	}

	src := config.SourceConfig{URL: url, Ref: options.ref, AddedAt: m.stamp()}
	if err := m.register(cfg, name, src); err != nil {
		_ = os.RemoveAll(dest)
		return nil, err
	}
	return &Entry{Name: name, SourceConfig: src, Dir: dest}, nil
}

// AddPath registers a local content directory. Nothing is copied; edits to
// the directory show up on the next load.
func (m *Manager) AddPath(dir string, opts ...AddOption) (*Entry, error) {
	options := applyAdd(opts)

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", dir)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "checking %s", abs)
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(ErrNotDirectory, "%s", abs)
	}

	name := options.name
	if name == "" {
		name = deriveName(abs)
	}
	cfg, err := m.prepareAdd(name)
	if err != nil {
		return nil, err
	}

	src := config.SourceConfig{Path: abs, AddedAt: m.stamp()}
	if err := m.register(cfg, name, src); err != nil {
		return nil, err
	}
	return &Entry{Name: name, SourceConfig: src, Dir: abs}, nil
}

// List returns the registered sources sorted by name.
func (m *Manager) List() ([]Entry, error) {
	cfg, err := m.loadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "loading config")
	}
	return Entries(cfg, m.cacheDir), nil
}

// Get returns one source by name.
func (m *Manager) Get(name string) (*Entry, error) {
	cfg, err := m.loadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "loading config")
	}
	src, ok := cfg.Sources[name]
	if !ok {
		return nil, errors.WithDetailf(ErrNotFound, "source %q not found", name)
	}
	return &Entry{Name: name, SourceConfig: src, Dir: Dir(name, src, m.cacheDir)}, nil
}

// Remove unregisters a source. The clone of a git source is deleted after
// the config is saved; local directories are never touched.
func (m *Manager) Remove(name string) error {
	cfg, err := m.loadConfig()
	if err != nil {
		return errors.Wrap(err, "loading config")
	}
	src, ok := cfg.Sources[name]
	if !ok {
		return errors.WithDetailf(ErrNotFound, "source %q not found", name)
	}

	delete(cfg.Sources, name)
	if err := config.Save(cfg, m.configPath); err != nil {
		return errors.Wrap(err, "saving config")
	}

	if src.IsLocal() {
		return nil
	}
	dir := Dir(name, src, m.cacheDir)
	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrapf(ErrCacheCleanupFailed, "config updated but failed to remove cached directory %q: %v", dir, err)
	}
	return nil
}

// Pulled records the commits of a git source before and after Update.
type Pulled struct {
	Name string `json:"name"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Changed reports whether the pull moved the checkout.
func (p Pulled) Changed() bool {
	return p.From != p.To
}

// Update pulls the named git source, or every git source when name is
// empty. Local sources are skipped. On error the sources pulled so far are
// returned with it.
func (m *Manager) Update(ctx context.Context, name string) ([]Pulled, error) {
	entries, err := m.List()
	if err != nil {
		return nil, err
	}

	if name != "" {
		i := slices.IndexFunc(entries, func(e Entry) bool { return e.Name == name })
		if i < 0 {
			return nil, errors.WithDetailf(ErrNotFound, "source %q not found", name)
		}
		entries = entries[i : i+1]
	}

	var pulled []Pulled
	for _, e := range entries {
		if e.IsLocal() {
			m.logger.Debug("skipping local source", "name", e.Name)
			continue
		}
		p, err := m.pull(ctx, e)
		if err != nil {
			return pulled, errors.Wrapf(err, "updating source %q", e.Name)
		}
		m.logger.Info("updated source", "name", e.Name, "from", p.From, "to", p.To)
		pulled = append(pulled, p)
	}
	return pulled, nil
}

func (m *Manager) pull(ctx context.Context, e Entry) (Pulled, error) {
	if err := git.ValidateRemote(e.Dir); err != nil {
		return Pulled{}, errors.WithDetailf(err, "the cached clone is missing; remove and add %s again", e.URL)
	}
	from, err := git.Head(ctx, e.Dir)
	if err != nil {
		return Pulled{}, err
	}
	if err := git.Pull(ctx, e.Dir, m.out); err != nil {
		return Pulled{}, err
	}
	to, err := git.Head(ctx, e.Dir)
	if err != nil {
		return Pulled{}, err
	}
	return Pulled{Name: e.Name, From: from, To: to}, nil
}

func applyAdd(opts []AddOption) addOptions {
	var o addOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (m *Manager) prepareAdd(name string) (*config.Config, error) {
	if name == content.SourceName || !config.ValidSourceName(name) {
		return nil, errors.WithDetailf(ErrInvalidName,
			"name %q must be lowercase alphanumeric with hyphens and not %q", name, content.SourceName)
	}
	cfg, err := m.loadConfig()
	if err != nil {
		return nil, errors.Wrap(err, "loading config")
	}
	if existing, ok := cfg.Sources[name]; ok {
		origin := existing.URL
		if existing.IsLocal() {
			origin = existing.Path
		}
		return nil, errors.WithDetailf(ErrNameCollision,
			"name %q is already used by %s; use --name to pick another", name, origin)
	}
	return cfg, nil
}

func (m *Manager) register(cfg *config.Config, name string, src config.SourceConfig) error {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]config.SourceConfig)
	}
	cfg.Sources[name] = src
	if err := config.Save(cfg, m.configPath); err != nil {
		return errors.Wrap(err, "saving config")
	}
	return nil
}

func (m *Manager) stamp() string {
	return m.now().UTC().Format(time.RFC3339)
}

// loadConfig reads the manager's config file, or the defaults when it does
// not exist yet.
func (m *Manager) loadConfig() (*config.Config, error) {
	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		return config.Default(), nil
	}
	config.Init()
	return config.Load(m.configPath)
}

// deriveName turns the last segment of a URL or path into a source name.
func deriveName(origin string) string {
	if strings.HasPrefix(origin, "git@") {
		if i := strings.LastIndex(origin, ":"); i != -1 {
			origin = origin[i+1:]
		}
	}
	name := strings.ToLower(filepath.Base(strings.TrimRight(origin, "/")))
	name = strings.TrimSuffix(name, ".git")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	parts := strings.FieldsFunc(b.String(), func(r rune) bool { return r == '-' })
	return strings.Join(parts, "-")
}

// Dir returns the content directory of a source.
func Dir(name string, src config.SourceConfig, cacheDir string) string {
	if src.IsLocal() {
		return src.Path
	}
	return filepath.Join(cacheDir, name)
}

// Entries lists the sources of cfg sorted by name.
func Entries(cfg *config.Config, cacheDir string) []Entry {
	entries := make([]Entry, 0, len(cfg.Sources))
	for name, src := range cfg.Sources {
		entries = append(entries, Entry{Name: name, SourceConfig: src, Dir: Dir(name, src, cacheDir)})
	}
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return entries
}

// ContentSources returns the trees to load: the built-in corpus first, then
// every registered source in name order. Sources whose directory is missing
// are logged and skipped.
func ContentSources(cfg *config.Config, cacheDir string, logger *slog.Logger) []resource.Source {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	sources := []resource.Source{{Name: content.SourceName, Origin: "embedded", FS: content.FS}}
	for _, e := range Entries(cfg, cacheDir) {
		info, err := os.Stat(e.Dir)
		if err != nil || !info.IsDir() {
			logger.Warn("skipping source with missing directory", "name", e.Name, "dir", e.Dir)
			continue
		}
		sources = append(sources, resource.Source{Name: e.Name, Origin: e.Origin(), FS: os.DirFS(e.Dir)})
	}
	return sources
}
