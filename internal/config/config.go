package config

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/paths"
	"github.com/thoreinstein/ccdir/pkg/fileutil"
)

// EnvPrefix is the prefix for environment overrides (CCDIR_SERVER_ADDR, ...).
const EnvPrefix = "CCDIR"

// Config represents the top-level configuration structure.
type Config struct {
	Version int                     `mapstructure:"version" yaml:"version" json:"version"`
	Sources map[string]SourceConfig `mapstructure:"sources" yaml:"sources,omitempty" json:"sources,omitempty"`
	Server  ServerConfig            `mapstructure:"server" yaml:"server" json:"server"`
	Render  RenderConfig            `mapstructure:"render" yaml:"render" json:"render"`
	Store   StoreConfig             `mapstructure:"store" yaml:"store" json:"store"`
	Publish PublishConfig           `mapstructure:"publish" yaml:"publish" json:"publish"`
}

// SourceConfig describes an additional content tree. Exactly one of URL
// (a git remote, cloned into the cache) or Path (a local directory) is set.
type SourceConfig struct {
	URL     string `mapstructure:"url" yaml:"url,omitempty" json:"url,omitempty"`
	Path    string `mapstructure:"path" yaml:"path,omitempty" json:"path,omitempty"`
	Ref     string `mapstructure:"ref" yaml:"ref,omitempty" json:"ref,omitempty"`
	AddedAt string `mapstructure:"added_at" yaml:"added_at,omitempty" json:"added_at,omitempty"`
}

// IsLocal reports whether the source is a plain directory.
func (s SourceConfig) IsLocal() bool {
	return s.Path != ""
}

// ServerConfig configures `ccdir serve`.
type ServerConfig struct {
	Addr        string   `mapstructure:"addr" yaml:"addr" json:"addr"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins,omitempty" json:"cors_origins,omitempty"`
	Watch       bool     `mapstructure:"watch" yaml:"watch" json:"watch"`
}

// RenderConfig configures terminal markdown rendering.
type RenderConfig struct {
	Style string `mapstructure:"style" yaml:"style" json:"style"`
	Width int    `mapstructure:"width" yaml:"width" json:"width"`
}

// StoreConfig selects the SQL database `ccdir export --db` writes to.
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver" json:"driver"`
	DSN    string `mapstructure:"dsn" yaml:"dsn" json:"dsn"`
}

// PublishConfig selects the blob store `ccdir publish` uploads to.
type PublishConfig struct {
	Driver    string `mapstructure:"driver" yaml:"driver" json:"driver"`
	Directory string `mapstructure:"directory" yaml:"directory,omitempty" json:"directory,omitempty"`
	Bucket    string `mapstructure:"bucket" yaml:"bucket,omitempty" json:"bucket,omitempty"`
	Region    string `mapstructure:"region" yaml:"region,omitempty" json:"region,omitempty"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	Key       string `mapstructure:"key" yaml:"key" json:"key"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version: 1,
		Server:  ServerConfig{Addr: ":8080"},
		Render:  RenderConfig{Style: "auto", Width: 100},
		Store:   StoreConfig{Driver: "sqlite", DSN: paths.DefaultDatabase()},
		Publish: PublishConfig{Driver: "fs", Directory: paths.PublishDir(), Key: "catalog.json"},
	}
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	// godotenv never overrides variables already set; a missing .env is normal.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	d := Default()
	viper.SetDefault("version", d.Version)
	viper.SetDefault("server.addr", d.Server.Addr)
	viper.SetDefault("server.watch", d.Server.Watch)
	viper.SetDefault("render.style", d.Render.Style)
	viper.SetDefault("render.width", d.Render.Width)
	viper.SetDefault("store.driver", d.Store.Driver)
	viper.SetDefault("store.dsn", d.Store.DSN)
	viper.SetDefault("publish.driver", d.Publish.Driver)
	viper.SetDefault("publish.directory", d.Publish.Directory)
	viper.SetDefault("publish.key", d.Publish.Key)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file and a missing file
// is an error. If path is empty, the default locations are searched and a
// missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load: defaults apply.
		case errors.Is(err, fs.ErrNotExist) || errors.As(err, &notFound):
			return nil, errors.Wrapf(errors.ErrNotFound, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	cfg, err := Current()
	if err != nil {
		return nil, err
	}
	if errs := Validate(cfg); len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(errs...), "validating config")
	}
	return cfg, nil
}

// Current unmarshals the live Viper state into a Config without validating.
func Current() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}
	return &cfg, nil
}

// FilePath returns the config file in use, or the default location when
// none was read.
func FilePath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return paths.ConfigFile()
}

// Save writes cfg to path atomically, creating the parent directory.
func Save(cfg *Config, path string) error {
	if errs := Validate(cfg); len(errs) > 0 {
		return errors.Wrap(errors.Join(errs...), "refusing to save invalid config")
	}
	if err := paths.EnsureDir(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	if err := fileutil.AtomicWriteYAML(path, cfg, 0o600); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return nil
}
