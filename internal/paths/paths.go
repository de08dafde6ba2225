package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName names the per-application subdirectory under each XDG root.
const AppName = "ccdir"

// InstructionsFile is the project file a Claude.md config is written to.
const InstructionsFile = "CLAUDE.md"

// ErrHomeDirNotFound indicates the user's home directory could not be determined.
var ErrHomeDirNotFound = errors.New("home directory not found")

// DefaultDirPerm is the permission for directories ccdir creates.
const DefaultDirPerm = 0o755

// EnsureDir creates path and any parents. A zero perm uses DefaultDirPerm.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// ResolveHome returns the user's home directory.
func ResolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(ErrHomeDirNotFound, err.Error())
	}
	return home, nil
}

// ConfigHome returns the XDG config home directory.
func ConfigHome() string {
	return xdg.ConfigHome
}

// DataHome returns the XDG data home directory.
func DataHome() string {
	return xdg.DataHome
}

// CacheHome returns the XDG cache home directory.
func CacheHome() string {
	return xdg.CacheHome
}

// ConfigDir returns <ConfigHome>/ccdir.
func ConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// ConfigFile returns the default config file path.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// SourcesCacheDir returns the directory holding cloned content sources.
func SourcesCacheDir() string {
	return filepath.Join(CacheHome(), AppName, "sources")
}

// PublishDir returns the default directory for the filesystem blob store.
func PublishDir() string {
	return filepath.Join(DataHome(), AppName, "publish")
}

// BackupsDir returns the root directory for file snapshots taken before
// ccdir overwrites a file.
func BackupsDir() string {
	return filepath.Join(DataHome(), AppName, "backups")
}

// DefaultDatabase returns the default sqlite database path for exports.
func DefaultDatabase() string {
	return filepath.Join(DataHome(), AppName, "ccdir.db")
}

// InstructionsPath returns <projectRoot>/CLAUDE.md, or "" for an empty root.
func InstructionsPath(projectRoot string) string {
	if projectRoot == "" {
		return ""
	}
	return filepath.Join(projectRoot, InstructionsFile)
}
