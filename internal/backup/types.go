package backup

import (
	"io/fs"
	"time"

	"github.com/thoreinstein/ccdir/internal/errors"
)

// ManifestVersion is the manifest format version.
const ManifestVersion = 1

// DefaultRetentionCount is the number of snapshots kept per scope.
const DefaultRetentionCount = 5

// Backup scopes.
const (
	ScopeConfig       = "config"
	ScopeInstructions = "instructions"
)

// Sentinel errors for backup operations.
var (
	// ErrNoBackupsFound indicates no backups exist for the scope.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates a stored file no longer matches the
	// hash in its manifest.
	ErrBackupCorrupted = errors.New("backup corrupted")

	// ErrInvalidScope indicates a scope name that is empty or not a single
	// path segment.
	ErrInvalidScope = errors.New("invalid backup scope")
)

// BackupManifest describes one snapshot. It is stored as manifest.json in
// the snapshot directory.
type BackupManifest struct {
	Version   int          `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	Scope     string       `json:"scope"`
	Files     []BackupFile `json:"files"`

	// ToolVersion is the ccdir version that took the snapshot.
	ToolVersion string `json:"ccdir_version"`

	// ID names the snapshot directory; it is not stored in the manifest.
	ID string `json:"-"`
}

// BackupFile describes one copied file.
type BackupFile struct {
	// OriginalPath is the absolute path the file is restored to.
	OriginalPath string `json:"original_path"`

	// RelPath is the location inside the snapshot directory.
	RelPath    string      `json:"rel_path"`
	SHA256Hash string      `json:"sha256_hash"`
	Mode       fs.FileMode `json:"mode"`
}
