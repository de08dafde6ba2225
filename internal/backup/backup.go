package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/thoreinstein/ccdir/internal/errors"
	"github.com/thoreinstein/ccdir/internal/paths"
	"github.com/thoreinstein/ccdir/pkg/fileutil"
)

// Version is recorded in every manifest. The CLI sets it at startup.
var Version = "dev"

// idLayout sorts lexically in creation order and holds no colons.
const idLayout = "20060102T150405.000000"

// Manager handles backup creation, restoration, and pruning.
type Manager struct {
	rootDir        string
	retentionCount int
	now            func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the root backup directory.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		m.rootDir = dir
	}
}

// WithRetentionCount sets the number of backups to retain per scope.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retentionCount = n
		}
	}
}

// NewManager creates a new backup Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir:        paths.BackupsDir(),
		retentionCount: DefaultRetentionCount,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Backup copies the given files into a new snapshot for scope and prunes
// snapshots beyond the retention count. Missing paths are skipped; if none
// exist, no snapshot is taken and nil is returned with no error.
func (m *Manager) Backup(scope string, files []string) (*BackupManifest, error) {
	if err := validScope(scope); err != nil {
		return nil, err
	}

	var existing []string
	for _, p := range files {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Wrapf(err, "resolving %s", p)
		}
		info, err := os.Stat(abs)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", p)
		}
		if info.IsDir() {
			return nil, errors.Newf("%s is a directory", p)
		}
		existing = append(existing, abs)
	}
	if len(existing) == 0 {
		return nil, nil
	}

	id, dir, err := m.reserve(scope)
	if err != nil {
		return nil, err
	}

	manifest := &BackupManifest{
		Version:     ManifestVersion,
		CreatedAt:   m.now().UTC(),
		Scope:       scope,
		ToolVersion: Version,
		ID:          id,
	}
	for _, src := range existing {
		bf, err := backupFile(src, dir)
		if err != nil {
			_ = os.RemoveAll(dir)
			return nil, errors.Wrapf(err, "backing up %s", src)
		}
		manifest.Files = append(manifest.Files, *bf)
	}

	if err := fileutil.AtomicWriteJSON(filepath.Join(dir, "manifest.json"), manifest); err != nil {
		_ = os.RemoveAll(dir)
		return nil, errors.Wrap(err, "writing manifest")
	}

	if err := m.Prune(scope, m.retentionCount); err != nil {
		return manifest, errors.Wrap(err, "pruning old backups")
	}
	return manifest, nil
}

// reserve creates a fresh snapshot directory. IDs carry microseconds; a
// clash within the same microsecond moves to the next one.
func (m *Manager) reserve(scope string) (string, string, error) {
	if err := os.MkdirAll(m.scopeDir(scope), 0o700); err != nil {
		return "", "", errors.Wrap(err, "creating backup directory")
	}
	t := m.now()
	for range 100 {
		id := t.UTC().Format(idLayout)
		dir := m.backupPath(scope, id)
		err := os.Mkdir(dir, 0o700)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", errors.Wrap(err, "creating backup directory")
		}
		t = t.Add(time.Microsecond)
	}
	return "", "", errors.New("could not allocate a backup id")
}

func backupFile(src, backupPath string) (*BackupFile, error) {
	relPath := generateRelPath(src)
	dst := filepath.Join(backupPath, relPath)

	if err := os.MkdirAll(filepath.Dir(dst), 0o700); err != nil {
		return nil, errors.Wrap(err, "creating parent directory")
	}

	hash, mode, err := copyFile(src, dst)
	if err != nil {
		return nil, err
	}

	return &BackupFile{
		OriginalPath: src,
		RelPath:      relPath,
		SHA256Hash:   hash,
		Mode:         mode,
	}, nil
}

// Restore copies the files of a snapshot back to their original locations.
// Every file's hash is verified before anything is written.
func (m *Manager) Restore(scope, backupID string) (*BackupManifest, error) {
	manifest, err := m.Get(scope, backupID)
	if err != nil {
		return nil, err
	}

	backupPath := m.backupPath(scope, backupID)
	for _, bf := range manifest.Files {
		hash, err := hashFile(filepath.Join(backupPath, bf.RelPath))
		if err != nil {
			return nil, errors.Wrapf(err, "reading backup file %s", bf.RelPath)
		}
		if hash != bf.SHA256Hash {
			return nil, errors.Wrapf(ErrBackupCorrupted, "file %s hash mismatch", bf.RelPath)
		}
	}

	for _, bf := range manifest.Files {
		if err := os.MkdirAll(filepath.Dir(bf.OriginalPath), 0o755); err != nil {
			return nil, errors.Wrapf(err, "creating directory for %s", bf.OriginalPath)
		}
		if _, _, err := copyFile(filepath.Join(backupPath, bf.RelPath), bf.OriginalPath); err != nil {
			return nil, errors.Wrapf(err, "restoring %s", bf.OriginalPath)
		}
		if err := os.Chmod(bf.OriginalPath, bf.Mode); err != nil {
			return nil, errors.Wrapf(err, "setting permissions for %s", bf.OriginalPath)
		}
	}
	return manifest, nil
}

// Scopes returns the scopes that have a backup directory, sorted.
func (m *Manager) Scopes() ([]string, error) {
	entries, err := os.ReadDir(m.rootDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "reading backup directory")
	}
	var scopes []string
	for _, e := range entries {
		if e.IsDir() {
			scopes = append(scopes, e.Name())
		}
	}
	return scopes, nil
}

// List returns the snapshots of scope, newest first.
func (m *Manager) List(scope string) ([]BackupManifest, error) {
	if err := validScope(scope); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(m.scopeDir(scope))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	manifests := make([]BackupManifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.Get(scope, entry.Name())
		if err != nil {
			// Half-written snapshot.
			continue
		}
		manifests = append(manifests, *manifest)
	}

	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}

	slices.SortFunc(manifests, func(a, b BackupManifest) int {
		return strings.Compare(b.ID, a.ID)
	})
	return manifests, nil
}

// Prune removes the snapshots of scope beyond the newest keep.
func (m *Manager) Prune(scope string, keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}

	manifests, err := m.List(scope)
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil
		}
		return err
	}

	for i := keep; i < len(manifests); i++ {
		if err := os.RemoveAll(m.backupPath(scope, manifests[i].ID)); err != nil {
			return errors.Wrapf(err, "removing backup %s", manifests[i].ID)
		}
	}
	return nil
}

// Get returns the manifest for a specific backup.
func (m *Manager) Get(scope, backupID string) (*BackupManifest, error) {
	if err := validScope(scope); err != nil {
		return nil, err
	}
	if backupID == "" || !filepath.IsLocal(backupID) || strings.ContainsRune(backupID, filepath.Separator) {
		return nil, errors.Wrapf(ErrNoBackupsFound, "invalid backup id %q", backupID)
	}

	data, err := fileutil.ReadFileWithLimit(filepath.Join(m.backupPath(scope, backupID), "manifest.json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "backup %s not found", backupID)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest BackupManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}

	manifest.ID = backupID
	return &manifest, nil
}

func (m *Manager) backupPath(scope, backupID string) string {
	return filepath.Join(m.scopeDir(scope), backupID)
}

func (m *Manager) scopeDir(scope string) string {
	return filepath.Join(m.rootDir, scope)
}

func validScope(scope string) error {
	if scope == "" || !filepath.IsLocal(scope) || strings.ContainsAny(scope, `/\`) {
		return errors.Wrapf(ErrInvalidScope, "%q", scope)
	}
	return nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening file")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(err, "reading file")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyFile copies src to dst with src's permissions and returns the SHA256
// hash of the content.
func copyFile(src, dst string) (hash string, mode fs.FileMode, err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return "", 0, errors.Wrap(err, "opening source file")
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return "", 0, errors.Wrap(err, "stat source file")
	}
	mode = srcInfo.Mode().Perm()

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", 0, errors.Wrap(err, "creating destination file")
	}

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(dstFile, h), srcFile); err != nil {
		dstFile.Close()
		return "", 0, errors.Wrap(err, "copying file")
	}
	if err := dstFile.Close(); err != nil {
		return "", 0, errors.Wrap(err, "closing destination file")
	}
	if err := os.Chmod(dst, mode); err != nil {
		return "", 0, errors.Wrap(err, "setting permissions")
	}

	return hex.EncodeToString(h.Sum(nil)), mode, nil
}

// generateRelPath maps an absolute path to a relative one inside a
// snapshot. Colons are dropped so Windows drive letters stay valid.
func generateRelPath(absPath string) string {
	clean := strings.ReplaceAll(filepath.Clean(absPath), ":", "")
	return strings.TrimLeft(clean, `/\`)
}
