package backup

import (
	"sync"

	"github.com/thoreinstein/ccdir/internal/errors"
)

// snapshots remembers the scopes already backed up by this process.
var snapshots = struct {
	sync.Mutex
	done map[string]bool
}{done: map[string]bool{}}

// newManager builds the manager EnsureBackedUp uses. Tests replace it.
var newManager = func() *Manager { return NewManager() }

// EnsureBackedUp snapshots files before a command overwrites them. A
// command may write the same file several times; only the first call per
// scope in a process takes a snapshot, so the snapshot holds the state the
// user started from. A failed snapshot is retried on the next call.
func EnsureBackedUp(scope string, files []string) error {
	if len(files) == 0 {
		return nil
	}

	snapshots.Lock()
	defer snapshots.Unlock()
	if snapshots.done[scope] {
		return nil
	}
	if _, err := newManager().Backup(scope, files); err != nil {
		return errors.Wrapf(err, "creating %s backup", scope)
	}
	snapshots.done[scope] = true
	return nil
}

// ResetBackupState forgets which scopes were backed up.
func ResetBackupState() {
	snapshots.Lock()
	defer snapshots.Unlock()
	clear(snapshots.done)
}
