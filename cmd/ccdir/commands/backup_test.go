package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/ccdir/internal/backup"
	"github.com/thoreinstein/ccdir/internal/errors"
)

func useBackupDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev := backupManager
	backupManager = func() *backup.Manager { return backup.NewManager(backup.WithBackupDir(dir)) }
	t.Cleanup(func() {
		backupManager = prev
		backupListJSON = false
	})
	return dir
}

func TestBackupList_Empty(t *testing.T) {
	useBackupDir(t)

	var buf bytes.Buffer
	require.NoError(t, runBackupListWithWriter(&buf, ""))
	assert.Contains(t, buf.String(), "No backups available.")
}

func TestBackupRestore_Latest(t *testing.T) {
	dir := useBackupDir(t)
	target := filepath.Join(t.TempDir(), "CLAUDE.md")
	require.NoError(t, os.WriteFile(target, []byte("old\n"), 0o644))

	mgr := backup.NewManager(backup.WithBackupDir(dir))
	manifest, err := mgr.Backup(backup.ScopeInstructions, []string{target})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(target, []byte("new\n"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, runBackupListWithWriter(&buf, ""))
	assert.Contains(t, buf.String(), "Scope: instructions")
	assert.Contains(t, buf.String(), manifest.ID)

	buf.Reset()
	backupListJSON = true
	require.NoError(t, runBackupListWithWriter(&buf, backup.ScopeInstructions))
	var listed []backupListOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &listed))
	require.Len(t, listed, 1)
	require.Len(t, listed[0].Backups, 1)
	assert.Equal(t, []string{target}, listed[0].Backups[0].Files)

	buf.Reset()
	require.NoError(t, runBackupRestoreWithWriter(&buf, backup.ScopeInstructions, ""))
	assert.Contains(t, buf.String(), "Using most recent backup: "+manifest.ID)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(data))
}

func TestBackupRestore_Errors(t *testing.T) {
	useBackupDir(t)

	err := runBackupRestoreWithWriter(&bytes.Buffer{}, backup.ScopeConfig, "")
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))

	err = runBackupRestoreWithWriter(&bytes.Buffer{}, backup.ScopeConfig, "20200101T000000.000000")
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))

	err = runBackupListWithWriter(&bytes.Buffer{}, "../x")
	require.Error(t, err)
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}
