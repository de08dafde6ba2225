// Package backup snapshots files before ccdir overwrites them and restores
// those snapshots.
//
// Snapshots are grouped by scope: "config" for the ccdir config file and
// "instructions" for CLAUDE.md files written by `ccdir use --force`. Each
// snapshot is a directory holding the copied files and a manifest with
// their SHA256 hashes:
//
//	$XDG_DATA_HOME/ccdir/backups/
//	└── {scope}/
//	    └── {id}/
//	        ├── manifest.json
//	        └── {copied files...}
//
// Commands call [EnsureBackedUp] before modifying a file; it takes at most
// one snapshot per scope per process and prunes old snapshots beyond the
// retention count:
//
//	if err := backup.EnsureBackedUp(backup.ScopeConfig, []string{path}); err != nil {
//	    return err
//	}
//
// [Manager.Restore] verifies every hash before copying files back.
package backup
