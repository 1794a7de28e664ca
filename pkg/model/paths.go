// Copyright © 2026 Releasekit

// Package model defines the domain types shared across releasectl:
// the managed-root directory layout, the promotion event schema and
// the naming scheme for snapshot directories.
package model

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	releasesDir        = "releases"
	stagingArea        = "_staging"
	backupsArea        = "_backups"
	rollbackArea       = "_rollback_current"
	undoArea           = "_undo_backup"
	oldSlotPrefix      = "_old_"
	currentAliasName   = "current"
	locksDir           = "locks"
	lockFileName       = "promote.lock"
	eventLogDir        = "logs/promote"
	lastErrorFileName  = "last_error.txt"
	snapshotNameJoiner = "_"
)

// TimestampFormat is the wall-clock suffix carried by staging, backup,
// old-slot and event file names. Lexicographic order equals time order.
const TimestampFormat = "20060102_150405"

// Timestamp renders t in the snapshot naming format.
func Timestamp(t time.Time) string {
	return t.Format(TimestampFormat)
}

// Layout computes every path releasectl may touch under one managed root.
// All destructive operations stay within these paths.
type Layout struct {
	Root string
}

// NewLayout builds a layout rooted at root. The caller is expected to pass
// an absolute, cleaned path.
func NewLayout(root string) Layout {
	return Layout{Root: filepath.Clean(root)}
}

// Releases is the directory holding live versions and their side areas.
func (l Layout) Releases() string {
	return filepath.Join(l.Root, releasesDir)
}

// Target is the live slot for a version.
func (l Layout) Target(version string) string {
	return filepath.Join(l.Releases(), version)
}

// CurrentAlias is the optional symlink pointing at the live target.
func (l Layout) CurrentAlias() string {
	return filepath.Join(l.Releases(), currentAliasName)
}

// StagingArea holds transient, timestamp-suffixed staging copies.
func (l Layout) StagingArea() string {
	return filepath.Join(l.Releases(), stagingArea)
}

// Staging names a fresh staging directory for a version at ts.
func (l Layout) Staging(version, ts string) string {
	return filepath.Join(l.StagingArea(), SnapshotName(version, ts))
}

// BackupArea holds pre-promotion backups, the rollback sources.
func (l Layout) BackupArea() string {
	return filepath.Join(l.Releases(), backupsArea)
}

// Backup names a backup snapshot for a version at ts.
func (l Layout) Backup(version, ts string) string {
	return filepath.Join(l.BackupArea(), SnapshotName(version, ts))
}

// RollbackArea holds pre-rollback snapshots, the undo sources.
func (l Layout) RollbackArea() string {
	return filepath.Join(l.Releases(), rollbackArea)
}

// RollbackSnapshot names the holding slot for the target displaced by a rollback.
func (l Layout) RollbackSnapshot(version, ts string) string {
	return filepath.Join(l.RollbackArea(), SnapshotName(version, ts))
}

// UndoArea holds pre-undo snapshots.
func (l Layout) UndoArea() string {
	return filepath.Join(l.Releases(), undoArea)
}

// UndoBackup names the holding slot for the target displaced by an undo.
func (l Layout) UndoBackup(version, ts string) string {
	return filepath.Join(l.UndoArea(), SnapshotName(version, ts))
}

// OldSlot names the aside location for a superseded target. It is kept for
// manual inspection unless the operator forces deletion.
func (l Layout) OldSlot(version, ts string) string {
	return filepath.Join(l.Releases(), oldSlotPrefix+SnapshotName(version, ts))
}

// LockPath is the sentinel file gating all mutating operations on the root.
func (l Layout) LockPath() string {
	return filepath.Join(l.Root, locksDir, lockFileName)
}

// EventDir holds one JSON record per promotion, rollback or undo attempt.
func (l Layout) EventDir() string {
	return filepath.Join(l.Root, filepath.FromSlash(eventLogDir))
}

// LastErrorPath is the well-known location of the latest failure summary.
func (l Layout) LastErrorPath() string {
	return filepath.Join(l.EventDir(), lastErrorFileName)
}

// SnapshotName joins a version and a timestamp into a snapshot directory name.
func SnapshotName(version, ts string) string {
	return version + snapshotNameJoiner + ts
}

// SplitSnapshotName recovers the version and timestamp from a snapshot
// directory name. The timestamp itself contains one joiner, so the name
// must carry at least two of them.
func SplitSnapshotName(name string) (version, ts string, ok bool) {
	parts := strings.Split(name, snapshotNameJoiner)
	if len(parts) < 3 {
		return "", "", false
	}
	ts = strings.Join(parts[len(parts)-2:], snapshotNameJoiner)
	if _, err := time.Parse(TimestampFormat, ts); err != nil {
		return "", "", false
	}
	version = strings.Join(parts[:len(parts)-2], snapshotNameJoiner)
	return version, ts, version != ""
}
