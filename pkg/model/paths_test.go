package model

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLayoutPaths(t *testing.T) {
	l := NewLayout("/srv/app")
	ts := Timestamp(time.Date(2026, 8, 30, 12, 34, 56, 0, time.UTC))
	require.Equal(t, "20260830_123456", ts)

	require.Equal(t, filepath.Join("/srv/app", "releases"), l.Releases())
	require.Equal(t, filepath.Join("/srv/app", "releases", "v1.2.3"), l.Target("v1.2.3"))
	require.Equal(t, filepath.Join("/srv/app", "releases", "current"), l.CurrentAlias())
	require.Equal(t, filepath.Join("/srv/app", "releases", "_staging", "v1_"+ts), l.Staging("v1", ts))
	require.Equal(t, filepath.Join("/srv/app", "releases", "_backups", "v1_"+ts), l.Backup("v1", ts))
	require.Equal(t, filepath.Join("/srv/app", "releases", "_rollback_current", "v1_"+ts), l.RollbackSnapshot("v1", ts))
	require.Equal(t, filepath.Join("/srv/app", "releases", "_undo_backup", "v1_"+ts), l.UndoBackup("v1", ts))
	require.Equal(t, filepath.Join("/srv/app", "releases", "_old_v1_"+ts), l.OldSlot("v1", ts))
	require.Equal(t, filepath.Join("/srv/app", "locks", "promote.lock"), l.LockPath())
	require.Equal(t, filepath.Join("/srv/app", "logs", "promote"), l.EventDir())

	for _, pth := range []string{
		l.Releases(), l.Target("v1"), l.StagingArea(), l.BackupArea(),
		l.RollbackArea(), l.UndoArea(), l.LockPath(), l.EventDir(), l.LastErrorPath(),
	} {
		require.True(t, strings.HasPrefix(pth, "/srv/app"+string(filepath.Separator)), pth)
	}
}

func TestSplitSnapshotName(t *testing.T) {
	tests := []struct {
		name    string
		version string
		ts      string
		ok      bool
	}{
		{"v1_20260830_123456", "v1", "20260830_123456", true},
		{"my_app_1.0_20260830_123456", "my_app_1.0", "20260830_123456", true},
		{"v1_20260830", "", "", false},
		{"20260830_123456", "", "", false},
		{"v1_notatime_notatime", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			version, ts, ok := SplitSnapshotName(tt.name)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.version, version)
				require.Equal(t, tt.ts, ts)
			}
		})
	}
}
