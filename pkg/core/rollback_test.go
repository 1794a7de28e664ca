package core

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/releasekit/releasectl/pkg/core/status"
	"github.com/releasekit/releasectl/pkg/model"
)

func TestRollbackRejectsPathOutsideBackupArea(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	clock := testClock()

	src := filepath.Join(root, "build", "app")
	writeFiles(t, fsys, src, map[string]string{"app.bin": "gen-1"})
	_, err := Promote(context.Background(), fsys, root, src, "app", withClock(clock))
	require.NoError(t, err)

	// a directory outside _backups is never a rollback source
	_, err = Rollback(fsys, root, "app", src, withClock(clock))
	require.Error(t, err)
	require.True(t, errors.Is(err, status.ErrPathUnsafe))

	// traversal out of the area is caught too
	layout := model.NewLayout(root)
	sneaky := filepath.Join(layout.BackupArea(), "..", "..", "build", "app")
	_, err = Rollback(fsys, root, "app", sneaky, withClock(clock))
	require.Error(t, err)
	require.True(t, errors.Is(err, status.ErrPathUnsafe))
}

func TestUndoRejectsBackupAreaSource(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	clock := testClock()

	src := filepath.Join(root, "build", "app")
	writeFiles(t, fsys, src, map[string]string{"app.bin": "gen-1"})
	_, err := Promote(context.Background(), fsys, root, src, "app", withClock(clock))
	require.NoError(t, err)
	res, err := Promote(context.Background(), fsys, root, src, "app", withClock(clock))
	require.NoError(t, err)
	require.NotEmpty(t, res.Backup)

	// undo only accepts candidates parked by a rollback
	_, err = Undo(fsys, root, "app", res.Backup, withClock(clock))
	require.Error(t, err)
	require.True(t, errors.Is(err, status.ErrPathUnsafe))
}

func TestRollbackMissingSnapshot(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	clock := testClock()

	src := filepath.Join(root, "build", "app")
	writeFiles(t, fsys, src, map[string]string{"app.bin": "gen-1"})
	_, err := Promote(context.Background(), fsys, root, src, "app", withClock(clock))
	require.NoError(t, err)

	layout := model.NewLayout(root)
	missing := filepath.Join(layout.BackupArea(), "app_20260101_000000")
	_, err = Rollback(fsys, root, "app", missing, withClock(clock))
	require.Error(t, err)
	require.True(t, errors.Is(err, status.ErrMissingSnapshot))
}

func TestRollbackIntoEmptyTargetSlot(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	clock := testClock()
	layout := model.NewLayout(root)

	// a snapshot with no live target: restore without an aside move
	snap := layout.Backup("app", model.Timestamp(clock()))
	writeFiles(t, fsys, snap, map[string]string{"app.bin": "old"})

	res, err := Rollback(fsys, root, "app", snap, withClock(clock))
	require.NoError(t, err)
	require.Empty(t, res.AsidePath)
	require.Empty(t, res.Event.RollbackSavedAt)
	require.Equal(t, "rollback", res.Event.Reason)
	require.Equal(t, model.ResultSuccess, res.Event.Result)

	hashes := hashSet(t, fsys, layout.Target("app"))
	require.Len(t, hashes, 1)
}

func TestRollbackRequiredPathWarnings(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	clock := testClock()
	layout := model.NewLayout(root)

	snap := layout.Backup("app", model.Timestamp(clock()))
	writeFiles(t, fsys, snap, map[string]string{"other.txt": "x"})

	res, err := Rollback(fsys, root, "app", snap,
		withClock(clock), WithRequiredPaths([]string{"app.bin"}))
	require.NoError(t, err) // warnings never fail the operation
	require.Len(t, res.Warnings, 1)
	require.Contains(t, res.Warnings[0], "app.bin")
}

func TestUndoParksPreviousTarget(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	clock := testClock()
	layout := model.NewLayout(root)
	ctx := context.Background()

	src := filepath.Join(root, "build", "app")
	writeFiles(t, fsys, src, map[string]string{"app.bin": "gen-1"})
	_, err := Promote(ctx, fsys, root, src, "app", withClock(clock))
	require.NoError(t, err)

	require.NoError(t, afero.WriteFile(fsys, filepath.Join(src, "app.bin"), []byte("gen-2"), 0644))
	res, err := Promote(ctx, fsys, root, src, "app", withClock(clock))
	require.NoError(t, err)

	rb, err := Rollback(fsys, root, "app", res.Backup, withClock(clock))
	require.NoError(t, err)

	candidates, err := ListRollbackSnapshots(fsys, root)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, rb.AsidePath, candidates[0].Path)

	ud, err := Undo(fsys, root, "app", rb.AsidePath, withClock(clock))
	require.NoError(t, err)
	require.Equal(t, "undo", ud.Event.Reason)
	require.Equal(t, ud.AsidePath, ud.Event.RollbackSavedAt)

	// the rollback-current area drained into the undo-backup area
	candidates, err = ListRollbackSnapshots(fsys, root)
	require.NoError(t, err)
	require.Empty(t, candidates)
	undoBackups, err := ListUndoBackups(fsys, root)
	require.NoError(t, err)
	require.Len(t, undoBackups, 1)
	require.Equal(t, ud.AsidePath, undoBackups[0].Path)

	require.Equal(t, hashSet(t, fsys, layout.Target("app")), hashSet(t, fsys, src))
}
