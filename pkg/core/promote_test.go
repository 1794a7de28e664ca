package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/releasekit/releasectl/pkg/core/status"
	"github.com/releasekit/releasectl/pkg/eventlog"
	"github.com/releasekit/releasectl/pkg/index"
	"github.com/releasekit/releasectl/pkg/lock"
	"github.com/releasekit/releasectl/pkg/model"
	"github.com/releasekit/releasectl/pkg/postcheck"
	"github.com/releasekit/releasectl/pkg/verify"
)

// testClock yields strictly increasing timestamps so snapshot names from
// consecutive operations never collide.
func testClock() func() time.Time {
	t := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func writeFiles(t *testing.T, fsys afero.Fs, dir string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, fsys.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, afero.WriteFile(fsys, full, []byte(content), 0644))
	}
}

func hashSet(t *testing.T, fsys afero.Fs, dir string) verify.HashMap {
	t.Helper()
	hashes, err := verify.HashTree(fsys, dir, index.DefaultExcludes)
	require.NoError(t, err)
	return hashes
}

func countEvents(t *testing.T, fsys afero.Fs, root string) int {
	t.Helper()
	events, err := eventlog.New(fsys, model.NewLayout(root).EventDir()).List()
	require.NoError(t, err)
	return len(events)
}

func TestPromoteIntoEmptyRoot(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	src := filepath.Join(root, "build", "v1")
	writeFiles(t, fsys, src, map[string]string{
		"app.bin":      "binary-v1",
		"conf/app.yml": "mode: prod",
	})

	res, err := Promote(context.Background(), fsys, root, src, "", withClock(testClock()))
	require.NoError(t, err)
	require.Equal(t, "v1", res.Version)
	require.Empty(t, res.Backup)
	require.Empty(t, res.OldSlot)

	layout := model.NewLayout(root)
	require.Equal(t, hashSet(t, fsys, src), hashSet(t, fsys, layout.Target("v1")))

	// lock released, one success event recorded
	_, err = fsys.Stat(layout.LockPath())
	require.True(t, os.IsNotExist(err))
	require.Equal(t, 1, countEvents(t, fsys, root))
	require.Equal(t, model.ResultSuccess, res.Event.Result)
	require.Equal(t, model.StageDone, res.Event.Stage)
}

func TestPromoteOverExistingTakesBackup(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	clock := testClock()
	layout := model.NewLayout(root)

	src1 := filepath.Join(root, "build", "app")
	writeFiles(t, fsys, src1, map[string]string{"app.bin": "gen-1"})
	_, err := Promote(context.Background(), fsys, root, src1, "app", withClock(clock))
	require.NoError(t, err)
	gen1 := hashSet(t, fsys, layout.Target("app"))

	require.NoError(t, afero.WriteFile(fsys, filepath.Join(src1, "app.bin"), []byte("gen-2"), 0644))
	res, err := Promote(context.Background(), fsys, root, src1, "app", withClock(clock))
	require.NoError(t, err)

	// exactly one backup snapshot, holding the superseded content
	backups, err := ListBackups(fsys, root)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	require.Equal(t, res.Backup, backups[0].Path)
	require.Equal(t, "app", backups[0].Version)
	require.Equal(t, gen1, hashSet(t, fsys, res.Backup))

	// the event carries the rollback pointer
	require.Equal(t, model.ResultSuccess, res.Event.Result)
	require.NotEmpty(t, res.Event.RollbackSavedAt)
	require.Equal(t, res.Backup, res.Event.RollbackSavedAt)

	// target now equals the new source
	require.Equal(t, hashSet(t, fsys, src1), hashSet(t, fsys, layout.Target("app")))

	// the aside old slot is kept by default
	require.NotEmpty(t, res.OldSlot)
	ok, err := index.Exists(fsys, res.OldSlot)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPromoteForceDeletesOldSlot(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	clock := testClock()

	src := filepath.Join(root, "build", "app")
	writeFiles(t, fsys, src, map[string]string{"app.bin": "gen-1"})
	_, err := Promote(context.Background(), fsys, root, src, "app", withClock(clock))
	require.NoError(t, err)

	res, err := Promote(context.Background(), fsys, root, src, "app", withClock(clock), WithForce(true))
	require.NoError(t, err)
	require.Empty(t, res.OldSlot)

	infos, err := afero.ReadDir(fsys, model.NewLayout(root).Releases())
	require.NoError(t, err)
	for _, fi := range infos {
		require.NotContains(t, fi.Name(), "_old_")
	}
}

func TestPromoteDryRunHasZeroSideEffects(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	src := filepath.Join(root, "build", "v2")
	writeFiles(t, fsys, src, map[string]string{
		"app.bin": "binary-v2",
		"new.txt": "brand new",
	})

	before, err := index.Build(fsys, root, nil)
	require.NoError(t, err)

	res, err := Promote(context.Background(), fsys, root, src, "v2", WithDryRun(true), withClock(testClock()))
	require.NoError(t, err)
	require.NotNil(t, res.Preview)
	require.ElementsMatch(t, []string{"app.bin", "new.txt"}, res.Preview.Added)

	after, err := index.Build(fsys, root, nil)
	require.NoError(t, err)
	require.True(t, index.Compare(before, after).Empty())
	require.True(t, index.Compare(after, before).Empty())
	require.Equal(t, 0, countEvents(t, fsys, root))
}

func TestPromoteVerifyFailureAbortsBeforeCommit(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	clock := testClock()
	layout := model.NewLayout(root)

	src := filepath.Join(root, "build", "app")
	writeFiles(t, fsys, src, map[string]string{"app.bin": "gen-1"})
	_, err := Promote(context.Background(), fsys, root, src, "app", withClock(clock))
	require.NoError(t, err)
	preTarget := hashSet(t, fsys, layout.Target("app"))
	preEvents := countEvents(t, fsys, root)

	// inject a digest mismatch
	orig := verifyTrees
	verifyTrees = func(afero.Fs, string, string, []string) error {
		return verify.ErrDigestMismatch
	}
	defer func() { verifyTrees = orig }()

	require.NoError(t, afero.WriteFile(fsys, filepath.Join(src, "app.bin"), []byte("gen-2"), 0644))
	_, err = Promote(context.Background(), fsys, root, src, "app", withClock(clock))
	require.Error(t, err)
	require.True(t, errors.Is(err, status.ErrVerifyFailed))
	require.Equal(t, model.StageVerify, status.StageOf(err))

	// the pre-existing target is completely unchanged
	require.Equal(t, preTarget, hashSet(t, fsys, layout.Target("app")))

	// a FAIL event was recorded and the lock released
	require.Equal(t, preEvents+1, countEvents(t, fsys, root))
	_, err = fsys.Stat(layout.LockPath())
	require.True(t, os.IsNotExist(err))
}

func TestPromoteLockContention(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	src := filepath.Join(root, "build", "v1")
	writeFiles(t, fsys, src, map[string]string{"app.bin": "x"})

	layout := model.NewLayout(root)
	held, err := lock.Acquire(fsys, layout.LockPath(), "promote")
	require.NoError(t, err)
	defer func() { _ = held.Release() }()

	_, err = Promote(context.Background(), fsys, root, src, "v1", withClock(testClock()))
	require.Error(t, err)
	require.True(t, errors.Is(err, status.ErrLocked))
	require.Equal(t, "locked", status.ReasonOf(err))
}

func TestPromoteRejectsUnsafeInput(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	src := filepath.Join(root, "build", "v1")
	writeFiles(t, fsys, src, map[string]string{"app.bin": "x"})

	_, err := Promote(context.Background(), fsys, root, src, "../etc", withClock(testClock()))
	require.Error(t, err)
	require.True(t, errors.Is(err, status.ErrVersionUnsafe))

	// source outside the managed root
	outside := t.TempDir()
	writeFiles(t, fsys, outside, map[string]string{"app.bin": "x"})
	_, err = Promote(context.Background(), fsys, root, outside, "v1", withClock(testClock()))
	require.Error(t, err)
	require.True(t, errors.Is(err, status.ErrPathUnsafe))

	_, err = Promote(context.Background(), fsys, root, filepath.Join(root, "missing"), "v1", withClock(testClock()))
	require.Error(t, err)
	require.True(t, errors.Is(err, status.ErrMissingSource))
}

func TestPromoteSwitchCurrent(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	src := filepath.Join(root, "build", "v1")
	writeFiles(t, fsys, src, map[string]string{"app.bin": "x"})

	res, err := Promote(context.Background(), fsys, root, src, "v1",
		withClock(testClock()), WithSwitchCurrent(true))
	require.NoError(t, err)

	layout := model.NewLayout(root)
	dest, err := os.Readlink(layout.CurrentAlias())
	require.NoError(t, err)
	require.Equal(t, res.Target, dest)

	// switching again re-points the alias
	src2 := filepath.Join(root, "build", "v2")
	writeFiles(t, fsys, src2, map[string]string{"app.bin": "y"})
	res2, err := Promote(context.Background(), fsys, root, src2, "v2",
		withClock(testClock()), WithSwitchCurrent(true))
	require.NoError(t, err)
	dest, err = os.Readlink(layout.CurrentAlias())
	require.NoError(t, err)
	require.Equal(t, res2.Target, dest)
}

func TestPromotePostCheckAdvisory(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	src := filepath.Join(root, "build", "v1")
	writeFiles(t, fsys, src, map[string]string{"app.bin": "x"})

	res, err := Promote(context.Background(), fsys, root, src, "v1",
		withClock(testClock()),
		WithPostCheck("sh", "-c", "exit 7"),
		WithPostCheckTimeout(5*time.Second))
	require.NoError(t, err) // FAIL outcome never reverses the commit
	require.Equal(t, postcheck.OutcomeFail, res.PostCheck)
	require.Equal(t, "FAIL", res.Event.Extra.PostCheck)

	ok, err := index.Exists(fsys, res.Target)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPromoteRoundTrip(t *testing.T) {
	fsys := afero.NewOsFs()
	root := t.TempDir()
	clock := testClock()
	layout := model.NewLayout(root)
	ctx := context.Background()

	src := filepath.Join(root, "build", "app")
	writeFiles(t, fsys, src, map[string]string{
		"app.bin":      "gen-1",
		"conf/app.yml": "gen: 1",
	})
	_, err := Promote(ctx, fsys, root, src, "app", withClock(clock))
	require.NoError(t, err)
	gen1 := hashSet(t, fsys, layout.Target("app"))

	require.NoError(t, afero.WriteFile(fsys, filepath.Join(src, "app.bin"), []byte("gen-2"), 0644))
	res2, err := Promote(ctx, fsys, root, src, "app", withClock(clock))
	require.NoError(t, err)
	gen2 := hashSet(t, fsys, layout.Target("app"))
	require.NotEqual(t, gen1, gen2)

	// rollback to the pre-promotion backup
	rb, err := Rollback(fsys, root, "app", res2.Backup, withClock(clock))
	require.NoError(t, err)
	require.Equal(t, gen1, hashSet(t, fsys, layout.Target("app")))
	require.NotEmpty(t, rb.AsidePath)
	require.Equal(t, gen2, hashSet(t, fsys, rb.AsidePath))

	// undo the rollback: the full cycle restores the promoted content
	ud, err := Undo(fsys, root, "app", rb.AsidePath, withClock(clock))
	require.NoError(t, err)
	require.Equal(t, gen2, hashSet(t, fsys, layout.Target("app")))
	require.NotEmpty(t, ud.AsidePath)
	require.Equal(t, gen1, hashSet(t, fsys, ud.AsidePath))

	// four attempts, four immutable records
	require.Equal(t, 4, countEvents(t, fsys, root))
}
