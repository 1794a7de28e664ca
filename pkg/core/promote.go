// Copyright © 2026 Releasekit

// Package core orchestrates the promotion pipeline and the rollback/undo
// engine over one managed root. All risky work happens in side areas; the
// live slot only ever changes through a filesystem rename.
package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/releasekit/releasectl/pkg/core/status"
	"github.com/releasekit/releasectl/pkg/eventlog"
	"github.com/releasekit/releasectl/pkg/index"
	"github.com/releasekit/releasectl/pkg/lock"
	"github.com/releasekit/releasectl/pkg/model"
	"github.com/releasekit/releasectl/pkg/pathcheck"
	"github.com/releasekit/releasectl/pkg/postcheck"
	"github.com/releasekit/releasectl/pkg/verify"
)

// patched over in tests to inject verification failures
var verifyTrees = verify.TreesEqual

// PromoteResult reports one promotion attempt.
type PromoteResult struct {
	Version   string
	Target    string
	Src       string
	Staging   string
	OldSlot   string
	Backup    string
	PostCheck postcheck.Outcome
	Warnings  []string
	Event     model.PromotionEvent
	EventPath string

	// Preview is set in dry-run mode instead of any mutation.
	Preview *index.Diff
}

// Promote runs the pipeline INIT, BACKUP, STAGING_COPY, VERIFY, COMMIT,
// POST_VERIFY, SWITCH_CURRENT, POSTCHECK. Any step's failure aborts the
// attempt, releases the lock and records a FAIL event carrying the stage
// reached. In dry-run mode it computes the diff against the current target
// and returns before the lock, with zero side effects.
func Promote(ctx context.Context, fsys afero.Fs, root, src, version string, opts ...Option) (*PromoteResult, error) {
	o := defaultOptions(opts)
	zlg := o.l

	// INIT: everything derived from user input is validated before any
	// directory read or write.
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, status.ErrPathUnsafe.At(model.StageInit).Wrap(err)
	}
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return nil, status.ErrPathUnsafe.At(model.StageInit).Wrap(err)
	}
	if err := pathcheck.AssertNotRoot(absRoot); err != nil {
		return nil, status.ErrPathUnsafe.At(model.StageInit).Wrap(err)
	}
	if ok, err := index.Exists(fsys, absRoot); err != nil || !ok {
		return nil, status.ErrMissingRoot.At(model.StageInit).Wrap(err)
	}
	if ok, err := index.Exists(fsys, absSrc); err != nil || !ok {
		return nil, status.ErrMissingSource.At(model.StageInit).Wrap(err)
	}
	if err := pathcheck.AssertUnderBase(absRoot, absSrc); err != nil {
		return nil, status.ErrPathUnsafe.At(model.StageInit).Wrap(err)
	}
	if version == "" {
		version = filepath.Base(absSrc)
	}
	if err := pathcheck.AssertSafeVersion(version); err != nil {
		return nil, status.ErrVersionUnsafe.At(model.StageInit).Wrap(err)
	}

	layout := model.NewLayout(absRoot)
	ts := model.Timestamp(o.now())
	target := layout.Target(version)
	staging := layout.Staging(version, ts)
	backupPath := layout.Backup(version, ts)
	oldSlot := layout.OldSlot(version, ts)
	alias := layout.CurrentAlias()
	for _, derived := range []string{target, staging, backupPath, oldSlot, alias} {
		if err := pathcheck.AssertUnderBase(absRoot, derived); err != nil {
			return nil, status.ErrPathUnsafe.At(model.StageInit).Wrap(err)
		}
	}

	res := &PromoteResult{Version: version, Target: target, Src: absSrc}

	// stateless preview: diff only, exit before the lock
	if o.dryRun {
		targetExists, err := index.Exists(fsys, target)
		if err != nil {
			return nil, status.ErrMissingRoot.At(model.StageInit).Wrap(err)
		}
		srcIdx, err := index.Build(fsys, absSrc, o.excludes)
		if err != nil {
			return nil, status.ErrMissingSource.At(model.StageInit).Wrap(err)
		}
		var dstIdx index.FileIndex
		if targetExists {
			if dstIdx, err = index.Build(fsys, target, o.excludes); err != nil {
				return nil, status.ErrMissingRoot.At(model.StageInit).Wrap(err)
			}
		}
		d := index.Compare(srcIdx, dstIdx)
		res.Preview = &d
		zlg.Debug("preview computed",
			zap.String("version", version),
			zap.Int("added", len(d.Added)),
			zap.Int("removed", len(d.Removed)),
			zap.Int("changed", len(d.Changed)),
		)
		return res, nil
	}

	evlog := eventlog.New(fsys, layout.EventDir())
	fail := func(serr *status.Error) (*PromoteResult, error) {
		ev := model.PromotionEvent{
			Time:            o.now(),
			Result:          model.ResultFail,
			Version:         version,
			Stage:           serr.Stage(),
			Reason:          serr.Reason(),
			Message:         serr.Error(),
			ErrorCode:       serr.Code(),
			Src:             absSrc,
			Target:          target,
			RollbackSavedAt: res.Backup,
			Extra:           model.Extra{PostCheck: string(res.PostCheck)},
		}
		if _, rerr := evlog.Record(ev); rerr != nil {
			zlg.Error("recording failure event", zap.Error(rerr))
		}
		zlg.Error("promotion failed",
			zap.String("version", version),
			zap.String("stage", string(serr.Stage())),
			zap.Error(serr),
		)
		return nil, serr
	}

	lk, err := lock.Acquire(fsys, layout.LockPath(), "promote")
	if err != nil {
		if errors.Is(err, lock.ErrLocked) {
			return fail(status.ErrLocked.At(model.StageInit).Wrap(err))
		}
		return fail(status.ErrPathUnsafe.At(model.StageInit).Wrap(err))
	}
	defer func() {
		if rerr := lk.Release(); rerr != nil {
			zlg.Error("releasing lock", zap.Error(rerr))
		}
	}()

	// the existence read happens under the lock, so BACKUP and the aside
	// move act on a target state no concurrent run can change
	targetExists, err := index.Exists(fsys, target)
	if err != nil {
		return fail(status.ErrMissingRoot.At(model.StageInit).Wrap(err))
	}

	// BACKUP: copy the live target whole into the backup area
	if targetExists && o.backup {
		if err := copyTree(fsys, target, backupPath, nil); err != nil {
			return fail(status.ErrBackupFailed.At(model.StageBackup).Wrap(err))
		}
		res.Backup = backupPath
		zlg.Info("backup taken", zap.String("path", backupPath))
	}

	// STAGING_COPY: fresh, timestamp-suffixed, never reused
	if err := copyTree(fsys, absSrc, staging, o.excludes); err != nil {
		return fail(status.ErrStagingFailed.At(model.StageStagingCopy).Wrap(err))
	}
	res.Staging = staging

	// VERIFY: never downgraded to a warning
	if o.verifyHash {
		if err := verifyTrees(fsys, absSrc, staging, o.excludes); err != nil {
			return fail(status.ErrVerifyFailed.At(model.StageVerify).Wrap(err))
		}
	}

	// COMMIT: two renames, no copies, so a crash window cannot leave a
	// half-written live slot
	if targetExists {
		if err := fsys.Rename(target, oldSlot); err != nil {
			return fail(status.ErrCommitFailed.At(model.StageCommit).Wrap(err))
		}
		res.OldSlot = oldSlot
	}
	if err := fsys.Rename(staging, target); err != nil {
		return fail(status.ErrCommitFailed.At(model.StageCommit).Wrap(err))
	}
	res.Staging = ""

	// POST_VERIFY: catches corruption introduced by the move itself
	if o.verifyHash {
		if err := verifyTrees(fsys, absSrc, target, o.excludes); err != nil {
			return fail(status.ErrPostVerifyFailed.At(model.StagePostVerify).Wrap(err))
		}
	}

	// SWITCH_CURRENT: single symlink replacement, no content copy
	if o.switchCurrent {
		if err := switchAlias(fsys, alias, target, ts); err != nil {
			return fail(status.ErrSwitchFailed.At(model.StageSwitchCurrent).Wrap(err))
		}
		zlg.Info("current alias switched", zap.String("target", target))
	}

	// POSTCHECK: advisory, recorded but never reverses the commit
	if o.postCheck != "" {
		outcome, perr := postcheck.Run(ctx, o.postCheck, o.postCheckArgs, o.postCheckTimeout, zlg)
		res.PostCheck = outcome
		if perr != nil {
			zlg.Warn("post-check did not pass",
				zap.String("outcome", string(outcome)),
				zap.Error(perr),
			)
		}
	}

	if !o.skipRequiredCheck {
		res.Warnings = requiredWarnings(fsys, target, o.requiredPaths, zlg)
	}

	// the aside old slot is kept for inspection unless forced away
	if o.force && res.OldSlot != "" {
		if err := fsys.RemoveAll(res.OldSlot); err != nil {
			zlg.Warn("deleting old slot", zap.String("path", res.OldSlot), zap.Error(err))
		} else {
			res.OldSlot = ""
		}
	}

	ev := model.PromotionEvent{
		Time:            o.now(),
		Result:          model.ResultSuccess,
		Version:         version,
		Stage:           model.StageDone,
		Message:         "promotion completed",
		Src:             absSrc,
		Target:          target,
		RollbackSavedAt: res.Backup,
		Extra:           model.Extra{PostCheck: string(res.PostCheck)},
	}
	evPath, err := evlog.Record(ev)
	if err != nil {
		return res, status.ErrEventWrite.At(model.StageDone).Wrap(err)
	}
	res.Event = ev
	res.EventPath = evPath

	zlg.Info("promotion done",
		zap.String("version", version),
		zap.String("target", target),
		zap.String("backup", res.Backup),
	)
	return res, nil
}

// switchAlias points the current alias at target by creating a fresh link
// and renaming it over the old one, so the alias never dangles.
func switchAlias(fsys afero.Fs, alias, target, ts string) error {
	linker, ok := fsys.(afero.Linker)
	if !ok {
		return errors.New("filesystem does not support symbolic links")
	}
	if fi, err := fsys.Stat(alias); err == nil && fi.IsDir() {
		// an alias slot occupied by a real directory is operator error,
		// never silently replaced
		if lst, lok := fsys.(afero.Lstater); lok {
			if lfi, _, lerr := lst.LstatIfPossible(alias); lerr == nil && lfi.Mode()&os.ModeSymlink == 0 {
				return errors.New("current alias exists and is a real directory")
			}
		}
	}
	tmp := alias + ".tmp_" + ts
	if err := fsys.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := linker.SymlinkIfPossible(target, tmp); err != nil {
		return err
	}
	if err := fsys.Rename(tmp, alias); err != nil {
		_ = fsys.Remove(tmp)
		return err
	}
	return nil
}

// requiredWarnings reports which of the required paths are missing under
// dir. Missing paths are warnings, never failures.
func requiredWarnings(fsys afero.Fs, dir string, paths []string, zlg *zap.Logger) []string {
	var warnings []string
	for _, rel := range paths {
		pth := filepath.Join(dir, filepath.FromSlash(rel))
		if _, err := fsys.Stat(pth); err != nil {
			w := "required path missing: " + rel
			warnings = append(warnings, w)
			zlg.Warn("required path missing",
				zap.String("dir", dir),
				zap.String("path", rel),
			)
		}
	}
	return warnings
}
