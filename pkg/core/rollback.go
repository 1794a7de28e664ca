// Copyright © 2026 Releasekit

package core

import (
	"errors"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/releasekit/releasectl/pkg/core/status"
	"github.com/releasekit/releasectl/pkg/eventlog"
	"github.com/releasekit/releasectl/pkg/index"
	"github.com/releasekit/releasectl/pkg/lock"
	"github.com/releasekit/releasectl/pkg/model"
	"github.com/releasekit/releasectl/pkg/pathcheck"
)

// ReverseResult reports one rollback or undo attempt.
type ReverseResult struct {
	Version   string
	Target    string
	From      string
	AsidePath string
	Warnings  []string
	Event     model.PromotionEvent
	EventPath string
}

// Rollback swaps the live target with a backup snapshot: the target moves
// into the rollback-current holding area (becoming the undo candidate) and
// the snapshot moves into the target slot. The snapshot path must resolve
// under the backup area.
func Rollback(fsys afero.Fs, root, version, fromSnapshot string, opts ...Option) (*ReverseResult, error) {
	return reverse(fsys, root, version, fromSnapshot, reverseRollback, opts)
}

// Undo reverses a rollback: the live target moves into the undo-backup
// holding area and the undo candidate moves back into the target slot. The
// candidate path must resolve under the rollback-current holding area, so
// undo is bounded to one level: snapshots parked in the undo-backup area
// are kept for manual recovery only and feed neither Rollback nor Undo.
func Undo(fsys afero.Fs, root, version, fromCandidate string, opts ...Option) (*ReverseResult, error) {
	return reverse(fsys, root, version, fromCandidate, reverseUndo, opts)
}

type reverseMode int

const (
	reverseRollback reverseMode = iota
	reverseUndo
)

func (m reverseMode) String() string {
	if m == reverseUndo {
		return "undo"
	}
	return "rollback"
}

func reverse(fsys afero.Fs, root, version, from string, mode reverseMode, opts []Option) (*ReverseResult, error) {
	o := defaultOptions(opts)
	zlg := o.l
	moveErr := status.ErrRollbackFailed
	if mode == reverseUndo {
		moveErr = status.ErrUndoFailed
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, status.ErrPathUnsafe.At(model.StageInit).Wrap(err)
	}
	if err := pathcheck.AssertNotRoot(absRoot); err != nil {
		return nil, status.ErrPathUnsafe.At(model.StageInit).Wrap(err)
	}
	if ok, err := index.Exists(fsys, absRoot); err != nil || !ok {
		return nil, status.ErrMissingRoot.At(model.StageInit).Wrap(err)
	}
	if err := pathcheck.AssertSafeVersion(version); err != nil {
		return nil, status.ErrVersionUnsafe.At(model.StageInit).Wrap(err)
	}

	layout := model.NewLayout(absRoot)
	absFrom, err := filepath.Abs(from)
	if err != nil {
		return nil, status.ErrPathUnsafe.At(model.StageInit).Wrap(err)
	}

	// the source snapshot must live in the area owned by this operation
	sourceArea := layout.BackupArea()
	if mode == reverseUndo {
		sourceArea = layout.RollbackArea()
	}
	if err := pathcheck.AssertUnderBase(sourceArea, absFrom); err != nil {
		return nil, status.ErrPathUnsafe.At(model.StageInit).Wrap(err)
	}
	if ok, err := index.Exists(fsys, absFrom); err != nil || !ok {
		return nil, status.ErrMissingSnapshot.At(model.StageInit).Wrap(err)
	}

	ts := model.Timestamp(o.now())
	target := layout.Target(version)
	asidePath := layout.RollbackSnapshot(version, ts)
	if mode == reverseUndo {
		asidePath = layout.UndoBackup(version, ts)
	}
	for _, derived := range []string{target, asidePath} {
		if err := pathcheck.AssertUnderBase(absRoot, derived); err != nil {
			return nil, status.ErrPathUnsafe.At(model.StageInit).Wrap(err)
		}
	}

	res := &ReverseResult{Version: version, Target: target, From: absFrom}
	evlog := eventlog.New(fsys, layout.EventDir())
	fail := func(serr *status.Error) (*ReverseResult, error) {
		ev := model.PromotionEvent{
			Time:            o.now(),
			Result:          model.ResultFail,
			Version:         version,
			Stage:           serr.Stage(),
			Reason:          serr.Reason(),
			Message:         serr.Error(),
			ErrorCode:       serr.Code(),
			Src:             absFrom,
			Target:          target,
			RollbackSavedAt: res.AsidePath,
		}
		if _, rerr := evlog.Record(ev); rerr != nil {
			zlg.Error("recording failure event", zap.Error(rerr))
		}
		zlg.Error(mode.String()+" failed", zap.String("version", version), zap.Error(serr))
		return nil, serr
	}

	lk, err := lock.Acquire(fsys, layout.LockPath(), mode.String())
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

	// best-effort retention on the holding areas; suppressed errors are
	// logged, never surfaced
	for _, area := range []string{layout.RollbackArea(), layout.UndoArea()} {
		if removed, terr := Trim(fsys, area, o.retain); terr != nil {
			zlg.Debug("retention trim incomplete",
				zap.String("area", area),
				zap.Int("removed", removed),
				zap.Error(terr),
			)
		}
	}

	targetExists, err := index.Exists(fsys, target)
	if err != nil {
		return fail(moveErr.At(model.StageCommit).Wrap(err))
	}
	if targetExists {
		if err := fsys.MkdirAll(filepath.Dir(asidePath), 0755); err != nil {
			return fail(moveErr.At(model.StageCommit).Wrap(err))
		}
		if err := fsys.Rename(target, asidePath); err != nil {
			return fail(moveErr.At(model.StageCommit).Wrap(err))
		}
		res.AsidePath = asidePath
	}
	if err := fsys.Rename(absFrom, target); err != nil {
		// the target slot is now empty; artifacts remain on disk for
		// manual recovery and the event records the stage
		return fail(moveErr.At(model.StageCommit).Wrap(err))
	}

	// lightweight presence check, warnings only: the move already
	// happened and is not reversed on a failed check
	res.Warnings = requiredWarnings(fsys, target, o.requiredPaths, zlg)

	ev := model.PromotionEvent{
		Time:            o.now(),
		Result:          model.ResultSuccess,
		Version:         version,
		Stage:           model.StageDone,
		Reason:          mode.String(),
		Message:         mode.String() + " completed",
		Src:             absFrom,
		Target:          target,
		RollbackSavedAt: res.AsidePath,
	}
	evPath, err := evlog.Record(ev)
	if err != nil {
		return res, status.ErrEventWrite.At(model.StageDone).Wrap(err)
	}
	res.Event = ev
	res.EventPath = evPath

	zlg.Info(mode.String()+" done",
		zap.String("version", version),
		zap.String("target", target),
		zap.String("aside", res.AsidePath),
	)
	return res, nil
}
