// Copyright © 2026 Releasekit

// Package status exports the closed set of errors produced by the core
// package. Every error carries a machine-readable code, a short reason
// token for event records and, once raised, the pipeline stage reached.
package status

import (
	stderr "errors"

	"github.com/releasekit/releasectl/pkg/model"
)

// Error is a stage-aware augmented error. The exported sentinels below are
// templates: At and Wrap return copies, so sentinels are never mutated.
type Error struct {
	code   string
	reason string
	msg    string
	stage  model.Stage
	err    error
}

// New builds an error template with a code and a reason token.
func New(code, reason, msg string) *Error {
	return &Error{code: code, reason: reason, msg: msg}
}

// Error message, including the nested cause when present.
func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

// Unwrap nested error
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.err
}

// Wrap returns a copy carrying a nested cause.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.err = err
	return &c
}

// At returns a copy carrying the pipeline stage reached.
func (e *Error) At(stage model.Stage) *Error {
	c := *e
	c.stage = stage
	return &c
}

// Is matches errors of the same code, so wrapped copies still compare
// equal to their sentinel.
func (e *Error) Is(target error) bool {
	if o, ok := target.(*Error); ok {
		return e.code == o.code
	}
	return false
}

// Code is the machine-readable error code for event records.
func (e *Error) Code() string { return e.code }

// Reason is the short reason token for event records.
func (e *Error) Reason() string { return e.reason }

// Stage is the pipeline stage reached, empty on a bare template.
func (e *Error) Stage() model.Stage { return e.stage }

// CodeOf extracts the error code from any error chain.
func CodeOf(err error) string {
	var se *Error
	if stderr.As(err, &se) {
		return se.code
	}
	return ""
}

// ReasonOf extracts the reason token from any error chain.
func ReasonOf(err error) string {
	var se *Error
	if stderr.As(err, &se) {
		return se.reason
	}
	return ""
}

// StageOf extracts the pipeline stage from any error chain.
func StageOf(err error) model.Stage {
	var se *Error
	if stderr.As(err, &se) {
		return se.stage
	}
	return ""
}

var (
	// ErrPathUnsafe indicates a root, source or derived path failing safety validation
	ErrPathUnsafe = New("ERR_PATH_UNSAFE", "path_unsafe", "path fails safety validation")

	// ErrVersionUnsafe indicates a version identifier unfit for use as a directory name
	ErrVersionUnsafe = New("ERR_VERSION_UNSAFE", "version_unsafe", "version identifier fails safety validation")

	// ErrMissingRoot indicates the managed root does not exist
	ErrMissingRoot = New("ERR_MISSING_ROOT", "missing_root", "managed root does not exist")

	// ErrMissingSource indicates the promotion source does not exist
	ErrMissingSource = New("ERR_MISSING_SOURCE", "missing_source", "source directory does not exist")

	// ErrMissingSnapshot indicates the rollback or undo source does not exist
	ErrMissingSnapshot = New("ERR_MISSING_SNAPSHOT", "missing_snapshot", "snapshot directory does not exist")

	// ErrLocked indicates another operation holds the managed root
	ErrLocked = New("ERR_LOCKED", "locked", "another operation holds the managed root")

	// ErrBackupFailed indicates the pre-promotion backup copy failed
	ErrBackupFailed = New("ERR_BACKUP", "backup_failed", "backup copy failed")

	// ErrStagingFailed indicates the staging copy failed
	ErrStagingFailed = New("ERR_STAGING", "staging_copy_failed", "staging copy failed")

	// ErrVerifyFailed indicates the staged copy does not match the source
	ErrVerifyFailed = New("ERR_VERIFY", "verify_mismatch", "staged copy does not match the source")

	// ErrCommitFailed indicates a commit move failed
	ErrCommitFailed = New("ERR_COMMIT", "commit_failed", "commit move failed")

	// ErrPostVerifyFailed indicates the committed target does not match the source
	ErrPostVerifyFailed = New("ERR_POST_VERIFY", "post_verify_mismatch", "committed target does not match the source")

	// ErrSwitchFailed indicates the current alias could not be switched
	ErrSwitchFailed = New("ERR_SWITCH", "switch_failed", "current alias switch failed")

	// ErrRollbackFailed indicates a rollback move failed
	ErrRollbackFailed = New("ERR_ROLLBACK", "rollback_move_failed", "rollback move failed")

	// ErrUndoFailed indicates an undo move failed
	ErrUndoFailed = New("ERR_UNDO", "undo_move_failed", "undo move failed")

	// ErrEventWrite indicates the event record could not be persisted
	ErrEventWrite = New("ERR_EVENT_WRITE", "event_write_failed", "event record write failed")
)
