// Copyright © 2026 Releasekit

package model

import "time"

// Result is the terminal outcome of one pipeline attempt.
type Result string

const (
	// ResultSuccess marks an attempt that reached DONE
	ResultSuccess Result = "SUCCESS"
	// ResultFail marks an attempt aborted at some stage
	ResultFail Result = "FAIL"
)

// Stage identifies a checkpoint of the promotion pipeline. On failure the
// event records the stage that was being executed.
type Stage string

const (
	// StageInit covers input validation and path derivation
	StageInit Stage = "INIT"
	// StageBackup covers the pre-promotion copy of the live target
	StageBackup Stage = "BACKUP"
	// StageStagingCopy covers the copy of the source into the staging area
	StageStagingCopy Stage = "STAGING_COPY"
	// StageVerify covers the staging-equals-source digest check
	StageVerify Stage = "VERIFY"
	// StageCommit covers the aside move and the staging-to-target move
	StageCommit Stage = "COMMIT"
	// StagePostVerify covers the target-equals-source digest re-check
	StagePostVerify Stage = "POST_VERIFY"
	// StageSwitchCurrent covers the current-alias replacement
	StageSwitchCurrent Stage = "SWITCH_CURRENT"
	// StagePostCheck covers the advisory health-check launch
	StagePostCheck Stage = "POSTCHECK"
	// StageDone marks a completed attempt
	StageDone Stage = "DONE"
)

// PromotionEvent is the immutable record of one promotion, rollback or undo
// attempt. It is written once and never mutated.
type PromotionEvent struct {
	Time            time.Time `json:"time"`
	Result          Result    `json:"result"`
	Version         string    `json:"version"`
	Stage           Stage     `json:"stage"`
	Reason          string    `json:"reason"`
	Message         string    `json:"message"`
	ErrorCode       string    `json:"error_code"`
	Src             string    `json:"src"`
	Target          string    `json:"target"`
	RollbackSavedAt string    `json:"rollbackSavedAt"`
	Extra           Extra     `json:"extra"`
}

// Extra carries advisory outcomes that do not gate the attempt.
type Extra struct {
	PostCheck string `json:"postcheck,omitempty"`
}
