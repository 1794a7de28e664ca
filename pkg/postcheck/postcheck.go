// Copyright © 2026 Releasekit

// Package postcheck launches the deployed artifact's health-check
// executable with a bounded timeout. The executable is opaque: exit 0
// means healthy. Outcomes are advisory and never reverse a commit.
package postcheck

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// Outcome of one health-check run.
type Outcome string

const (
	// OutcomeOK means the process exited 0 within the deadline
	OutcomeOK Outcome = "OK"
	// OutcomeFail means the process exited non-zero
	OutcomeFail Outcome = "FAIL"
	// OutcomeTimeout means the process was killed at the deadline
	OutcomeTimeout Outcome = "TIMEOUT"
)

// DefaultTimeout bounds a health check when the caller does not.
const DefaultTimeout = 120 * time.Second

// Run executes exe with args, killing it after timeout. The returned error
// carries the process failure detail for the event message; callers treat
// any outcome as advisory.
func Run(ctx context.Context, exe string, args []string, timeout time.Duration, zlg *zap.Logger) (Outcome, error) {
	if zlg == nil {
		zlg = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, exe, args...)
	out, err := cmd.CombinedOutput()

	if runCtx.Err() == context.DeadlineExceeded {
		zlg.Warn("post-check timed out",
			zap.String("exe", exe),
			zap.Duration("timeout", timeout),
		)
		return OutcomeTimeout, runCtx.Err()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			zlg.Warn("post-check failed",
				zap.String("exe", exe),
				zap.Int("exit_code", exitErr.ExitCode()),
				zap.ByteString("output", out),
			)
		}
		return OutcomeFail, err
	}

	zlg.Debug("post-check passed", zap.String("exe", exe))
	return OutcomeOK, nil
}
