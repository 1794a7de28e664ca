// Copyright © 2026 Releasekit

package core

import (
	"time"

	"go.uber.org/zap"

	"github.com/releasekit/releasectl/pkg/index"
	"github.com/releasekit/releasectl/pkg/postcheck"
)

type (
	// Option modifies the behavior of promote, rollback and undo.
	Option func(*options)

	options struct {
		backup            bool
		switchCurrent     bool
		force             bool
		verifyHash        bool
		dryRun            bool
		postCheck         string
		postCheckArgs     []string
		postCheckTimeout  time.Duration
		skipRequiredCheck bool
		requiredPaths     []string
		excludes          []string
		retain            int
		l                 *zap.Logger
		now               func() time.Time
	}
)

// DefaultRetain is the number of holding-area entries kept by the
// retention trim when not configured otherwise.
const DefaultRetain = 5

func defaultOptions(opts []Option) *options {
	o := &options{
		backup:            true,
		verifyHash:        true,
		postCheckTimeout:  postcheck.DefaultTimeout,
		skipRequiredCheck: true,
		excludes:          index.DefaultExcludes,
		retain:            DefaultRetain,
		l:                 zap.NewNop(),
		now:               time.Now,
	}
	for _, apply := range opts {
		apply(o)
	}
	return o
}

// WithBackup toggles the pre-promotion backup of an existing target.
func WithBackup(enabled bool) Option {
	return func(o *options) {
		o.backup = enabled
	}
}

// WithSwitchCurrent toggles switching the current alias after commit.
func WithSwitchCurrent(enabled bool) Option {
	return func(o *options) {
		o.switchCurrent = enabled
	}
}

// WithForce enables deletion of the aside old slot after a successful
// promotion. Kept for manual inspection by default.
func WithForce(enabled bool) Option {
	return func(o *options) {
		o.force = enabled
	}
}

// WithVerifyHash toggles the digest verification steps. Disabling it skips
// both VERIFY and POST_VERIFY.
func WithVerifyHash(enabled bool) Option {
	return func(o *options) {
		o.verifyHash = enabled
	}
}

// WithDryRun switches promote into stateless preview mode: no lock, no
// filesystem mutation, no event record.
func WithDryRun(enabled bool) Option {
	return func(o *options) {
		o.dryRun = enabled
	}
}

// WithPostCheck designates the health-check executable launched after a
// successful promotion.
func WithPostCheck(exe string, args ...string) Option {
	return func(o *options) {
		o.postCheck = exe
		o.postCheckArgs = args
	}
}

// WithPostCheckTimeout bounds the health-check run.
func WithPostCheckTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.postCheckTimeout = d
		}
	}
}

// WithRequiredPaths sets the small fixed set of paths whose presence is
// checked after promote, rollback and undo. Missing paths produce warnings
// only.
func WithRequiredPaths(paths []string) Option {
	return func(o *options) {
		o.requiredPaths = paths
		o.skipRequiredCheck = len(paths) == 0
	}
}

// WithExcludes overrides the excluded directory names used by indexing,
// staging copy and verification.
func WithExcludes(names []string) Option {
	return func(o *options) {
		if len(names) > 0 {
			o.excludes = names
		}
	}
}

// WithRetain bounds the holding areas trimmed by the retention policy.
func WithRetain(keep int) Option {
	return func(o *options) {
		if keep > 0 {
			o.retain = keep
		}
	}
}

// WithLogger sets the zap logger, defaulting to a nop logger.
func WithLogger(zlg *zap.Logger) Option {
	return func(o *options) {
		if zlg != nil {
			o.l = zlg
		}
	}
}

// withClock patches the wall clock, for tests needing distinct timestamps.
func withClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}
