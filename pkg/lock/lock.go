// Copyright © 2026 Releasekit

// Package lock provides process-wide mutual exclusion over a managed root
// through a sentinel file. Acquisition is fail-fast: a held lock is
// reported immediately, never waited on.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	yaml "gopkg.in/yaml.v2"
)

type errString string

func (e errString) Error() string { return string(e) }

// ErrLocked indicates the sentinel already exists: another operation holds
// the managed root. Recoverable by retrying later; retry policy belongs to
// the caller.
const ErrLocked errString = "managed root is locked"

// Record is the sentinel content identifying the lock holder.
type Record struct {
	AcquiredAt time.Time `yaml:"acquired_at"`
	OwnerPID   int       `yaml:"owner_pid"`
	Mode       string    `yaml:"mode"`
}

// Lock is a held sentinel. Release it on every exit path.
type Lock struct {
	Record

	fsys afero.Fs
	path string
}

// Acquire creates the sentinel at pth, failing immediately with ErrLocked
// when it already exists. The sentinel file is created exclusively, so two
// racing acquisitions cannot both succeed.
func Acquire(fsys afero.Fs, pth, mode string) (*Lock, error) {
	if err := fsys.MkdirAll(filepath.Dir(pth), 0755); err != nil {
		return nil, fmt.Errorf("lock dir for %q: %w", pth, err)
	}

	f, err := fsys.OpenFile(pth, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0600)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%q: %w", pth, ErrLocked)
		}
		return nil, fmt.Errorf("lock %q: %w", pth, err)
	}

	l := &Lock{
		Record: Record{
			AcquiredAt: time.Now().UTC(),
			OwnerPID:   os.Getpid(),
			Mode:       mode,
		},
		fsys: fsys,
		path: pth,
	}
	data, err := yaml.Marshal(l.Record)
	if err == nil {
		_, err = f.Write(data)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// the sentinel exists but could not be written; remove it so the
		// root is not left locked by a dead record
		_ = fsys.Remove(pth)
		return nil, fmt.Errorf("writing lock %q: %w", pth, err)
	}
	return l, nil
}

// Release removes the sentinel. Removal is idempotent: an absent sentinel
// is not an error.
func (l *Lock) Release() error {
	if l == nil {
		return nil
	}
	if err := l.fsys.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("releasing lock %q: %w", l.path, err)
	}
	return nil
}

// Read returns the sentinel record at pth, for inspection and for lock
// contention diagnostics.
func Read(fsys afero.Fs, pth string) (Record, error) {
	data, err := afero.ReadFile(fsys, pth)
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("lock record %q: %w", pth, err)
	}
	return rec, nil
}
