// Copyright © 2026 Releasekit

// Package pathcheck guards every destructive filesystem operation: it
// rejects drive roots, paths escaping their base directory and unsafe
// version identifiers. Validators never sanitize, they only reject.
package pathcheck

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

type errString string

func (e errString) Error() string { return string(e) }

const (
	// ErrRootPath indicates a path resolving to a filesystem root
	ErrRootPath errString = "path resolves to a filesystem root"

	// ErrOutsideBase indicates a path escaping its base directory
	ErrOutsideBase errString = "path escapes its base directory"

	// ErrUnsafeVersion indicates a version identifier unfit for use as a directory name
	ErrUnsafeVersion errString = "unsafe version identifier"
)

// safeVersionRe: alphanumeric start, then alphanumeric, dot, underscore, dash.
// Anything else could enable a path escape when used as a directory name.
var safeVersionRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// AssertNotRoot fails when the cleaned path equals a filesystem root,
// e.g. "/" or a Windows drive root.
func AssertNotRoot(pth string) error {
	cleaned := filepath.Clean(pth)
	if cleaned == "" || cleaned == "." {
		return fmt.Errorf("%q: %w", pth, ErrRootPath)
	}
	vol := filepath.VolumeName(cleaned)
	if cleaned == string(filepath.Separator) || cleaned == vol+string(filepath.Separator) || cleaned == vol {
		return fmt.Errorf("%q: %w", pth, ErrRootPath)
	}
	return nil
}

// AssertUnderBase fails unless the cleaned child is strictly below the
// cleaned base. The comparison is case-insensitive and performed on the
// base with a trailing separator appended, so "/srv/app-old" does not pass
// for base "/srv/app".
func AssertUnderBase(base, child string) error {
	b := filepath.Clean(base)
	c := filepath.Clean(child)
	prefix := b
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(strings.ToLower(c), strings.ToLower(prefix)) {
		return fmt.Errorf("%q not under %q: %w", child, base, ErrOutsideBase)
	}
	return nil
}

// AssertSafeVersion fails unless the identifier matches the restrictive
// version pattern. The identifier is used verbatim as a directory name.
func AssertSafeVersion(version string) error {
	if !safeVersionRe.MatchString(version) {
		return fmt.Errorf("%q: %w", version, ErrUnsafeVersion)
	}
	return nil
}
