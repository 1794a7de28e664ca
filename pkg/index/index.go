// Copyright © 2026 Releasekit

// Package index builds metadata snapshots of directory trees and computes
// set differences between them. Indexing is metadata-only (size and
// modification time); content inspection is left to the verify package.
package index

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// DefaultExcludes lists directory names skipped during any scan:
// version control, virtual environments, caches and editor configuration.
var DefaultExcludes = []string{
	".git", ".hg", ".svn",
	".venv", "venv",
	"__pycache__", ".mypy_cache", ".pytest_cache",
	"node_modules",
	".idea", ".vscode",
}

// Entry is the metadata snapshot of one file.
type Entry struct {
	// Path is the forward-slash relative path with its original casing.
	Path    string
	Size    int64
	ModTime time.Time
}

// FileIndex maps normalized relative paths to their metadata. Keys are
// lower-cased, forward-slash relative paths so that comparisons are
// case-insensitive.
type FileIndex map[string]Entry

// Key normalizes a relative path into its index key.
func Key(rel string) string {
	return strings.ToLower(filepath.ToSlash(rel))
}

// Build scans dir recursively and returns its index. It fails when dir does
// not exist or is not a directory. Files below a directory segment matching
// the exclusion set are skipped. The traversal is iterative so memory use
// stays bounded by tree depth, not tree size.
func Build(fsys afero.Fs, dir string, excludes []string) (FileIndex, error) {
	fi, err := fsys.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("index %q: %w", dir, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("index %q: not a directory", dir)
	}

	excluded := make(map[string]struct{}, len(excludes))
	for _, name := range excludes {
		excluded[strings.ToLower(name)] = struct{}{}
	}

	idx := make(FileIndex)
	stack := []string{""}
	for len(stack) > 0 {
		rel := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := afero.ReadDir(fsys, filepath.Join(dir, filepath.FromSlash(rel)))
		if err != nil {
			return nil, fmt.Errorf("index %q: %w", dir, err)
		}
		for _, entry := range entries {
			childRel := path.Join(rel, entry.Name())
			if entry.IsDir() {
				if _, skip := excluded[strings.ToLower(entry.Name())]; skip {
					continue
				}
				stack = append(stack, childRel)
				continue
			}
			idx[Key(childRel)] = Entry{
				Path:    childRel,
				Size:    entry.Size(),
				ModTime: entry.ModTime(),
			}
		}
	}
	return idx, nil
}

// Diff is the result of comparing a source index against a destination
// index. Members are normalized keys, sorted for stable output.
type Diff struct {
	Added   []string
	Removed []string
	Changed []string
}

// Empty reports whether the diff carries no differences.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Compare diffs src against dst by key-set operations: added keys exist only
// in src, removed keys only in dst, changed keys in both with a size or
// modification time difference. A nil dst yields all of src as added.
// Compare is pure and safe to call without holding any lock.
func Compare(src, dst FileIndex) Diff {
	var d Diff
	for key, srcEntry := range src {
		dstEntry, ok := dst[key]
		if !ok {
			d.Added = append(d.Added, key)
			continue
		}
		if srcEntry.Size != dstEntry.Size || !srcEntry.ModTime.Equal(dstEntry.ModTime) {
			d.Changed = append(d.Changed, key)
		}
	}
	for key := range dst {
		if _, ok := src[key]; !ok {
			d.Removed = append(d.Removed, key)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Strings(d.Changed)
	return d
}

// Exists reports whether dir exists as a directory.
func Exists(fsys afero.Fs, dir string) (bool, error) {
	fi, err := fsys.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return fi.IsDir(), nil
}
