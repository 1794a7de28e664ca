// Copyright © 2026 Releasekit

// Package verify asserts that two directory trees are byte-identical by
// comparing per-file BLAKE2B-256 digests. It is the only part of the system
// that reads file content; everything else compares metadata only.
package verify

import (
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"

	blake2b "github.com/minio/blake2b-simd"
	"github.com/spf13/afero"

	"github.com/releasekit/releasectl/pkg/index"
)

type errString string

func (e errString) Error() string { return string(e) }

const (
	// ErrCountMismatch indicates the trees hold different numbers of files
	ErrCountMismatch errString = "file count mismatch"

	// ErrMissingPath indicates a path present in the source but absent in the destination
	ErrMissingPath errString = "path missing in destination"

	// ErrDigestMismatch indicates a shared path whose content differs
	ErrDigestMismatch errString = "content digest mismatch"
)

// HashMap maps normalized relative paths to hex BLAKE2B-256 digests.
type HashMap map[string]string

// HashFile digests one file.
func HashFile(fsys afero.Fs, pth string) (string, error) {
	f, err := fsys.Open(pth)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake2b.New256()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %q: %w", pth, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashTree builds the digest map of a tree, honoring the same exclusion
// rule as the indexer. This is expensive and reserved for final
// verification, not everyday diffing.
func HashTree(fsys afero.Fs, dir string, excludes []string) (HashMap, error) {
	idx, err := index.Build(fsys, dir, excludes)
	if err != nil {
		return nil, err
	}
	hashes := make(HashMap, len(idx))
	for key, entry := range idx {
		digest, err := HashFile(fsys, filepath.Join(dir, filepath.FromSlash(entry.Path)))
		if err != nil {
			return nil, err
		}
		hashes[key] = digest
	}
	return hashes, nil
}

// TreesEqual fails unless src and dst are byte-identical under the
// exclusion rule. Each failure mode carries its own sentinel: count
// mismatch, a path missing from dst, or a digest mismatch naming the
// offending path.
func TreesEqual(fsys afero.Fs, src, dst string, excludes []string) error {
	srcHashes, err := HashTree(fsys, src, excludes)
	if err != nil {
		return err
	}
	dstHashes, err := HashTree(fsys, dst, excludes)
	if err != nil {
		return err
	}

	if len(srcHashes) != len(dstHashes) {
		return fmt.Errorf("%q has %d files, %q has %d: %w",
			src, len(srcHashes), dst, len(dstHashes), ErrCountMismatch)
	}
	for key, srcDigest := range srcHashes {
		dstDigest, ok := dstHashes[key]
		if !ok {
			return fmt.Errorf("%q: %w", key, ErrMissingPath)
		}
		if srcDigest != dstDigest {
			return fmt.Errorf("%q: %w", key, ErrDigestMismatch)
		}
	}
	return nil
}
