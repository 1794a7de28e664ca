// Copyright © 2026 Releasekit

package core

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// copyTree copies src into dst, skipping excluded directory names and
// preserving file modes and modification times. dst must not exist yet;
// areas are always written whole before being moved into place.
func copyTree(fsys afero.Fs, src, dst string, excludes []string) error {
	excluded := make(map[string]struct{}, len(excludes))
	for _, name := range excludes {
		excluded[strings.ToLower(name)] = struct{}{}
	}

	srcInfo, err := fsys.Stat(src)
	if err != nil {
		return fmt.Errorf("copy source %q: %w", src, err)
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("copy source %q: not a directory", src)
	}
	if err := fsys.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return fmt.Errorf("copy destination %q: %w", dst, err)
	}

	stack := []string{""}
	for len(stack) > 0 {
		rel := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		srcDir := filepath.Join(src, filepath.FromSlash(rel))
		entries, err := afero.ReadDir(fsys, srcDir)
		if err != nil {
			return fmt.Errorf("reading %q: %w", srcDir, err)
		}
		for _, entry := range entries {
			childRel := path.Join(rel, entry.Name())
			srcPath := filepath.Join(src, filepath.FromSlash(childRel))
			dstPath := filepath.Join(dst, filepath.FromSlash(childRel))

			if entry.IsDir() {
				if _, skip := excluded[strings.ToLower(entry.Name())]; skip {
					continue
				}
				if err := fsys.MkdirAll(dstPath, entry.Mode().Perm()); err != nil {
					return fmt.Errorf("creating %q: %w", dstPath, err)
				}
				stack = append(stack, childRel)
				continue
			}
			if err := copyFile(fsys, srcPath, dstPath, entry); err != nil {
				return err
			}
		}
	}
	return nil
}

func copyFile(fsys afero.Fs, srcPath, dstPath string, fi os.FileInfo) error {
	in, err := fsys.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening %q: %w", srcPath, err)
	}
	defer in.Close()

	out, err := fsys.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return fmt.Errorf("creating %q: %w", dstPath, err)
	}
	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("writing %q: %w", dstPath, err)
	}

	// preserve modification time so metadata diffs stay quiet after a copy
	if err := fsys.Chtimes(dstPath, fi.ModTime(), fi.ModTime()); err != nil {
		return fmt.Errorf("restoring mtime on %q: %w", dstPath, err)
	}
	return nil
}
