// Copyright © 2026 Releasekit

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/releasekit/releasectl/pkg/core/status"
	"github.com/releasekit/releasectl/pkg/model"
)

// reportFailure builds a one-line failure summary plus a suggested retry
// command, persists it to logs/promote/last_error.txt and returns it for
// the fatal exit. The summary file is advisory: a write failure only
// degrades to the stderr copy the caller prints.
func reportFailure(fsys afero.Fs, root string, err error, retry string) string {
	code := status.CodeOf(err)
	if code == "" {
		code = "ERR_UNKNOWN"
	}
	summary := fmt.Sprintf("%s: %v", code, err)
	if stage := status.StageOf(err); stage != "" {
		summary = fmt.Sprintf("%s (stage %s)", summary, stage)
	}
	body := summary + "\nretry: " + retry + "\n"

	if root != "" {
		pth := model.NewLayout(root).LastErrorPath()
		if merr := fsys.MkdirAll(filepath.Dir(pth), 0755); merr == nil {
			_ = afero.WriteFile(fsys, pth, []byte(body), 0644)
		}
	}
	return strings.TrimSuffix(body, "\n")
}
