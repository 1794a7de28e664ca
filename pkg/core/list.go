// Copyright © 2026 Releasekit

package core

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"

	"github.com/releasekit/releasectl/pkg/index"
	"github.com/releasekit/releasectl/pkg/model"
)

// Candidate describes one snapshot directory in a backup or holding area.
// Listing is a pure query: it takes no lock and mutates nothing, so any
// front end can drive a selection from it.
type Candidate struct {
	Name      string
	Path      string
	Version   string
	Timestamp string
	ModTime   time.Time
	Files     int
	Bytes     int64
}

// ListBackups returns the rollback sources under the backup area.
func ListBackups(fsys afero.Fs, root string) ([]Candidate, error) {
	layout := model.NewLayout(root)
	return listArea(fsys, layout.BackupArea())
}

// ListRollbackSnapshots returns the undo candidates under the
// rollback-current holding area.
func ListRollbackSnapshots(fsys afero.Fs, root string) ([]Candidate, error) {
	layout := model.NewLayout(root)
	return listArea(fsys, layout.RollbackArea())
}

// ListUndoBackups returns the snapshots saved by undo operations.
func ListUndoBackups(fsys afero.Fs, root string) ([]Candidate, error) {
	layout := model.NewLayout(root)
	return listArea(fsys, layout.UndoArea())
}

func listArea(fsys afero.Fs, area string) ([]Candidate, error) {
	infos, err := afero.ReadDir(fsys, area)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	candidates := make([]Candidate, 0, len(infos))
	for _, fi := range infos {
		if !fi.IsDir() {
			continue
		}
		c := Candidate{
			Name:    fi.Name(),
			Path:    filepath.Join(area, fi.Name()),
			ModTime: fi.ModTime(),
		}
		if version, ts, ok := model.SplitSnapshotName(fi.Name()); ok {
			c.Version = version
			c.Timestamp = ts
		}
		if idx, err := index.Build(fsys, c.Path, nil); err == nil {
			c.Files = len(idx)
			for _, entry := range idx {
				c.Bytes += entry.Size
			}
		}
		candidates = append(candidates, c)
	}
	// oldest first, newest last, across version names: order by the
	// embedded timestamp, falling back to the directory mtime
	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if ci.Timestamp != "" && cj.Timestamp != "" && ci.Timestamp != cj.Timestamp {
			return ci.Timestamp < cj.Timestamp
		}
		if ci.Timestamp == "" || cj.Timestamp == "" {
			if !ci.ModTime.Equal(cj.ModTime) {
				return ci.ModTime.Before(cj.ModTime)
			}
		}
		return ci.Name < cj.Name
	})
	return candidates, nil
}
