// Copyright © 2026 Releasekit

package core

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/releasekit/releasectl/pkg/model"
)

// Trim removes the oldest entries of a holding area beyond keep, oldest
// first. Age comes from the timestamp embedded in the snapshot name;
// entries without a parseable name fall back to their directory
// modification time, so areas mixing version names still trim age-major.
// The trim is best-effort: a failure to delete one stale entry does not
// abort the trim of the others; all failures come back aggregated for
// optional logging.
func Trim(fsys afero.Fs, area string, keep int) (int, error) {
	if keep < 1 {
		keep = 1
	}
	infos, err := afero.ReadDir(fsys, area)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	type snapshot struct {
		name string
		age  time.Time
	}
	snapshots := make([]snapshot, 0, len(infos))
	for _, fi := range infos {
		if !fi.IsDir() {
			continue
		}
		age := fi.ModTime()
		if _, ts, ok := model.SplitSnapshotName(fi.Name()); ok {
			if t, perr := time.Parse(model.TimestampFormat, ts); perr == nil {
				age = t
			}
		}
		snapshots = append(snapshots, snapshot{name: fi.Name(), age: age})
	}
	if len(snapshots) <= keep {
		return 0, nil
	}
	sort.Slice(snapshots, func(i, j int) bool {
		if !snapshots[i].age.Equal(snapshots[j].age) {
			return snapshots[i].age.Before(snapshots[j].age)
		}
		return snapshots[i].name < snapshots[j].name
	})

	var (
		errs    error
		removed int
	)
	for _, s := range snapshots[:len(snapshots)-keep] {
		if err := fsys.RemoveAll(filepath.Join(area, s.name)); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		removed++
	}
	return removed, errs
}
