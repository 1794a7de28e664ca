// Copyright © 2026 Releasekit

package cmd

import (
	"github.com/docker/go-units"
	"github.com/gosuri/uitable"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/releasekit/releasectl/pkg/core"
	"github.com/releasekit/releasectl/pkg/model"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List rollback and undo candidates",
	Long: `List the snapshot directories a rollback or undo can start from. This is a
pure query: no lock is taken and nothing is moved, so the output can back
any selection front end.

With --retain the listed holding area is first trimmed down to the newest N
entries, best effort.`,
	Example: `% releasectl list --root /srv/app --kind backups
NAME                     VERSION  TIMESTAMP        FILES  SIZE
v1.2.3_20260830_103000   v1.2.3   20260830_103000  211    54.2MB`,
	Run: func(cmd *cobra.Command, args []string) {
		zlg := mustGetLogger()
		fsys := afero.NewOsFs()
		f := &releasectlFlags
		if f.root.target == "" {
			wrapFatalln("--root is required", nil)
			return
		}

		layout := model.NewLayout(f.root.target)
		var (
			area string
			list func(afero.Fs, string) ([]core.Candidate, error)
		)
		switch f.list.kind {
		case "backups":
			area, list = layout.BackupArea(), core.ListBackups
		case "rollback":
			area, list = layout.RollbackArea(), core.ListRollbackSnapshots
		case "undo":
			area, list = layout.UndoArea(), core.ListUndoBackups
		default:
			wrapFatalln("--kind must be one of backups, rollback, undo", nil)
			return
		}

		if f.root.retain > 0 {
			removed, err := core.Trim(fsys, area, f.root.retain)
			if err != nil {
				zlg.Debug("retention trim incomplete", zap.String("area", area), zap.Error(err))
			}
			if removed > 0 {
				infoLogger.Printf("trimmed %d stale entries from %s\n", removed, area)
			}
		}

		candidates, err := list(fsys, f.root.target)
		if err != nil {
			wrapFatalln("listing "+area, err)
			return
		}
		if len(candidates) == 0 {
			infoLogger.Println("no candidates under", area)
			return
		}

		table := uitable.New()
		table.AddRow("NAME", "VERSION", "TIMESTAMP", "FILES", "SIZE")
		for _, c := range candidates {
			table.AddRow(c.Name, c.Version, c.Timestamp, c.Files, units.HumanSize(float64(c.Bytes)))
		}
		infoLogger.Println(table)
	},
}

func init() {
	addRootFlag(listCmd)
	addKindFlag(listCmd)
	addRetainFlag(listCmd)
	addLogLevelFlag(listCmd)

	rootCmd.AddCommand(listCmd)
}
