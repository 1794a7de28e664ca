// Copyright © 2026 Releasekit

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/releasekit/releasectl/pkg/core"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Reverse the most recent rollback",
	Long: `Reverse a rollback: the live target moves into the undo-backup holding area
and the candidate parked by the rollback moves back into the target slot.

The candidate path must resolve under the rollback-current holding area, so
only directories parked by a rollback qualify and undo is bounded to one
level; snapshots in the undo-backup area are kept for manual recovery only.
Unless --yes is given the command asks for the literal word "undo" at a
prompt; declining cancels with exit code 0.`,
	Example: `% releasectl undo --root /srv/app --version v1.2.3 \
    --from /srv/app/releases/_rollback_current/v1.2.3_20260830_110000 --yes`,
	Run: func(cmd *cobra.Command, args []string) {
		runReverse("undo", core.Undo)
	},
}

func init() {
	requiredFlags := []string{
		addReverseVersionFlag(undoCmd),
		addFromFlag(undoCmd, "The undo candidate directory to restore, under releases/_rollback_current"),
	}

	addRootFlag(undoCmd)
	addYesFlag(undoCmd)
	addRequiredFlag(undoCmd)
	addRetainFlag(undoCmd)
	addLogLevelFlag(undoCmd)

	for _, flag := range requiredFlags {
		err := undoCmd.MarkFlagRequired(flag)
		if err != nil {
			logFatalln(err)
		}
	}

	rootCmd.AddCommand(undoCmd)
}
