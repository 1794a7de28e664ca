// Copyright © 2026 Releasekit

package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/releasekit/releasectl/pkg/core"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Swap the live target with a backup snapshot",
	Long: `Swap the live target slot with a snapshot from the backup area. The
displaced target is parked in the rollback-current holding area and becomes
the candidate for a later undo.

The snapshot path must resolve under the backup area of the managed root.
Unless --yes is given the command asks for the literal word "rollback" at a
prompt; declining cancels with exit code 0.`,
	Example: `% releasectl rollback --root /srv/app --version v1.2.3 \
    --from /srv/app/releases/_backups/v1.2.3_20260830_103000 --yes`,
	Run: func(cmd *cobra.Command, args []string) {
		runReverse("rollback", core.Rollback)
	},
}

// runReverse drives rollback and undo, which differ only in the engine
// entrypoint and the typed confirmation word.
func runReverse(action string, reverse func(afero.Fs, string, string, string, ...core.Option) (*core.ReverseResult, error)) {
	zlg := mustGetLogger()
	fsys := afero.NewOsFs()
	f := &releasectlFlags
	if f.root.target == "" {
		wrapFatalln("--root is required", nil)
		return
	}
	if f.reverse.version == "" {
		wrapFatalln("--version is required", nil)
		return
	}
	if f.reverse.from == "" {
		wrapFatalln("--from is required", nil)
		return
	}

	if !f.reverse.yes && !confirmAction(action, f.reverse.from) {
		infoLogger.Println(action + " cancelled")
		osExit(0)
		return
	}

	res, err := reverse(fsys, f.root.target, f.reverse.version, f.reverse.from,
		core.WithRequiredPaths(f.promote.requiredPaths),
		core.WithRetain(f.root.retain),
		core.WithLogger(zlg),
	)
	if err != nil {
		if res != nil {
			infoLogger.Println(color.YellowString("%s of %s committed, recording the event failed", action, f.reverse.version))
		}
		retry := fmt.Sprintf("releasectl %s --root %s --version %s --from %s --yes",
			action, f.root.target, f.reverse.version, f.reverse.from)
		wrapFatalWithCodef(1, "%s", reportFailure(fsys, f.root.target, err, retry))
		return
	}

	infoLogger.Println(color.GreenString("%s of %s done, target is %s", action, res.Version, res.Target))
	if res.AsidePath != "" {
		infoLogger.Println("displaced target kept at:", res.AsidePath)
	}
	for _, w := range res.Warnings {
		infoLogger.Println(color.YellowString("warning: %s", w))
	}
}

func init() {
	requiredFlags := []string{
		addReverseVersionFlag(rollbackCmd),
		addFromFlag(rollbackCmd, "The backup snapshot directory to restore, under releases/_backups"),
	}

	addRootFlag(rollbackCmd)
	addYesFlag(rollbackCmd)
	addRequiredFlag(rollbackCmd)
	addRetainFlag(rollbackCmd)
	addLogLevelFlag(rollbackCmd)

	for _, flag := range requiredFlags {
		err := rollbackCmd.MarkFlagRequired(flag)
		if err != nil {
			logFatalln(err)
		}
	}

	rootCmd.AddCommand(rollbackCmd)
}
