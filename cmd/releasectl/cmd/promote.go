// Copyright © 2026 Releasekit

package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/releasekit/releasectl/pkg/core"
	"github.com/releasekit/releasectl/pkg/index"
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Promote a build directory into its target slot",
	Long: `Promote a versioned build directory into the target slot under the managed
root. The build is copied into a timestamped staging directory, verified by
content digest, and moved into place by atomic renames. An existing target
is snapshotted into the backup area first unless --backup=false.

With --dry-run the command prints the file-level changes the promotion would
make and exits without taking the lock or touching the tree.`,
	Example: `% releasectl promote --root /srv/app --src /srv/app/build/v1.2.3 --switch-current
promoted v1.2.3 -> /srv/app/releases/v1.2.3`,
	Run: func(cmd *cobra.Command, args []string) {
		zlg := mustGetLogger()
		fsys := afero.NewOsFs()
		f := &releasectlFlags
		if f.root.target == "" {
			wrapFatalln("--root is required", nil)
			return
		}
		if f.promote.src == "" {
			wrapFatalln("--src is required", nil)
			return
		}

		required := f.promote.requiredPaths
		if f.promote.skipRequired {
			required = nil
		}
		opts := []core.Option{
			core.WithBackup(f.promote.backup),
			core.WithSwitchCurrent(f.promote.switchCurrent),
			core.WithForce(f.promote.force),
			core.WithVerifyHash(f.promote.verifyHash),
			core.WithDryRun(f.promote.dryRun),
			core.WithRequiredPaths(required),
			core.WithExcludes(f.root.excludes),
			core.WithRetain(f.root.retain),
			core.WithLogger(zlg),
		}
		if f.promote.postCheck != "" {
			opts = append(opts,
				core.WithPostCheck(f.promote.postCheck, f.promote.postCheckArgs...),
				core.WithPostCheckTimeout(time.Duration(f.promote.postCheckTimeout)*time.Second),
			)
		}

		res, err := core.Promote(context.Background(), fsys, f.root.target, f.promote.src, f.promote.version, opts...)
		if err != nil {
			if res != nil {
				// the promotion committed but its event record did not
				infoLogger.Println(color.YellowString("promotion of %s committed, recording the event failed", res.Version))
			}
			retry := fmt.Sprintf("releasectl promote --root %s --src %s", f.root.target, f.promote.src)
			if f.promote.version != "" {
				retry += " --version " + f.promote.version
			}
			wrapFatalWithCodef(1, "%s", reportFailure(fsys, f.root.target, err, retry))
			return
		}

		if res.Preview != nil {
			printPreview(fsys, f.promote.src, f.root.excludes, res.Preview)
			return
		}

		infoLogger.Println(color.GreenString("promoted %s -> %s", res.Version, res.Target))
		if res.Backup != "" {
			infoLogger.Println("backup saved at:", res.Backup)
		}
		if res.OldSlot != "" {
			infoLogger.Println("previous target kept at:", res.OldSlot)
		}
		if res.PostCheck != "" {
			infoLogger.Println("post-check:", string(res.PostCheck))
		}
		for _, w := range res.Warnings {
			infoLogger.Println(color.YellowString("warning: %s", w))
		}
	},
}

// printPreview renders the dry-run diff, sizes taken from the source tree.
func printPreview(fsys afero.Fs, src string, excludes []string, d *index.Diff) {
	if len(excludes) == 0 {
		excludes = index.DefaultExcludes
	}
	sizes := map[string]int64{}
	var total int64
	if idx, err := index.Build(fsys, src, excludes); err == nil {
		for key, entry := range idx {
			sizes[key] = entry.Size
		}
	}
	for _, key := range d.Added {
		infoLogger.Println(color.GreenString("+ %s (%s)", key, units.HumanSize(float64(sizes[key]))))
		total += sizes[key]
	}
	for _, key := range d.Changed {
		infoLogger.Println(color.YellowString("~ %s (%s)", key, units.HumanSize(float64(sizes[key]))))
		total += sizes[key]
	}
	for _, key := range d.Removed {
		infoLogger.Println(color.RedString("- %s", key))
	}
	if d.Empty() {
		infoLogger.Println("no changes")
		return
	}
	infoLogger.Printf("%d added, %d changed, %d removed (%s to copy)\n",
		len(d.Added), len(d.Changed), len(d.Removed), units.HumanSize(float64(total)))
}

func init() {
	// --root may come from the config file, so only --src is hard-required
	requiredFlags := []string{addSrcFlag(promoteCmd)}

	addRootFlag(promoteCmd)
	addVersionFlag(promoteCmd)
	addDryRunFlag(promoteCmd)
	addBackupFlag(promoteCmd)
	addSwitchCurrentFlag(promoteCmd)
	addForceFlag(promoteCmd)
	addVerifyHashFlag(promoteCmd)
	addPostCheckFlag(promoteCmd)
	addPostCheckTimeoutFlag(promoteCmd)
	addRequiredFlag(promoteCmd)
	addSkipRequiredCheckFlag(promoteCmd)
	addExcludesFlag(promoteCmd)
	addRetainFlag(promoteCmd)
	addLogLevelFlag(promoteCmd)

	for _, flag := range requiredFlags {
		err := promoteCmd.MarkFlagRequired(flag)
		if err != nil {
			logFatalln(err)
		}
	}

	rootCmd.AddCommand(promoteCmd)
}
