// Copyright © 2026 Releasekit

package cmd

import (
	"github.com/spf13/cobra"
)

type flagsT struct {
	root struct {
		target   string
		logLevel string
		retain   int
		excludes []string
	}
	promote struct {
		src              string
		version          string
		dryRun           bool
		backup           bool
		switchCurrent    bool
		force            bool
		verifyHash       bool
		postCheck        string
		postCheckArgs    []string
		postCheckTimeout int
		requiredPaths    []string
		skipRequired     bool
	}
	reverse struct {
		version string
		from    string
		yes     bool
	}
	list struct {
		kind string
	}
}

var releasectlFlags = flagsT{}

func addRootFlag(cmd *cobra.Command) string {
	root := "root"
	cmd.Flags().StringVar(&releasectlFlags.root.target, root, "",
		"The managed deployment root holding releases/, locks/ and logs/")
	return root
}

func addLogLevelFlag(cmd *cobra.Command) string {
	loglevel := "loglevel"
	cmd.Flags().StringVar(&releasectlFlags.root.logLevel, loglevel, "", "The log level: info, debug, warn or none")
	return loglevel
}

func addRetainFlag(cmd *cobra.Command) string {
	retain := "retain"
	cmd.Flags().IntVar(&releasectlFlags.root.retain, retain, 0,
		"How many snapshots to keep per holding area when trimming. Defaults to 5")
	return retain
}

func addExcludesFlag(cmd *cobra.Command) string {
	exclude := "exclude"
	cmd.Flags().StringSliceVar(&releasectlFlags.root.excludes, exclude, nil,
		"Directory names skipped by copy, diff and verification. Defaults to VCS and tooling caches")
	return exclude
}

func addSrcFlag(cmd *cobra.Command) string {
	src := "src"
	cmd.Flags().StringVar(&releasectlFlags.promote.src, src, "",
		"The build directory to promote. Must live under the managed root")
	return src
}

func addVersionFlag(cmd *cobra.Command) string {
	version := "version"
	cmd.Flags().StringVar(&releasectlFlags.promote.version, version, "",
		"The version name for the target slot, defaults to the base name of --src")
	return version
}

func addDryRunFlag(cmd *cobra.Command) string {
	dryRun := "dry-run"
	cmd.Flags().BoolVar(&releasectlFlags.promote.dryRun, dryRun, false,
		"Preview the file changes without taking the lock or touching the tree")
	return dryRun
}

func addBackupFlag(cmd *cobra.Command) string {
	backup := "backup"
	cmd.Flags().BoolVar(&releasectlFlags.promote.backup, backup, true,
		"Snapshot an existing target into the backup area before promoting over it")
	return backup
}

func addSwitchCurrentFlag(cmd *cobra.Command) string {
	switchCurrent := "switch-current"
	cmd.Flags().BoolVar(&releasectlFlags.promote.switchCurrent, switchCurrent, false,
		"Re-point the current alias at the new target after commit")
	return switchCurrent
}

func addForceFlag(cmd *cobra.Command) string {
	force := "force"
	cmd.Flags().BoolVar(&releasectlFlags.promote.force, force, false,
		"Delete the aside old slot after a successful promotion instead of keeping it")
	return force
}

func addVerifyHashFlag(cmd *cobra.Command) string {
	verifyHash := "verify-hash"
	cmd.Flags().BoolVar(&releasectlFlags.promote.verifyHash, verifyHash, true,
		"Verify content digests after the staging copy and again after commit")
	return verifyHash
}

func addPostCheckFlag(cmd *cobra.Command) string {
	postCheck := "post-check"
	cmd.Flags().StringVar(&releasectlFlags.promote.postCheck, postCheck, "",
		"Health-check executable launched after a successful promotion. Advisory only")
	cmd.Flags().StringSliceVar(&releasectlFlags.promote.postCheckArgs, "post-check-arg", nil,
		"Argument passed to the health-check executable, repeatable")
	return postCheck
}

func addPostCheckTimeoutFlag(cmd *cobra.Command) string {
	postCheckTimeout := "post-check-timeout"
	cmd.Flags().IntVar(&releasectlFlags.promote.postCheckTimeout, postCheckTimeout, 0,
		"Seconds before the health check is killed and reported as TIMEOUT. Defaults to 120")
	return postCheckTimeout
}

func addRequiredFlag(cmd *cobra.Command) string {
	required := "required"
	cmd.Flags().StringSliceVar(&releasectlFlags.promote.requiredPaths, required, nil,
		"Relative path expected in the target after the move, repeatable. Missing paths warn, never fail")
	return required
}

func addSkipRequiredCheckFlag(cmd *cobra.Command) string {
	skipRequiredCheck := "skip-required-check"
	cmd.Flags().BoolVar(&releasectlFlags.promote.skipRequired, skipRequiredCheck, false,
		"Skip the required-paths presence check even when paths are configured")
	return skipRequiredCheck
}

func addReverseVersionFlag(cmd *cobra.Command) string {
	version := "version"
	cmd.Flags().StringVar(&releasectlFlags.reverse.version, version, "", "The version whose target slot is swapped")
	return version
}

func addFromFlag(cmd *cobra.Command, usage string) string {
	from := "from"
	cmd.Flags().StringVar(&releasectlFlags.reverse.from, from, "", usage)
	return from
}

func addYesFlag(cmd *cobra.Command) string {
	yes := "yes"
	cmd.Flags().BoolVar(&releasectlFlags.reverse.yes, yes, false, "Skip the confirmation prompt")
	return yes
}

func addKindFlag(cmd *cobra.Command) string {
	kind := "kind"
	cmd.Flags().StringVar(&releasectlFlags.list.kind, kind, "backups",
		"The area to list: backups, rollback or undo")
	return kind
}
