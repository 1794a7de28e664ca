// Copyright © 2026 Releasekit

package cmd

import (
	"os"
	"os/user"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"github.com/spf13/cobra"

	"github.com/releasekit/releasectl/pkg/core"
	"github.com/releasekit/releasectl/pkg/dlogger"
	"github.com/releasekit/releasectl/pkg/index"
	"github.com/releasekit/releasectl/pkg/postcheck"
)

var configGen = &cobra.Command{
	Use:   "generate",
	Short: "Generate a starter config",
	Long:  "Generate a starter config for releasectl. Config file will be placed in $HOME/.releasectl/releasectl.yaml",
	Run: func(cmd *cobra.Command, args []string) {
		usr, err := user.Current()
		if usr == nil || err != nil {
			wrapFatalln("could not get home directory for user", err)
			return
		}
		starter := Config{
			Root:             releasectlFlags.root.target,
			LogLevel:         dlogger.LogLevelInfo,
			Retain:           core.DefaultRetain,
			Excludes:         index.DefaultExcludes,
			PostCheckTimeout: int(postcheck.DefaultTimeout.Seconds()),
		}
		o, e := yaml.Marshal(starter)
		if e != nil {
			wrapFatalln("serialize config to yaml", e)
			return
		}
		header := []byte(`# releasectl configuration.
# root: the managed deployment root (holds releases/, locks/, logs/)
# retain: snapshots kept per holding area when trimming
# excludes: directory names skipped by copy, diff and verification
# required: relative paths checked after each move (warnings only)
# postcheck / postcheck_timeout: advisory health check after promote
`)
		dir := filepath.Join(usr.HomeDir, ".releasectl")
		_ = os.Mkdir(dir, 0755)
		err = os.WriteFile(filepath.Join(dir, "releasectl.yaml"), append(header, o...), 0644)
		if err != nil {
			wrapFatalln("write config file", err)
			return
		}
		infoLogger.Println("wrote", filepath.Join(dir, "releasectl.yaml"))
	},
}

func init() {
	addRootFlag(configGen)

	configCmd.AddCommand(configGen)
}
