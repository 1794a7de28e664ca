// Copyright © 2026 Releasekit

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/releasekit/releasectl/pkg/core"
	"github.com/releasekit/releasectl/pkg/dlogger"
	"github.com/releasekit/releasectl/pkg/postcheck"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "releasectl",
	Short: "Releasectl promotes versioned builds into a live deployment tree",
	Long: `Releasectl promotes a versioned build directory into a live deployment tree,
reverses that action (rollback), and reverses the reversal once (undo).

Every mutating operation validates its paths, verifies content digests,
serializes against concurrent invocations with a lock file, and commits by
atomic directory renames, so a crash or a concurrent run never leaves the
deployment tree half-written. Each attempt leaves an immutable JSON event
record under the managed root.
`,
}

var config *Config

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	log.SetFlags(0)
	cobra.OnInitialize(initConfig)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	viper.SetDefault("loglevel", dlogger.LogLevelInfo)
	viper.SetDefault("retain", core.DefaultRetain)
	viper.SetDefault("postcheck_timeout", int(postcheck.DefaultTimeout.Seconds()))
	if os.Getenv("RELEASECTL_CONFIG") != "" {
		// Use config file from the flag.
		viper.SetConfigFile(os.Getenv("RELEASECTL_CONFIG"))
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.releasectl")
		viper.AddConfigPath("/etc/releasectl")
		viper.SetConfigName("releasectl")
	}

	viper.AutomaticEnv() // read in environment variables that match
	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Println("Using config file:", viper.ConfigFileUsed())
	}
	var err error
	config, err = newConfig()
	if err != nil {
		logFatalln(err)
	}
	config.setFlagDefaults(&releasectlFlags)
}

// mustGetLogger builds the console logger at the configured level.
func mustGetLogger() *zap.Logger {
	level := releasectlFlags.root.logLevel
	if level == "" {
		level = dlogger.LogLevelInfo
	}
	zlg, err := dlogger.GetConsoleLogger(level)
	if err != nil {
		wrapFatalln("building logger", err)
		return zap.NewNop()
	}
	return zlg
}
