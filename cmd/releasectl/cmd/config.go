// Copyright © 2026 Releasekit

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config describes the CLI configuration.
type Config struct {
	// bug in viper? Need to keep names of fields the same as the serialized names..
	Root             string   `json:"root" yaml:"root"`                           // Managed deployment root
	LogLevel         string   `json:"loglevel" yaml:"loglevel"`                   // Log level (info, debug, warn, none)
	Retain           int      `json:"retain" yaml:"retain"`                       // Entries kept per holding area
	Excludes         []string `json:"excludes" yaml:"excludes"`                   // Directory names skipped everywhere
	Required         []string `json:"required" yaml:"required"`                   // Paths checked after a move, warnings only
	PostCheck        string   `json:"postcheck" yaml:"postcheck"`                 // Health-check executable
	PostCheckTimeout int      `json:"postcheck_timeout" yaml:"postcheck_timeout"` // Health-check timeout in seconds
}

func newConfig() (*Config, error) {
	var config Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// setFlagDefaults backfills flags left at their zero value from the config
// file. Explicit flags always win.
func (c *Config) setFlagDefaults(flags *flagsT) {
	if flags.root.target == "" {
		flags.root.target = c.Root
	}
	if flags.root.logLevel == "" {
		flags.root.logLevel = c.LogLevel
	}
	if flags.root.retain == 0 {
		flags.root.retain = c.Retain
	}
	if len(flags.root.excludes) == 0 {
		flags.root.excludes = c.Excludes
	}
	if len(flags.promote.requiredPaths) == 0 {
		flags.promote.requiredPaths = c.Required
	}
	if flags.promote.postCheck == "" {
		flags.promote.postCheck = c.PostCheck
	}
	if flags.promote.postCheckTimeout == 0 {
		flags.promote.postCheckTimeout = c.PostCheckTimeout
	}
}

// configCmd represents the config related commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Commands to manage a config",
	Long: `Commands to manage releasectl CLI config.

Configuration for releasectl is the common set of flags that are needed for
most commands and do not change across runs, analogous to "git config ...".`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
