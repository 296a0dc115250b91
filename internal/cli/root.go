// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cli implements the cspctl command tree.
package cli

import (
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"code.hybscloud.com/csp/internal/config"
	"code.hybscloud.com/csp/internal/logging"
)

// RootOptions holds global flags and the state they resolve to.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Resolved by the root command before any subcommand runs.
	Config config.Config
	Logger zerolog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for cspctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{Config: config.Default(), Logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:   "cspctl",
		Short: "Run and validate csp scenarios",
		Long:  "cspctl drives csp routers from YAML scenarios and prints their event traces.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.resolve(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a cspctl TOML config")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// resolve validates the global flags, loads the config file and builds
// the command logger.
func (o *RootOptions) resolve(cmd *cobra.Command) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}
	if o.ConfigPath != "" {
		cfg, err := config.Load(o.ConfigPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		o.Config = cfg
	}

	lvl, _ := logging.ParseLevel(o.Config.LogLevel)
	logCfg := logging.Config{Level: lvl, Timestamp: true}
	logging.ApplyEnv(&logCfg)
	if o.Verbose {
		logCfg.Level = zerolog.DebugLevel
	}
	o.Logger = logging.New(cmd.ErrOrStderr(), logCfg).With().Str("app", "cspctl").Logger()
	return nil
}
