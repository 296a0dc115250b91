// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"bytes"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"code.hybscloud.com/csp/internal/config"
	"code.hybscloud.com/csp/internal/scenario"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Mode           string
	OutboxCapacity int
	FlowToken      string

	// Tokens overrides the run token generator (for testing).
	Tokens scenario.TokenGenerator
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a scenario and print its trace",
		Long: `Run a scenario against a fresh router and store and print the trace.

The exit code is 1 when an expectation fails or a delivery faults.

Example:
  cspctl run ./login.yaml
  cspctl run --mode deferred --format json ./login.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "", "delivery mode (direct|deferred), overrides the config")
	cmd.Flags().IntVar(&opts.OutboxCapacity, "outbox-capacity", 0, "deferred mode queue size, overrides the config")
	cmd.Flags().StringVar(&opts.FlowToken, "token", "", "fixed run token, overrides the config")

	return cmd
}

// options merges the command flags over the loaded config.
func (o *RunOptions) options() (scenario.Options, error) {
	cfg := o.Config
	if o.Mode != "" {
		cfg.Mode = o.Mode
	}
	if o.OutboxCapacity != 0 {
		cfg.OutboxCapacity = o.OutboxCapacity
	}
	if o.FlowToken != "" {
		cfg.FlowToken = o.FlowToken
	}
	if err := config.Validate(cfg); err != nil {
		return scenario.Options{}, err
	}
	logger := o.Logger
	return scenario.Options{
		Mode:           cfg.Mode,
		OutboxCapacity: cfg.OutboxCapacity,
		FlowToken:      cfg.FlowToken,
		Tokens:         o.Tokens,
		Logger:         &logger,
	}, nil
}

func runScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	runOpts, err := opts.options()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid run options", err)
	}
	sc, err := scenario.Load(path)
	if err != nil {
		_ = formatter.Failure(ErrCodeLoad, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := scenario.Run(ctx, sc, runOpts)
	if err != nil {
		_ = formatter.Failure(ErrCodeScenario, err.Error(), nil)
		return WrapExitError(ExitCommandError, "scenario aborted", err)
	}

	if !res.Pass {
		if formatter.JSON() {
			_ = formatter.Failure(ErrCodeFailed, "scenario failed", res)
		} else {
			_ = scenario.Render(formatter.Writer, res)
		}
		return NewExitError(ExitFailure, "scenario failed")
	}

	var text bytes.Buffer
	if err := scenario.Render(&text, res); err != nil {
		return WrapExitError(ExitCommandError, "failed to render trace", err)
	}
	return formatter.Success(res, text.String())
}
