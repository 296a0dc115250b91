// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"code.hybscloud.com/csp/internal/scenario"
)

// ValidationSummary describes a valid scenario.
type ValidationSummary struct {
	Name     string `json:"name"`
	Services int    `json:"services"`
	Entries  int    `json:"entries"`
	Sessions int    `json:"sessions"`
	Flow     int    `json:"flow"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Check a scenario without running it",
		Long: `Parse a scenario with strict field checking and validate its
cross references (services, session slices, expectations).`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	sc, err := scenario.Load(path)
	if err != nil {
		_ = formatter.Failure(ErrCodeScenario, err.Error(), nil)
		return WrapExitError(ExitFailure, "scenario invalid", err)
	}
	opts.Logger.Debug().Str("scenario", sc.Name).Msg("scenario valid")

	summary := ValidationSummary{
		Name:     sc.Name,
		Services: len(sc.Services),
		Entries:  len(sc.Entries),
		Sessions: len(sc.Sessions),
		Flow:     len(sc.Flow),
	}
	text := fmt.Sprintf("✓ scenario %s valid: %d services, %d entries, %d sessions, %d flow steps\n",
		summary.Name, summary.Services, summary.Entries, summary.Sessions, summary.Flow)
	return formatter.Success(summary, text)
}
