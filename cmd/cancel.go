package cmd

import (
	"fmt"

	apperrors "dunequery/cli/internal/errors"

	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <execution-id>",
	Short: "Ask Dune to stop a running execution",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a := newApp(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		return a.cancelExecution(cmd, args[0])
	},
}

func (a *app) cancelExecution(cmd *cobra.Command, executionID string) error {
	if err := a.api.Cancel(cmd.Context(), executionID); err != nil {
		return apperrors.Wrap(apperrors.KindRemote, "cancel execution", err)
	}
	fmt.Fprintf(a.out, "Execution %s cancelled.\n", executionID)
	return nil
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
