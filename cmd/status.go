package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"dunequery/cli/internal/backend"
	apperrors "dunequery/cli/internal/errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <execution-id>",
	Short: "Show the state of an execution",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		a := newApp(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		return a.showStatus(cmd, args[0])
	},
}

func (a *app) showStatus(cmd *cobra.Command, executionID string) error {
	st, err := a.api.Status(cmd.Context(), executionID)
	if err != nil {
		return apperrors.Wrap(apperrors.KindRemote, "check execution status", err)
	}
	return writeStatus(a.out, st)
}

func writeStatus(w io.Writer, st backend.Status) error {
	rows := pterm.TableData{
		{"Execution", st.ExecutionID},
		{"State", string(st.State)},
	}
	if st.QueryID != 0 {
		rows = append(rows, []string{"Query", strconv.FormatInt(st.QueryID, 10)})
	}
	if st.QueuePosition > 0 {
		rows = append(rows, []string{"Queue position", strconv.Itoa(st.QueuePosition)})
	}
	for _, ts := range []struct {
		label string
		at    *time.Time
	}{
		{"Submitted", st.SubmittedAt},
		{"Started", st.ExecutionStartedAt},
		{"Ended", st.ExecutionEndedAt},
		{"Expires", st.ExpiresAt},
	} {
		if ts.at != nil {
			rows = append(rows, []string{ts.label, ts.at.Format(time.RFC3339)})
		}
	}
	if st.Error != nil {
		rows = append(rows, []string{"Error", st.Error.Message})
	}

	out, err := pterm.DefaultTable.WithData(rows).Srender()
	if err != nil {
		return apperrors.Wrap(apperrors.KindPresent, "render status", err)
	}
	fmt.Fprintln(w, out)
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
