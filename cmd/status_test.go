package cmd

import (
	"bytes"
	"context"
	"testing"
	"time"

	"dunequery/cli/internal/backend"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteStatus(t *testing.T) {
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	submitted := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	var out bytes.Buffer
	require.NoError(t, writeStatus(&out, backend.Status{
		ExecutionID: "01HSTATUS",
		QueryID:     42,
		State:       backend.StateFailed,
		SubmittedAt: &submitted,
		Error:       &backend.ExecutionFailure{Message: "syntax error"},
	}))

	text := out.String()
	assert.Contains(t, text, "01HSTATUS")
	assert.Contains(t, text, "QUERY_STATE_FAILED")
	assert.Contains(t, text, "42")
	assert.Contains(t, text, "2025-01-02T03:04:05Z")
	assert.Contains(t, text, "syntax error")
	assert.NotContains(t, text, "Expires")
}

func TestCancelExecution(t *testing.T) {
	api := &stubAPI{}
	a, out, _ := newTestApp(t, api, "table")
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	require.NoError(t, a.cancelExecution(cmd, "01HCANCEL"))
	assert.Equal(t, []string{"01HCANCEL"}, api.cancelled)
	assert.Equal(t, "Execution 01HCANCEL cancelled.\n", out.String())
}
