package logging

import (
	"errors"
	"testing"

	apperrors "dunequery/cli/internal/errors"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
)

func TestFormatFailure(t *testing.T) {
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	tests := []struct {
		name  string
		err   error
		title string
		hint  string
	}{
		{
			name:  "execution carries state",
			err:   apperrors.Wrap(apperrors.KindExecution, "query finished with QUERY_STATE_FAILED", errors.New("line 1:8: Column 'x' cannot be resolved")),
			title: "Execution Error",
			hint:  "QUERY_STATE_FAILED",
		},
		{
			name:  "configuration",
			err:   apperrors.New(apperrors.KindConfiguration, "SQL file 'q.sql' is empty"),
			title: "Configuration Error",
			hint:  "DUNE_API_KEY",
		},
		{
			name:  "timeout",
			err:   apperrors.New(apperrors.KindTimeout, "gave up"),
			title: "Timeout",
			hint:  "--max-wait",
		},
		{
			name:  "secrets are masked",
			err:   apperrors.Wrap(apperrors.KindRemote, "submit", errors.New("api_key=supersecret rejected")),
			title: "Remote Error",
			hint:  "api_key=***",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := FormatFailure(tt.err)
			assert.Contains(t, out, tt.title)
			assert.Contains(t, out, tt.hint)
			assert.NotContains(t, out, "supersecret")
		})
	}
}
