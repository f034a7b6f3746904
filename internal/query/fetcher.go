package query

import (
	"bytes"
	"context"

	"dunequery/cli/internal/backend"
	apperrors "dunequery/cli/internal/errors"
)

// Fetcher downloads and parses the result of a completed execution.
type Fetcher struct {
	API backend.API
}

// Fetch returns the full result table. Download failures are fetch errors and
// malformed CSV is a parse error; an empty table is not an error.
func (f *Fetcher) Fetch(ctx context.Context, executionID string) (*Table, error) {
	data, err := f.API.ResultsCSV(ctx, executionID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, apperrors.Wrap(apperrors.KindInterrupted, "download results", ctx.Err())
		}
		return nil, apperrors.Wrap(apperrors.KindFetch, "download results", err)
	}
	return ParseCSV(bytes.NewReader(data))
}
