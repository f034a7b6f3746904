package present

import (
	"context"
	"encoding/csv"
	"io"

	apperrors "dunequery/cli/internal/errors"
	"dunequery/cli/internal/query"
)

// CSV writes the table back out as RFC 4180 CSV with a header row.
type CSV struct {
	Out io.Writer
}

func (c *CSV) Present(ctx context.Context, table *query.Table) error {
	w := csv.NewWriter(c.Out)
	if err := w.Write(table.Columns); err != nil {
		return apperrors.Wrap(apperrors.KindPresent, "write csv header", err)
	}
	if err := w.WriteAll(table.Rows); err != nil {
		return apperrors.Wrap(apperrors.KindPresent, "write csv rows", err)
	}
	return nil
}
