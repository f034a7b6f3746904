package present

import (
	"context"
	"fmt"
	"io"

	apperrors "dunequery/cli/internal/errors"
	"dunequery/cli/internal/query"

	"github.com/mattn/go-runewidth"
	"github.com/pterm/pterm"
)

// minCellWidth keeps truncated cells readable on narrow terminals.
const minCellWidth = 8

// Console prints the table as a boxed grid followed by the row count.
type Console struct {
	Out io.Writer
	// Width bounds each rendered line; zero disables truncation.
	Width int
}

func (c *Console) Present(ctx context.Context, table *query.Table) error {
	limit := cellLimit(c.Width, len(table.Columns))

	data := make(pterm.TableData, 0, table.Len()+1)
	data = append(data, truncateAll(table.Columns, limit))
	for _, row := range table.Rows {
		data = append(data, truncateAll(row, limit))
	}

	out, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithData(data).
		Srender()
	if err != nil {
		return apperrors.Wrap(apperrors.KindPresent, "render table", err)
	}
	if _, err := fmt.Fprintf(c.Out, "%s\n\n(%d rows)\n", out, table.Len()); err != nil {
		return apperrors.Wrap(apperrors.KindPresent, "write table", err)
	}
	return nil
}

// cellLimit divides the terminal width between columns, leaving room for
// the separators pterm draws (" | " between cells plus the box edges).
func cellLimit(width, columns int) int {
	if width <= 0 || columns == 0 {
		return 0
	}
	avail := width - 3*columns - 1
	limit := avail / columns
	if limit < minCellWidth {
		limit = minCellWidth
	}
	return limit
}

func truncateAll(cells []string, limit int) []string {
	out := make([]string, len(cells))
	for i, cell := range cells {
		out[i] = truncate(cell, limit)
	}
	return out
}

func truncate(s string, limit int) string {
	if limit <= 0 || runewidth.StringWidth(s) <= limit {
		return s
	}
	return runewidth.Truncate(s, limit, "…")
}
