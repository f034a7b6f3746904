// Package query runs one SQL execution end to end: submit, wait for a terminal
// state, download the CSV result and parse it into a Table.
package query

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	apperrors "dunequery/cli/internal/errors"
)

// Table is a fully materialised result set. Column order is preserved.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool { return t.Len() == 0 }

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value returns the cell at row for the named column.
func (t *Table) Value(row int, column string) (string, bool) {
	if row < 0 || row >= t.Len() {
		return "", false
	}
	idx := t.ColumnIndex(column)
	if idx < 0 {
		return "", false
	}
	return t.Rows[row][idx], true
}

// ParseCSV reads a CSV document whose first record is the header.
// A header-only document yields an empty table; a document without a header,
// or with records of a different width than the header, is a parse error.
// Blank lines are skipped, so a single-column row holding an empty value
// (written by the engine as an empty line) is not counted.
func ParseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 0

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.New(apperrors.KindParse, "result has no header row")
		}
		return nil, apperrors.Wrap(apperrors.KindParse, "read result header", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := &Table{Columns: header}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindParse, fmt.Sprintf("read result row %d", len(t.Rows)+1), err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}
