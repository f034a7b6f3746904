package present

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	apperrors "dunequery/cli/internal/errors"
	"dunequery/cli/internal/query"
)

// JSON writes the table as an array of objects keyed by column name.
// Keys keep the column order of the result.
type JSON struct {
	Out io.Writer
}

func (j *JSON) Present(ctx context.Context, table *query.Table) error {
	rows := make([]orderedRow, 0, table.Len())
	for _, r := range table.Rows {
		rows = append(rows, orderedRow{columns: table.Columns, values: r})
	}

	enc := json.NewEncoder(j.Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return apperrors.Wrap(apperrors.KindPresent, "write json", err)
	}
	return nil
}

// orderedRow marshals as a JSON object with keys in column order.
type orderedRow struct {
	columns []string
	values  []string
}

func (r orderedRow) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var val []byte
		if i < len(r.values) {
			val, err = json.Marshal(r.values[i])
		} else {
			val = []byte("null")
		}
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
