package query

import (
	"strings"
	"testing"

	apperrors "dunequery/cli/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVRoundTrip(t *testing.T) {
	tbl, err := ParseCSV(strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, tbl.Columns)
	require.Equal(t, 1, tbl.Len())

	a, ok := tbl.Value(0, "a")
	require.True(t, ok)
	assert.Equal(t, "1", a)
	b, ok := tbl.Value(0, "b")
	require.True(t, ok)
	assert.Equal(t, "2", b)
}

func TestParseCSV(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		columns  []string
		rows     [][]string
		wantKind apperrors.Kind
	}{
		{
			name:    "header only is empty",
			input:   "block_time,amount\n",
			columns: []string{"block_time", "amount"},
		},
		{
			name:    "header without trailing newline",
			input:   "x",
			columns: []string{"x"},
		},
		{
			name:    "quoted fields keep commas and newlines",
			input:   "name,memo\n\"Doe, J\",\"line1\nline2\"\n",
			columns: []string{"name", "memo"},
			rows:    [][]string{{"Doe, J", "line1\nline2"}},
		},
		{
			name:    "byte order mark stripped",
			input:   "\ufeffa,b\n1,2\n",
			columns: []string{"a", "b"},
			rows:    [][]string{{"1", "2"}},
		},
		{
			name:    "empty cells preserved",
			input:   "a,b,c\n,2,\n",
			columns: []string{"a", "b", "c"},
			rows:    [][]string{{"", "2", ""}},
		},
		{
			name:     "no header",
			input:    "",
			wantKind: apperrors.KindParse,
		},
		{
			name:     "ragged row",
			input:    "a,b\n1,2,3\n",
			wantKind: apperrors.KindParse,
		},
		{
			name:     "unterminated quote",
			input:    "a\n\"oops\n",
			wantKind: apperrors.KindParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := ParseCSV(strings.NewReader(tt.input))
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperrors.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.columns, tbl.Columns)
			assert.Equal(t, tt.rows, tbl.Rows)
			assert.Equal(t, len(tt.rows) == 0, tbl.IsEmpty())
		})
	}
}

func TestTableValueBounds(t *testing.T) {
	tbl := &Table{Columns: []string{"a"}, Rows: [][]string{{"1"}}}

	_, ok := tbl.Value(1, "a")
	assert.False(t, ok)
	_, ok = tbl.Value(0, "missing")
	assert.False(t, ok)

	var nilTable *Table
	assert.True(t, nilTable.IsEmpty())
}

func TestParseCSVSkipsBlankLines(t *testing.T) {
	tbl, err := ParseCSV(strings.NewReader("x\n\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, tbl.Columns)
	assert.True(t, tbl.IsEmpty(), "an empty single-column value reads as no row")

	tbl, err = ParseCSV(strings.NewReader("x\n\"\"\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len(), "a quoted empty value is a row")
}
