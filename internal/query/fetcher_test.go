package query

import (
	"context"
	"errors"
	"testing"

	apperrors "dunequery/cli/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchParsesResult(t *testing.T) {
	f := &Fetcher{API: &fakeAPI{csv: "a,b\n1,2\n"}}

	table, err := f.Fetch(context.Background(), "01HEXEC")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, table.Columns)
	v, ok := table.Value(0, "b")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestFetchDownloadError(t *testing.T) {
	f := &Fetcher{API: &fakeAPI{resultsErr: errors.New("unexpected EOF")}}

	_, err := f.Fetch(context.Background(), "01HEXEC")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindFetch, apperrors.KindOf(err))
}

func TestFetchInterrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &Fetcher{API: &fakeAPI{resultsErr: context.Canceled}}

	_, err := f.Fetch(ctx, "01HEXEC")
	assert.Equal(t, apperrors.KindInterrupted, apperrors.KindOf(err))
}

func TestFetchEmptyBodyIsParseError(t *testing.T) {
	f := &Fetcher{API: &fakeAPI{csv: ""}}

	_, err := f.Fetch(context.Background(), "01HEXEC")
	assert.Equal(t, apperrors.KindParse, apperrors.KindOf(err))
}
