package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *HTTP {
	t.Helper()
	return newTestClientWithTimeout(t, handler, 0)
}

func newTestClientWithTimeout(t *testing.T, handler http.Handler, timeout time.Duration) *HTTP {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return newHTTP(Options{
		BaseURL:        srv.URL + "/",
		APIKey:         "test-key",
		RequestTimeout: timeout,
		Performance:    "medium",
		UserAgent:      "dunequery-cli/test",
	})
}

func TestExecute(t *testing.T) {
	h := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/sql/execute", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-DUNE-API-KEY"))
		assert.Equal(t, "dunequery-cli/test", r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "SELECT 1", body["sql"])
		assert.Equal(t, "medium", body["performance"])

		_, _ = w.Write([]byte(`{"execution_id":"01HX","state":"QUERY_STATE_PENDING"}`))
	}))

	exec, err := h.Execute(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, "01HX", exec.ID)
	assert.Equal(t, StatePending, exec.State)
}

func TestExecuteAPIError(t *testing.T) {
	h := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid API Key"}`))
	}))

	_, err := h.Execute(context.Background(), "SELECT 1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "execute", apiErr.Op)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid API Key", apiErr.Message)
}

func TestExecuteWithoutID(t *testing.T) {
	h := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"state":"QUERY_STATE_PENDING"}`))
	}))

	_, err := h.Execute(context.Background(), "SELECT 1")
	require.Error(t, err)
}

func TestStatus(t *testing.T) {
	h := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/execution/01HX/status", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"execution_id": "01HX",
			"query_id": 0,
			"state": "QUERY_STATE_FAILED",
			"submitted_at": "2024-12-20T11:04:18.724658Z",
			"error": {"type": "FAILED_TYPE_EXECUTION_FAILED", "message": "line 1:8: Column 'x' cannot be resolved"}
		}`))
	}))

	st, err := h.Status(context.Background(), "01HX")
	require.NoError(t, err)
	assert.Equal(t, StateFailed, st.State)
	require.NotNil(t, st.Error)
	assert.Contains(t, st.Error.Message, "cannot be resolved")
	require.NotNil(t, st.SubmittedAt)
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr bool
	}{
		{name: "accepted", status: http.StatusOK, body: `{"success":true}`},
		{name: "refused", status: http.StatusOK, body: `{"success":false}`, wantErr: true},
		{name: "not found", status: http.StatusNotFound, body: `{"error":"execution not found"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/v1/execution/01HX/cancel", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			err := h.Cancel(context.Background(), "01HX")
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResultsCSVSinglePage(t *testing.T) {
	h := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/execution/01HX/results/csv", r.URL.Path)
		_, _ = w.Write([]byte("a,b\n1,2\n"))
	}))

	data, err := h.ResultsCSV(context.Background(), "01HX")
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))
}

func TestResultsCSVFollowsPagination(t *testing.T) {
	h := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("offset") {
		case "":
			w.Header().Set("x-dune-next-uri", "/api/v1/execution/01HX/results/csv?offset=2")
			_, _ = w.Write([]byte("name,note\nalice,x\nbob,y\n"))
		case "2":
			w.Header().Set("x-dune-next-uri", "/api/v1/execution/01HX/results/csv?offset=4")
			_, _ = w.Write([]byte("name,note\ncarol,\"multi\nline\"\n"))
		case "4":
			_, _ = w.Write([]byte("name,note\ndave,z"))
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
		}
	}))

	data, err := h.ResultsCSV(context.Background(), "01HX")
	require.NoError(t, err)
	assert.Equal(t, "name,note\nalice,x\nbob,y\ncarol,\"multi\nline\"\ndave,z", string(data))
}

func TestResultsCSVStopsOnPaginationLoop(t *testing.T) {
	h := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("x-dune-next-uri", "/api/v1/execution/01HX/results/csv")
		_, _ = w.Write([]byte("a\n1\n"))
	}))

	_, err := h.ResultsCSV(context.Background(), "01HX")
	require.Error(t, err)
}

func TestResultsCSVSlowStreamOutlivesRequestTimeout(t *testing.T) {
	h := newTestClientWithTimeout(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		_, _ = w.Write([]byte("a\n"))
		flusher.Flush()
		for i := 0; i < 10; i++ {
			time.Sleep(50 * time.Millisecond)
			_, _ = w.Write([]byte("1\n"))
			flusher.Flush()
		}
	}), 200*time.Millisecond)

	data, err := h.ResultsCSV(context.Background(), "01HX")
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n1\n1\n1\n1\n1\n1\n1\n1\n1\n", string(data))
}

func TestResultsCSVStalledStreamFails(t *testing.T) {
	h := newTestClientWithTimeout(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("a\n"))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}), 100*time.Millisecond)

	_, err := h.ResultsCSV(context.Background(), "01HX")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data for 100ms")
}

func TestStatusKeepsTotalTimeout(t *testing.T) {
	h := newTestClientWithTimeout(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}), 100*time.Millisecond)

	start := time.Now()
	_, err := h.Status(context.Background(), "01HX")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestStateClassification(t *testing.T) {
	tests := []struct {
		state     State
		terminal  bool
		succeeded bool
	}{
		{StatePending, false, false},
		{StateExecuting, false, false},
		{StateCompleted, true, true},
		{StateCompletedPartial, true, true},
		{StateFailed, true, false},
		{StateCancelled, true, false},
		{StateExpired, true, false},
		{State("QUERY_STATE_SOMETHING_NEW"), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			assert.Equal(t, tt.terminal, tt.state.IsTerminal())
			assert.Equal(t, tt.succeeded, tt.state.Succeeded())
		})
	}
}
