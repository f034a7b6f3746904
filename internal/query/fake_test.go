package query

import (
	"context"
	"errors"
	"sync"
	"time"

	"dunequery/cli/internal/backend"
)

// fakeAPI replays a scripted sequence of states and records every call.
type fakeAPI struct {
	mu sync.Mutex

	states     []backend.State
	failure    *backend.ExecutionFailure
	csv        string
	executeErr error
	statusErr  error
	resultsErr error
	cancelErr  error

	executeCalls int
	statusCalls  int
	resultsCalls int
	cancelCalls  int
	cancelled    []string
}

func (f *fakeAPI) Execute(ctx context.Context, sql string) (backend.Execution, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executeCalls++
	if f.executeErr != nil {
		return backend.Execution{}, f.executeErr
	}
	return backend.Execution{ID: "01HEXEC", State: backend.StatePending}, nil
}

func (f *fakeAPI) Status(ctx context.Context, executionID string) (backend.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls++
	if f.statusErr != nil {
		return backend.Status{}, f.statusErr
	}
	if len(f.states) == 0 {
		return backend.Status{}, errors.New("fake: no scripted state left")
	}
	st := f.states[0]
	if len(f.states) > 1 {
		f.states = f.states[1:]
	}
	out := backend.Status{ExecutionID: executionID, State: st}
	if st.IsTerminal() && !st.Succeeded() {
		out.Error = f.failure
	}
	return out, nil
}

func (f *fakeAPI) ResultsCSV(ctx context.Context, executionID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resultsCalls++
	if f.resultsErr != nil {
		return nil, f.resultsErr
	}
	return []byte(f.csv), nil
}

func (f *fakeAPI) Cancel(ctx context.Context, executionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelCalls++
	f.cancelled = append(f.cancelled, executionID)
	return f.cancelErr
}

// running returns n executing states followed by last.
func running(n int, last backend.State) []backend.State {
	out := make([]backend.State, 0, n+1)
	for i := 0; i < n; i++ {
		out = append(out, backend.StateExecuting)
	}
	return append(out, last)
}

// recordingSleep records requested durations without blocking.
type recordingSleep struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *recordingSleep) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return ctx.Err()
}
