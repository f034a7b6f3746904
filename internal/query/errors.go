package query

import (
	"fmt"
	"time"

	"dunequery/cli/internal/backend"
)

// ExecutionError reports an execution that ended in FAILED, CANCELLED or EXPIRED.
type ExecutionError struct {
	ExecutionID string
	State       backend.State
	// Reason is the engine's error message, when it gave one.
	Reason string
}

func (e *ExecutionError) Error() string {
	msg := fmt.Sprintf("execution %s ended in %s", e.ExecutionID, e.State)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// TimeoutError reports that no terminal state was observed within the wait bound.
type TimeoutError struct {
	ExecutionID string
	LastState   backend.State
	Checks      int
	Waited      time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("execution %s still %s after %d status checks (%s)",
		e.ExecutionID, e.LastState, e.Checks, e.Waited.Round(time.Millisecond))
}
