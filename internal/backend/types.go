// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package backend

import (
	"fmt"
	"time"
)

// State is the execution state reported by the engine.
type State string

const (
	StatePending          State = "QUERY_STATE_PENDING"
	StateExecuting        State = "QUERY_STATE_EXECUTING"
	StateCompleted        State = "QUERY_STATE_COMPLETED"
	StateCompletedPartial State = "QUERY_STATE_COMPLETED_PARTIAL"
	StateFailed           State = "QUERY_STATE_FAILED"
	StateCancelled        State = "QUERY_STATE_CANCELLED"
	StateExpired          State = "QUERY_STATE_EXPIRED"
)

// IsTerminal reports whether no further transitions will happen.
// Unknown states are treated as still running.
func (s State) IsTerminal() bool {
	switch s {
	case StateCompleted, StateCompletedPartial, StateFailed, StateCancelled, StateExpired:
		return true
	}
	return false
}

// Succeeded reports whether results can be fetched.
func (s State) Succeeded() bool {
	return s == StateCompleted || s == StateCompletedPartial
}

// Execution is the handle returned when SQL is submitted.
type Execution struct {
	ID    string `json:"execution_id"`
	State State  `json:"state"`
}

// ExecutionFailure describes why an execution did not complete.
type ExecutionFailure struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Status is a snapshot of an execution.
type Status struct {
	ExecutionID        string            `json:"execution_id"`
	QueryID            int64             `json:"query_id"`
	State              State             `json:"state"`
	SubmittedAt        *time.Time        `json:"submitted_at,omitempty"`
	ExecutionStartedAt *time.Time        `json:"execution_started_at,omitempty"`
	ExecutionEndedAt   *time.Time        `json:"execution_ended_at,omitempty"`
	ExpiresAt          *time.Time        `json:"expires_at,omitempty"`
	QueuePosition      int               `json:"queue_position,omitempty"`
	Error              *ExecutionFailure `json:"error,omitempty"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s failed: %d %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s failed: %d", e.Op, e.StatusCode)
}
