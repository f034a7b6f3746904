// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package backend provides interfaces and implementations for communicating with the Dune query engine.
// It defines the API contract for submitting SQL, observing execution state, downloading results
// and cancelling executions. The package includes both interface definitions and HTTP-based implementations.
package backend

import "context"

// API defines engine operations the CLI depends on.
// Implementations may call real HTTP endpoints or provide mocks for tests.
type API interface {
	// Execute submits SQL text and returns the execution handle.
	Execute(ctx context.Context, sql string) (Execution, error)
	// Status returns the current state of an execution.
	Status(ctx context.Context, executionID string) (Status, error)
	// ResultsCSV downloads the complete result set of a finished execution as one CSV document.
	ResultsCSV(ctx context.Context, executionID string) ([]byte, error)
	// Cancel asks the engine to stop a running execution.
	Cancel(ctx context.Context, executionID string) error
}
