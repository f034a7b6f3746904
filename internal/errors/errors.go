// Package errors defines typed errors with categories for user-friendly reporting.
// It provides a structured approach to error handling with machine-readable error kinds
// and human-friendly messages. Each kind maps to a distinct process exit code so the
// invoking shell can tell a bad SQL file from a failed remote execution.
//
// The package supports wrapping underlying errors while maintaining error kind information,
// so domain errors (execution failures, API errors, parse errors) stay reachable through
// errors.As after being categorised.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// KindConfiguration covers missing/empty SQL files and invalid settings.
	KindConfiguration Kind = "configuration_error"
	// KindExecution indicates the remote query reached FAILED, CANCELLED or EXPIRED.
	KindExecution Kind = "execution_error"
	// KindRemote indicates a submit/status/cancel call to the engine failed.
	KindRemote Kind = "remote_error"
	// KindTimeout indicates the poller gave up before a terminal state was observed.
	KindTimeout Kind = "timeout"
	// KindFetch indicates the result download failed.
	KindFetch Kind = "fetch_error"
	// KindParse indicates the downloaded CSV could not be parsed.
	KindParse Kind = "parse_error"
	// KindPresent indicates rendering or opening the result failed.
	KindPresent Kind = "present_error"
	// KindInterrupted indicates the run was cancelled locally (signal).
	KindInterrupted Kind = "interrupted"
)

// E wraps an error with kind and human-friendly message.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *E) Unwrap() error { return e.Err }

func Wrap(kind Kind, msg string, err error) *E { return &E{Kind: kind, Message: msg, Err: err} }
func New(kind Kind, msg string) *E             { return &E{Kind: kind, Message: msg} }

// KindOf returns the kind of the outermost *E in the chain, or "" if none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ExitCode maps an error to the process exit code. nil means success.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindConfiguration:
		return 2
	case KindExecution:
		return 3
	case KindRemote:
		return 4
	case KindTimeout:
		return 5
	case KindFetch:
		return 6
	case KindParse:
		return 7
	case KindPresent:
		return 8
	case KindInterrupted:
		return 130
	default:
		return 1
	}
}

// Label returns the user-facing prefix for messages of the given kind.
func Label(kind Kind) string {
	switch kind {
	case KindConfiguration:
		return "Configuration Error"
	case KindExecution:
		return "Execution Error"
	case KindRemote:
		return "Remote Error"
	case KindTimeout:
		return "Timeout"
	case KindFetch:
		return "Fetch Error"
	case KindParse:
		return "Parse Error"
	case KindPresent:
		return "Display Error"
	case KindInterrupted:
		return "Interrupted"
	default:
		return "Error"
	}
}
