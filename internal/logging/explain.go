// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"errors"
	"fmt"
	"io"
	"strings"

	apperrors "dunequery/cli/internal/errors"

	"github.com/pterm/pterm"
)

// FormatFailure renders a run failure as "<Category>: <message>" followed by
// likely causes and the next step. The message is masked before display.
func FormatFailure(err error) string {
	kind := apperrors.KindOf(err)

	var builder strings.Builder

	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(apperrors.Label(kind) + ":"))
	builder.WriteString(" ")
	builder.WriteString(Mask(userMessage(err)))
	builder.WriteString("\n\n")

	switch kind {
	case apperrors.KindConfiguration:
		builder.WriteString("The run could not start.\n")
		builder.WriteString("Check that:\n")
		builder.WriteString("  • the --sql file exists and is not blank\n")
		builder.WriteString("  • DUNE_API_KEY is exported or present in .env\n")

	case apperrors.KindExecution:
		builder.WriteString("The query engine stopped the execution.\n")
		builder.WriteString("This usually means:\n")
		builder.WriteString("  • the SQL has a syntax or semantic error\n")
		builder.WriteString("  • the execution was cancelled from another client\n")
		builder.WriteString("  • the execution expired before results were read\n")

	case apperrors.KindTimeout:
		builder.WriteString("The execution did not finish within the allowed wait.\n")
		builder.WriteString("  • raise --max-wait (0 waits forever)\n")
		builder.WriteString("  • try --performance large for heavy queries\n")

	case apperrors.KindRemote, apperrors.KindFetch:
		builder.WriteString("Talking to the query engine failed.\n")
		builder.WriteString("  • check your network connection\n")
		builder.WriteString("  • a 401/403 means the API key was rejected\n")
		builder.WriteString("  • a 402 means the account ran out of credits\n")

	case apperrors.KindParse:
		builder.WriteString("The result could not be read as CSV.\n")

	case apperrors.KindInterrupted:
		builder.WriteString("The run was interrupted; the remote execution was asked to stop.\n")

	default:
		builder.WriteString("The run failed unexpectedly.\n")
	}

	return strings.TrimRight(builder.String(), "\n")
}

// userMessage drops the machine-readable kind prefix that E.Error carries.
func userMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *apperrors.E
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + userMessage(e.Err)
}

// PresentFailure writes FormatFailure(err) to w.
func PresentFailure(w io.Writer, err error) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, FormatFailure(err))
	fmt.Fprintln(w)
}
