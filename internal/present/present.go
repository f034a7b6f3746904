// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package present renders a query result table for the user, either on the
// console (table, CSV or JSON) or as an HTML report opened in the browser.
package present

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	apperrors "dunequery/cli/internal/errors"
	"dunequery/cli/internal/query"
)

// Presenter shows a result table to the user.
type Presenter interface {
	Present(ctx context.Context, table *query.Table) error
}

// Format names accepted by New.
const (
	FormatBrowser = "browser"
	FormatTable   = "table"
	FormatCSV     = "csv"
	FormatJSON    = "json"
)

// Options carries what the individual presenters need. Zero values are usable.
type Options struct {
	// Out receives console output and status lines. Defaults to os.Stdout.
	Out io.Writer
	// Width is the terminal width used to truncate table cells. Zero disables truncation.
	Width int
	// ReportsDir is where browser reports are written.
	ReportsDir string
	// RunID is embedded in report file names.
	RunID string
	// ExecutionID is shown in the report header.
	ExecutionID string
	// Title is shown in the report heading, typically the SQL file name.
	Title string
	// Open opens a URL in the user's browser. Defaults to OpenBrowser.
	Open func(url string) error
}

// New returns the presenter registered under format. An empty format means browser.
func New(format string, opts Options) (Presenter, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatBrowser:
		open := opts.Open
		if open == nil {
			open = OpenBrowser
		}
		return &Browser{
			Dir:         opts.ReportsDir,
			RunID:       opts.RunID,
			ExecutionID: opts.ExecutionID,
			Title:       opts.Title,
			Out:         opts.Out,
			Open:        open,
		}, nil
	case FormatTable:
		return &Console{Out: opts.Out, Width: opts.Width}, nil
	case FormatCSV:
		return &CSV{Out: opts.Out}, nil
	case FormatJSON:
		return &JSON{Out: opts.Out}, nil
	default:
		return nil, apperrors.New(apperrors.KindConfiguration, fmt.Sprintf("unknown output format %q", format))
	}
}
