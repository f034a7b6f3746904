// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"dunequery/cli/internal/backend"
	"dunequery/cli/internal/config"
	"dunequery/cli/internal/logging"
	"dunequery/cli/internal/metrics"
	"dunequery/cli/internal/present"
	"dunequery/cli/internal/query"
	"dunequery/cli/internal/sqlfile"
	"dunequery/cli/internal/terminal"
	"dunequery/cli/internal/xdg"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

// app holds everything one invocation needs. Tests build it directly with a
// fake API and presenter.
type app struct {
	cfg        config.Config
	api        backend.API
	out        io.Writer
	errOut     io.Writer
	logger     *pterm.Logger
	metrics    *metrics.Recorder
	reportsDir string
	// interactive enables the progress spinner on errOut.
	interactive bool
	// hideCursor hides the terminal cursor while the spinner runs.
	hideCursor bool
	width      int
	presenter  func(format string, opts present.Options) (present.Presenter, error)
	now        func() time.Time
}

func newApp(cfg config.Config, out, errOut io.Writer) *app {
	logger := logging.NewLogger(cfg.LogLevel, errOut)

	var rec *metrics.Recorder
	if cfg.MetricsFile != "" {
		rec = metrics.New()
	}

	a := &app{
		cfg:    cfg,
		out:    out,
		errOut: errOut,
		logger: logger,
		api: backend.New(backend.Options{
			BaseURL:        cfg.API.BaseURL,
			APIKey:         cfg.API.Key,
			RequestTimeout: cfg.API.RequestTimeout,
			Performance:    cfg.API.Performance,
			UserAgent:      "dunequery/" + Version,
		}),
		metrics:   rec,
		presenter: present.New,
		now:       time.Now,
	}
	if errOut == os.Stderr {
		a.interactive = terminal.IsInteractive(os.Stderr)
	}
	if out == os.Stdout {
		a.width = terminal.Width(os.Stdout)
		a.hideCursor = a.interactive && terminal.IsInteractive(os.Stdout)
	}
	if dir, err := xdg.ReportsDir(); err == nil {
		a.reportsDir = dir
	} else {
		logger.Warn("reports directory unavailable, using temp dir", logger.Args("error", logging.PresentError("", err)))
	}
	return a
}

// runQuery loads the SQL file, runs it and presents the result.
func (a *app) runQuery(ctx context.Context, path string) error {
	sql, err := sqlfile.Load(path)
	if err != nil {
		return err
	}

	format := strings.ToLower(a.cfg.Output.Format)
	if format == present.FormatBrowser {
		a.pruneReports()
	}

	var mu sync.Mutex
	state := backend.StatePending
	runner := query.NewRunner(a.api, query.Options{
		PollInterval: a.cfg.Poll.Interval,
		MaxWait:      a.cfg.Poll.MaxWait,
		Logger:       a.logger,
		Metrics:      a.metrics,
		OnStatus: func(st backend.Status) {
			mu.Lock()
			state = st.State
			mu.Unlock()
		},
	})

	a.logger.Debug("submitting query", a.logger.Args("file", path, "performance", a.cfg.API.Performance))

	stop := func() {}
	if a.interactive {
		if a.hideCursor {
			cursor.Hide()
		}
		stopSpinner := startInlineSpinner(a.errOut, func() string {
			mu.Lock()
			defer mu.Unlock()
			return "Waiting for Dune (" + humanState(state) + ")"
		}, spinnerFrames, 120*time.Millisecond)
		stop = func() {
			stopSpinner()
			if a.hideCursor {
				cursor.Show()
			}
		}
	}
	res, err := runner.Run(ctx, sql)
	stop()
	if err != nil {
		return err
	}

	if res.Table.IsEmpty() {
		fmt.Fprintln(a.out, "No results returned from the query.")
		return nil
	}

	p, err := a.presenter(format, present.Options{
		Out:         a.out,
		Width:       a.width,
		ReportsDir:  a.reportsDir,
		RunID:       res.RunID,
		ExecutionID: res.ExecutionID,
		Title:       filepath.Base(path),
	})
	if err != nil {
		return err
	}

	switch format {
	case present.FormatBrowser:
		fmt.Fprintln(a.out, "Results retrieved successfully. Opening web browser.")
	case present.FormatTable:
		fmt.Fprintln(a.out, "Results retrieved successfully.")
	}
	return p.Present(ctx, res.Table)
}

func (a *app) pruneReports() {
	removed, err := present.PruneReports(a.reportsDir, a.cfg.Output.ReportRetention, a.clock())
	if err != nil {
		a.logger.Warn("could not prune old reports", a.logger.Args("dir", a.reportsDir, "error", a.safe(err)))
	}
	if removed > 0 {
		a.logger.Debug("pruned old reports", a.logger.Args("dir", a.reportsDir, "removed", removed))
	}
}

// writeMetrics flushes the metrics registry when --metrics-file is set.
func (a *app) writeMetrics() {
	if a.metrics == nil || a.cfg.MetricsFile == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		a.logger.Warn("could not write metrics file", a.logger.Args("path", a.cfg.MetricsFile, "error", a.safe(err)))
	}
}

// safe renders err for logs with the configured API key removed.
func (a *app) safe(err error) string {
	return logging.MaskSecret(logging.PresentError("", err), a.cfg.API.Key)
}

func (a *app) clock() time.Time {
	if a.now == nil {
		return time.Now()
	}
	return a.now()
}

// humanState turns QUERY_STATE_EXECUTING into "executing".
func humanState(s backend.State) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(string(s), "QUERY_STATE_"), "_", " "))
}
