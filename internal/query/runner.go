package query

import (
	"context"
	"strings"
	"time"

	"dunequery/cli/internal/backend"
	apperrors "dunequery/cli/internal/errors"
	"dunequery/cli/internal/logging"
	"dunequery/cli/internal/metrics"

	"github.com/google/uuid"
	"github.com/pterm/pterm"
)

// Result is the outcome of a successful run.
type Result struct {
	RunID       string
	ExecutionID string
	Status      backend.Status
	Table       *Table
	// Checks is the number of status checks the poller made.
	Checks  int
	Elapsed time.Duration
}

// Runner drives one query from submission to a parsed table.
type Runner struct {
	API     backend.API
	Poller  *Poller
	Fetcher *Fetcher
	Logger  *pterm.Logger
	Metrics *metrics.Recorder
	// CancelTimeout bounds the best-effort remote cancel issued when a run is
	// interrupted or times out after submission.
	CancelTimeout time.Duration

	now func() time.Time
}

// Options configures NewRunner.
type Options struct {
	PollInterval time.Duration
	MaxWait      time.Duration
	Logger       *pterm.Logger
	Metrics      *metrics.Recorder
	// OnStatus observes every status check (e.g. to update a spinner).
	OnStatus func(backend.Status)
}

// NewRunner wires a Poller and Fetcher around api.
func NewRunner(api backend.API, opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	poller := NewPoller(api, opts.PollInterval, opts.MaxWait)
	poller.Logger = logger
	poller.Metrics = opts.Metrics
	poller.OnStatus = opts.OnStatus

	return &Runner{
		API:           api,
		Poller:        poller,
		Fetcher:       &Fetcher{API: api},
		Logger:        logger,
		Metrics:       opts.Metrics,
		CancelTimeout: 5 * time.Second,
		now:           time.Now,
	}
}

// Run submits sql, waits for completion and fetches the result table.
// The returned table may be empty; callers decide how to report that.
func (r *Runner) Run(ctx context.Context, sql string) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	logger := r.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	start := r.clock()

	res, err := r.run(ctx, logger, sql, res)
	res.Elapsed = r.clock().Sub(start)

	outcome := "success"
	switch {
	case err != nil:
		outcome = string(apperrors.KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
	case res.Table.IsEmpty():
		outcome = "empty"
	}
	r.Metrics.RunFinished(outcome, res.Elapsed, res.Table.Len(), r.clock())

	if err != nil {
		logger.Debug("run failed", logger.Args("run_id", res.RunID, "execution_id", res.ExecutionID, "kind", outcome))
		return res, err
	}
	logger.Info("results retrieved", logger.Args(
		"run_id", res.RunID,
		"execution_id", res.ExecutionID,
		"rows", res.Table.Len(),
		"checks", res.Checks,
		"elapsed", res.Elapsed.Round(time.Millisecond).String(),
	))
	return res, nil
}

func (r *Runner) run(ctx context.Context, logger *pterm.Logger, sql string, res *Result) (*Result, error) {
	if strings.TrimSpace(sql) == "" {
		return res, apperrors.New(apperrors.KindConfiguration, "SQL text is empty")
	}

	exec, err := r.API.Execute(ctx, sql)
	if err != nil {
		if ctx.Err() != nil {
			return res, apperrors.Wrap(apperrors.KindInterrupted, "submit query", ctx.Err())
		}
		return res, apperrors.Wrap(apperrors.KindRemote, "submit query", err)
	}
	res.ExecutionID = exec.ID
	logger.Debug("query submitted", logger.Args("run_id", res.RunID, "execution_id", exec.ID, "state", string(exec.State)))

	status, checks, err := r.Poller.Wait(ctx, exec.ID)
	res.Status = status
	res.Checks = checks
	if err != nil {
		if apperrors.Is(err, apperrors.KindInterrupted) || apperrors.Is(err, apperrors.KindTimeout) {
			r.cancelRemote(ctx, logger, exec.ID)
		}
		return res, err
	}

	table, err := r.Fetcher.Fetch(ctx, exec.ID)
	if err != nil {
		return res, err
	}
	res.Table = table
	return res, nil
}

// cancelRemote asks the engine to stop an execution we are abandoning. Failures
// are logged only; the original error is what the caller sees.
func (r *Runner) cancelRemote(ctx context.Context, logger *pterm.Logger, executionID string) {
	timeout := r.CancelTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := r.API.Cancel(cctx, executionID); err != nil {
		logger.Warn("could not cancel remote execution", logger.Args("execution_id", executionID, "error", logging.Mask(err.Error())))
		return
	}
	logger.Info("remote execution cancelled", logger.Args("execution_id", executionID))
}

func (r *Runner) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}
	return r.now()
}
