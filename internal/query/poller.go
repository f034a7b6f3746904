package query

import (
	"context"
	"time"

	"dunequery/cli/internal/backend"
	apperrors "dunequery/cli/internal/errors"
	"dunequery/cli/internal/logging"
	"dunequery/cli/internal/metrics"

	"github.com/pterm/pterm"
)

// DefaultPollInterval is the fixed wait between status checks.
const DefaultPollInterval = time.Second

// Poller waits for an execution to reach a terminal state by checking its
// status at a fixed interval. There is no backoff.
type Poller struct {
	API backend.API
	// Interval between two status checks.
	Interval time.Duration
	// MaxWait bounds the wait to ceil(MaxWait/Interval)+1 checks. Zero waits forever.
	MaxWait time.Duration
	Logger  *pterm.Logger
	Metrics *metrics.Recorder
	// OnStatus, when set, observes every status check.
	OnStatus func(backend.Status)

	sleep func(context.Context, time.Duration) error
}

// NewPoller returns a Poller with a context-aware sleep.
func NewPoller(api backend.API, interval, maxWait time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		API:      api,
		Interval: interval,
		MaxWait:  maxWait,
		sleep:    sleepContext,
	}
}

// maxChecks returns the check budget, or 0 when unbounded.
func (p *Poller) maxChecks() int {
	if p.MaxWait <= 0 {
		return 0
	}
	n := int(p.MaxWait / p.Interval)
	if p.MaxWait%p.Interval != 0 {
		n++
	}
	return n + 1
}

// Wait checks the execution immediately and then once per Interval until it
// completes. It returns the final status and the number of checks made.
func (p *Poller) Wait(ctx context.Context, executionID string) (backend.Status, int, error) {
	logger := p.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}
	limit := p.maxChecks()

	var last backend.Status
	for checks := 1; ; checks++ {
		st, err := p.API.Status(ctx, executionID)
		if err != nil {
			if ctx.Err() != nil {
				return last, checks, apperrors.Wrap(apperrors.KindInterrupted, "wait for execution", ctx.Err())
			}
			return last, checks, apperrors.Wrap(apperrors.KindRemote, "check execution status", err)
		}
		last = st

		p.Metrics.StatusChecked(string(st.State))
		logger.Debug("status check", logger.Args("execution_id", executionID, "attempt", checks, "state", string(st.State)))
		if p.OnStatus != nil {
			p.OnStatus(st)
		}

		switch {
		case st.State.Succeeded():
			return st, checks, nil
		case st.State.IsTerminal():
			execErr := &ExecutionError{ExecutionID: executionID, State: st.State}
			if st.Error != nil {
				execErr.Reason = st.Error.Message
			}
			return st, checks, apperrors.Wrap(apperrors.KindExecution, "query execution state: "+string(st.State), execErr)
		}

		if limit > 0 && checks >= limit {
			return st, checks, apperrors.Wrap(apperrors.KindTimeout, "wait for execution", &TimeoutError{
				ExecutionID: executionID,
				LastState:   st.State,
				Checks:      checks,
				Waited:      time.Duration(checks-1) * p.Interval,
			})
		}

		if err := sleep(ctx, p.Interval); err != nil {
			return st, checks, apperrors.Wrap(apperrors.KindInterrupted, "wait for execution", err)
		}
	}
}

// sleepContext blocks for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
