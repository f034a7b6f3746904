// Package metrics records per-run counters for dunequery.
// A CLI process is too short-lived to be scraped, so the registry is written
// once at exit in the Prometheus text format, suitable for the node_exporter
// textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dunequery"

// Recorder owns a private registry. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry     *prometheus.Registry
	statusChecks *prometheus.CounterVec
	runs         *prometheus.CounterVec
	runSeconds   prometheus.Gauge
	resultRows   prometheus.Gauge
	lastRunUnix  prometheus.Gauge
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		statusChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_checks_total",
			Help:      "Execution status checks, by observed state.",
		}, []string{"state"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Query runs, by outcome.",
		}, []string{"outcome"}),
		runSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time from submission to fetched result of the last run.",
		}),
		resultRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "result_rows",
			Help:      "Rows in the result of the last run.",
		}),
		lastRunUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	r.registry.MustRegister(r.statusChecks, r.runs, r.runSeconds, r.resultRows, r.lastRunUnix)
	return r
}

// StatusChecked counts one status check that observed state.
func (r *Recorder) StatusChecked(state string) {
	if r == nil {
		return
	}
	r.statusChecks.WithLabelValues(state).Inc()
}

// RunFinished records the outcome of a run. outcome is "success", "empty" or an error kind.
func (r *Recorder) RunFinished(outcome string, elapsed time.Duration, rows int, now time.Time) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(outcome).Inc()
	r.runSeconds.Set(elapsed.Seconds())
	r.resultRows.Set(float64(rows))
	r.lastRunUnix.Set(float64(now.Unix()))
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// WriteTextfile atomically writes the registry to path.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
