// Package metrics exposes Prometheus collectors for pipeline observability.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors observed by the pipeline driver.
type Metrics struct {
	RunsTotal        prometheus.Counter
	StageErrorsTotal *prometheus.CounterVec
	UnitsTotal       prometheus.Counter
	RunDuration      prometheus.Histogram
}

// New creates and registers the pipeline collectors. The registerer
// parameter allows flexible registration (global registry, test registry).
func New(reg prometheus.Registerer) *Metrics {
	runsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "triagemesh_runs_total",
		Help: "Total number of completed pipeline runs",
	})

	stageErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "triagemesh_stage_errors_total",
		Help: "Total number of stage fallback executions",
	}, []string{"stage"})

	unitsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "triagemesh_consumed_units_total",
		Help: "Total collaborator usage units consumed across runs",
	})

	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "triagemesh_run_duration_seconds",
		Help:    "Wall-clock duration of pipeline runs",
		Buckets: prometheus.DefBuckets,
	})

	reg.MustRegister(runsTotal, stageErrorsTotal, unitsTotal, runDuration)

	return &Metrics{
		RunsTotal:        runsTotal,
		StageErrorsTotal: stageErrorsTotal,
		UnitsTotal:       unitsTotal,
		RunDuration:      runDuration,
	}
}

// ObserveRun records one finished run. Safe to call on a nil receiver so
// metrics stay optional for embedders.
func (m *Metrics) ObserveRun(elapsed time.Duration, units int) {
	if m == nil {
		return
	}
	m.RunsTotal.Inc()
	m.UnitsTotal.Add(float64(units))
	m.RunDuration.Observe(elapsed.Seconds())
}

// ObserveStageError records one stage fallback execution.
func (m *Metrics) ObserveStageError(stage string) {
	if m == nil {
		return
	}
	m.StageErrorsTotal.WithLabelValues(stage).Inc()
}
