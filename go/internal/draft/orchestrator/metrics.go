package orchestrator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector records sweep outcomes
type MetricsCollector interface {
	RecordSweep(result SweepResult, duration time.Duration)
	RecordSweepError()
}

// NoOpMetricsCollector is used when metrics aren't needed
type NoOpMetricsCollector struct{}

func (NoOpMetricsCollector) RecordSweep(SweepResult, time.Duration) {}
func (NoOpMetricsCollector) RecordSweepError()                      {}

// PrometheusMetrics implements MetricsCollector with client_golang
type PrometheusMetrics struct {
	sweeps        prometheus.Counter
	sweepErrors   prometheus.Counter
	sweepDuration prometheus.Histogram
	openDrafts    prometheus.Gauge
	advanced      prometheus.Counter
	autopicks     prometheus.Counter
	failures      prometheus.Counter
}

// NewPrometheusMetrics registers the sweeper metrics on reg. A nil reg
// creates unregistered collectors.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		sweeps: factory.NewCounter(prometheus.CounterOpts{
			Name: "gridpick_sweeps_total",
			Help: "Deadline sweeps completed",
		}),
		sweepErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "gridpick_sweep_errors_total",
			Help: "Deadline sweeps that could not list open drafts",
		}),
		sweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridpick_sweep_duration_seconds",
			Help:    "Time taken by one deadline sweep",
			Buckets: prometheus.DefBuckets,
		}),
		openDrafts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gridpick_open_drafts",
			Help: "Open drafts seen by the last sweep",
		}),
		advanced: factory.NewCounter(prometheus.CounterOpts{
			Name: "gridpick_sweep_drafts_advanced_total",
			Help: "Drafts whose cursor a sweep moved forward",
		}),
		autopicks: factory.NewCounter(prometheus.CounterOpts{
			Name: "gridpick_autopicks_total",
			Help: "Picks made from autopick preferences",
		}),
		failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "gridpick_sweep_draft_failures_total",
			Help: "Drafts a sweep failed to process",
		}),
	}
}

func (m *PrometheusMetrics) RecordSweep(result SweepResult, duration time.Duration) {
	m.sweeps.Inc()
	m.sweepDuration.Observe(duration.Seconds())
	m.openDrafts.Set(float64(result.Drafts))
	m.advanced.Add(float64(result.Advanced))
	m.autopicks.Add(float64(result.Autopicks))
	m.failures.Add(float64(result.Failures))
}

func (m *PrometheusMetrics) RecordSweepError() {
	m.sweepErrors.Inc()
}
