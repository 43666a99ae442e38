// Package metrics exposes Prometheus metrics for the backtest service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the momo server.
type Metrics struct {
	RunsTotal     prometheus.Counter
	RunErrors     prometheus.Counter
	RunDuration   prometheus.Histogram
	SimulatedDays prometheus.Counter

	registry *prometheus.Registry
}

// New registers and returns all metrics on a fresh registry, so multiple
// instances (e.g. in tests) never collide.
func New() *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "momo_backtest_runs_total",
			Help: "Total backtest runs completed successfully",
		}),
		RunErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "momo_backtest_run_errors_total",
			Help: "Total backtest runs rejected or failed",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "momo_backtest_run_duration_seconds",
			Help:    "Wall-clock duration of a full backtest run",
			Buckets: prometheus.DefBuckets,
		}),
		SimulatedDays: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "momo_backtest_simulated_days_total",
			Help: "Total symbol-days walked by the simulator",
		}),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(m.RunsTotal, m.RunErrors, m.RunDuration, m.SimulatedDays)
	return m
}

// Handler returns an HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
