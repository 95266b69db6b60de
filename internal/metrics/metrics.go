// Package metrics registers the Prometheus collectors exposed on
// /metrics: HTTP traffic plus counters for the contended parts of the
// check-in flow (seat holds and the background sweeps).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every collector the application records into.
type Metrics struct {
	// HTTP request totals, labelled method/path/status_code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency, labelled method/path.
	HTTPRequestDuration *prometheus.HistogramVec

	// Seat hold attempt outcomes: success, conflict, expired, error.
	SeatHoldsTotal *prometheus.CounterVec

	// Check-in session outcomes: completed, cancelled, expired.
	CheckInsTotal *prometheus.CounterVec

	// Rows reclaimed by the background sweeps, labelled kind
	// (seat_hold or session).
	ExpiredSweepTotal *prometheus.CounterVec
}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors on the given registry. Tests
// pass their own registry so repeated registration cannot collide.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		SeatHoldsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_holds_total",
				Help: "Total number of seat hold attempts",
			},
			[]string{"status"},
		),
		CheckInsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "check_ins_total",
				Help: "Total number of check-in session outcomes",
			},
			[]string{"status"},
		),
		ExpiredSweepTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expired_sweep_total",
				Help: "Rows reclaimed by the expiry sweeps",
			},
			[]string{"kind"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SeatHoldsTotal,
		m.CheckInsTotal,
		m.ExpiredSweepTotal,
	)
	return m
}

var defaultMetrics *Metrics

// Init creates and stores the process-wide Metrics instance.
func Init() *Metrics {
	defaultMetrics = New()
	return defaultMetrics
}

// Get returns the process-wide instance, or nil when Init was never
// called (unit tests). Callers guard against nil.
func Get() *Metrics {
	return defaultMetrics
}
