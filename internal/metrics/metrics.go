// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
)

// Metrics bundles every collector the service records.
// Construct it once with New and share it; all methods are safe for
// concurrent use. A nil *Metrics is a no-op, so tests can skip wiring it.
type Metrics struct {
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	checksumMismatch prometheus.Counter
	bookings         *prometheus.CounterVec
	breakerState     *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		checksumMismatch: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "daterange_checksum_mismatch_total",
			Help: "Date range tokens decoded with a checksum that did not match",
		}),
		bookings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookings_submitted_total",
				Help: "Booking submissions by outcome",
			},
			[]string{"result"},
		),
		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "upstream_breaker_state",
				Help: "Circuit breaker state per upstream (0=closed, 1=half-open, 2=open)",
			},
			[]string{"name"},
		),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.checksumMismatch, m.bookings, m.breakerState)
	return m
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route, status).Observe(seconds)
}

// ChecksumMismatch implements daterange.MismatchRecorder.
func (m *Metrics) ChecksumMismatch() {
	if m == nil {
		return
	}
	m.checksumMismatch.Inc()
}

// Booking outcomes.
const (
	BookingOK        = "ok"
	BookingRejected  = "rejected"
	BookingUpstream  = "upstream_error"
	BookingMirrorErr = "mirror_error"
)

// BookingSubmitted counts a submission with the given outcome.
func (m *Metrics) BookingSubmitted(result string) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(result).Inc()
}

// BreakerStateChanged is shaped to be used directly as
// gobreaker.Settings.OnStateChange.
func (m *Metrics) BreakerStateChanged(name string, _ gobreaker.State, to gobreaker.State) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
