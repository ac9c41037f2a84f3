package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	RideTransitionsTotal  *prometheus.CounterVec
	BookingsRejectedTotal *prometheus.CounterVec
	RidesCascadeCancelled prometheus.Counter

	PaymentsTotal *prometheus.CounterVec
	SMSTotal      *prometheus.CounterVec
	RateLimited   *prometheus.CounterVec
}

// NewMetrics builds the collectors on a private registry so that several
// instances can coexist in one process.
func NewMetrics(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		RideTransitionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ride_transitions_total",
				Help:      "Ride status changes by resulting status",
			},
			[]string{"status"},
		),
		BookingsRejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ride_bookings_rejected_total",
				Help:      "Bookings refused, by reason",
			},
			[]string{"reason"},
		),
		RidesCascadeCancelled: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rides_cascade_cancelled_total",
				Help:      "Stale active rides cancelled alongside an explicit cancellation",
			},
		),
		PaymentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_total",
				Help:      "Payment attempts by provider, purpose and outcome",
			},
			[]string{"provider", "purpose", "status"},
		),
		SMSTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sms_total",
				Help:      "SMS messages by provider and outcome",
			},
			[]string{"provider", "status"},
		),
		RateLimited: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "Requests refused by the rate limiter",
			},
			[]string{"path"},
		),
	}
}

func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordRideTransition(status string) {
	m.RideTransitionsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordBookingRejected(reason string) {
	m.BookingsRejectedTotal.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordCascadeCancelled(count int64) {
	m.RidesCascadeCancelled.Add(float64(count))
}

func (m *Metrics) RecordPayment(provider, purpose, status string) {
	m.PaymentsTotal.WithLabelValues(provider, purpose, status).Inc()
}

func (m *Metrics) RecordSMS(provider, status string) {
	m.SMSTotal.WithLabelValues(provider, status).Inc()
}

func (m *Metrics) RecordRateLimited(path string) {
	m.RateLimited.WithLabelValues(path).Inc()
}

// ObserveWebSocketClients exports the current connection count reported by fn.
func (m *Metrics) ObserveWebSocketClients(namespace string, fn func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections_active",
			Help:      "Active WebSocket connections",
		},
		func() float64 { return float64(fn()) },
	))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
