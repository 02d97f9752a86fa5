package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Provider metrics
	ProviderCalls    *prometheus.CounterVec
	ProviderDuration *prometheus.HistogramVec
	BreakerState     *prometheus.GaugeVec

	// Session metrics
	SessionsCreated    prometheus.Counter
	SessionValidations *prometheus.CounterVec

	// Aggregation cycle metrics
	Cycles        *prometheus.CounterVec
	CyclesStale   prometheus.Counter
	CycleDuration *prometheus.HistogramVec

	// Notice metrics
	Notices *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	gatherer  prometheus.Gatherer
	startTime time.Time

	// Snapshot for the JSON health endpoint
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current metric values for the JSON API
type Snapshot struct {
	TotalRequests   int64   `json:"total_requests"`
	TotalErrors     int64   `json:"total_errors"`
	ProviderCalls   int64   `json:"provider_calls"`
	ProviderFailure int64   `json:"provider_failures"`
	CyclesApplied   int64   `json:"cycles_applied"`
	CyclesStale     int64   `json:"cycles_stale"`
	UptimeSeconds   float64 `json:"uptime_seconds"`
}

// NewMetrics registers collectors on reg. A nil reg uses a fresh private
// registry, which keeps tests from colliding on the global one.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	m := &Metrics{
		gatherer:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 25},
			},
			[]string{"method", "path"},
		),

		ProviderCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_provider_calls_total",
				Help: "Provider gateway calls by source, status and failure reason",
			},
			[]string{"source", "status", "reason"},
		),
		ProviderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_provider_duration_seconds",
				Help:    "Provider gateway call duration in seconds",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 20},
			},
			[]string{"source"},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "search_provider_breaker_state",
				Help: "Circuit breaker state per source (0 closed, 1 half-open, 2 open)",
			},
			[]string{"source"},
		),

		SessionsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "search_sessions_created_total",
				Help: "Total number of sessions minted",
			},
		),
		SessionValidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_session_validations_total",
				Help: "Session validity checks by outcome",
			},
			[]string{"outcome"},
		),

		Cycles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_cycles_total",
				Help: "Aggregation cycles by mode",
			},
			[]string{"mode"},
		),
		CyclesStale: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "search_cycles_stale_total",
				Help: "Aggregation cycles discarded because a newer query superseded them",
			},
		),
		CycleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_cycle_duration_seconds",
				Help:    "Time from submission until every provider settled",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30},
			},
			[]string{"mode"},
		),

		Notices: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_notices_total",
				Help: "Error notice transitions (raised, dropped, dismissed)",
			},
			[]string{"event"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "search_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "search_uptime_seconds",
			Help: "Backend uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Handler exposes the registry in Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordProviderCall records one settled gateway call
func (m *Metrics) RecordProviderCall(source, status, reason string, duration time.Duration) {
	m.ProviderCalls.WithLabelValues(source, status, reason).Inc()
	m.ProviderDuration.WithLabelValues(source).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.ProviderCalls++
	if status == "failed" {
		m.snapshot.ProviderFailure++
	}
	m.mu.Unlock()
}

// SetBreakerState publishes a breaker state for a source
func (m *Metrics) SetBreakerState(source string, state int) {
	m.BreakerState.WithLabelValues(source).Set(float64(state))
}

// IncSessionsCreated counts a minted session
func (m *Metrics) IncSessionsCreated() {
	m.SessionsCreated.Inc()
}

// RecordSessionValidation counts a validity check ("valid", "invalid", "error")
func (m *Metrics) RecordSessionValidation(outcome string) {
	m.SessionValidations.WithLabelValues(outcome).Inc()
}

// RecordCycle records an aggregation cycle that settled
func (m *Metrics) RecordCycle(mode string, duration time.Duration, stale bool) {
	m.Cycles.WithLabelValues(mode).Inc()
	m.CycleDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if stale {
		m.CyclesStale.Inc()
	}

	m.mu.Lock()
	if stale {
		m.snapshot.CyclesStale++
	} else {
		m.snapshot.CyclesApplied++
	}
	m.mu.Unlock()
}

// RecordNotice counts a notice transition
func (m *Metrics) RecordNotice(event string) {
	m.Notices.WithLabelValues(event).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
}

// Snapshot returns a copy of the current JSON-friendly values
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
