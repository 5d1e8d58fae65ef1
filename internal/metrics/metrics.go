package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "partygame"

// Metrics holds the Prometheus collectors for the application.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	operations        *prometheus.CounterVec
	results           *prometheus.CounterVec
	pointsAwarded     prometheus.Counter
	migrationWarnings prometheus.Counter
	httpRequests      *prometheus.CounterVec
}

// New creates collectors registered on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_operations_total",
				Help:      "Session operations by name and outcome",
			},
			[]string{"operation", "outcome"},
		),
		results: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "results_recorded_total",
				Help:      "Challenge results recorded by topology",
			},
			[]string{"topology"},
		),
		pointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_awarded_total",
			Help:      "Sum of positive score deltas applied",
		}),
		migrationWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_migration_warnings_total",
			Help:      "Repairs made while restoring snapshots",
		}),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method and status code",
			},
			[]string{"method", "code"},
		),
	}

	m.registry.MustRegister(
		m.operations,
		m.results,
		m.pointsAwarded,
		m.migrationWarnings,
		m.httpRequests,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveOperation counts a session operation
func (m *Metrics) ObserveOperation(operation string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
}

// ObserveResult counts a recorded result and the points it awarded
func (m *Metrics) ObserveResult(topology string, awarded int) {
	if m == nil {
		return
	}
	m.results.WithLabelValues(topology).Inc()
	if awarded > 0 {
		m.pointsAwarded.Add(float64(awarded))
	}
}

// ObserveMigrationWarnings counts snapshot repairs
func (m *Metrics) ObserveMigrationWarnings(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.migrationWarnings.Add(float64(n))
}

// ObserveHTTPRequest counts a served HTTP request
func (m *Metrics) ObserveHTTPRequest(method string, status int) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}
