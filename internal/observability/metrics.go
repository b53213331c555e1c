package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the CRM.
type Metrics struct {
	// Registry owns every collector below; /metrics serves it.
	Registry *prometheus.Registry

	operationDuration *prometheus.HistogramVec
	operationErrors   *prometheus.CounterVec
	vipPromotions     prometheus.Counter
	migrationRecords  *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
}

// NewMetrics registers every collector in a private registry, so tests can
// build as many as they like.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crm_repository_operation_duration_seconds",
				Help:    "Duration of repository operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "backend"},
		),
		operationErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_repository_errors_total",
				Help: "Repository operations that returned an error.",
			},
			[]string{"operation", "backend"},
		),
		vipPromotions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "crm_vip_promotions_total",
				Help: "Customers promoted to VIP by a recorded sale.",
			},
		),
		migrationRecords: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_migration_records_total",
				Help: "Records processed by the sqlite to postgres migration.",
			},
			[]string{"phase", "outcome"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_http_requests_total",
				Help: "HTTP requests served.",
			},
			[]string{"method", "route", "status"},
		),
	}
}

// ObserveOperation records one repository call. A nil receiver is a no-op.
func (m *Metrics) ObserveOperation(operation, backend string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.operationDuration.WithLabelValues(operation, backend).Observe(time.Since(start).Seconds())
	if err != nil {
		m.operationErrors.WithLabelValues(operation, backend).Inc()
	}
}

func (m *Metrics) VIPPromoted() {
	if m == nil {
		return
	}
	m.vipPromotions.Inc()
}

// MigrationRecord counts a migrated, skipped or errored record of a phase.
func (m *Metrics) MigrationRecord(phase, outcome string) {
	if m == nil {
		return
	}
	m.migrationRecords.WithLabelValues(phase, outcome).Inc()
}

func (m *Metrics) HTTPRequest(method, route, status string) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
}
