package observability

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Scan metrics
	ScanOperationsTotal    *prometheus.CounterVec
	ScanDuration           *prometheus.HistogramVec
	ScanRowsTotal          *prometheus.CounterVec
	ColumnResolutionsTotal *prometheus.CounterVec

	// Plan cache metrics
	PlanCacheHitsTotal   prometheus.Counter
	PlanCacheMissesTotal prometheus.Counter

	// Database pool metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge
	DBConnectionsMax    prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rowbind_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rowbind_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		ScanOperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rowbind_scan_operations_total",
				Help: "Total number of row materialization operations",
			},
			[]string{"target_type", "status"},
		),
		ScanDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rowbind_scan_duration_seconds",
				Help:    "Row materialization duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5},
			},
			[]string{"target_type"},
		),
		ScanRowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rowbind_scan_rows_total",
				Help: "Total number of rows materialized",
			},
			[]string{"target_type"},
		),
		ColumnResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rowbind_column_resolutions_total",
				Help: "Column bindings by source: override, fallback or discarded",
			},
			[]string{"target_type", "source"},
		),

		PlanCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rowbind_plan_cache_hits_total",
				Help: "Total number of scan plan cache hits",
			},
		),
		PlanCacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rowbind_plan_cache_misses_total",
				Help: "Total number of scan plan cache misses",
			},
		),

		DBConnectionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "rowbind_db_connections_active",
				Help: "Number of database connections currently in use",
			},
		),
		DBConnectionsIdle: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "rowbind_db_connections_idle",
				Help: "Number of idle database connections",
			},
		),
		DBConnectionsMax: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "rowbind_db_connections_max",
				Help: "Maximum number of open database connections",
			},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ScanOperationsTotal,
		m.ScanDuration,
		m.ScanRowsTotal,
		m.ColumnResolutionsTotal,
		m.PlanCacheHitsTotal,
		m.PlanCacheMissesTotal,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
		m.DBConnectionsMax,
	)

	return m
}

// Handler returns an HTTP handler exposing the metrics registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// UpdateDBStats publishes connection pool statistics.
func (m *Metrics) UpdateDBStats(stats sql.DBStats) {
	m.DBConnectionsActive.Set(float64(stats.InUse))
	m.DBConnectionsIdle.Set(float64(stats.Idle))
	m.DBConnectionsMax.Set(float64(stats.MaxOpenConnections))
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path, status string, durationSeconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(durationSeconds)
}
