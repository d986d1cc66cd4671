package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the various metrics used for monitoring the application.
// It includes counters for store loads and login attempts, a gauge for the
// last successful load, and histograms for query and request durations.
type Metrics struct {
	StoreLoads          *prometheus.CounterVec
	LastSuccessfulLoad  prometheus.Gauge
	LoginAttempts       *prometheus.CounterVec
	DBQueryDuration     *prometheus.HistogramVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance registered with the provided Registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		StoreLoads: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "athena_store_loads_total",
			Help: "Total times the domain store has reloaded its collections, by outcome.",
		}, []string{"status"}),
		LastSuccessfulLoad: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "athena_last_successful_load_timestamp",
			Help: "Last time the domain store reloaded all collections successfully.",
		}),
		LoginAttempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "athena_login_attempts_total",
			Help: "Total login attempts, by outcome.",
		}, []string{"result"}),
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "athena_db_query_duration_seconds",
			Help:    "Duration of database queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}), // query_type: 'list_employees', 'upsert_attendance'
		HTTPRequestDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "athena_http_request_duration_seconds",
			Help:    "Duration of HTTP requests served by the API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	metrics.StoreLoads.WithLabelValues("success")
	metrics.StoreLoads.WithLabelValues("failure")

	return metrics
}
