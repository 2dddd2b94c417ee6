package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels of processed customers.
const (
	OutcomeFound      = "found"
	OutcomeUnresolved = "unresolved"
	OutcomeSkipped    = "skipped"
	OutcomeFailed     = "failed"
)

type Metrics struct {
	CustomersProcessed *prometheus.CounterVec
	APIErrors          prometheus.Counter
	RequestSeconds     *prometheus.HistogramVec
	QueueLength        prometheus.Gauge
	Flushes            *prometheus.CounterVec
	FlushErrors        *prometheus.CounterVec
	PagesFetched       *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		CustomersProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocoding_customers_processed_total",
			Help: "Total number of customers taken from the geocoding queue, by outcome.",
		}, []string{"outcome"}),
		APIErrors: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "geocoding_provider_api_errors_total",
			Help: "Total number of errors received from the geocoding provider API.",
		}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geocoding_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		QueueLength: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "geocoding_queue_length",
			Help: "Current number of customers waiting for a lookup.",
		}),
		Flushes: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocoding_flushes_total",
			Help: "Total number of buffered result batches handed to storage.",
		}, []string{"kind"}),
		FlushErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocoding_flush_errors_total",
			Help: "Total number of result batches storage rejected.",
		}, []string{"kind"}),
		PagesFetched: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "customer_pages_fetched_total",
			Help: "Total number of customer list pages fetched, by view mode.",
		}, []string{"mode"}),
	}
}
