package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ipsqr"

// Monitor owns the decoder metrics. Each Monitor registers its collectors on
// its own registry so tests can create as many as they like.
type Monitor struct {
	registry *prometheus.Registry

	decodes        *prometheus.CounterVec
	fieldRejects   *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
	decodeDuration *prometheus.HistogramVec
}

func NewMonitor() *Monitor {
	m := &Monitor{
		registry: prometheus.NewRegistry(),

		decodes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decodes_total",
				Help:      "Total decoded payloads by source and outcome",
			},
			[]string{"source", "outcome"},
		),

		fieldRejects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "field_rejections_total",
				Help:      "Total field values dropped for failing their grammar",
			},
			[]string{"field"},
		),

		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Decode cache lookups by result",
			},
			[]string{"result"},
		),

		decodeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "decode_duration_seconds",
				Help:      "Duration of payload decodes",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
			[]string{"source"},
		),
	}

	m.registry.MustRegister(
		m.decodes,
		m.fieldRejects,
		m.cacheLookups,
		m.decodeDuration,
		collectors.NewGoCollector(),
	)

	return m
}

// Track a finished decode
func (m *Monitor) TrackDecode(source, outcome string, duration time.Duration) {
	m.decodes.WithLabelValues(source, outcome).Inc()
	m.decodeDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// Track a rejected field value
func (m *Monitor) TrackRejection(field string) {
	m.fieldRejects.WithLabelValues(field).Inc()
}

// Track a cache lookup: hit, miss or error
func (m *Monitor) TrackCacheLookup(result string) {
	m.cacheLookups.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
