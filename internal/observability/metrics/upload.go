package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avolkov/docstream/internal/core/domain"
)

// UploadMetrics owns its registry so tests can build isolated instances.
// It implements ports.UploadObserver for the orchestrator and exposes an
// observation hook for the cache bridge.
type UploadMetrics struct {
	registry *prometheus.Registry

	uploadsTotal    *prometheus.CounterVec
	uploadDuration  *prometheus.HistogramVec
	uploadsInFlight prometheus.Gauge
	uploadBytes     prometheus.Histogram
	invalidations   *prometheus.CounterVec
}

func NewUploadMetrics(service string) *UploadMetrics {
	registry := prometheus.NewRegistry()

	uploadsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docstream",
			Subsystem: "uploads",
			Name:      "total",
			Help:      "Total finished uploads by terminal status.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"status"},
	)
	uploadDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docstream",
			Subsystem: "uploads",
			Name:      "duration_seconds",
			Help:      "End-to-end upload duration in seconds by terminal status.",
			Buckets:   prometheus.DefBuckets,
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"status"},
	)
	uploadsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "docstream",
			Subsystem: "uploads",
			Name:      "in_flight",
			Help:      "Number of uploads currently between admission and a terminal state.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	uploadBytes := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "docstream",
			Subsystem: "uploads",
			Name:      "bytes",
			Help:      "Uploaded file sizes in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	invalidations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docstream",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Cache invalidation signals sent by group.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"group"},
	)

	registry.MustRegister(uploadsTotal, uploadDuration, uploadsInFlight, uploadBytes, invalidations)

	return &UploadMetrics{
		registry:        registry,
		uploadsTotal:    uploadsTotal,
		uploadDuration:  uploadDuration,
		uploadsInFlight: uploadsInFlight,
		uploadBytes:     uploadBytes,
		invalidations:   invalidations,
	}
}

func (m *UploadMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *UploadMetrics) UploadStarted() {
	m.uploadsInFlight.Inc()
}

func (m *UploadMetrics) UploadFinished(status domain.UploadStatus, duration time.Duration, bytes int64) {
	m.uploadsInFlight.Dec()
	m.uploadsTotal.WithLabelValues(string(status)).Inc()
	m.uploadDuration.WithLabelValues(string(status)).Observe(duration.Seconds())
	m.uploadBytes.Observe(float64(bytes))
}

func (m *UploadMetrics) ObserveInvalidation(group domain.CacheGroup) {
	m.invalidations.WithLabelValues(string(group)).Inc()
}
