package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	observations  *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	behaviorIndex *prometheus.GaugeVec
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		observations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regionpulse_observations_stored_total",
				Help: "Total number of observations written to a backend",
			},
			[]string{"backend", "source"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "regionpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		behaviorIndex: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "regionpulse_behavior_index",
				Help: "Latest composite behavior index per region",
			},
			[]string{"region"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "regionpulse_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordObservation records an observation stored in a backend.
func (r *Recorder) RecordObservation(backend, source string) {
	r.observations.WithLabelValues(backend, source).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordBehaviorIndex records the latest composite index for a region.
func (r *Recorder) RecordBehaviorIndex(region string, value float64) {
	r.behaviorIndex.WithLabelValues(region).Set(value)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
