package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	chartsComputed *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
	errorsTotal    *prometheus.CounterVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		chartsComputed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astrochart_charts_computed_total",
				Help: "Total number of charts computed by type and frame",
			},
			[]string{"type", "frame"},
		),
		cacheLookups: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astrochart_cache_lookups_total",
				Help: "Chart cache lookups by result",
			},
			[]string{"result"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astrochart_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "astrochart_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordChartComputed records one computed chart.
func (r *Recorder) RecordChartComputed(chartType, frame string) {
	r.chartsComputed.WithLabelValues(chartType, frame).Inc()
}

// RecordCacheLookup records a cache lookup outcome ("hit" or "miss").
func (r *Recorder) RecordCacheLookup(result string) {
	r.cacheLookups.WithLabelValues(result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
