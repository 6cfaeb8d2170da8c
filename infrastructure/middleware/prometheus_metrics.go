// Package middleware provides cross-cutting concerns for the vote graph
// builder.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-votegraph/internal/ports"
)

var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. It provides monitoring of pipeline runs and emitted graph
// sizes.
type PrometheusMetrics struct {
	runDuration *prometheus.HistogramVec
	runsTotal   *prometheus.CounterVec
	graphSize   *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and
// registers all required metrics in the global Prometheus registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		runDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "votegraph_run_duration_seconds",
				Help:    "Execution time of pipeline operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "weighting"},
		),
		runsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "votegraph_pipeline_runs_total",
				Help: "Total number of pipeline runs by outcome.",
			},
			[]string{"weighting", "status"},
		),
		graphSize: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "votegraph_graph_size",
				Help: "Node and edge counts of the most recent pipeline run.",
			},
			[]string{"element", "weighting"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface by recording
// execution latency in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	weighting, ok := labels["weighting"]
	if !ok {
		weighting = "unknown"
	}
	pm.runDuration.WithLabelValues(operation, weighting).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by
// incrementing Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	weighting, ok := labels["weighting"]
	if !ok {
		weighting = "unknown"
	}

	switch metric {
	case "pipeline_runs_total":
		status, ok := labels["status"]
		if !ok {
			status = "unknown"
		}
		pm.runsTotal.WithLabelValues(weighting, status).Add(value)
	default:
		// Unknown counters are dropped rather than registered ad hoc.
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauges.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	weighting, ok := labels["weighting"]
	if !ok {
		weighting = "unknown"
	}

	switch metric {
	case "graph_nodes":
		pm.graphSize.WithLabelValues("nodes", weighting).Set(value)
	case "graph_edges":
		pm.graphSize.WithLabelValues("edges", weighting).Set(value)
	default:
	}
}
