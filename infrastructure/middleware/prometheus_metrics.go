// Package middleware provides cross-cutting concerns for the deliberation engine.
package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/FIRSTIsrael/lems-core/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using Prometheus.
// It provides real-time monitoring of picklist edit throughput, stage
// progression, and deliberation latency for the engine.
type PrometheusMetrics struct {
	movesApplied      *prometheus.CounterVec
	movesRejected     *prometheus.CounterVec
	stageTransitions  *prometheus.CounterVec
	executionLatency  *prometheus.HistogramVec
	operationCounter  *prometheus.CounterVec
	picklistOccupancy *prometheus.GaugeVec
	systemGauges      *prometheus.GaugeVec
}

// NewPrometheusMetrics creates a new PrometheusMetrics instance and registers
// all required metrics in the global Prometheus registry.
func NewPrometheusMetrics() *PrometheusMetrics {
	return &PrometheusMetrics{
		// Picklist edit metrics.
		movesApplied: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "picklist_moves_applied_total",
				Help: "Total number of picklist move gestures that changed state.",
			},
			[]string{"deliberation"},
		),
		movesRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "picklist_moves_rejected_total",
				Help: "Total number of picklist move gestures silently rejected.",
			},
			[]string{"deliberation"},
		),
		stageTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deliberation_stage_transitions_total",
				Help: "Total number of final deliberation stage closes.",
			},
			[]string{"from"},
		),

		// General execution metrics for comprehensive observability.
		executionLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "deliberation_operation_duration_seconds",
				Help:    "Execution time of deliberation service operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		operationCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deliberation_operations_total",
				Help: "Total number of operations performed by the deliberation service.",
			},
			[]string{"operation", "status"},
		),
		picklistOccupancy: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "picklist_occupancy",
				Help: "Current number of teams placed in each award picklist.",
			},
			[]string{"award"},
		),
		systemGauges: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "deliberation_system_state",
				Help: "Current system state values for the deliberation service.",
			},
			[]string{"metric"},
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
	pm.executionLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface by incrementing
// Prometheus counters.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "picklist_moves_applied_total":
		pm.movesApplied.WithLabelValues(labels["deliberation"]).Add(value)
	case "picklist_moves_rejected_total":
		pm.movesRejected.WithLabelValues(labels["deliberation"]).Add(value)
	case "stage_transitions_total":
		pm.stageTransitions.WithLabelValues(labels["from"]).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, "success").Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface by setting
// Prometheus gauge values.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case "picklist_occupancy":
		pm.picklistOccupancy.WithLabelValues(labels["award"]).Set(value)
	default:
		pm.systemGauges.WithLabelValues(metric).Set(value)
	}
}

// RecordHistogram implements the MetricsCollector interface by recording
// values in a Prometheus histogram.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, labels map[string]string,
) {
	pm.executionLatency.WithLabelValues(metric).Observe(value)
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)
