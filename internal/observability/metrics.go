package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type moduleMetrics struct {
	toolExecutionTotal    *prometheus.CounterVec
	toolExecutionDuration *prometheus.HistogramVec
	toolRejectionsTotal   *prometheus.CounterVec

	manifestTruncations prometheus.Counter
	manifestDropped     prometheus.Histogram
	schemaFallbacks     *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	metricsInst *moduleMetrics
)

func getMetrics() *moduleMetrics {
	metricsOnce.Do(func() {
		m := &moduleMetrics{
			toolExecutionTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tool_executions_total",
					Help: "Total tool executions that reached the handler, by tool and status.",
				},
				[]string{"tool", "status"},
			),
			toolExecutionDuration: prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "tool_execution_duration_seconds",
					Help:    "Tool handler duration in seconds by tool.",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"tool"},
			),
			toolRejectionsTotal: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tool_rejections_total",
					Help: "Tool calls rejected before execution, by tool and reason.",
				},
				[]string{"tool", "reason"},
			),
			manifestTruncations: prometheus.NewCounter(
				prometheus.CounterOpts{
					Name: "tool_manifest_truncations_total",
					Help: "Manifests that exceeded the tool cap and were truncated.",
				},
			),
			manifestDropped: prometheus.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "tool_manifest_dropped_tools",
					Help:    "Number of tools left out of a truncated manifest.",
					Buckets: prometheus.ExponentialBuckets(1, 2, 10),
				},
			),
			schemaFallbacks: prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Name: "tool_schema_fallbacks_total",
					Help: "Tool schemas replaced by the passthrough schema, by reason.",
				},
				[]string{"reason"},
			),
		}

		prometheus.MustRegister(
			m.toolExecutionTotal,
			m.toolExecutionDuration,
			m.toolRejectionsTotal,
			m.manifestTruncations,
			m.manifestDropped,
			m.schemaFallbacks,
		)

		metricsInst = m
	})

	return metricsInst
}

// EnsureRegistered registers the tool metrics with the default registry.
func EnsureRegistered() {
	_ = getMetrics()
}

// RecordToolExecution counts a call that reached its handler.
func RecordToolExecution(tool string, duration time.Duration, success bool) {
	m := getMetrics()
	status := "error"
	if success {
		status = "success"
	}
	m.toolExecutionTotal.WithLabelValues(tool, status).Inc()
	m.toolExecutionDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

func RecordToolRejection(tool, reason string) {
	getMetrics().toolRejectionsTotal.WithLabelValues(tool, reason).Inc()
}

func RecordManifestTruncation(dropped int) {
	m := getMetrics()
	m.manifestTruncations.Inc()
	m.manifestDropped.Observe(float64(dropped))
}

func RecordSchemaFallback(reason string) {
	getMetrics().schemaFallbacks.WithLabelValues(reason).Inc()
}
