package metrics

import "github.com/prometheus/client_golang/prometheus"

// Index maintenance Prometheus metrics.
var (
	IndexDocumentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "faqrag",
			Name:      "index_documents_total",
			Help:      "Documents processed by index maintenance operations",
		},
		[]string{"operation", "result"}, // operation: "build" / "sync", result: "indexed" / "deleted" / "added" / "failed"
	)

	IndexRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "faqrag",
			Name:      "index_run_duration_seconds",
			Help:      "Duration of index maintenance runs in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"operation"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus index-maintenance metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(IndexDocumentsTotal)
	prometheus.MustRegister(IndexRunDuration)
	pipelineMetricsRegistered = true
}
