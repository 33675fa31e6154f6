package metrics

import "github.com/prometheus/client_golang/prometheus"

// Upstream model-provider Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "faqrag",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "faqrag",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "faqrag",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"model", "type"},
	)

	SynthesisRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "faqrag",
			Name:      "synthesis_requests_total",
			Help:      "Total number of answer synthesis requests",
		},
		[]string{"model", "status"},
	)

	SynthesisRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "faqrag",
			Name:      "synthesis_request_duration_seconds",
			Help:      "Answer synthesis request duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"model"},
	)

	SynthesisOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "faqrag",
			Name:      "synthesis_outcomes_total",
			Help:      "Answer synthesis outcomes by kind",
		},
		[]string{"outcome"}, // "parsed" / "raw_text" / "failed"
	)
)

var clientMetricsRegistered bool

// RegisterClientMetrics registers Prometheus upstream-client metrics. Must be called once from main.
func RegisterClientMetrics() {
	if clientMetricsRegistered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingTokensTotal)
	prometheus.MustRegister(SynthesisRequestsTotal)
	prometheus.MustRegister(SynthesisRequestDuration)
	prometheus.MustRegister(SynthesisOutcomesTotal)
	clientMetricsRegistered = true
}
