package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outbound call metrics: embedding API, Wikipedia, similarity oracle, caches.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wsdlab",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"provider", "model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wsdlab",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wsdlab",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	EmbeddingErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wsdlab",
			Name:      "embedding_errors_total",
			Help:      "Total embedding errors",
		},
		[]string{"provider", "model", "error_type"},
	)

	ExternalRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wsdlab",
			Name:      "external_requests_total",
			Help:      "Total number of calls to external knowledge sources",
		},
		[]string{"service", "status"}, // service: "wikipedia" / "oracle_http" / "oracle_cmd"
	)

	ExternalRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wsdlab",
			Name:      "external_request_duration_seconds",
			Help:      "External knowledge source call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"service"},
	)

	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wsdlab",
			Name:      "cache_total",
			Help:      "Cache hits and misses",
		},
		[]string{"cache", "result"}, // result: "hit" / "miss"
	)
)

var externalMetricsRegistered bool

// RegisterExternalMetrics registers outbound call metrics. Must be called once from main.
func RegisterExternalMetrics() {
	if externalMetricsRegistered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingTokensTotal)
	prometheus.MustRegister(EmbeddingErrorsTotal)
	prometheus.MustRegister(ExternalRequestsTotal)
	prometheus.MustRegister(ExternalRequestDuration)
	prometheus.MustRegister(CacheTotal)
	externalMetricsRegistered = true
}

// CacheCounter returns the hit/miss counter for one named cache.
func CacheCounter(cache string) *prometheus.CounterVec {
	return CacheTotal.MustCurryWith(prometheus.Labels{"cache": cache})
}

// ObserveExternal records one external call outcome.
func ObserveExternal(service string, seconds float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ExternalRequestsTotal.WithLabelValues(service, status).Inc()
	ExternalRequestDuration.WithLabelValues(service).Observe(seconds)
}
