package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listing_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	LandingOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_landing_jobs_total",
			Help: "Landing generation jobs by outcome and transport",
		},
		[]string{"outcome", "transport"},
	)
	TokensDeducted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "listing_tokens_deducted_total",
			Help: "Token units deducted from user balances",
		},
	)
	ModelCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_model_calls_total",
			Help: "Remote model calls by operation and result",
		},
		[]string{"operation", "result"},
	)
)

// RecordModelCall counts a remote model call.
func RecordModelCall(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ModelCalls.WithLabelValues(operation, result).Inc()
}
