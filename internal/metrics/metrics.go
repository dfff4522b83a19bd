// Package metrics exposes Prometheus instrumentation for the enrichment
// pipeline and the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EnrichmentsTotal counts finished enrichment runs by outcome. The
	// outcome is "ok" or the failure kind.
	EnrichmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "company_intel_enrichments_total",
		Help: "Finished enrichment runs by outcome.",
	}, []string{"outcome"})

	// EnrichmentDuration tracks wall-clock time per enrichment run.
	EnrichmentDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "company_intel_enrichment_duration_seconds",
		Help:    "Wall-clock duration of enrichment runs.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 45},
	})

	// SignalsDetected counts emitted signals by family signal text.
	SignalsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "company_intel_signals_detected_total",
		Help: "Signals emitted by detection passes.",
	}, []string{"signal"})

	// ModelCalls counts language model invocations by result.
	ModelCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "company_intel_model_calls_total",
		Help: "Language model calls by result.",
	}, []string{"result"})

	// HTTPRequests counts API requests by route and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "company_intel_http_requests_total",
		Help: "HTTP requests by route and status class.",
	}, []string{"route", "status"})
)

// ObserveEnrichment records one finished run.
func ObserveEnrichment(outcome string, elapsed time.Duration) {
	EnrichmentsTotal.WithLabelValues(outcome).Inc()
	EnrichmentDuration.Observe(elapsed.Seconds())
}

// ObserveSignals records each signal from a detection pass.
func ObserveSignals(signals []string) {
	for _, signal := range signals {
		SignalsDetected.WithLabelValues(signal).Inc()
	}
}
