// Package metrics exposes Prometheus counters for the analysis pipeline.
//
// The Collector owns a private registry so tests can build as many as they
// like without duplicate-registration panics. Mount Handler() at /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "aura"

// Buckets tuned for chat-completion latency up to the 15s provider timeout.
var providerDurationBuckets = []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15}

// Collector records analysis metrics. It satisfies analysis.MetricsRecorder.
type Collector struct {
	registry *prometheus.Registry

	analyses         *prometheus.CounterVec
	providerFailures *prometheus.CounterVec
	providerLatency  *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
}

// NewCollector registers all metrics on registry (a fresh one when nil),
// plus the Go runtime and process collectors.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,
		analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analysis_requests_total",
				Help:      "Analyses served, by result source (llm, cache, heuristic) and configured provider.",
			},
			[]string{"source", "provider"},
		),
		providerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_failures_total",
				Help:      "LLM path failures that triggered the heuristic fallback, by kind.",
			},
			[]string{"provider", "kind"},
		),
		providerLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_request_duration_seconds",
				Help:      "Wall time of outbound chat-completion calls.",
				Buckets:   providerDurationBuckets,
			},
			[]string{"provider"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Result cache lookups by result (hit, miss, error).",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		c.analyses,
		c.providerFailures,
		c.providerLatency,
		c.cacheLookups,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) RecordAnalysis(source, provider string) {
	c.analyses.WithLabelValues(source, provider).Inc()
}

func (c *Collector) RecordProviderFailure(provider, kind string) {
	c.providerFailures.WithLabelValues(provider, kind).Inc()
}

func (c *Collector) RecordProviderLatency(provider string, d time.Duration) {
	c.providerLatency.WithLabelValues(provider).Observe(d.Seconds())
}

func (c *Collector) RecordCacheLookup(result string) {
	c.cacheLookups.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
