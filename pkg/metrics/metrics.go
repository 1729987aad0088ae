// Package metrics exposes the Prometheus metrics of the GitHub client.
// The collectors are defined next to the code that updates them (pkg/client,
// pkg/ratelimit) and registered via promauto on the default registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the registerer all client metrics are added to.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer Handler serves from.
var Gatherer = prometheus.DefaultGatherer

// Handler serves the registered metrics in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// NewServer returns an HTTP server exposing Handler on /metrics.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Metrics
//
// Requests (pkg/client):
//   - github_api_requests_total{endpoint, status} (Counter): requests by endpoint and HTTP status,
//     "network_error" for transport failures and "rate_limited" for refused requests
//   - github_api_request_duration_seconds{endpoint} (Histogram): round trip duration
//   - github_api_errors_total{kind} (Counter): failures by kind (transport, decode, upstream, rate_limited)
//   - github_api_pages_total{endpoint} (Counter): pages delivered by paginators
//
// Rate limit (pkg/ratelimit):
//   - github_api_rate_limit_remaining (Gauge): requests left in the current window
//   - github_api_rate_limit_limit (Gauge): window size
//   - github_api_rate_limit_blocks_total (Counter): requests refused while exhausted
//
// Example queries:
//
//	# Quota running out
//	github_api_rate_limit_remaining < 100
//
//	# Decode failure rate
//	rate(github_api_errors_total{kind="decode"}[5m])
//
//	# P95 latency
//	histogram_quantile(0.95, rate(github_api_request_duration_seconds_bucket[5m]))
