// Package metrics provides the central Prometheus registry reference and
// the HTTP exposition handler for the KOL Port client.
// All metrics are defined in their respective packages (client, cache,
// ratelimit, events) to maintain modularity and avoid circular
// dependencies.
//
// This package provides documentation and reference for all available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Handler returns the HTTP handler exposing all registered metrics.
// The gateway mounts it at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - kolport_requests_total{endpoint, status} (Counter): Requests by endpoint and outcome
//     (HTTP status, cache_hit, rate_limited, cancelled, network_error)
//   - kolport_request_duration_seconds{endpoint} (Histogram): Request duration by endpoint
//   - kolport_errors_total{class} (Counter): Errors by class (client, server, network, cancelled, parse, internal)
//
// Retry Metrics (pkg/client):
//   - kolport_retries_total{error_class} (Counter): Retry attempts by error class
//   - kolport_retry_backoff_seconds{error_class} (Histogram): Backoff duration by error class
//   - kolport_retry_exhausted_total{error_class} (Counter): Requests that exhausted max retries
//
// Cache Metrics (pkg/cache):
//   - kolport_cache_hits_total{store} (Counter): Cache hits by store backend
//   - kolport_cache_misses_total{store} (Counter): Cache misses by store backend
//   - kolport_cache_swept_total (Counter): Expired entries removed by the sweep
//   - kolport_cache_errors_total{operation} (Counter): Cache operation errors
//
// Rate Limit Metrics (pkg/ratelimit):
//   - kolport_rate_limit_remaining (Gauge): Requests remaining in the current window
//   - kolport_rate_limit_blocks_total (Counter): Requests blocked due to exhausted budget
//
// Event Metrics (pkg/events):
//   - kolport_events_emitted_total{type} (Counter): Events emitted on the bus by type
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(kolport_cache_hits_total[5m])) /
//   (sum(rate(kolport_cache_hits_total[5m])) + sum(rate(kolport_cache_misses_total[5m])))
//
//   # Request Error Rate
//   rate(kolport_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(kolport_request_duration_seconds_bucket[5m]))
//
//   # Retry Pressure
//   rate(kolport_retries_total[5m])
