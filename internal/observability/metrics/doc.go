// Package metrics provides Prometheus metrics registry and recording utilities.
//
// This package centralizes application-wide metrics including:
//   - HTTP request metrics (duration, count, size)
//   - Upstream proxy metrics (forwarded requests, proxy errors)
//   - Session verification and tenant rewrite counters
//
// All metrics are automatically registered with the Prometheus default registry
// and exposed via the /metrics endpoint on the metrics listener.
//
// Example usage:
//
//	import "microsite-gateway/internal/observability/metrics"
//
//	func handle(w http.ResponseWriter, r *http.Request) {
//	    start := time.Now()
//	    // ... handle request ...
//
//	    metrics.RecordHTTPRequest(r.Method, r.URL.Path, "200", time.Since(start), size)
//	}
package metrics
