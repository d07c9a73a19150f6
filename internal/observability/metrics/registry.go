package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics track HTTP request patterns and performance
var (
	// HTTPRequestsTotal counts total HTTP requests by method, path, and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures HTTP request duration in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// HTTPResponseSize measures HTTP response body size in bytes
	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "path"},
	)

	// ActiveConnections tracks the number of active HTTP connections
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_connections",
			Help: "Number of active HTTP connections",
		},
	)
)

// Upstream metrics track the gateway's calls to the application origin
var (
	// UpstreamRequestsTotal counts requests forwarded to the upstream
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of requests forwarded to the upstream application",
		},
		[]string{"status"},
	)

	// UpstreamErrors counts upstream proxy failures
	UpstreamErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "upstream_errors_total",
			Help: "Total number of upstream proxy errors",
		},
	)

	// SessionVerificationsTotal counts session token verifications by result
	SessionVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_verifications_total",
			Help: "Total number of session token verifications",
		},
		[]string{"result"}, // result: valid, invalid
	)

	// TenantRewritesTotal counts custom-domain rewrites
	TenantRewritesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tenant_rewrites_total",
			Help: "Total number of custom-domain requests rewritten to the tenant route",
		},
	)
)

// RecordHTTPRequest records an HTTP request with its metadata
func RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())

	if responseSize > 0 {
		HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
	}
}

// RecordSessionVerification records one token verification outcome.
func RecordSessionVerification(valid bool) {
	result := "valid"
	if !valid {
		result = "invalid"
	}
	SessionVerificationsTotal.WithLabelValues(result).Inc()
}
