// Package tracing provides OpenTelemetry tracing integration.
//
// The middleware extracts W3C trace context from inbound requests, opens a
// server span per request, and exposes the trace ID to clients via the
// X-Trace-Id response header. Setup installs the global tracer provider and
// propagator at startup.
//
// Example usage:
//
//	import "microsite-gateway/internal/observability/tracing"
//
//	func main() {
//	    shutdown := tracing.Setup("microsite-gateway")
//	    defer shutdown(context.Background())
//
//	    handler := tracing.Middleware(mux)
//	    http.ListenAndServe(":8080", handler)
//	}
package tracing
