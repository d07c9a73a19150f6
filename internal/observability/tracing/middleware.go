package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"microsite-gateway/internal/correlation"
	"microsite-gateway/internal/handler/http/responsewriter"
)

// Middleware traces one gateway pass per request. The span covers the
// whole pipeline decision plus any upstream forwarding; inbound W3C trace
// context is honored, and the trace ID is mirrored in the X-Trace-Id
// response header so clients and upstream log lines can join the trace.
//
// The recorded path and host are the inbound values, before any tenant
// rewrite. The correlation ID is read back from the response header the
// correlation middleware stamps further down the chain, so every span can
// be joined to the gateway's own logs.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := otel.GetTextMapPropagator().Extract(
			r.Context(),
			propagation.HeaderCarrier(r.Header),
		)

		ctx, span := tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
		)
		defer span.End()

		w.Header().Set("X-Trace-Id", span.SpanContext().TraceID().String())

		rw := responsewriter.Wrap(w)
		next.ServeHTTP(rw, r.WithContext(ctx))

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.path", r.URL.Path),
			attribute.String("http.host", r.Host),
			attribute.Int("http.status_code", rw.StatusCode()),
		)
		if id := rw.Header().Get(correlation.Header); id != "" {
			span.SetAttributes(attribute.String("correlation.id", id))
		}
		if rw.StatusCode() >= 500 {
			span.SetAttributes(attribute.Bool("error", true))
		}
	})
}
