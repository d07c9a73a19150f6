// Package correlation manages correlation IDs for HTTP requests. Every
// request passing through the gateway carries exactly one correlation ID,
// either propagated from the inbound request or freshly generated, so that
// logs from the gateway and the upstream application can be joined.
package correlation

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// ContextKey is the context key for storing correlation IDs.
	ContextKey contextKey = "correlation_id"

	// Header is the HTTP header name for correlation IDs. Lowercase so the
	// same constant works for inbound lookup and outbound injection.
	Header = "x-correlation-id"
)

// FromContext retrieves the correlation ID from the context.
// Returns an empty string if no correlation ID is found.
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKey).(string); ok {
		return id
	}
	return ""
}

// WithCorrelationID adds a correlation ID to the context.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKey, id)
}

// Resolve returns the correlation ID for a request: the inbound header value
// when present and non-empty, otherwise a new UUID v4.
func Resolve(h http.Header) string {
	if id := h.Get(Header); id != "" {
		return id
	}
	return uuid.New().String()
}

// Middleware resolves the correlation ID at the edge of the middleware
// chain and stores it in the request context, the request header, and the
// response header. Writing it back to the request header makes later
// Resolve calls deterministic, so inner handlers see the same ID.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := Resolve(r.Header)
		r = r.WithContext(WithCorrelationID(r.Context(), id))
		r.Header.Set(Header, id)
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r)
	})
}
