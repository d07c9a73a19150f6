package gatekeeper

import (
	"net/http"

	"microsite-gateway/pkg/security/csp"
)

// securityHeaders is the fixed battery stamped on every response the
// gateway produces, regardless of which branch handled the request.
var securityHeaders = map[string]string{
	"X-Content-Type-Options": "nosniff",
	"X-Frame-Options":        "DENY",
	"Referrer-Policy":        "strict-origin-when-cross-origin",
	"Permissions-Policy":     "camera=(), microphone=(), geolocation=()",
}

var contentSecurityPolicy = csp.GatewayPolicy()

// ApplySecurityHeaders stamps the standard security header set onto h.
// Idempotent: applying twice leaves the same values.
func ApplySecurityHeaders(h http.Header) {
	for name, value := range securityHeaders {
		h.Set(name, value)
	}
	h.Set(contentSecurityPolicy.HeaderName(), contentSecurityPolicy.Build())
}
