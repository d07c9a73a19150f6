package gatekeeper

import "strings"

// RouteClass describes how a path is gated.
type RouteClass int

const (
	// RoutePublic needs no session; requests pass through untouched.
	RoutePublic RouteClass = iota

	// RouteProtected requires a valid session; unauthenticated requests are
	// redirected to login.
	RouteProtected

	// RouteAuthOnly is for login-flow pages; authenticated users are
	// redirected to their landing area instead.
	RouteAuthOnly
)

// TrafficClass selects which rate limit policy applies to an API path.
type TrafficClass string

const (
	TrafficAuth    TrafficClass = "auth"
	TrafficPayment TrafficClass = "payment"
	TrafficAPI     TrafficClass = "api"
	TrafficPublic  TrafficClass = "public"
)

// protectedPrefixes lists the path prefixes requiring a valid session.
var protectedPrefixes = []string{
	"/dashboard",
	"/executive",
	"/onboarding",
	"/api/brands",
	"/api/branches",
	"/api/leads",
	"/api/payments",
	"/api/ai",
}

// authOnlyPrefixes lists the login-flow pages.
var authOnlyPrefixes = []string{
	"/login",
	"/signup",
	"/forgot-password",
}

// Classify maps a request path to exactly one route class by prefix match.
func Classify(path string) RouteClass {
	for _, prefix := range protectedPrefixes {
		if hasPathPrefix(path, prefix) {
			return RouteProtected
		}
	}
	for _, prefix := range authOnlyPrefixes {
		if hasPathPrefix(path, prefix) {
			return RouteAuthOnly
		}
	}
	return RoutePublic
}

// IsAPIPath reports whether the path is under the API namespace, which is
// the only namespace subject to rate limiting.
func IsAPIPath(path string) bool {
	return hasPathPrefix(path, "/api")
}

// TrafficClassFor selects the rate limit policy class for an API path.
func TrafficClassFor(path string) TrafficClass {
	switch {
	case hasPathPrefix(path, "/api/auth"):
		return TrafficAuth
	case hasPathPrefix(path, "/api/payments"):
		return TrafficPayment
	case hasPathPrefix(path, "/api/public"):
		return TrafficPublic
	default:
		return TrafficAPI
	}
}

// RewriteExempt reports whether a path skips the custom-domain rewrite.
// API calls and static assets are served the same way on every hostname.
func RewriteExempt(path string) bool {
	if hasPathPrefix(path, "/api") ||
		hasPathPrefix(path, "/_assets") ||
		hasPathPrefix(path, "/static") {
		return true
	}
	if path == "/favicon.ico" || path == "/robots.txt" {
		return true
	}
	// Paths with a file extension are asset requests.
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		if strings.Contains(path[idx+1:], ".") {
			return true
		}
	}
	return false
}

// hasPathPrefix matches whole path segments: "/dashboard" matches
// "/dashboard" and "/dashboard/sites" but not "/dashboards".
func hasPathPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
