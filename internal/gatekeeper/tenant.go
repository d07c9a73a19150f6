package gatekeeper

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// TenantRewritePath is the internal route that resolves a custom domain to
// a tenant microsite. The original hostname and the first path segment
// travel as query parameters.
const TenantRewritePath = "/site/resolve"

// TenantResolver decides whether a hostname belongs to a tenant rather
// than the platform itself.
//
// Implementations may consult external state (a domain registry); the
// pipeline treats resolver errors as "not a custom domain" and forwards
// the request unchanged, favoring availability over strict routing.
type TenantResolver interface {
	IsCustomDomain(ctx context.Context, hostname string) (bool, error)
}

// StaticTenantResolver classifies hostnames against a fixed list of
// platform domains. Localhost and raw IP addresses are always the
// platform: a tenant cannot point a bare IP at the gateway.
type StaticTenantResolver struct {
	platformDomains []string
}

// NewStaticTenantResolver creates a resolver for the given platform
// domains. Comparison is case-insensitive and includes subdomains.
func NewStaticTenantResolver(platformDomains []string) *StaticTenantResolver {
	domains := make([]string, 0, len(platformDomains))
	for _, d := range platformDomains {
		domains = append(domains, strings.ToLower(strings.TrimSpace(d)))
	}
	return &StaticTenantResolver{platformDomains: domains}
}

// IsCustomDomain reports whether hostname is a tenant custom domain.
func (s *StaticTenantResolver) IsCustomDomain(ctx context.Context, hostname string) (bool, error) {
	host := strings.ToLower(hostname)

	if host == "" || host == "localhost" {
		return false, nil
	}
	if ip := net.ParseIP(host); ip != nil {
		return false, nil
	}
	for _, domain := range s.platformDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return false, nil
		}
	}
	return true, nil
}

// BranchSlug extracts the first path segment, the branch selector on a
// tenant custom domain. "/" and "" yield an empty slug, meaning the
// tenant's default branch.
func BranchSlug(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if idx := strings.IndexByte(trimmed, '/'); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return trimmed
}

// RewriteToTenantRoute mutates the request in place to the internal
// tenant-resolution route, carrying the original hostname and branch slug.
func RewriteToTenantRoute(r *http.Request, hostname string) {
	q := url.Values{}
	q.Set("hostname", hostname)
	if slug := BranchSlug(r.URL.Path); slug != "" {
		q.Set("slug", slug)
	}
	r.URL.Path = TenantRewritePath
	r.URL.RawPath = ""
	r.URL.RawQuery = q.Encode()
}

// requestHost returns the request hostname without any port.
func requestHost(r *http.Request) string {
	host := r.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return host
}
