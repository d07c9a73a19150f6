package gatekeeper

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"microsite-gateway/internal/auth"
)

// IdentityExtractor derives the rate limit identifier for a request.
//
// An authenticated principal yields "user:<id>", so a user's quota follows
// them across IP changes. Anonymous requests yield "ip:<addr>" from the
// forwarded-for chain when the peer is a trusted proxy, else from the
// transport-level peer address.
type IdentityExtractor struct {
	trustedProxies []netip.Prefix
}

// NewIdentityExtractor parses the trusted proxy list. Entries may be CIDR
// ranges or single addresses; single addresses become /32 or /128 prefixes.
// With an empty list no forwarded headers are ever honored, which prevents
// quota rotation via spoofed X-Forwarded-For.
func NewIdentityExtractor(trustedProxies []string) (*IdentityExtractor, error) {
	prefixes := make([]netip.Prefix, 0, len(trustedProxies))
	for _, entry := range trustedProxies {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		prefix, err := netip.ParsePrefix(entry)
		if err != nil {
			addr, addrErr := netip.ParseAddr(entry)
			if addrErr != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: must be an IP address or CIDR range", entry)
			}
			bits := 32
			if addr.Is6() {
				bits = 128
			}
			prefix = netip.PrefixFrom(addr, bits)
		}
		prefixes = append(prefixes, prefix)
	}

	return &IdentityExtractor{trustedProxies: prefixes}, nil
}

// Identifier returns the rate limit key for a request. The principal, when
// present, always wins over any address-derived key.
func (e *IdentityExtractor) Identifier(r *http.Request, principal *auth.Principal) string {
	if principal != nil {
		return "user:" + principal.UserID
	}
	return "ip:" + e.clientIP(r)
}

// clientIP resolves the client address. The forwarded-for chain is only
// consulted when the direct peer is a configured trusted proxy.
func (e *IdentityExtractor) clientIP(r *http.Request) string {
	peer := ipFromAddr(r.RemoteAddr)

	if !e.isTrustedProxy(peer) {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" && len(e.trustedProxies) > 0 {
			slog.Warn("forwarded-for header from untrusted peer ignored",
				slog.String("remote_addr", r.RemoteAddr))
		}
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := firstForwardedIP(xff); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if ip := net.ParseIP(strings.TrimSpace(xri)); ip != nil {
			return ip.String()
		}
	}
	return peer
}

func (e *IdentityExtractor) isTrustedProxy(ip string) bool {
	if len(e.trustedProxies) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	for _, prefix := range e.trustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ipFromAddr strips the port from a "host:port" address. Addresses without
// a port are returned as-is when they parse as an IP.
func ipFromAddr(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err == nil {
		return host
	}
	if ip := net.ParseIP(addr); ip != nil {
		return ip.String()
	}
	return addr
}

// firstForwardedIP returns the first valid address of a comma-separated
// forwarded-for chain ("client, proxy1, proxy2").
func firstForwardedIP(chain string) string {
	first := chain
	if idx := strings.IndexByte(chain, ','); idx >= 0 {
		first = chain[:idx]
	}
	if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
		return ip.String()
	}
	return ""
}
