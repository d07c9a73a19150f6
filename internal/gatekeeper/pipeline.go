// Package gatekeeper implements the request gatekeeping pipeline that sits
// in front of the upstream application.
//
// Every inbound request passes through one pipeline invocation, evaluated
// in fixed order: correlation ID, rate limit, custom-domain rewrite, route
// classification, session verification, role-based redirects, and identity
// header injection. Each stage can terminate the request; security headers
// are present on every exit path. No branch ever surfaces an unhandled
// error: quota violations become 429s, credential problems become
// redirects, and resolver failures fall through to plain forwarding.
package gatekeeper

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"microsite-gateway/internal/auth"
	"microsite-gateway/internal/correlation"
	"microsite-gateway/internal/handler/http/respond"
	obsmetrics "microsite-gateway/internal/observability/metrics"
	"microsite-gateway/pkg/ratelimit"
)

// Trusted identity headers injected for downstream handlers. Inbound values
// for these headers are always stripped; only the pipeline may set them.
const (
	HeaderUserID   = "X-User-Id"
	HeaderUserRole = "X-User-Role"
	HeaderTenantID = "X-Tenant-Id"
)

// LoginPath is where unauthenticated and invalid-session requests land.
const LoginPath = "/login"

// TokenVerifier validates a session token and extracts its principal.
// The boolean is false for any invalid token; verification never errors.
type TokenVerifier interface {
	Verify(raw string) (*auth.Principal, bool)
}

// Options configures a Pipeline.
type Options struct {
	// Limiters maps each traffic class to its limiter. API requests whose
	// class has no limiter are not throttled.
	Limiters map[TrafficClass]*ratelimit.Limiter

	// Verifier validates session tokens.
	Verifier TokenVerifier

	// Resolver classifies hostnames as platform or tenant custom domains.
	Resolver TenantResolver

	// Identity derives rate limit identifiers.
	Identity *IdentityExtractor

	// SessionCookie is the cookie carrying the session token.
	SessionCookie string

	// SessionCookies are the cookies cleared or re-attached on redirects.
	SessionCookies []string

	// Metrics records pipeline outcomes; nil disables recording.
	Metrics *Metrics
}

// Pipeline is the gatekeeping middleware. Wrap the upstream handler with
// Handler; the pipeline holds no per-request state of its own.
type Pipeline struct {
	limiters       map[TrafficClass]*ratelimit.Limiter
	verifier       TokenVerifier
	resolver       TenantResolver
	identity       *IdentityExtractor
	sessionCookie  string
	sessionCookies []string
	metrics        *Metrics
}

// NewPipeline builds a Pipeline from opts, filling in defaults for the
// session cookie name and the identity extractor.
func NewPipeline(opts Options) *Pipeline {
	if opts.SessionCookie == "" {
		opts.SessionCookie = "session_token"
	}
	if len(opts.SessionCookies) == 0 {
		opts.SessionCookies = []string{opts.SessionCookie}
	}
	if opts.Identity == nil {
		opts.Identity, _ = NewIdentityExtractor(nil)
	}
	if opts.Resolver == nil {
		opts.Resolver = NewStaticTenantResolver(nil)
	}
	return &Pipeline{
		limiters:       opts.Limiters,
		verifier:       opts.Verifier,
		resolver:       opts.Resolver,
		identity:       opts.Identity,
		sessionCookie:  opts.SessionCookie,
		sessionCookies: opts.SessionCookies,
		metrics:        opts.Metrics,
	}
}

// Handler wraps next with the full gatekeeping pipeline.
func (p *Pipeline) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		correlationID := correlation.Resolve(r.Header)
		ctx := correlation.WithCorrelationID(r.Context(), correlationID)
		r = r.WithContext(ctx)
		w.Header().Set(correlation.Header, correlationID)
		ApplySecurityHeaders(w.Header())

		// Inbound identity headers are never trusted.
		r.Header.Del(HeaderUserID)
		r.Header.Del(HeaderUserRole)
		r.Header.Del(HeaderTenantID)

		rawToken := p.sessionToken(r)
		principal, authenticated := p.verify(rawToken, correlationID)

		path := r.URL.Path

		if IsAPIPath(path) {
			if denied := p.throttle(w, r, principal); denied {
				p.finish(OutcomeRateLimited, start)
				respond.JSON(w, http.StatusTooManyRequests,
					map[string]string{"error": "Too many requests, please try again later."})
				return
			}
		}

		if !RewriteExempt(path) {
			host := requestHost(r)
			isCustom, err := p.resolver.IsCustomDomain(ctx, host)
			switch {
			case err != nil:
				// Availability over strict routing: an unresolvable domain
				// is forwarded unchanged rather than rejected.
				slog.Warn("custom domain resolution failed, forwarding unchanged",
					slog.String("correlation_id", correlationID),
					slog.String("host", host),
					slog.String("error", err.Error()))
			case isCustom:
				obsmetrics.TenantRewritesTotal.Inc()
				RewriteToTenantRoute(r, host)
				p.forward(w, r, next, correlationID, OutcomeTenantRewrite, start)
				return
			}
		}

		routeClass := Classify(path)

		if routeClass == RouteProtected && rawToken == "" {
			p.finish(OutcomeLoginRedirect, start)
			p.redirectToLogin(w, r, path)
			return
		}

		if rawToken != "" && !authenticated && routeClass == RouteProtected {
			ClearSessionCookies(w, p.sessionCookies)
			p.finish(OutcomeLoginRedirect, start)
			http.Redirect(w, r, LoginPath, http.StatusTemporaryRedirect)
			return
		}

		if authenticated {
			if routeClass == RouteAuthOnly {
				CopyRequestCookies(w, r, p.sessionCookies)
				p.finish(OutcomeRoleRedirect, start)
				http.Redirect(w, r, principal.LandingPath(), http.StatusTemporaryRedirect)
				return
			}
			if routeClass == RouteProtected && !principal.CanAccess(path) {
				CopyRequestCookies(w, r, p.sessionCookies)
				p.finish(OutcomeRoleRedirect, start)
				http.Redirect(w, r, principal.LandingPath(), http.StatusTemporaryRedirect)
				return
			}
			if IsAPIPath(path) {
				r.Header.Set(HeaderUserID, principal.UserID)
				r.Header.Set(HeaderUserRole, string(principal.Role))
				if principal.TenantID != "" {
					r.Header.Set(HeaderTenantID, principal.TenantID)
				}
				p.forward(w, r, next, correlationID, OutcomeAPIForwarded, start)
				return
			}
		}

		p.forward(w, r, next, correlationID, OutcomeForwarded, start)
	})
}

// sessionToken extracts the raw session token from the request cookie.
// Returns an empty string when the cookie is absent or empty.
func (p *Pipeline) sessionToken(r *http.Request) string {
	cookie, err := r.Cookie(p.sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// verify validates the raw token. An empty token, or a pipeline without a
// verifier, yields no principal. Failures are logged, never escalated.
func (p *Pipeline) verify(rawToken, correlationID string) (*auth.Principal, bool) {
	if rawToken == "" || p.verifier == nil {
		return nil, false
	}
	principal, ok := p.verifier.Verify(rawToken)
	obsmetrics.RecordSessionVerification(ok)
	if !ok {
		slog.Info("session token verification failed",
			slog.String("correlation_id", correlationID))
		return nil, false
	}
	return principal, true
}

// throttle runs the rate limit check for an API request and stamps the
// quota headers, including Retry-After on denial. The returned bool is
// true when the request is denied.
func (p *Pipeline) throttle(w http.ResponseWriter, r *http.Request, principal *auth.Principal) bool {
	limiter := p.limiters[TrafficClassFor(r.URL.Path)]
	if limiter == nil {
		return false
	}

	decision := limiter.Check(r.Context(), p.identity.Identifier(r, principal))

	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	h.Set("X-RateLimit-Reset", decision.ResetAtISO())
	if !decision.Allowed {
		h.Set("Retry-After", strconv.FormatInt(decision.RetryAfterSeconds(), 10))
	}

	return !decision.Allowed
}

func (p *Pipeline) redirectToLogin(w http.ResponseWriter, r *http.Request, originalPath string) {
	target := LoginPath + "?redirect=" + url.QueryEscape(originalPath)
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// forward hands the request to the upstream handler with the correlation
// ID attached for downstream log joining.
func (p *Pipeline) forward(w http.ResponseWriter, r *http.Request, next http.Handler, correlationID, outcome string, start time.Time) {
	r.Header.Set(correlation.Header, correlationID)
	p.finish(outcome, start)
	next.ServeHTTP(w, r)
}

// finish records the terminal outcome and the time the pipeline itself
// spent deciding, excluding any upstream call.
func (p *Pipeline) finish(outcome string, start time.Time) {
	p.metrics.recordDecision(outcome)
	p.metrics.recordDuration(time.Since(start))
}
