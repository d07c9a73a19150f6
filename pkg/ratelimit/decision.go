package ratelimit

import (
	"fmt"
	"time"
)

// Decision represents the result of a rate limit check.
//
// It carries everything a caller needs to build the standard response
// headers: the quota, what is left of it, when the window resets, and how
// long a denied client should wait before retrying.
type Decision struct {
	// Key is the identifier the check was performed for
	// (e.g. "user:42" or "ip:203.0.113.7").
	Key string

	// Allowed indicates whether the request is within the quota.
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Remaining is the number of requests left in the current window,
	// clamped at zero once the quota is exhausted.
	Remaining int

	// ResetAt is when the current window ends.
	ResetAt time.Time

	// RetryAfter is how long the client should wait before retrying.
	// Zero for allowed requests.
	RetryAfter time.Duration

	// Class identifies which traffic-class limiter made this decision.
	Class string
}

// RetryAfterSeconds returns the retry delay in whole seconds, rounded up so
// a client that waits exactly this long lands past the window boundary.
// Suitable for the Retry-After header.
func (d Decision) RetryAfterSeconds() int64 {
	if d.RetryAfter <= 0 {
		return 0
	}
	secs := int64((d.RetryAfter + time.Second - 1) / time.Second)
	return secs
}

// ResetAtISO returns the window end formatted as RFC 3339,
// suitable for the X-RateLimit-Reset header.
func (d Decision) ResetAtISO() string {
	return d.ResetAt.UTC().Format(time.RFC3339)
}

// String returns a human-readable representation for logs.
func (d Decision) String() string {
	verdict := "allowed"
	if !d.Allowed {
		verdict = "denied"
	}
	return fmt.Sprintf("Decision{%s, key=%s, class=%s, remaining=%d/%d, reset=%s}",
		verdict, d.Key, d.Class, d.Remaining, d.Limit, d.ResetAtISO())
}

func allowedDecision(key, class string, limit, remaining int, resetAt time.Time) Decision {
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Key:       key,
		Allowed:   true,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
		Class:     class,
	}
}

func deniedDecision(key, class string, limit int, resetAt time.Time, now time.Time) Decision {
	retryAfter := resetAt.Sub(now)
	if retryAfter < 0 {
		retryAfter = 0
	}
	return Decision{
		Key:        key,
		Allowed:    false,
		Limit:      limit,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: retryAfter,
		Class:      class,
	}
}
