package ratelimit

import (
	"fmt"
	"time"
)

// Policy is the immutable configuration of one limiter instance:
// how many requests an identifier may make within one fixed window.
type Policy struct {
	// Window is the fixed window duration. Must be positive.
	Window time.Duration

	// MaxRequests is the quota per identifier per window. Must be positive.
	MaxRequests int
}

// Validate checks that the policy values are usable.
func (p Policy) Validate() error {
	if p.Window <= 0 {
		return fmt.Errorf("window must be positive, got %s", p.Window)
	}
	if p.MaxRequests <= 0 {
		return fmt.Errorf("max requests must be positive, got %d", p.MaxRequests)
	}
	return nil
}

// rate returns the policy's quota normalized to requests per second,
// used to compare strictness across policies with different windows.
func (p Policy) rate() float64 {
	return float64(p.MaxRequests) / p.Window.Seconds()
}

// PolicySet holds the four traffic-class policies the gateway applies.
// The mechanism is identical for each class; only the thresholds differ.
type PolicySet struct {
	// Auth guards authentication endpoints. Tightest quota, since
	// brute-force risk is highest there.
	Auth Policy

	// Payment guards payment endpoints with a small strict quota.
	Payment Policy

	// API guards general API endpoints with a moderate quota.
	API Policy

	// Public guards unauthenticated public endpoints. Most lenient.
	Public Policy
}

// DefaultPolicySet returns the thresholds used when no configuration is
// supplied. The exact numbers are a deployment concern; the strictness
// ordering auth <= payment < api < public is the invariant.
func DefaultPolicySet() PolicySet {
	return PolicySet{
		Auth:    Policy{Window: time.Minute, MaxRequests: 5},
		Payment: Policy{Window: time.Minute, MaxRequests: 10},
		API:     Policy{Window: time.Minute, MaxRequests: 100},
		Public:  Policy{Window: time.Minute, MaxRequests: 300},
	}
}

// Validate checks each policy and the strictness ordering across classes:
// auth must be at least as strict as payment, payment stricter than api,
// and api stricter than public (comparing normalized request rates).
func (s PolicySet) Validate() error {
	for _, c := range []struct {
		name   string
		policy Policy
	}{
		{"auth", s.Auth},
		{"payment", s.Payment},
		{"api", s.API},
		{"public", s.Public},
	} {
		if err := c.policy.Validate(); err != nil {
			return fmt.Errorf("%s policy: %w", c.name, err)
		}
	}

	if s.Auth.rate() > s.Payment.rate() {
		return fmt.Errorf("auth policy (%.3f req/s) must not be more lenient than payment (%.3f req/s)",
			s.Auth.rate(), s.Payment.rate())
	}
	if s.Payment.rate() >= s.API.rate() {
		return fmt.Errorf("payment policy (%.3f req/s) must be stricter than api (%.3f req/s)",
			s.Payment.rate(), s.API.rate())
	}
	if s.API.rate() >= s.Public.rate() {
		return fmt.Errorf("api policy (%.3f req/s) must be stricter than public (%.3f req/s)",
			s.API.rate(), s.Public.rate())
	}
	return nil
}
