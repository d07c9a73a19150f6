package circuitbreaker

import (
	"context"

	"github.com/sony/gobreaker"

	"microsite-gateway/internal/gatekeeper"
)

// ResolverCircuitBreaker wraps a tenant resolver with circuit breaker
// protection. When domain lookups degrade, the circuit opens and every
// lookup errors immediately; the pipeline treats resolver errors as
// "forward unchanged", so an open circuit costs tenant rewriting, not
// availability.
type ResolverCircuitBreaker struct {
	cb       *CircuitBreaker
	resolver gatekeeper.TenantResolver
}

// Compile-time interface check.
var _ gatekeeper.TenantResolver = (*ResolverCircuitBreaker)(nil)

// NewResolverCircuitBreaker wraps resolver with the standard tenant
// resolver breaker configuration.
func NewResolverCircuitBreaker(resolver gatekeeper.TenantResolver) *ResolverCircuitBreaker {
	return NewResolverCircuitBreakerWithConfig(resolver, TenantResolverConfig())
}

// NewResolverCircuitBreakerWithConfig wraps resolver with a custom configuration.
func NewResolverCircuitBreakerWithConfig(resolver gatekeeper.TenantResolver, cfg Config) *ResolverCircuitBreaker {
	return &ResolverCircuitBreaker{
		cb:       New(cfg),
		resolver: resolver,
	}
}

// IsCustomDomain classifies the hostname through the circuit breaker.
func (rcb *ResolverCircuitBreaker) IsCustomDomain(ctx context.Context, hostname string) (bool, error) {
	result, err := rcb.cb.Execute(func() (interface{}, error) {
		return rcb.resolver.IsCustomDomain(ctx, hostname)
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// State returns the current state of the circuit breaker.
func (rcb *ResolverCircuitBreaker) State() gobreaker.State {
	return rcb.cb.State()
}
