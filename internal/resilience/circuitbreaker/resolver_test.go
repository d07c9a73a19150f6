package circuitbreaker

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
)

// countingResolver fails every lookup and counts calls.
type countingResolver struct {
	calls int
	err   error
}

func (r *countingResolver) IsCustomDomain(ctx context.Context, hostname string) (bool, error) {
	r.calls++
	if r.err != nil {
		return false, r.err
	}
	return hostname == "tenant.example.com", nil
}

func TestResolverCircuitBreaker_PassesThroughWhenHealthy(t *testing.T) {
	resolver := &countingResolver{}
	rcb := NewResolverCircuitBreaker(resolver)

	isCustom, err := rcb.IsCustomDomain(context.Background(), "tenant.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isCustom {
		t.Error("expected tenant.example.com to be classified as custom")
	}

	isCustom, err = rcb.IsCustomDomain(context.Background(), "microsites.app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if isCustom {
		t.Error("expected microsites.app to be classified as platform")
	}
}

func TestResolverCircuitBreaker_OpensOnRepeatedFailures(t *testing.T) {
	resolver := &countingResolver{err: errors.New("lookup backend down")}
	cfg := testConfig()
	cfg.Name = "resolver-open-test"
	rcb := NewResolverCircuitBreakerWithConfig(resolver, cfg)

	for i := 0; i < 10; i++ {
		_, _ = rcb.IsCustomDomain(context.Background(), "x.example.com")
	}

	if rcb.State() != gobreaker.StateOpen {
		t.Fatalf("breaker state = %v, want open", rcb.State())
	}

	callsBefore := resolver.calls
	_, err := rcb.IsCustomDomain(context.Background(), "x.example.com")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("error = %v, want ErrOpenState", err)
	}
	if resolver.calls != callsBefore {
		t.Error("open breaker must not reach the resolver")
	}
}
