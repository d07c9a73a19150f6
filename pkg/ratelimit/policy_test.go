package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{name: "valid", policy: Policy{Window: time.Minute, MaxRequests: 10}, wantErr: false},
		{name: "zero window", policy: Policy{Window: 0, MaxRequests: 10}, wantErr: true},
		{name: "negative window", policy: Policy{Window: -time.Second, MaxRequests: 10}, wantErr: true},
		{name: "zero quota", policy: Policy{Window: time.Minute, MaxRequests: 0}, wantErr: true},
		{name: "negative quota", policy: Policy{Window: time.Minute, MaxRequests: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPolicySet_DefaultsAreValid(t *testing.T) {
	assert.NoError(t, DefaultPolicySet().Validate())
}

func TestPolicySet_StrictnessOrdering(t *testing.T) {
	base := DefaultPolicySet()

	tests := []struct {
		name    string
		mutate  func(*PolicySet)
		wantErr string
	}{
		{
			name:   "auth equal to payment is allowed",
			mutate: func(s *PolicySet) { s.Auth = s.Payment },
		},
		{
			name:    "auth more lenient than payment",
			mutate:  func(s *PolicySet) { s.Auth.MaxRequests = s.Payment.MaxRequests + 1 },
			wantErr: "auth policy",
		},
		{
			name:    "payment not stricter than api",
			mutate:  func(s *PolicySet) { s.Payment.MaxRequests = s.API.MaxRequests },
			wantErr: "payment policy",
		},
		{
			name:    "api not stricter than public",
			mutate:  func(s *PolicySet) { s.API.MaxRequests = s.Public.MaxRequests },
			wantErr: "api policy",
		},
		{
			name: "different windows compare by rate",
			mutate: func(s *PolicySet) {
				// 30 requests per 30s = 1 req/s, above api's default rate.
				s.Payment = Policy{Window: 30 * time.Second, MaxRequests: 60}
			},
			wantErr: "payment policy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}
