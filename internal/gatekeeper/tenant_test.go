package gatekeeper

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticTenantResolver_IsCustomDomain(t *testing.T) {
	resolver := NewStaticTenantResolver([]string{"microsites.app", "Microsites.dev"})
	ctx := context.Background()

	tests := []struct {
		hostname string
		want     bool
	}{
		{"microsites.app", false},
		{"www.microsites.app", false},
		{"tenant.microsites.dev", false},
		{"MICROSITES.APP", false},
		{"localhost", false},
		{"127.0.0.1", false},
		{"::1", false},
		{"", false},
		{"pizza-palace.com", true},
		{"shop.pizza-palace.com", true},
		{"microsites.app.evil.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.hostname, func(t *testing.T) {
			got, err := resolver.IsCustomDomain(ctx, tt.hostname)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBranchSlug(t *testing.T) {
	assert.Equal(t, "downtown", BranchSlug("/downtown"))
	assert.Equal(t, "downtown", BranchSlug("/downtown/menu"))
	assert.Equal(t, "", BranchSlug("/"))
	assert.Equal(t, "", BranchSlug(""))
}

func TestRewriteToTenantRoute(t *testing.T) {
	r := httptest.NewRequest("GET", "http://pizza-palace.com/downtown/menu?utm=x", nil)

	RewriteToTenantRoute(r, "pizza-palace.com")

	assert.Equal(t, TenantRewritePath, r.URL.Path)
	q := r.URL.Query()
	assert.Equal(t, "pizza-palace.com", q.Get("hostname"))
	assert.Equal(t, "downtown", q.Get("slug"))
}

func TestRewriteToTenantRoute_RootPath(t *testing.T) {
	r := httptest.NewRequest("GET", "http://pizza-palace.com/", nil)

	RewriteToTenantRoute(r, "pizza-palace.com")

	assert.Equal(t, TenantRewritePath, r.URL.Path)
	q := r.URL.Query()
	assert.Equal(t, "pizza-palace.com", q.Get("hostname"))
	assert.False(t, q.Has("slug"), "root path carries no slug")
}
