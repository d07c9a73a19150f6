package gatekeeper

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplySecurityHeaders(t *testing.T) {
	h := http.Header{}
	ApplySecurityHeaders(h)

	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
	assert.NotEmpty(t, h.Get("Permissions-Policy"))
	assert.Contains(t, h.Get("Content-Security-Policy"), "frame-ancestors 'none'")
}

func TestApplySecurityHeaders_Idempotent(t *testing.T) {
	h := http.Header{}
	ApplySecurityHeaders(h)
	ApplySecurityHeaders(h)

	assert.Len(t, h.Values("X-Content-Type-Options"), 1)
	assert.Len(t, h.Values("Content-Security-Policy"), 1)
}
