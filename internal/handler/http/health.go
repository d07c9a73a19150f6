// Package http provides the gateway's HTTP plumbing: logging and recovery
// middleware, health and metrics endpoints, and the reverse proxy to the
// upstream application.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"microsite-gateway/pkg/ratelimit"
)

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // ISO 8601 format
	Checks    map[string]CheckStatus `json:"checks"`    // Status of each check item
	Version   string                 `json:"version"`   // Application version
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string                 `json:"status"`            // "healthy", "degraded", or "unhealthy"
	Message string                 `json:"message,omitempty"` // Optional status message
	Details map[string]interface{} `json:"details,omitempty"` // Optional additional details
}

// BreakerStatus exposes the state of a circuit breaker for health reporting.
type BreakerStatus interface {
	State() gobreaker.State
}

// Pinger checks reachability of an external dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// UpstreamPinger checks the upstream application by issuing a GET to its
// base URL. Any HTTP response counts as reachable; only transport errors
// fail the ping.
type UpstreamPinger struct {
	URL    string
	Client *http.Client
}

// Ping performs the reachability check.
func (p *UpstreamPinger) Ping(ctx context.Context) error {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return fmt.Errorf("build upstream ping request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("upstream unreachable: %w", err)
	}
	defer resp.Body.Close()

	return nil
}

// HealthHandler handles health check endpoint requests.
// It checks upstream reachability and reports rate limit store status for
// operational monitoring.
type HealthHandler struct {
	Version string

	// Upstream reachability check (optional)
	Upstream Pinger

	// Rate limiter components (optional)
	Store   ratelimit.CounterStore
	Breaker BreakerStatus
}

// ServeHTTP performs health checks and returns the gateway health status.
// Returns 200 OK if healthy, or 503 Service Unavailable if any check fails.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]CheckStatus)
	allHealthy := true

	if h.Upstream != nil {
		upstreamCheck := h.checkUpstream(ctx)
		checks["upstream"] = upstreamCheck
		if upstreamCheck.Status == "unhealthy" {
			allHealthy = false
		}
	}

	if h.Store != nil {
		// Rate limiter degradation is never unhealthy: the limiter fails
		// open, so a broken store costs throttling, not availability.
		checks["rate_limiter"] = h.checkRateLimiter(ctx)
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !allHealthy {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("health: failed to encode response: %v", err)
	}
}

// checkUpstream verifies the upstream application is reachable.
func (h *HealthHandler) checkUpstream(ctx context.Context) CheckStatus {
	if err := h.Upstream.Ping(ctx); err != nil {
		return CheckStatus{
			Status:  "unhealthy",
			Message: err.Error(),
		}
	}
	return CheckStatus{Status: "healthy"}
}

// checkRateLimiter reports the state of the rate limit store and its
// circuit breaker. Always "healthy": an open breaker means fail-open
// throttling, which is operational, not a failure.
func (h *HealthHandler) checkRateLimiter(ctx context.Context) CheckStatus {
	details := make(map[string]interface{})

	if keyCount, err := h.Store.KeyCount(ctx); err == nil {
		details["active_keys"] = keyCount
	} else {
		details["key_count_error"] = err.Error()
	}

	if h.Breaker != nil {
		details["circuit_breaker"] = h.Breaker.State().String()
	} else {
		details["circuit_breaker"] = "not_configured"
	}

	return CheckStatus{
		Status:  "healthy",
		Details: details,
	}
}

// ReadyHandler handles Kubernetes readiness probe requests.
// The gateway is ready when the upstream application is reachable.
type ReadyHandler struct {
	Upstream Pinger
}

// ServeHTTP performs readiness checks and returns 200 OK if ready,
// or 503 Service Unavailable if the upstream is not reachable.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if h.Upstream == nil {
		http.Error(w, "upstream not configured", http.StatusServiceUnavailable)
		return
	}

	if err := h.Upstream.Ping(ctx); err != nil {
		http.Error(w, "upstream not ready: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("ready")); err != nil {
		log.Printf("ready: failed to write response: %v", err)
	}
}

// LiveHandler handles Kubernetes liveness probe requests.
// It performs a lightweight check to verify the application is responsive.
type LiveHandler struct{}

// ServeHTTP performs a simple liveness check and always returns 200 OK
// if the application is running and able to respond.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("alive")); err != nil {
		log.Printf("alive: failed to write response: %v", err)
	}
}
