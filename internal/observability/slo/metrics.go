// Package slo tracks service level objective metrics for the gateway.
//
// A Tracker accumulates request outcomes in process and periodically flushes
// derived gauges (availability, error rate, latency percentiles) to
// Prometheus. Flush is scheduled from the main scheduler alongside the rate
// limit sweep.
package slo

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SLO targets define the service level objectives for the gateway.
// These targets are used to measure and monitor service reliability.
const (
	// AvailabilitySLO defines the target uptime percentage (99.9% = 43 minutes downtime per month)
	AvailabilitySLO = 99.9

	// LatencyP95SLO defines the target for 95th percentile latency in seconds (200ms)
	LatencyP95SLO = 0.200

	// LatencyP99SLO defines the target for 99th percentile latency in seconds (500ms)
	LatencyP99SLO = 0.500

	// ErrorRateSLO defines the maximum acceptable error rate as a ratio (0.1% = 0.001)
	ErrorRateSLO = 0.001
)

// SLO tracking metrics
// These gauges are updated periodically from the Tracker based on recent
// measurements to track whether the service is meeting its SLO targets.
var (
	// SLOAvailability tracks the current availability ratio (0-1)
	// calculated as: (total_requests - 5xx_errors) / total_requests
	SLOAvailability = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_availability_ratio",
			Help: "Current availability ratio (0-1), target: 0.999",
		},
	)

	// SLOLatencyP95 tracks the current p95 latency in seconds
	SLOLatencyP95 = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_latency_p95_seconds",
			Help: "Current p95 latency in seconds, target: 0.200",
		},
	)

	// SLOLatencyP99 tracks the current p99 latency in seconds
	SLOLatencyP99 = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_latency_p99_seconds",
			Help: "Current p99 latency in seconds, target: 0.500",
		},
	)

	// SLOErrorRate tracks the current error rate ratio (0-1)
	// calculated as: 5xx_errors / total_requests
	SLOErrorRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slo_error_rate_ratio",
			Help: "Current error rate ratio (0-1), target: 0.001",
		},
	)
)

// maxLatencySamples bounds the per-window latency sample buffer.
// Oldest samples are overwritten once the buffer is full.
const maxLatencySamples = 4096

// Tracker accumulates per-request outcomes between flushes.
// All methods are safe for concurrent use.
type Tracker struct {
	mu        sync.Mutex
	total     uint64
	errors    uint64
	latencies []float64
	next      int
	full      bool
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		latencies: make([]float64, 0, maxLatencySamples),
	}
}

// Record adds one completed request to the current window.
// Status codes >= 500 count against availability and error rate.
func (t *Tracker) Record(statusCode int, duration time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.total++
	if statusCode >= 500 {
		t.errors++
	}

	seconds := duration.Seconds()
	if t.full {
		t.latencies[t.next] = seconds
		t.next = (t.next + 1) % maxLatencySamples
		return
	}

	t.latencies = append(t.latencies, seconds)
	if len(t.latencies) == maxLatencySamples {
		t.full = true
		t.next = 0
	}
}

// Flush computes the window's SLO values, publishes them to the gauges,
// and resets the window. A window with no requests leaves the gauges at
// their previous values.
func (t *Tracker) Flush() {
	t.mu.Lock()
	total := t.total
	errors := t.errors
	samples := make([]float64, len(t.latencies))
	copy(samples, t.latencies)
	t.total = 0
	t.errors = 0
	t.latencies = t.latencies[:0]
	t.next = 0
	t.full = false
	t.mu.Unlock()

	if total == 0 {
		return
	}

	availability := float64(total-errors) / float64(total)
	SLOAvailability.Set(availability)
	SLOErrorRate.Set(float64(errors) / float64(total))

	sort.Float64s(samples)
	SLOLatencyP95.Set(percentile(samples, 0.95))
	SLOLatencyP99.Set(percentile(samples, 0.99))
}

// percentile returns the p-quantile of sorted samples using
// nearest-rank selection: the ceil(n*p)-th smallest sample.
// Samples must be sorted ascending.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(float64(len(sorted))*p)) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}
