package slo

import (
	"testing"
	"time"

	io_prometheus_client "github.com/prometheus/client_model/go"
)

func TestSLOConstants(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected float64
	}{
		{"AvailabilitySLO", AvailabilitySLO, 99.9},
		{"LatencyP95SLO", LatencyP95SLO, 0.200},
		{"LatencyP99SLO", LatencyP99SLO, 0.500},
		{"ErrorRateSLO", ErrorRateSLO, 0.001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != tt.expected {
				t.Errorf("%s = %v, want %v", tt.name, tt.value, tt.expected)
			}
		})
	}
}

func gaugeValue(t *testing.T, g interface {
	Write(*io_prometheus_client.Metric) error
}) float64 {
	t.Helper()
	metric := &io_prometheus_client.Metric{}
	if err := g.Write(metric); err != nil {
		t.Fatalf("failed to write metric: %v", err)
	}
	return metric.GetGauge().GetValue()
}

func TestTracker_FlushComputesAvailability(t *testing.T) {
	SLOAvailability.Set(0)
	SLOErrorRate.Set(0)

	tracker := NewTracker()
	for i := 0; i < 99; i++ {
		tracker.Record(200, 10*time.Millisecond)
	}
	tracker.Record(500, 10*time.Millisecond)

	tracker.Flush()

	if got := gaugeValue(t, SLOAvailability); got != 0.99 {
		t.Errorf("SLOAvailability = %v, want 0.99", got)
	}
	if got := gaugeValue(t, SLOErrorRate); got != 0.01 {
		t.Errorf("SLOErrorRate = %v, want 0.01", got)
	}
}

func TestTracker_FlushComputesLatencyPercentiles(t *testing.T) {
	SLOLatencyP95.Set(0)
	SLOLatencyP99.Set(0)

	tracker := NewTracker()
	// 100 samples: 10ms .. 1000ms in 10ms steps
	for i := 1; i <= 100; i++ {
		tracker.Record(200, time.Duration(i)*10*time.Millisecond)
	}

	tracker.Flush()

	if got := gaugeValue(t, SLOLatencyP95); got < 0.90 || got > 1.0 {
		t.Errorf("SLOLatencyP95 = %v, want ~0.95", got)
	}
	if got := gaugeValue(t, SLOLatencyP99); got < 0.95 || got > 1.0 {
		t.Errorf("SLOLatencyP99 = %v, want ~0.99", got)
	}
}

func TestTracker_FlushResetsWindow(t *testing.T) {
	SLOAvailability.Set(0)

	tracker := NewTracker()
	tracker.Record(500, time.Millisecond)
	tracker.Flush()

	if got := gaugeValue(t, SLOAvailability); got != 0 {
		t.Errorf("SLOAvailability = %v, want 0 after all-error window", got)
	}

	// New window: all healthy.
	tracker.Record(200, time.Millisecond)
	tracker.Flush()

	if got := gaugeValue(t, SLOAvailability); got != 1.0 {
		t.Errorf("SLOAvailability = %v, want 1.0 after reset", got)
	}
}

func TestTracker_EmptyFlushLeavesGauges(t *testing.T) {
	SLOAvailability.Set(0.42)

	NewTracker().Flush()

	if got := gaugeValue(t, SLOAvailability); got != 0.42 {
		t.Errorf("SLOAvailability = %v, want previous value 0.42", got)
	}
}

func TestTracker_SampleBufferBounded(t *testing.T) {
	tracker := NewTracker()
	for i := 0; i < maxLatencySamples*2; i++ {
		tracker.Record(200, time.Millisecond)
	}

	tracker.mu.Lock()
	n := len(tracker.latencies)
	tracker.mu.Unlock()

	if n != maxLatencySamples {
		t.Errorf("latency buffer size = %d, want %d", n, maxLatencySamples)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	if got := percentile(sorted, 0.5); got != 5 {
		t.Errorf("percentile(0.5) = %v, want 5", got)
	}
	if got := percentile(sorted, 0.99); got != 10 {
		t.Errorf("percentile(0.99) = %v, want 10", got)
	}
	if got := percentile(nil, 0.95); got != 0 {
		t.Errorf("percentile(nil) = %v, want 0", got)
	}
}

func TestPercentile_NearestRank(t *testing.T) {
	// 100 distinct samples make the nearest-rank index observable:
	// p95 must select the 95th smallest value, not the 96th.
	sorted := make([]float64, 100)
	for i := range sorted {
		sorted[i] = float64(i + 1)
	}

	if got := percentile(sorted, 0.95); got != 95 {
		t.Errorf("percentile(0.95) = %v, want 95", got)
	}
	if got := percentile(sorted, 0.99); got != 99 {
		t.Errorf("percentile(0.99) = %v, want 99", got)
	}
	if got := percentile(sorted, 1.0); got != 100 {
		t.Errorf("percentile(1.0) = %v, want 100", got)
	}
}
