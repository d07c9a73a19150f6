package ratelimit

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements Metrics using Prometheus collectors.
//
// All metrics are labeled by traffic class so one collector serves every
// limiter instance in the gateway.
type PrometheusMetrics struct {
	allowed       *prometheus.CounterVec
	denied        *prometheus.CounterVec
	storeErrors   *prometheus.CounterVec
	checkDuration *prometheus.HistogramVec
	activeKeys    *prometheus.GaugeVec
}

// NewPrometheusMetrics creates the collectors and registers them with the
// given registerer (use prometheus.DefaultRegisterer in production).
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		allowed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ratelimit_requests_allowed_total",
			Help: "Total rate limit checks that allowed the request",
		}, []string{"class"}),
		denied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ratelimit_requests_denied_total",
			Help: "Total rate limit checks that denied the request",
		}, []string{"class"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ratelimit_store_errors_total",
			Help: "Total counter store failures (checks fail open)",
		}, []string{"class"}),
		checkDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ratelimit_check_duration_seconds",
			Help:    "Duration of rate limit checks in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 10, 6),
		}, []string{"class"}),
		activeKeys: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ratelimit_active_keys",
			Help: "Number of live identifier records in the counter store",
		}, []string{"class"}),
	}

	reg.MustRegister(m.allowed, m.denied, m.storeErrors, m.checkDuration, m.activeKeys)
	return m
}

func (m *PrometheusMetrics) RecordAllowed(class string) {
	m.allowed.WithLabelValues(class).Inc()
}

func (m *PrometheusMetrics) RecordDenied(class string) {
	m.denied.WithLabelValues(class).Inc()
}

func (m *PrometheusMetrics) RecordCheckDuration(class string, d time.Duration) {
	m.checkDuration.WithLabelValues(class).Observe(d.Seconds())
}

func (m *PrometheusMetrics) RecordStoreError(class string) {
	m.storeErrors.WithLabelValues(class).Inc()
}

func (m *PrometheusMetrics) SetActiveKeys(class string, n int) {
	m.activeKeys.WithLabelValues(class).Set(float64(n))
}
