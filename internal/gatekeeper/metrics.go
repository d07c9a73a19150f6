package gatekeeper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records pipeline outcomes. A nil *Metrics is valid and records
// nothing, so tests can pass nil.
type Metrics struct {
	decisions *prometheus.CounterVec
	duration  prometheus.Histogram
}

// Decision outcomes reported to metrics.
const (
	OutcomeRateLimited   = "rate_limited"
	OutcomeTenantRewrite = "tenant_rewrite"
	OutcomeLoginRedirect = "login_redirect"
	OutcomeRoleRedirect  = "role_redirect"
	OutcomeAPIForwarded  = "api_forwarded"
	OutcomeForwarded     = "forwarded"
)

// NewMetrics creates and registers the pipeline metric collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_pipeline_decisions_total",
			Help: "Terminal pipeline outcomes by type.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gateway_pipeline_duration_seconds",
			Help:    "Time spent in the gatekeeping pipeline, excluding the upstream call.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}
	reg.MustRegister(m.decisions, m.duration)
	return m
}

func (m *Metrics) recordDecision(outcome string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) recordDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}
