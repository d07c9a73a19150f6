package ratelimit

import "time"

// NoopMetrics discards all measurements. It is the default when no metrics
// collector is injected, and keeps tests free of global registry state.
type NoopMetrics struct{}

func (NoopMetrics) RecordAllowed(class string)                          {}
func (NoopMetrics) RecordDenied(class string)                           {}
func (NoopMetrics) RecordCheckDuration(class string, d time.Duration)   {}
func (NoopMetrics) RecordStoreError(class string)                       {}
func (NoopMetrics) SetActiveKeys(class string, n int)                   {}
