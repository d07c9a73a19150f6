package ratelimit

import "time"

// Record is the per-identifier fixed-window counter.
//
// A record is valid only while now < ResetAt; once the window has passed the
// record is logically absent even if a store still holds it. The count keeps
// incrementing past the policy's quota within a window, so it can exceed
// MaxRequests; callers surface only the boolean verdict and a clamped
// remaining value.
type Record struct {
	// Count is the number of requests observed in the current window,
	// including any that were denied.
	Count int

	// ResetAt is the instant the current window ends and the counter resets.
	ResetAt time.Time
}

// Expired reports whether the record's window has ended at the given instant.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ResetAt)
}
