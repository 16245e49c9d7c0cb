package infra

import (
	"context"
	"sync"
	"time"
)

// Minimum spacing between consecutive SUNAT submissions, process-wide.
// The beta environment locks the account out after request bursts, so it
// gets a far longer cooldown than production.
const (
	throttleBeta       = 120 * time.Second
	throttleProduccion = 5 * time.Second
)

// SubmitThrottle serializes outbound submissions: every caller reserves the
// next available slot under the mutex, then sleeps until it. Slots are
// spaced at least `interval` apart regardless of how many goroutines
// (workers, retry cron) are submitting.
type SubmitThrottle struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewSubmitThrottle picks the cooldown for the given SUNAT environment
// ("beta" or "produccion").
func NewSubmitThrottle(env string) *SubmitThrottle {
	interval := throttleProduccion
	if env == "beta" {
		interval = throttleBeta
	}
	return NewSubmitThrottleInterval(interval)
}

// NewSubmitThrottleInterval builds a throttle with an explicit spacing.
func NewSubmitThrottleInterval(interval time.Duration) *SubmitThrottle {
	return &SubmitThrottle{interval: interval}
}

// Wait blocks until this caller's reserved slot arrives, or the context is
// cancelled. The slot stays consumed either way, which errs on the side of
// submitting less often.
func (t *SubmitThrottle) Wait(ctx context.Context) error {
	t.mu.Lock()
	now := time.Now()
	slot := t.next
	if slot.Before(now) {
		slot = now
	}
	t.next = slot.Add(t.interval)
	t.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// Interval exposes the configured spacing (health endpoint).
func (t *SubmitThrottle) Interval() time.Duration { return t.interval }
