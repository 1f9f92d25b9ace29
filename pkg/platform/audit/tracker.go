package audit

import (
	"context"
	"sync/atomic"
)

// Tracker remembers whether a request already produced its terminal record.
// The recovery boundary installs one per request and consults it after a
// panic so a fault following a SUCCESS or FAILED record is not audited twice.
type Tracker struct {
	terminal atomic.Bool
}

type trackerKey struct{}

// WithTracker returns a context carrying a fresh tracker.
func WithTracker(ctx context.Context) (context.Context, *Tracker) {
	t := &Tracker{}
	return context.WithValue(ctx, trackerKey{}, t), t
}

// TrackerFrom returns the request tracker, or nil outside a tracked request.
func TrackerFrom(ctx context.Context) *Tracker {
	t, _ := ctx.Value(trackerKey{}).(*Tracker)
	return t
}

// MarkTerminal records that a terminal record was written. It returns false if
// one had already been written for this request.
func (t *Tracker) MarkTerminal() bool {
	if t == nil {
		return true
	}
	return t.terminal.CompareAndSwap(false, true)
}

// Terminal reports whether a terminal record exists for this request.
func (t *Tracker) Terminal() bool {
	if t == nil {
		return false
	}
	return t.terminal.Load()
}
