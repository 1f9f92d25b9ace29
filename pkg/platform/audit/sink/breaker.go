package sink

import (
	"context"
	"sync"
	"time"

	audit "navbat/pkg/platform/audit"
	"navbat/pkg/platform/sentinel"
)

var _ audit.Sink = (*BreakerSink)(nil)

// CircuitBreaker stops hammering an unhealthy sink. After threshold
// consecutive failures it opens for cooldown and rejects calls; the first call
// after cooldown is let through as a probe.
type CircuitBreaker struct {
	mu sync.Mutex

	threshold int
	cooldown  time.Duration
	now       func() time.Time

	failures  int
	openUntil time.Time
	isOpen    bool
}

// NewCircuitBreaker creates a circuit breaker. Non-positive arguments fall back
// to 5 failures and one minute.
func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &CircuitBreaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
	}
}

// Allow reports whether a call may proceed.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if !cb.isOpen {
		return true
	}
	if cb.now().After(cb.openUntil) {
		// half-open: one probe, re-opened by the next RecordFailure
		cb.isOpen = false
		cb.failures = cb.threshold - 1
		return true
	}
	return false
}

// RecordSuccess closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.isOpen = false
}

// RecordFailure counts a failure, opening the circuit at the threshold.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	if cb.failures >= cb.threshold {
		cb.isOpen = true
		cb.openUntil = cb.now().Add(cb.cooldown)
	}
}

// IsOpen returns true if the circuit is currently open.
func (cb *CircuitBreaker) IsOpen() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.isOpen
}

// BreakerSink guards a sink with a circuit breaker. While open, Append fails
// fast with sentinel.ErrUnavailable so the publisher moves to its fallback
// without waiting on a dead backend.
type BreakerSink struct {
	next    audit.Sink
	breaker *CircuitBreaker
	onState func(open bool)
}

// BreakerOption configures a BreakerSink.
type BreakerOption func(*BreakerSink)

// WithStateHook is called with the breaker state after every append.
func WithStateHook(fn func(open bool)) BreakerOption {
	return func(s *BreakerSink) {
		s.onState = fn
	}
}

// NewBreakerSink wraps next with breaker.
func NewBreakerSink(next audit.Sink, breaker *CircuitBreaker, opts ...BreakerOption) *BreakerSink {
	s := &BreakerSink{next: next, breaker: breaker}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BreakerSink) Append(ctx context.Context, record audit.Record) error {
	if !s.breaker.Allow() {
		s.report()
		return sentinel.ErrUnavailable
	}
	err := s.next.Append(ctx, record)
	if err != nil {
		s.breaker.RecordFailure()
	} else {
		s.breaker.RecordSuccess()
	}
	s.report()
	return err
}

func (s *BreakerSink) report() {
	if s.onState != nil {
		s.onState(s.breaker.IsOpen())
	}
}

func (s *BreakerSink) Close() error { return s.next.Close() }

func (s *BreakerSink) Name() string { return s.next.Name() }
