// Package publisher builds audit records and writes them through an injected sink.
//
// Writes are synchronous: Record returns only after the sink accepted the record
// or the failure was escalated. Callers never observe an audit failure; a rejected
// append is counted, logged at ERROR with the full record, and handed to the
// fallback sink if one is configured.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	audit "navbat/pkg/platform/audit"
	"navbat/pkg/requestcontext"
)

const defaultAppendTimeout = 5 * time.Second

// Publisher is safe for concurrent use. It holds no lock; ordering between
// concurrent appends is the sink's concern.
type Publisher struct {
	sink     audit.Sink
	fallback audit.Sink
	logger   *slog.Logger
	metrics  *Metrics
	tracer   trace.Tracer
	timeout  time.Duration
	now      func() time.Time
	newID    func() string
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets the logger used for escalation.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(p *Publisher) {
		p.metrics = m
	}
}

// WithFallback sets the sink used when the primary rejects a record.
func WithFallback(sink audit.Sink) Option {
	return func(p *Publisher) {
		p.fallback = sink
	}
}

// WithAppendTimeout bounds each primary and fallback append.
func WithAppendTimeout(d time.Duration) Option {
	return func(p *Publisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithTracer overrides the global otel tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Publisher) {
		p.tracer = tracer
	}
}

// WithClock overrides time.Now for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

// New creates a publisher writing to sink.
func New(sink audit.Sink, opts ...Option) *Publisher {
	p := &Publisher{
		sink:    sink,
		logger:  slog.Default(),
		tracer:  otel.Tracer("navbat/audit"),
		timeout: defaultAppendTimeout,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Entry is the caller-supplied part of a record.
type Entry struct {
	Action audit.Action
	Actor  string
	Target string
	Status audit.Status // SUCCESS when empty
	Reason string       // dropped for SUCCESS
}

// Record builds a record from e, appends it, and returns what was written.
// The append is detached from ctx cancellation so a disconnected caller cannot
// drop it, and it marks the request tracker terminal.
func (p *Publisher) Record(ctx context.Context, e Entry) audit.Record {
	if e.Status == "" {
		e.Status = audit.StatusSuccess
	}
	if e.Status == audit.StatusSuccess {
		e.Reason = ""
	}
	e.Reason = truncateReason(e.Reason)
	record := audit.Record{
		ID:        p.newID(),
		Timestamp: p.now().Unix(),
		Action:    e.Action,
		Actor:     e.Actor,
		Target:    e.Target,
		Status:    e.Status,
		Reason:    e.Reason,
		RequestID: requestcontext.RequestID(ctx),
	}

	p.write(context.WithoutCancel(ctx), record)
	audit.TrackerFrom(ctx).MarkTerminal()
	return record
}

func (p *Publisher) write(ctx context.Context, record audit.Record) {
	ctx, span := p.tracer.Start(ctx, "audit.append", trace.WithAttributes(
		attribute.String("audit.action", string(record.Action)),
		attribute.String("audit.status", string(record.Status)),
		attribute.String("audit.sink", p.sink.Name()),
	))
	defer span.End()

	start := time.Now()
	err := p.appendWithTimeout(ctx, p.sink, record)
	if err == nil {
		p.metrics.observeWritten(string(record.Action), string(record.Status), time.Since(start).Seconds())
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, "primary audit sink rejected record")
	p.metrics.incAppendFailures()
	p.logger.ErrorContext(ctx, "audit append failed",
		"sink", p.sink.Name(),
		"error", err,
		"audit_id", record.ID,
		"timestamp", record.Timestamp,
		"action", string(record.Action),
		"actor", record.Actor,
		"target", record.Target,
		"status", string(record.Status),
		"reason", record.Reason,
		"request_id", record.RequestID,
	)

	if p.fallback == nil {
		p.metrics.incFallbackFailures()
		return
	}
	if err := p.appendWithTimeout(ctx, p.fallback, record); err != nil {
		p.metrics.incFallbackFailures()
		p.logger.ErrorContext(ctx, "audit fallback append failed",
			"sink", p.fallback.Name(),
			"error", err,
			"audit_id", record.ID,
		)
	}
}

// appendWithTimeout converts a panicking sink into an error so the record
// still reaches the fallback.
func (p *Publisher) appendWithTimeout(ctx context.Context, sink audit.Sink, record audit.Record) (err error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("audit sink %s panicked: %v", sink.Name(), rec)
		}
	}()
	return sink.Append(ctx, record)
}

// MaxReasonBytes bounds the stored reason so one record stays one short line.
const MaxReasonBytes = 1024

func truncateReason(reason string) string {
	if len(reason) <= MaxReasonBytes {
		return reason
	}
	cut := MaxReasonBytes
	for cut > 0 && !utf8.RuneStart(reason[cut]) {
		cut--
	}
	return reason[:cut]
}

// Action is a single-use handle for one administrative action. Exactly one of
// Succeed or Fail writes a record; later calls return false and write nothing.
type Action struct {
	p      *Publisher
	action audit.Action
	actor  string
	target string
	done   atomic.Bool
}

// Begin opens an action handle. Nothing is written until it is resolved.
func (p *Publisher) Begin(_ context.Context, action audit.Action, actor, target string) *Action {
	return &Action{p: p, action: action, actor: actor, target: target}
}

// Succeed writes the SUCCESS record.
func (a *Action) Succeed(ctx context.Context) bool {
	return a.resolve(ctx, audit.StatusSuccess, "")
}

// Fail writes the FAILED record with reason.
func (a *Action) Fail(ctx context.Context, reason string) bool {
	return a.resolve(ctx, audit.StatusFailed, reason)
}

// Resolved reports whether a terminal record was written.
func (a *Action) Resolved() bool {
	return a.done.Load()
}

func (a *Action) resolve(ctx context.Context, status audit.Status, reason string) bool {
	if !a.done.CompareAndSwap(false, true) {
		return false
	}
	a.p.Record(ctx, Entry{
		Action: a.action,
		Actor:  a.actor,
		Target: a.target,
		Status: status,
		Reason: reason,
	})
	return true
}
