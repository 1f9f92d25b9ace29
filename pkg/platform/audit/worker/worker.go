// Package worker materializes audit records from the Kafka topic into a
// queryable store so GET /logs can read records written by the Kafka sink.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "navbat/pkg/platform/audit"
)

// Fetcher is the subset of *kgo.Client the worker needs.
type Fetcher interface {
	PollFetches(ctx context.Context) kgo.Fetches
	CommitUncommittedOffsets(ctx context.Context) error
}

// Worker consumes audit records and appends them to store. Offsets are
// committed only after every record of a poll has been stored, so a crash
// replays records; the store's ID-idempotent append absorbs the replay.
// A failing store is retried with capped exponential backoff; it never stops
// the worker.
type Worker struct {
	fetcher    Fetcher
	store      audit.Sink
	logger     *slog.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

type Option func(*Worker)

// WithRetryBackoff sets the first and the largest delay between store retries.
func WithRetryBackoff(initial, upper time.Duration) Option {
	return func(w *Worker) {
		if initial > 0 {
			w.minBackoff = initial
		}
		if upper >= w.minBackoff {
			w.maxBackoff = upper
		}
	}
}

func NewWorker(fetcher Fetcher, store audit.Sink, logger *slog.Logger, opts ...Option) *Worker {
	w := &Worker{
		fetcher:    fetcher,
		store:      store,
		logger:     logger,
		minBackoff: 200 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NewConsumerClient builds a consumer-group client for the audit topic.
func NewConsumerClient(brokers []string, topic, group string) (*kgo.Client, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(topic),
		kgo.DisableAutoCommit(),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	return client, nil
}

// Run polls until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		fetches := w.fetcher.PollFetches(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if fetches.IsClientClosed() {
			return nil
		}
		for _, fe := range fetches.Errors() {
			if errors.Is(fe.Err, context.Canceled) {
				return ctx.Err()
			}
			w.logger.WarnContext(ctx, "audit fetch error",
				"topic", fe.Topic,
				"partition", fe.Partition,
				"error", fe.Err,
			)
		}

		if err := w.handle(ctx, fetches); err != nil {
			// only cancellation ends a retry; the poll stays uncommitted
			return err
		}
		if err := w.fetcher.CommitUncommittedOffsets(ctx); err != nil {
			w.logger.WarnContext(ctx, "audit offset commit failed", "error", err)
		}
	}
}

func (w *Worker) handle(ctx context.Context, fetches kgo.Fetches) error {
	var records []audit.Record
	fetches.EachRecord(func(r *kgo.Record) {
		var record audit.Record
		if err := json.Unmarshal(r.Value, &record); err != nil {
			// Poison message: skip it, it can never be stored.
			w.logger.ErrorContext(ctx, "undecodable audit record skipped",
				"partition", r.Partition,
				"offset", r.Offset,
				"error", err,
			)
			return
		}
		records = append(records, record)
	})

	for _, record := range records {
		if err := w.storeWithRetry(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (w *Worker) storeWithRetry(ctx context.Context, record audit.Record) error {
	delay := w.minBackoff
	for attempt := 1; ; attempt++ {
		err := w.store.Append(ctx, record)
		if err == nil {
			if attempt > 1 {
				w.logger.InfoContext(ctx, "audit record materialized after retry",
					"audit_id", record.ID,
					"attempts", attempt,
				)
			}
			return nil
		}
		w.logger.WarnContext(ctx, "audit materialize failed, retrying",
			"audit_id", record.ID,
			"attempt", attempt,
			"retry_in", delay,
			"error", fmt.Errorf("materialize audit record %s: %w", record.ID, err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = min(delay*2, w.maxBackoff)
	}
}
