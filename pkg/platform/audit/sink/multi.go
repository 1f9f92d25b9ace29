package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	audit "navbat/pkg/platform/audit"
)

var _ audit.Sink = (*MultiSink)(nil)

// MultiSink writes every record to each sink in order. Append fails if any
// sink fails, so a partial write is visible to the publisher's escalation path.
type MultiSink struct {
	sinks  []audit.Sink
	logger *slog.Logger
}

// NewMultiSink creates a sink that writes to multiple destinations.
func NewMultiSink(logger *slog.Logger, sinks ...audit.Sink) *MultiSink {
	return &MultiSink{sinks: sinks, logger: logger}
}

func (s *MultiSink) Append(ctx context.Context, record audit.Record) error {
	var errs []error
	for _, sk := range s.sinks {
		if err := sk.Append(ctx, record); err != nil {
			s.logger.WarnContext(ctx, "audit sink append failed",
				"sink", sk.Name(),
				"audit_id", record.ID,
				"error", err.Error(),
			)
			errs = append(errs, fmt.Errorf("%s: %w", sk.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (s *MultiSink) Close() error {
	var errs []error
	for _, sk := range s.sinks {
		if err := sk.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *MultiSink) Name() string { return "multi" }
