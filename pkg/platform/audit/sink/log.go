package sink

import (
	"context"
	"log/slog"

	audit "navbat/pkg/platform/audit"
)

var _ audit.Sink = (*LogSink)(nil)

// LogSink writes records to a structured logger. It is the default fallback
// channel when the primary sink cannot take a record.
type LogSink struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLogSink creates a LogSink that logs at the given level.
func NewLogSink(logger *slog.Logger, level slog.Level) *LogSink {
	return &LogSink{logger: logger.With("component", "audit"), level: level}
}

func (s *LogSink) Append(ctx context.Context, record audit.Record) error {
	s.logger.Log(ctx, s.level, "audit_record",
		"audit_id", record.ID,
		"timestamp", record.Timestamp,
		"action", string(record.Action),
		"actor", record.Actor,
		"target", record.Target,
		"status", string(record.Status),
		"reason", record.Reason,
		"request_id", record.RequestID,
	)
	return nil
}

func (s *LogSink) Close() error { return nil }

func (s *LogSink) Name() string { return "log" }
