package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"navbat/internal/platform/config"
	audit "navbat/pkg/platform/audit"
	"navbat/pkg/platform/audit/sink"
	kafkasink "navbat/pkg/platform/audit/sink/kafka"
	"navbat/pkg/platform/audit/store/memory"
	pgaudit "navbat/pkg/platform/audit/store/postgres"
)

// auditBackend is the selected primary sink and the reader that serves /logs.
type auditBackend struct {
	primary  audit.Sink
	reader   audit.Reader
	fallback audit.Sink
	kafka    *kafkasink.Sink
	// materializeInto receives records consumed from Kafka.
	materializeInto audit.Sink
	closers         []func() error
}

func (b *auditBackend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

func buildAuditBackend(ctx context.Context, cfg config.Config, db *sql.DB, reg prometheus.Registerer, log *slog.Logger) (*auditBackend, error) {
	b := &auditBackend{}

	switch cfg.Audit.Sink {
	case config.SinkMemory:
		store := memory.NewInMemoryStore()
		b.primary, b.reader = store, store
	case config.SinkFile:
		fs, err := sink.NewFileSink("file", cfg.Audit.FilePath)
		if err != nil {
			return nil, err
		}
		b.primary, b.reader = fs, fs
	case config.SinkPostgres:
		store, err := postgresAuditStore(ctx, db)
		if err != nil {
			return nil, err
		}
		b.primary, b.reader = store, store
	case config.SinkKafka:
		ks, err := kafkasink.New(kafkasink.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.Topic}, log)
		if err != nil {
			return nil, err
		}
		if err := ks.EnsureTopic(ctx); err != nil {
			_ = ks.Close()
			return nil, err
		}
		store, err := postgresAuditStore(ctx, db)
		if err != nil {
			_ = ks.Close()
			return nil, err
		}
		b.primary, b.reader, b.kafka = ks, store, ks
		b.materializeInto = store
	default:
		return nil, fmt.Errorf("unknown audit sink %q", cfg.Audit.Sink)
	}
	b.closers = append(b.closers, b.primary.Close)

	if cfg.Audit.Breaker.Threshold > 0 {
		breakerOpen := promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "navbat_audit_breaker_open",
			Help: "1 while the primary audit sink circuit breaker is open",
		})
		b.primary = sink.NewBreakerSink(
			b.primary,
			sink.NewCircuitBreaker(cfg.Audit.Breaker.Threshold, cfg.Audit.Breaker.Cooldown),
			sink.WithStateHook(func(open bool) {
				if open {
					breakerOpen.Set(1)
				} else {
					breakerOpen.Set(0)
				}
			}),
		)
	}

	if cfg.Audit.MirrorPath != "" {
		mirror, err := sink.NewFileSink("mirror", cfg.Audit.MirrorPath)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.closers = append(b.closers, mirror.Close)
		b.primary = sink.NewMultiSink(log, b.primary, mirror)
	}

	switch cfg.Audit.Fallback {
	case config.FallbackLog:
		b.fallback = sink.NewLogSink(log, slog.LevelError)
	case config.FallbackFile:
		fs, err := sink.NewFileSink("fallback", cfg.Audit.FallbackPath)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.fallback = fs
		b.closers = append(b.closers, fs.Close)
	}

	log.Info("audit sink ready",
		"sink", b.primary.Name(),
		"fallback", cfg.Audit.Fallback,
		"mirror", cfg.Audit.MirrorPath,
		"breaker_threshold", cfg.Audit.Breaker.Threshold,
	)
	return b, nil
}

func postgresAuditStore(ctx context.Context, db *sql.DB) (*pgaudit.Store, error) {
	if db == nil {
		return nil, errors.New("postgres audit store requires POSTGRES_DSN")
	}
	store := pgaudit.New(db)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}
