package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"navbat/internal/admin/adapters"
	"navbat/internal/admin/handler"
	adminmetrics "navbat/internal/admin/metrics"
	"navbat/internal/admin/service"
	"navbat/internal/health"
	httpapi "navbat/internal/http"
	jwttoken "navbat/internal/jwt_token"
	orgstore "navbat/internal/org/store"
	"navbat/internal/platform/config"
	"navbat/internal/platform/httpserver"
	"navbat/internal/platform/logger"
	"navbat/internal/platform/metrics"
	"navbat/internal/platform/postgres"
	redisclient "navbat/internal/platform/redis"
	"navbat/internal/revocation"
	"navbat/internal/securityconfig"
	"navbat/pkg/platform/audit/publisher"
	"navbat/pkg/platform/audit/worker"
	"navbat/pkg/platform/middleware/auth"
	"navbat/pkg/platform/middleware/recovery"
	"navbat/pkg/platform/middleware/request"
)

// main wires dependencies, serves the admin API, and owns the process
// lifecycle. Business logic lives in internal packages.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("navbat exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("navbat stopped")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	startedAt := time.Now()
	reg := metrics.NewRegistry()

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	rdb, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	backend, err := buildAuditBackend(ctx, cfg, db, reg, log)
	if err != nil {
		return fmt.Errorf("audit backend: %w", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Warn("closing audit sinks", "error", err)
		}
	}()

	pubOpts := []publisher.Option{
		publisher.WithLogger(log),
		publisher.WithMetrics(publisher.NewMetrics(reg)),
		publisher.WithAppendTimeout(cfg.Audit.AppendTimeout),
	}
	if backend.fallback != nil {
		pubOpts = append(pubOpts, publisher.WithFallback(backend.fallback))
	}
	pub := publisher.New(backend.primary, pubOpts...)

	orgs, err := buildOrgStore(ctx, db)
	if err != nil {
		return err
	}
	var rules securityconfig.Store = securityconfig.NewInMemoryStore()
	if rdb != nil {
		rules = securityconfig.NewRedisStore(rdb.Client)
	}

	traffic := request.NewTraffic(reg)
	checker := health.NewChecker(startedAt,
		append(healthProbes(db, rdb, backend), health.WithTraffic(traffic))...)

	svc, err := service.New(orgs, rules, backend.reader, pub,
		service.WithLogger(log),
		service.WithMetrics(adminmetrics.New(reg)),
		service.WithHealthChecker(checker),
		service.WithMaxLogsLimit(cfg.Audit.LogsMaxLimit),
	)
	if err != nil {
		return err
	}

	tokens := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	gateOpts := []auth.Option{auth.WithLogger(log)}
	if cfg.Auth.RevocationCheck {
		gateOpts = append(gateOpts, auth.WithRevocationChecker(revocation.NewRedisTRL(rdb.Client, revocation.WithMetrics(reg))))
	}
	if cfg.Audit.AuditDenials {
		gateOpts = append(gateOpts, auth.WithDenialAuditing(pub))
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Admin:    handler.New(svc, log),
		Gate:     auth.NewGate(jwttoken.NewJWTServiceAdapter(tokens), gateOpts...),
		Boundary: recovery.New(pub, log),
		Logger:   log,
		Traffic:  traffic,
		Metrics:  metrics.Handler(reg),
	})
	srv := httpserver.New(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, srv, cfg.Server, log)
	})
	if cfg.Kafka.Materialize {
		if err := startMaterializer(gctx, g, cfg, backend, log); err != nil {
			return err
		}
	}
	return g.Wait()
}

func buildOrgStore(ctx context.Context, db *sql.DB) (service.OrgStore, error) {
	if db == nil {
		return orgstore.NewInMemoryStore(), nil
	}
	store := orgstore.NewPostgres(db)
	if err := store.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func healthProbes(db *sql.DB, rdb *redisclient.Client, backend *auditBackend) []health.Option {
	var opts []health.Option
	if db != nil {
		opts = append(opts, health.WithProbe("postgres", adapters.PostgresProbe(db)))
	}
	if rdb != nil {
		opts = append(opts, health.WithProbe("redis", adapters.RedisProbe(rdb.Client)))
	}
	if backend.kafka != nil {
		opts = append(opts, health.WithProbe("kafka", adapters.KafkaProbe(backend.kafka)))
	}
	return opts
}

func startMaterializer(ctx context.Context, g *errgroup.Group, cfg config.Config, backend *auditBackend, log *slog.Logger) error {
	client, err := worker.NewConsumerClient(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.ConsumerGroup)
	if err != nil {
		return err
	}
	w := worker.NewWorker(client, backend.materializeInto, log)
	g.Go(func() error {
		defer client.Close()
		log.Info("audit materializer started", "topic", cfg.Kafka.Topic, "group", cfg.Kafka.ConsumerGroup)
		// A stopped materializer must not take the admin API down with it.
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("audit materializer stopped", "error", err)
		}
		return nil
	})
	return nil
}
