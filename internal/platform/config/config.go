// Package config loads control plane settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Audit sink kinds.
const (
	SinkMemory   = "memory"
	SinkFile     = "file"
	SinkPostgres = "postgres"
	SinkKafka    = "kafka"

	FallbackLog  = "log"
	FallbackFile = "file"
	FallbackNone = "none"
)

const devSigningKey = "dev-secret-key-change-in-production"

type Config struct {
	Environment string `env:"NAVBAT_ENV" envDefault:"development"`
	Server      ServerConfig
	Auth        AuthConfig
	Audit       AuditConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Log         LogConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr              string        `env:"NAVBAT_ADDR" envDefault:":8080"`
	ReadHeaderTimeout time.Duration `env:"NAVBAT_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"NAVBAT_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

type AuthConfig struct {
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	Issuer        string `env:"JWT_ISSUER" envDefault:"navbat"`
	Audience      string `env:"JWT_AUDIENCE" envDefault:"navbat-admin"`
	// RevocationCheck consults the token revocation list on every request.
	RevocationCheck bool `env:"AUTH_REVOCATION_CHECK" envDefault:"false"`
}

type AuditConfig struct {
	Sink         string `env:"AUDIT_SINK" envDefault:"memory"`
	FilePath     string `env:"AUDIT_FILE_PATH" envDefault:"audit.jsonl"`
	Fallback     string `env:"AUDIT_FALLBACK" envDefault:"log"`
	FallbackPath string `env:"AUDIT_FALLBACK_PATH" envDefault:"audit-fallback.jsonl"`
	// MirrorPath, when set, copies every primary append to a JSONL file.
	MirrorPath    string        `env:"AUDIT_MIRROR_PATH"`
	AuditDenials  bool          `env:"AUDIT_DENIALS" envDefault:"false"`
	AppendTimeout time.Duration `env:"AUDIT_APPEND_TIMEOUT" envDefault:"5s"`
	LogsMaxLimit  int           `env:"AUDIT_LOGS_MAX_LIMIT" envDefault:"1000"`
	Breaker       BreakerConfig
}

// BreakerConfig guards the primary sink. A zero threshold disables it.
type BreakerConfig struct {
	Threshold int           `env:"AUDIT_BREAKER_THRESHOLD" envDefault:"5"`
	Cooldown  time.Duration `env:"AUDIT_BREAKER_COOLDOWN" envDefault:"30s"`
}

type PostgresConfig struct {
	DSN             string        `env:"POSTGRES_DSN"`
	MaxOpenConns    int           `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"10"`
	ConnMaxLifetime time.Duration `env:"POSTGRES_CONN_MAX_LIFETIME" envDefault:"30m"`
}

type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

type KafkaConfig struct {
	Brokers       []string `env:"KAFKA_BROKERS" envSeparator:","`
	Topic         string   `env:"KAFKA_AUDIT_TOPIC" envDefault:"navbat.audit"`
	ConsumerGroup string   `env:"KAFKA_CONSUMER_GROUP" envDefault:"navbat-audit-materializer"`
	// Materialize runs the consumer that copies Kafka records into postgres.
	Materialize bool `env:"KAFKA_MATERIALIZE" envDefault:"false"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load parses the environment and validates cross-field rules.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.Audit.Sink {
	case SinkMemory, SinkFile:
	case SinkPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("AUDIT_SINK=postgres requires POSTGRES_DSN"))
		}
	case SinkKafka:
		if len(c.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("AUDIT_SINK=kafka requires KAFKA_BROKERS"))
		}
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("AUDIT_SINK=kafka requires POSTGRES_DSN to serve /logs"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUDIT_SINK %q", c.Audit.Sink))
	}

	switch c.Audit.Fallback {
	case FallbackLog, FallbackFile, FallbackNone:
	default:
		errs = append(errs, fmt.Errorf("unknown AUDIT_FALLBACK %q", c.Audit.Fallback))
	}

	if c.Audit.MirrorPath != "" && c.Audit.Sink == SinkFile && c.Audit.MirrorPath == c.Audit.FilePath {
		errs = append(errs, errors.New("AUDIT_MIRROR_PATH must differ from AUDIT_FILE_PATH"))
	}
	if c.Audit.LogsMaxLimit < 1 || c.Audit.LogsMaxLimit > 1000 {
		errs = append(errs, fmt.Errorf("AUDIT_LOGS_MAX_LIMIT must be between 1 and 1000, got %d", c.Audit.LogsMaxLimit))
	}
	if c.Audit.AppendTimeout <= 0 {
		errs = append(errs, errors.New("AUDIT_APPEND_TIMEOUT must be positive"))
	}
	if c.Kafka.Materialize && c.Audit.Sink != SinkKafka {
		errs = append(errs, errors.New("KAFKA_MATERIALIZE requires AUDIT_SINK=kafka"))
	}
	if c.Auth.RevocationCheck && c.Redis.URL == "" {
		errs = append(errs, errors.New("AUTH_REVOCATION_CHECK requires REDIS_URL"))
	}
	if c.IsProduction() && c.Auth.JWTSigningKey == devSigningKey {
		errs = append(errs, errors.New("JWT_SIGNING_KEY must be set in production"))
	}
	return errors.Join(errs...)
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
