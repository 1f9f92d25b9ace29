// Package adapters turns infrastructure clients into health probes.
package adapters

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"

	"navbat/internal/health"
)

// Pinger is satisfied by *kgo.Client and the Kafka audit sink.
type Pinger interface {
	Ping(ctx context.Context) error
}

func PostgresProbe(db *sql.DB) health.Probe {
	return db.PingContext
}

func RedisProbe(client redis.UniversalClient) health.Probe {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

func KafkaProbe(p Pinger) health.Probe {
	return p.Ping
}
