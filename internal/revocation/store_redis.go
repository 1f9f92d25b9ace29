// Package revocation tracks revoked access token IDs (jti) until they expire.
package revocation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

const revokedTokenKeyPrefix = "trl:jti:"

// RedisTRL is a Redis-backed revocation list shared by all instances.
type RedisTRL struct {
	client        *redis.Client
	checkDuration prometheus.Histogram
}

type Option func(*RedisTRL)

// WithMetrics registers the check latency histogram on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(t *RedisTRL) {
		t.checkDuration = promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "navbat_is_token_revoked_duration_ms",
			Help:    "Latency of token revocation checks in milliseconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		})
	}
}

// NewRedisTRL constructs a Redis-backed token revocation list.
func NewRedisTRL(client *redis.Client, opts ...Option) *RedisTRL {
	t := &RedisTRL{client: client}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Revoke adds jti to the list until ttl elapses. The ttl should match the
// remaining token lifetime.
func (t *RedisTRL) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := validate(jti, ttl); err != nil {
		return err
	}
	// The key's existence is what matters; the value is a marker.
	return t.client.Set(ctx, revokedTokenKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked returns false for unknown or expired IDs.
func (t *RedisTRL) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if t.checkDuration != nil {
		start := time.Now()
		defer func() {
			t.checkDuration.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
		}()
	}

	if jti == "" {
		return false, nil
	}
	_, err := t.client.Get(ctx, revokedTokenKeyPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func validate(jti string, ttl time.Duration) error {
	if jti == "" {
		return errors.New("jti is required")
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}
	return nil
}
