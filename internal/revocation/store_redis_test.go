package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisTRL_MetricsRegisterOnInjectedRegistry(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	reg := prometheus.NewRegistry()
	trl := NewRedisTRL(client, WithMetrics(reg))

	_, err := trl.IsRevoked(context.Background(), "jti-1")
	require.Error(t, err, "redis is unreachable")

	count, err := promtestutil.GatherAndCount(reg, "navbat_is_token_revoked_duration_ms")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.Len(t, families, 1)
	assert.Equal(t, uint64(1), families[0].GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestRedisTRL_RevokeValidatesInput(t *testing.T) {
	trl := NewRedisTRL(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))

	require.ErrorContains(t, trl.Revoke(context.Background(), "", time.Minute), "jti is required")
	require.ErrorContains(t, trl.Revoke(context.Background(), "jti-1", 0), "ttl must be positive")
}
