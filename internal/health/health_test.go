package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fixedTraffic struct {
	active  int64
	latency time.Duration
}

func (f fixedTraffic) ActiveRequests() int64         { return f.active }
func (f fixedTraffic) AverageLatency() time.Duration { return f.latency }

func TestChecker_Check(t *testing.T) {
	started := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now := started.Add(90 * time.Second)
	clock := func() time.Time { return now }

	t.Run("no dependencies is healthy", func(t *testing.T) {
		snap := NewChecker(started, WithClock(clock)).Check(context.Background())
		assert.Equal(t, StatusHealthy, snap.Status)
		assert.Equal(t, int64(90), snap.UptimeSeconds)
		assert.Equal(t, started, snap.StartedAt)
		assert.Empty(t, snap.Dependencies)
		assert.Equal(t, "0ms", snap.RequestLatency)
	})

	t.Run("reports traffic", func(t *testing.T) {
		snap := NewChecker(started, WithTraffic(fixedTraffic{active: 7, latency: 42 * time.Millisecond})).
			Check(context.Background())
		assert.Equal(t, int64(7), snap.ActiveConnections)
		assert.Equal(t, "42ms", snap.RequestLatency)
	})

	t.Run("one down degrades", func(t *testing.T) {
		snap := NewChecker(started,
			WithClock(clock),
			WithProbe("postgres", func(context.Context) error { return nil }),
			WithProbe("redis", func(context.Context) error { return errors.New("connection refused") }),
		).Check(context.Background())

		assert.Equal(t, StatusDegraded, snap.Status)
		assert.Equal(t, map[string]string{"postgres": DependencyUp, "redis": DependencyDown}, snap.Dependencies)
	})

	t.Run("slow probe is bounded by timeout", func(t *testing.T) {
		checker := NewChecker(started,
			WithTimeout(20*time.Millisecond),
			WithProbe("kafka", func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			}),
		)
		start := time.Now()
		snap := checker.Check(context.Background())
		assert.Less(t, time.Since(start), time.Second)
		assert.Equal(t, DependencyDown, snap.Dependencies["kafka"])
	})

	t.Run("probes run concurrently", func(t *testing.T) {
		slow := func(context.Context) error {
			time.Sleep(100 * time.Millisecond)
			return nil
		}
		checker := NewChecker(started,
			WithProbe("a", slow), WithProbe("b", slow), WithProbe("c", slow),
		)
		start := time.Now()
		snap := checker.Check(context.Background())
		assert.Less(t, time.Since(start), 250*time.Millisecond)
		assert.Equal(t, StatusHealthy, snap.Status)
	})
}
