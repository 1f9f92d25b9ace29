// Package health probes the control plane's dependencies.
package health

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"

	DependencyUp   = "up"
	DependencyDown = "down"
)

const defaultProbeTimeout = 2 * time.Second

// Probe returns nil when the dependency answers.
type Probe func(ctx context.Context) error

// TrafficSource reports live request load.
type TrafficSource interface {
	ActiveRequests() int64
	AverageLatency() time.Duration
}

// Snapshot is the read-only health view.
type Snapshot struct {
	Status            string            `json:"status"`
	UptimeSeconds     int64             `json:"uptime_seconds"`
	StartedAt         time.Time         `json:"started_at"`
	ActiveConnections int64             `json:"active_connections"`
	RequestLatency    string            `json:"request_latency"`
	Dependencies      map[string]string `json:"dependencies"`
}

// Checker runs all probes concurrently. Probes are fixed at construction.
type Checker struct {
	startedAt time.Time
	probes    map[string]Probe
	traffic   TrafficSource
	timeout   time.Duration
	now       func() time.Time
}

type Option func(*Checker)

func WithProbe(name string, probe Probe) Option {
	return func(c *Checker) {
		c.probes[name] = probe
	}
}

func WithTraffic(src TrafficSource) Option {
	return func(c *Checker) {
		c.traffic = src
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		c.now = now
	}
}

func NewChecker(startedAt time.Time, opts ...Option) *Checker {
	c := &Checker{
		startedAt: startedAt,
		probes:    make(map[string]Probe),
		timeout:   defaultProbeTimeout,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check never fails; a failing probe marks its dependency down and the
// snapshot degraded.
func (c *Checker) Check(ctx context.Context) Snapshot {
	names := make([]string, 0, len(c.probes))
	for name := range c.probes {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]string, len(names))
	var g errgroup.Group
	for i, name := range names {
		probe := c.probes[name]
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			if err := probe(pctx); err != nil {
				results[i] = DependencyDown
				return nil
			}
			results[i] = DependencyUp
			return nil
		})
	}
	_ = g.Wait()

	snapshot := Snapshot{
		Status:         StatusHealthy,
		UptimeSeconds:  int64(c.now().Sub(c.startedAt).Seconds()),
		StartedAt:      c.startedAt.UTC(),
		RequestLatency: "0ms",
		Dependencies:   make(map[string]string, len(names)),
	}
	if c.traffic != nil {
		snapshot.ActiveConnections = c.traffic.ActiveRequests()
		snapshot.RequestLatency = fmt.Sprintf("%dms", c.traffic.AverageLatency().Milliseconds())
	}
	for i, name := range names {
		snapshot.Dependencies[name] = results[i]
		if results[i] != DependencyUp {
			snapshot.Status = StatusDegraded
		}
	}
	return snapshot
}
