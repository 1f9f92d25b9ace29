package request

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// latencyWeight is the EWMA weight given to the newest request.
const latencyWeight = 0.2

// Traffic counts in-flight requests and keeps a moving average of latency for
// the health snapshot.
type Traffic struct {
	active atomic.Int64

	mu      sync.Mutex
	average time.Duration
	seen    bool

	duration prometheus.Histogram
}

// NewTraffic registers its gauge and histogram on reg. A nil reg skips metrics.
func NewTraffic(reg prometheus.Registerer) *Traffic {
	t := &Traffic{}
	if reg == nil {
		return t
	}
	factory := promauto.With(reg)
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "navbat_http_active_requests",
		Help: "Requests currently being served",
	}, func() float64 { return float64(t.active.Load()) })
	t.duration = factory.NewHistogram(prometheus.HistogramOpts{
		Name:    "navbat_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	})
	return t
}

func (t *Traffic) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		t.active.Add(1)
		defer func() {
			t.active.Add(-1)
			t.observe(time.Since(start))
		}()
		next.ServeHTTP(w, r)
	})
}

func (t *Traffic) observe(d time.Duration) {
	if t.duration != nil {
		t.duration.Observe(d.Seconds())
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.seen {
		t.average, t.seen = d, true
		return
	}
	t.average = time.Duration(latencyWeight*float64(d) + (1-latencyWeight)*float64(t.average))
}

func (t *Traffic) ActiveRequests() int64 {
	return t.active.Load()
}

// AverageLatency is zero until a request completes.
func (t *Traffic) AverageLatency() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.average
}
