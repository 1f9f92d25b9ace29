package request

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraffic_CountsInFlightRequests(t *testing.T) {
	traffic := NewTraffic(nil)
	entered := make(chan struct{})
	release := make(chan struct{})
	handler := traffic.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		entered <- struct{}{}
		<-release
	}))

	for range 2 {
		go handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
		<-entered
	}
	assert.Equal(t, int64(2), traffic.ActiveRequests())

	close(release)
	require.Eventually(t, func() bool { return traffic.ActiveRequests() == 0 }, time.Second, time.Millisecond)
}

func TestTraffic_AverageLatency(t *testing.T) {
	traffic := NewTraffic(nil)
	assert.Zero(t, traffic.AverageLatency())

	traffic.observe(100 * time.Millisecond)
	assert.Equal(t, 100*time.Millisecond, traffic.AverageLatency(), "first sample seeds the average")

	traffic.observe(200 * time.Millisecond)
	assert.InDelta(t, float64(120*time.Millisecond), float64(traffic.AverageLatency()), float64(time.Microsecond))
}

func TestTraffic_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	traffic := NewTraffic(reg)
	handler := traffic.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/logs", nil))

	count, err := promtestutil.GatherAndCount(reg, "navbat_http_active_requests", "navbat_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
