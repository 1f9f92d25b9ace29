package request

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"navbat/pkg/requestcontext"
)

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.RequestID(r.Context())
	}))

	t.Run("honors inbound id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set(HeaderRequestID, "abc-123")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", seen)
		assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
	})

	t.Run("generates when missing or oversized", func(t *testing.T) {
		for _, inbound := range []string{"", strings.Repeat("x", 200)} {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set(HeaderRequestID, inbound)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Len(t, seen, 36)
			assert.Equal(t, seen, w.Header().Get(HeaderRequestID))
		}
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	handler := RequestID(Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"detail":"insufficient privileges"}`)
	})))

	req := httptest.NewRequest(http.MethodPost, "/orgs", nil)
	req.RemoteAddr = "10.0.0.7:51234"
	handler.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	assert.Contains(t, line, "level=WARN")
	assert.Contains(t, line, "status=403")
	assert.Contains(t, line, "path=/orgs")
	assert.Contains(t, line, "client_ip=10.0.0.7")
	assert.Contains(t, line, "request_id=")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "198.51.100.4")
	assert.Equal(t, "198.51.100.4", ClientIP(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "[::1]:8080"
	assert.Equal(t, "::1", ClientIP(req))
}
