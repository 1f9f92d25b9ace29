package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "navbat/pkg/domain-errors"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteError(t *testing.T) {
	t.Run("internal error hides the wrapped cause", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeInternal, "could not create organization"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, map[string]string{"detail": "could not create organization"}, decodeBody(t, w))
	})

	t.Run("plain error becomes generic 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("nil pointer somewhere"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, map[string]string{"detail": "internal server error"}, decodeBody(t, w))
	})

	t.Run("bad request includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, "name is required"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.Equal(t, map[string]string{"detail": "name is required"}, decodeBody(t, w))
	})
}

type payload struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

func TestDecodeJSON(t *testing.T) {
	decode := func(body string) error {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		var p payload
		return DecodeJSON(httptest.NewRecorder(), r, &p)
	}

	t.Run("accepts a single object", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Acme","size":3}`))
		var p payload
		require.NoError(t, DecodeJSON(httptest.NewRecorder(), r, &p))
		assert.Equal(t, payload{Name: "Acme", Size: 3}, p)
	})

	cases := map[string]struct {
		body   string
		detail string
	}{
		"empty body":     {"", "request body is required"},
		"malformed":      {`{"name":`, "request body is not valid JSON"},
		"unknown field":  {`{"name":"Acme","admin":true}`, `unknown field "admin"`},
		"wrong type":     {`{"name":"Acme","size":"three"}`, `field "size" has the wrong type`},
		"trailing value": {`{"name":"Acme"}{"name":"Globex"}`, "request body must contain a single JSON object"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := decode(tc.body)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
			var de *dErrors.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tc.detail, de.Message)
		})
	}

	t.Run("oversized body", func(t *testing.T) {
		big := `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
		err := decode(big)
		require.Error(t, err)
		var de *dErrors.Error
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "request body is too large", de.Message)
	})
}

type namedRequest struct {
	Name string `json:"name"`
}

func (n *namedRequest) Validate() error {
	if n.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Acme"}`))
		w := httptest.NewRecorder()
		req, ok := DecodeAndPrepare[namedRequest](w, r, logger, r.Context(), "req-1")
		require.True(t, ok)
		assert.Equal(t, "Acme", req.Name)
	})

	t.Run("validation failure writes 400", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))
		w := httptest.NewRecorder()
		_, ok := DecodeAndPrepare[namedRequest](w, r, logger, r.Context(), "req-1")
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, map[string]string{"detail": "name is required"}, decodeBody(t, w))
	})
}
