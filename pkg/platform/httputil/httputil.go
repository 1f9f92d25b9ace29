// Package httputil writes JSON responses and decodes strict JSON request bodies.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	dErrors "navbat/pkg/domain-errors"
)

// MaxBodyBytes bounds request bodies read by DecodeJSON.
const MaxBodyBytes = 1 << 20

const genericInternalMessage = "internal server error"

// ErrorResponse is the only error payload shape the API emits.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// WriteJSON writes v as JSON with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to a status and writes {"detail": ...}. Only the public
// message of a domain error is written; wrapped causes never reach the client.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: genericInternalMessage})
		return
	}
	status := dErrors.ToHTTPStatus(de.Code)
	detail := de.Message
	if detail == "" {
		detail = http.StatusText(status)
	}
	WriteJSON(w, status, ErrorResponse{Detail: detail})
}

// DecodeJSON decodes exactly one JSON object into dst. Unknown fields,
// trailing data and oversized bodies are rejected as bad requests.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return dErrors.New(dErrors.CodeBadRequest, "request body must contain a single JSON object")
	}
	return nil
}

func decodeError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		maxErr    *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return dErrors.New(dErrors.CodeBadRequest, "request body is not valid JSON")
	case errors.As(err, &typeErr):
		return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("field %q has the wrong type", typeErr.Field))
	case errors.As(err, &maxErr):
		return dErrors.New(dErrors.CodeBadRequest, "request body is too large")
	}
	if field, ok := unknownField(err); ok {
		return dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown field %s", field))
	}
	return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
}

// unknownField extracts the field name from encoding/json's unknown field error.
func unknownField(err error) (string, bool) {
	const prefix = "json: unknown field "
	msg := err.Error()
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):], true
	}
	return "", false
}

// Validatable request bodies normalize and check themselves after decoding.
type Validatable interface {
	Validate() error
}

// DecodeAndPrepare decodes a strict JSON body into T and validates it. On
// failure it writes the 400 response and returns false.
func DecodeAndPrepare[T any, PT interface {
	*T
	Validatable
}](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	req := PT(new(T))
	if err := DecodeJSON(w, r, req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, err)
		return nil, false
	}
	if err := req.Validate(); err != nil {
		logger.WarnContext(ctx, "request validation failed",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, err)
		return nil, false
	}
	return (*T)(req), true
}
