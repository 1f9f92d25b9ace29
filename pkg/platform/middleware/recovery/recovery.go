// Package recovery converts unanticipated faults in the admin chain into one
// CRITICAL audit record and a fixed response that reveals nothing internal.
package recovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	audit "navbat/pkg/platform/audit"
	"navbat/pkg/platform/audit/publisher"
	"navbat/pkg/platform/httputil"
	"navbat/pkg/requestcontext"
)

// FairnessMessage is the only body a caller sees after a fault.
const FairnessMessage = "An internal error occurred. Our engineers are investigating to ensure queue fairness is maintained."

// Recorder writes the CRITICAL record.
type Recorder interface {
	Record(ctx context.Context, e publisher.Entry) audit.Record
}

// Boundary must be the outermost admin middleware so it also covers the gate.
type Boundary struct {
	recorder Recorder
	logger   *slog.Logger
}

func New(recorder Recorder, logger *slog.Logger) *Boundary {
	if logger == nil {
		logger = slog.Default()
	}
	return &Boundary{recorder: recorder, logger: logger}
}

// trackingWriter remembers whether the response has started.
type trackingWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *trackingWriter) WriteHeader(code int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *trackingWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *trackingWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Middleware installs the per-request audit tracker and recovers panics.
func (b *Boundary) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, tracker := audit.WithTracker(r.Context())
		r = r.WithContext(ctx)
		tw := &trackingWriter{ResponseWriter: w}

		defer func() {
			fault := recover()
			if fault == nil {
				return
			}
			b.handleFault(ctx, tracker, r, tw, fault)
			if err, ok := fault.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(fault)
			}
		}()

		next.ServeHTTP(tw, r)
	})
}

func (b *Boundary) handleFault(ctx context.Context, tracker *audit.Tracker, r *http.Request, tw *trackingWriter, fault any) {
	reason := fmt.Sprintf("%v", fault)
	target := requestURL(r)

	b.logger.ErrorContext(ctx, "unhandled fault in admin request",
		"fault", reason,
		"method", r.Method,
		"target", target,
		"request_id", requestcontext.RequestID(ctx),
		"stack", string(debug.Stack()),
	)

	if tracker.Terminal() {
		b.logger.ErrorContext(ctx, "fault after terminal audit record; not recording again",
			"request_id", requestcontext.RequestID(ctx),
		)
	} else {
		b.recorder.Record(ctx, publisher.Entry{
			Action: audit.ActionSystemError,
			Actor:  audit.ActorSystem,
			Target: target,
			Status: audit.StatusCritical,
			Reason: reason,
		})
	}

	if tw.wroteHeader {
		return
	}
	httputil.WriteJSON(tw, http.StatusInternalServerError, httputil.ErrorResponse{Detail: FairnessMessage})
}

// requestURL rebuilds the absolute URL the caller requested.
func requestURL(r *http.Request) string {
	u := *r.URL
	u.Host = r.Host
	switch {
	case r.TLS != nil:
		u.Scheme = "https"
	case r.Header.Get("X-Forwarded-Proto") == "https":
		u.Scheme = "https"
	default:
		u.Scheme = "http"
	}
	return u.String()
}
