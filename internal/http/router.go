// Package httpapi assembles the control plane's HTTP surface.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"navbat/internal/admin/handler"
	dErrors "navbat/pkg/domain-errors"
	"navbat/pkg/platform/httputil"
	"navbat/pkg/platform/middleware/auth"
	"navbat/pkg/platform/middleware/recovery"
	"navbat/pkg/platform/middleware/request"
)

// Deps are the collaborators the router mounts.
type Deps struct {
	Admin    *handler.Handler
	Gate     *auth.Gate
	Boundary *recovery.Boundary
	Logger   *slog.Logger
	// Traffic counts every request, including ones the gate rejects.
	Traffic *request.Traffic
	// Metrics is served on /metrics outside the admin gate when set.
	Metrics http.Handler
}

// NewRouter builds request-id → traffic → request-log → boundary → gate → admin handlers.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	if d.Traffic != nil {
		r.Use(d.Traffic.Middleware)
	}
	r.Use(request.Logger(d.Logger))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorResponse{Detail: "method not allowed"})
	})

	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(d.Boundary.Middleware)
		r.Use(d.Gate.RequireAdmin())
		d.Admin.Register(r)
	})
	return r
}
