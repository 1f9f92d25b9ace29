// Package handler binds the administrative actions to HTTP. Every route
// assumes the access gate and the failure boundary are mounted upstream.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"navbat/internal/admin/service"
	"navbat/internal/health"
	"navbat/internal/securityconfig"
	dErrors "navbat/pkg/domain-errors"
	audit "navbat/pkg/platform/audit"
	"navbat/pkg/platform/httputil"
	"navbat/pkg/requestcontext"
)

// Service is the admin business protocol.
type Service interface {
	CreateOrganization(ctx context.Context, cmd service.CreateOrganizationCommand) (string, error)
	UpdateSecurityRules(ctx context.Context, patch securityconfig.Patch) (securityconfig.Rules, error)
	ListAuditLogs(ctx context.Context, limit int) ([]audit.Record, error)
	Health(ctx context.Context) health.Snapshot
	MaxLogsLimit() int
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// Register mounts admin endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Post("/orgs", h.HandleCreateOrganization)
	r.Patch("/security/rules", h.HandleUpdateSecurityRules)
	r.Get("/logs", h.HandleListLogs)
}

// HandleHealth handles GET /health.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Health(r.Context()))
}

// HandleCreateOrganization handles POST /orgs.
func (h *Handler) HandleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CreateOrganizationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	id, err := h.service.CreateOrganization(ctx, req.Command())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "create organization handled",
		"request_id", requestID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, CreateOrganizationResponse{Status: "success", ID: id})
}

// HandleUpdateSecurityRules handles PATCH /security/rules.
func (h *Handler) HandleUpdateSecurityRules(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[UpdateSecurityRulesRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	if _, err := h.service.UpdateSecurityRules(ctx, req.Patch()); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, UpdateSecurityRulesResponse{Status: "updated"})
}

// HandleListLogs handles GET /logs?limit=N.
func (h *Handler) HandleListLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit, err := h.parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	records, err := h.service.ListAuditLogs(ctx, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toAuditLogsResponse(records))
}

func (h *Handler) parseLimit(raw string) (int, error) {
	if raw == "" {
		return min(service.DefaultLogsLimit, h.service.MaxLogsLimit()), nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > h.service.MaxLogsLimit() {
		return 0, dErrors.New(dErrors.CodeInvalidInput,
			"limit must be an integer between 1 and "+strconv.Itoa(h.service.MaxLogsLimit()))
	}
	return limit, nil
}
