// Package service implements the administrative action protocol: validate,
// perform the business effect, record exactly one terminal audit record,
// then let the handler respond.
//
// Business effects and their audit writes run on a context detached from the
// caller, so a client that disconnects mid-request cannot leave a mutation
// without its record.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks -exclude_interfaces=AuditPublisher

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"navbat/internal/admin/metrics"
	"navbat/internal/health"
	"navbat/internal/org/models"
	"navbat/internal/securityconfig"
	dErrors "navbat/pkg/domain-errors"
	audit "navbat/pkg/platform/audit"
	"navbat/pkg/platform/audit/publisher"
	"navbat/pkg/platform/sentinel"
	"navbat/pkg/requestcontext"
)

const (
	DefaultLogsLimit = 100
	MaxLogsLimit     = 1000
)

// Public messages for business-effect failures. Causes stay in the audit record.
const (
	msgCreateOrgFailed   = "could not create organization"
	msgUpdateRulesFailed = "could not update security rules"
	msgReadLogsFailed    = "could not read audit logs"
)

type OrgStore interface {
	Create(ctx context.Context, org models.Organization) (string, error)
}

type SecurityConfigStore interface {
	Update(ctx context.Context, patch securityconfig.Patch) (securityconfig.Rules, error)
}

type AuditReader interface {
	ListRecent(ctx context.Context, limit int) ([]audit.Record, error)
}

type HealthChecker interface {
	Check(ctx context.Context) health.Snapshot
}

// AuditPublisher opens single-use action handles.
type AuditPublisher interface {
	Begin(ctx context.Context, action audit.Action, actor, target string) *publisher.Action
}

type Service struct {
	orgs         OrgStore
	rules        SecurityConfigStore
	records      AuditReader
	health       HealthChecker
	publisher    AuditPublisher
	logger       *slog.Logger
	metrics      *metrics.Metrics
	tracer       trace.Tracer
	now          func() time.Time
	maxLogsLimit int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithHealthChecker(checker HealthChecker) Option {
	return func(s *Service) {
		s.health = checker
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithMaxLogsLimit lowers the /logs page cap. Values outside 1..MaxLogsLimit are ignored.
func WithMaxLogsLimit(n int) Option {
	return func(s *Service) {
		if n >= 1 && n <= MaxLogsLimit {
			s.maxLogsLimit = n
		}
	}
}

func New(orgs OrgStore, rules SecurityConfigStore, records AuditReader, pub AuditPublisher, opts ...Option) (*Service, error) {
	switch {
	case orgs == nil:
		return nil, errors.New("organization store is required")
	case rules == nil:
		return nil, errors.New("security config store is required")
	case records == nil:
		return nil, errors.New("audit reader is required")
	case pub == nil:
		return nil, errors.New("audit publisher is required")
	}
	s := &Service{
		orgs:         orgs,
		rules:        rules,
		records:      records,
		publisher:    pub,
		logger:       slog.Default(),
		tracer:       otel.Tracer("navbat/admin"),
		now:          time.Now,
		maxLogsLimit: MaxLogsLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.health == nil {
		s.health = health.NewChecker(s.now())
	}
	return s, nil
}

// CreateOrganizationCommand carries an already validated request.
type CreateOrganizationCommand struct {
	Name     string
	Category string
	Address  string
	Phone    string
}

// CreateOrganization creates the organization and records ORG_CREATED.
func (s *Service) CreateOrganization(ctx context.Context, cmd CreateOrganizationCommand) (string, error) {
	start := time.Now()
	actor := requestcontext.Actor(ctx)
	ctx, span := s.tracer.Start(context.WithoutCancel(ctx), "admin.CreateOrganization",
		trace.WithAttributes(attribute.String("org.name", cmd.Name)))
	defer span.End()

	action := s.publisher.Begin(ctx, audit.ActionOrgCreated, actor, cmd.Name)
	id, err := s.orgs.Create(ctx, models.Organization{
		Name:      cmd.Name,
		Category:  cmd.Category,
		Address:   cmd.Address,
		Phone:     cmd.Phone,
		CreatedBy: actor,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		action.Fail(ctx, failureReason(err))
		span.RecordError(err)
		s.metrics.Observe(string(audit.ActionOrgCreated), metrics.OutcomeFailed, start)
		s.logger.ErrorContext(ctx, "organization creation failed",
			"request_id", requestcontext.RequestID(ctx),
			"actor", actor,
			"name", cmd.Name,
			"error", err,
		)
		return "", dErrors.Wrap(err, dErrors.CodeInternal, msgCreateOrgFailed)
	}

	action.Succeed(ctx)
	s.metrics.Observe(string(audit.ActionOrgCreated), metrics.OutcomeSuccess, start)
	s.logger.InfoContext(ctx, "organization created",
		"request_id", requestcontext.RequestID(ctx),
		"actor", actor,
		"org_id", id,
		"name", cmd.Name,
	)
	return id, nil
}

// UpdateSecurityRules merges patch into the global rules and records
// SECURITY_CONFIG_CHANGE.
func (s *Service) UpdateSecurityRules(ctx context.Context, patch securityconfig.Patch) (securityconfig.Rules, error) {
	start := time.Now()
	actor := requestcontext.Actor(ctx)
	ctx, span := s.tracer.Start(context.WithoutCancel(ctx), "admin.UpdateSecurityRules")
	defer span.End()

	patch.UpdatedBy = actor
	patch.UpdatedAt = s.now().UTC()

	action := s.publisher.Begin(ctx, audit.ActionSecurityConfigChange, actor, securityconfig.Target)
	rules, err := s.rules.Update(ctx, patch)
	if err != nil {
		action.Fail(ctx, failureReason(err))
		span.RecordError(err)
		s.metrics.Observe(string(audit.ActionSecurityConfigChange), metrics.OutcomeFailed, start)
		s.logger.ErrorContext(ctx, "security rules update failed",
			"request_id", requestcontext.RequestID(ctx),
			"actor", actor,
			"error", err,
		)
		return securityconfig.Rules{}, dErrors.Wrap(err, dErrors.CodeInternal, msgUpdateRulesFailed)
	}

	action.Succeed(ctx)
	s.metrics.Observe(string(audit.ActionSecurityConfigChange), metrics.OutcomeSuccess, start)
	s.logger.InfoContext(ctx, "security rules updated",
		"request_id", requestcontext.RequestID(ctx),
		"actor", actor,
	)
	return rules, nil
}

// ListAuditLogs returns up to limit records, newest first. Reads write no record.
func (s *Service) ListAuditLogs(ctx context.Context, limit int) ([]audit.Record, error) {
	if limit < 1 || limit > s.maxLogsLimit {
		return nil, dErrors.New(dErrors.CodeInvalidInput, logsLimitMessage(s.maxLogsLimit))
	}
	records, err := s.records.ListRecent(ctx, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "audit log read failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, msgReadLogsFailed)
	}
	return records, nil
}

// MaxLogsLimit is the effective page cap.
func (s *Service) MaxLogsLimit() int {
	return s.maxLogsLimit
}

func (s *Service) Health(ctx context.Context) health.Snapshot {
	return s.health.Check(ctx)
}

func logsLimitMessage(upper int) string {
	return "limit must be an integer between 1 and " + strconv.Itoa(upper)
}

// failureReason is the audit-only description of a failed effect.
func failureReason(err error) string {
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return "duplicate name"
	case errors.Is(err, context.DeadlineExceeded):
		return "store timeout"
	}
	reason := strings.TrimSpace(err.Error())
	if reason == "" {
		return "unknown failure"
	}
	return reason
}
