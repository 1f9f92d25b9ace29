package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"navbat/internal/admin/metrics"
	"navbat/internal/admin/service/mocks"
	"navbat/internal/health"
	"navbat/internal/org/models"
	"navbat/internal/securityconfig"
	"navbat/pkg/domain"
	dErrors "navbat/pkg/domain-errors"
	audit "navbat/pkg/platform/audit"
	"navbat/pkg/platform/audit/publisher"
	"navbat/pkg/platform/audit/store/memory"
	"navbat/pkg/platform/sentinel"
	"navbat/pkg/requestcontext"
)

// =============================================================================
// Admin Service Test Suite
// =============================================================================
// The service owns the action protocol. Tests verify that every mutation
// produces exactly one terminal record with the right status, that store
// failures surface only the public message, and that caller cancellation
// does not reach the business effect.

type AdminServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	mockOrgs   *mocks.MockOrgStore
	mockRules  *mocks.MockSecurityConfigStore
	mockReader *mocks.MockAuditReader
	auditStore *memory.InMemoryStore
	metrics    *metrics.Metrics
	service    *Service
	now        time.Time
}

func TestAdminServiceSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceSuite))
}

func (s *AdminServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockOrgs = mocks.NewMockOrgStore(s.ctrl)
	s.mockRules = mocks.NewMockSecurityConfigStore(s.ctrl)
	s.mockReader = mocks.NewMockAuditReader(s.ctrl)
	s.resetService()
}

// resetService gives each subtest a fresh audit store and metrics.
func (s *AdminServiceSuite) resetService() {
	s.auditStore = memory.NewInMemoryStore()
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.now = time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := New(
		s.mockOrgs,
		s.mockRules,
		s.mockReader,
		publisher.New(s.auditStore, publisher.WithLogger(logger)),
		WithLogger(logger),
		WithMetrics(s.metrics),
		WithClock(func() time.Time { return s.now }),
	)
	s.Require().NoError(err)
	s.service = svc
}

func (s *AdminServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *AdminServiceSuite) adminCtx() context.Context {
	ctx := requestcontext.WithIdentity(context.Background(), requestcontext.Identity{
		SubjectID: "op-1",
		Role:      domain.RoleAdmin,
	})
	return requestcontext.WithRequestID(ctx, "req-1")
}

// =============================================================================
// Constructor Tests (Invariant Enforcement)
// =============================================================================

func (s *AdminServiceSuite) TestNew() {
	pub := publisher.New(memory.NewInMemoryStore())

	s.Run("nil org store returns error", func() {
		_, err := New(nil, s.mockRules, s.mockReader, pub)
		s.ErrorContains(err, "organization store is required")
	})

	s.Run("nil security config store returns error", func() {
		_, err := New(s.mockOrgs, nil, s.mockReader, pub)
		s.ErrorContains(err, "security config store is required")
	})

	s.Run("nil audit reader returns error", func() {
		_, err := New(s.mockOrgs, s.mockRules, nil, pub)
		s.ErrorContains(err, "audit reader is required")
	})

	s.Run("nil publisher returns error", func() {
		_, err := New(s.mockOrgs, s.mockRules, s.mockReader, nil)
		s.ErrorContains(err, "audit publisher is required")
	})

	s.Run("max logs limit option is bounded", func() {
		svc, err := New(s.mockOrgs, s.mockRules, s.mockReader, pub, WithMaxLogsLimit(5000))
		s.Require().NoError(err)
		s.Equal(MaxLogsLimit, svc.MaxLogsLimit())

		svc, err = New(s.mockOrgs, s.mockRules, s.mockReader, pub, WithMaxLogsLimit(50))
		s.Require().NoError(err)
		s.Equal(50, svc.MaxLogsLimit())
	})
}

// =============================================================================
// CreateOrganization
// =============================================================================

func (s *AdminServiceSuite) TestCreateOrganization() {
	s.Run("success writes one SUCCESS record", func() {
		s.resetService()
		s.mockOrgs.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, org models.Organization) (string, error) {
				s.Equal("Central Clinic", org.Name)
				s.Equal("clinic", org.Category)
				s.Equal("op-1", org.CreatedBy)
				s.Equal(s.now, org.CreatedAt)
				return "org-42", nil
			})

		id, err := s.service.CreateOrganization(s.adminCtx(), CreateOrganizationCommand{
			Name:     "Central Clinic",
			Category: "clinic",
		})
		s.Require().NoError(err)
		s.Equal("org-42", id)

		records := s.auditStore.All()
		s.Require().Len(records, 1)
		s.Equal(audit.ActionOrgCreated, records[0].Action)
		s.Equal("op-1", records[0].Actor)
		s.Equal("Central Clinic", records[0].Target)
		s.Equal(audit.StatusSuccess, records[0].Status)
		s.Equal("req-1", records[0].RequestID)
		s.Equal(float64(1), promtestutil.ToFloat64(s.metrics.Actions.WithLabelValues("ORG_CREATED", "success")))
	})

	s.Run("duplicate name writes FAILED with reason and hides it from the error", func() {
		s.resetService()
		s.mockOrgs.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return("", fmt.Errorf("organization %q: %w", "Acme", sentinel.ErrConflict))

		_, err := s.service.CreateOrganization(s.adminCtx(), CreateOrganizationCommand{Name: "Acme"})
		s.Require().Error(err)
		s.ErrorIs(err, dErrors.New(dErrors.CodeInternal, "could not create organization"))

		records := s.auditStore.All()
		s.Require().Len(records, 1)
		s.Equal(audit.StatusFailed, records[0].Status)
		s.Equal("duplicate name", records[0].Reason)
	})

	s.Run("store error reason is recorded", func() {
		s.resetService()
		s.mockOrgs.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return("", errors.New("insert organization: connection reset"))

		_, err := s.service.CreateOrganization(s.adminCtx(), CreateOrganizationCommand{Name: "Acme"})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))

		records := s.auditStore.All()
		s.Require().Len(records, 1)
		s.Equal("insert organization: connection reset", records[0].Reason)
	})

	s.Run("caller cancellation does not reach the store", func() {
		s.resetService()
		ctx, cancel := context.WithCancel(s.adminCtx())
		s.mockOrgs.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, _ models.Organization) (string, error) {
				cancel()
				s.NoError(ctx.Err(), "business effect runs detached from the caller")
				return "org-1", nil
			})

		_, err := s.service.CreateOrganization(ctx, CreateOrganizationCommand{Name: "Acme"})
		s.Require().NoError(err)
		s.Equal(1, s.auditStore.Len())
	})
}

// =============================================================================
// UpdateSecurityRules
// =============================================================================

func (s *AdminServiceSuite) TestUpdateSecurityRules() {
	s.Run("success stamps the patch and records SUCCESS", func() {
		s.resetService()
		limit := 300
		s.mockRules.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, patch securityconfig.Patch) (securityconfig.Rules, error) {
				s.Equal("op-1", patch.UpdatedBy)
				s.Equal(s.now, patch.UpdatedAt)
				s.Equal(300, *patch.RateLimitPerMinute)
				return patch.Apply(securityconfig.Defaults()), nil
			})

		rules, err := s.service.UpdateSecurityRules(s.adminCtx(), securityconfig.Patch{RateLimitPerMinute: &limit})
		s.Require().NoError(err)
		s.Equal(300, rules.RateLimitPerMinute)

		records := s.auditStore.All()
		s.Require().Len(records, 1)
		s.Equal(audit.ActionSecurityConfigChange, records[0].Action)
		s.Equal("GLOBAL_RULES", records[0].Target)
		s.Equal(audit.StatusSuccess, records[0].Status)
	})

	s.Run("store timeout records FAILED", func() {
		s.resetService()
		s.mockRules.EXPECT().
			Update(gomock.Any(), gomock.Any()).
			Return(securityconfig.Rules{}, fmt.Errorf("update security rules: %w", context.DeadlineExceeded))

		_, err := s.service.UpdateSecurityRules(s.adminCtx(), securityconfig.Patch{})
		s.ErrorIs(err, dErrors.New(dErrors.CodeInternal, "could not update security rules"))

		records := s.auditStore.All()
		s.Require().Len(records, 1)
		s.Equal(audit.StatusFailed, records[0].Status)
		s.Equal("store timeout", records[0].Reason)
	})
}

// =============================================================================
// ListAuditLogs
// =============================================================================

func (s *AdminServiceSuite) TestListAuditLogs() {
	s.Run("passes limit through and writes nothing", func() {
		s.resetService()
		want := []audit.Record{{ID: "r2"}, {ID: "r1"}}
		s.mockReader.EXPECT().ListRecent(gomock.Any(), 2).Return(want, nil)

		got, err := s.service.ListAuditLogs(s.adminCtx(), 2)
		s.Require().NoError(err)
		s.Equal(want, got)
		s.Equal(0, s.auditStore.Len(), "reads are not audited")
	})

	s.Run("out of range limit is invalid input", func() {
		s.resetService()
		for _, limit := range []int{0, -1, MaxLogsLimit + 1} {
			_, err := s.service.ListAuditLogs(s.adminCtx(), limit)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput), "limit %d", limit)
		}
	})

	s.Run("reader failure is internal", func() {
		s.resetService()
		s.mockReader.EXPECT().ListRecent(gomock.Any(), 10).Return(nil, errors.New("pq: too many connections"))

		_, err := s.service.ListAuditLogs(s.adminCtx(), 10)
		s.ErrorIs(err, dErrors.New(dErrors.CodeInternal, "could not read audit logs"))
	})
}

func (s *AdminServiceSuite) TestHealth() {
	checker := mocks.NewMockHealthChecker(s.ctrl)
	snapshot := health.Snapshot{Status: health.StatusHealthy, Dependencies: map[string]string{}}
	checker.EXPECT().Check(gomock.Any()).Return(snapshot)

	svc, err := New(s.mockOrgs, s.mockRules, s.mockReader,
		publisher.New(s.auditStore), WithHealthChecker(checker))
	s.Require().NoError(err)
	s.Equal(snapshot, svc.Health(context.Background()))
	s.Equal(0, s.auditStore.Len())
}
