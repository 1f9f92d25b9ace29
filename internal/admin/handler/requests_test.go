package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"navbat/internal/org/models"
)

// CreateOrganizationRequestSuite tests CreateOrganizationRequest validation and normalization.
type CreateOrganizationRequestSuite struct {
	suite.Suite
}

func TestCreateOrganizationRequestSuite(t *testing.T) {
	suite.Run(t, new(CreateOrganizationRequestSuite))
}

func (s *CreateOrganizationRequestSuite) TestValidation() {
	s.Run("valid request is trimmed", func() {
		req := &CreateOrganizationRequest{Name: "  Acme  ", Phone: " +998 90 "}
		s.Require().NoError(req.Validate())
		s.Equal("Acme", req.Name)
		s.Equal("+998 90", req.Phone)
	})

	s.Run("blank name rejected", func() {
		req := &CreateOrganizationRequest{Name: "   "}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "name is required")
	})

	s.Run("max name length allowed", func() {
		req := &CreateOrganizationRequest{Name: strings.Repeat("a", models.MaxNameLength)}
		s.NoError(req.Validate())
	})

	s.Run("name length counts runes", func() {
		req := &CreateOrganizationRequest{Name: strings.Repeat("ў", models.MaxNameLength)}
		s.NoError(req.Validate())
	})

	s.Run("too long name rejected", func() {
		req := &CreateOrganizationRequest{Name: strings.Repeat("a", models.MaxNameLength+1)}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "name must be at most 128 characters")
	})

	s.Run("too long phone rejected", func() {
		req := &CreateOrganizationRequest{Name: "Acme", Phone: strings.Repeat("9", models.MaxPhoneLength+1)}
		err := req.Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "phone must be at most")
	})
}

// UpdateSecurityRulesRequestSuite tests range checks on rule updates.
type UpdateSecurityRulesRequestSuite struct {
	suite.Suite
}

func TestUpdateSecurityRulesRequestSuite(t *testing.T) {
	suite.Run(t, new(UpdateSecurityRulesRequestSuite))
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func (s *UpdateSecurityRulesRequestSuite) TestValidation() {
	s.Run("empty patch rejected", func() {
		err := (&UpdateSecurityRulesRequest{}).Validate()
		s.Require().Error(err)
		s.Contains(err.Error(), "at least one rule")
	})

	s.Run("boolean only is enough", func() {
		s.NoError((&UpdateSecurityRulesRequest{RequirePhoneVerification: boolPtr(false)}).Validate())
	})

	s.Run("bounds are inclusive", func() {
		req := &UpdateSecurityRulesRequest{
			RateLimitPerMinute:     intPtr(100000),
			MaxActiveQueuesPerUser: intPtr(1),
			LockoutThreshold:       intPtr(50),
		}
		s.NoError(req.Validate())
	})

	cases := map[string]struct {
		req  *UpdateSecurityRulesRequest
		want string
	}{
		"rate limit zero":     {&UpdateSecurityRulesRequest{RateLimitPerMinute: intPtr(0)}, "rate_limit_per_minute must be between 1 and 100000"},
		"queues above max":    {&UpdateSecurityRulesRequest{MaxActiveQueuesPerUser: intPtr(101)}, "max_active_queues_per_user must be between 1 and 100"},
		"lockout negative":    {&UpdateSecurityRulesRequest{LockoutThreshold: intPtr(-3)}, "lockout_threshold must be between 1 and 50"},
		"one bad among valid": {&UpdateSecurityRulesRequest{RateLimitPerMinute: intPtr(10), LockoutThreshold: intPtr(51)}, "lockout_threshold"},
	}
	for name, tc := range cases {
		s.Run(name, func() {
			err := tc.req.Validate()
			s.Require().Error(err)
			s.Contains(err.Error(), tc.want)
		})
	}

	s.Run("patch carries only provided fields", func() {
		req := &UpdateSecurityRulesRequest{LockoutThreshold: intPtr(7)}
		patch := req.Patch()
		s.Nil(patch.RateLimitPerMinute)
		s.Equal(7, *patch.LockoutThreshold)
	})
}
