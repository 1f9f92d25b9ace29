package handler

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"navbat/internal/admin/service"
	"navbat/internal/org/models"
	"navbat/internal/securityconfig"
	dErrors "navbat/pkg/domain-errors"
)

// CreateOrganizationRequest is the body of POST /orgs.
type CreateOrganizationRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

// Validate trims every field and enforces length limits.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *CreateOrganizationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Name = strings.TrimSpace(r.Name)
	r.Category = strings.TrimSpace(r.Category)
	r.Address = strings.TrimSpace(r.Address)
	r.Phone = strings.TrimSpace(r.Phone)

	if r.Name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "name is required")
	}
	if err := maxLen("name", r.Name, models.MaxNameLength); err != nil {
		return err
	}
	if err := maxLen("category", r.Category, models.MaxCategoryLength); err != nil {
		return err
	}
	if err := maxLen("address", r.Address, models.MaxAddressLength); err != nil {
		return err
	}
	return maxLen("phone", r.Phone, models.MaxPhoneLength)
}

func (r *CreateOrganizationRequest) Command() service.CreateOrganizationCommand {
	return service.CreateOrganizationCommand{
		Name:     r.Name,
		Category: r.Category,
		Address:  r.Address,
		Phone:    r.Phone,
	}
}

// UpdateSecurityRulesRequest is the body of PATCH /security/rules. Omitted
// fields keep their current value.
type UpdateSecurityRulesRequest struct {
	RateLimitPerMinute       *int  `json:"rate_limit_per_minute"`
	MaxActiveQueuesPerUser   *int  `json:"max_active_queues_per_user"`
	LockoutThreshold         *int  `json:"lockout_threshold"`
	RequirePhoneVerification *bool `json:"require_phone_verification"`
}

func (r *UpdateSecurityRulesRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Patch().Empty() {
		return dErrors.New(dErrors.CodeInvalidInput, "at least one rule must be provided")
	}
	if err := inRange("rate_limit_per_minute", r.RateLimitPerMinute,
		securityconfig.MinRateLimitPerMinute, securityconfig.MaxRateLimitPerMinute); err != nil {
		return err
	}
	if err := inRange("max_active_queues_per_user", r.MaxActiveQueuesPerUser,
		securityconfig.MinActiveQueues, securityconfig.MaxActiveQueues); err != nil {
		return err
	}
	return inRange("lockout_threshold", r.LockoutThreshold,
		securityconfig.MinLockoutThreshold, securityconfig.MaxLockoutThreshold)
}

func (r *UpdateSecurityRulesRequest) Patch() securityconfig.Patch {
	return securityconfig.Patch{
		RateLimitPerMinute:       r.RateLimitPerMinute,
		MaxActiveQueuesPerUser:   r.MaxActiveQueuesPerUser,
		LockoutThreshold:         r.LockoutThreshold,
		RequirePhoneVerification: r.RequirePhoneVerification,
	}
}

func maxLen(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s must be at most %d characters", field, limit))
	}
	return nil
}

func inRange(field string, value *int, lo, hi int) error {
	if value == nil {
		return nil
	}
	if *value < lo || *value > hi {
		return dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("%s must be between %d and %d", field, lo, hi))
	}
	return nil
}
