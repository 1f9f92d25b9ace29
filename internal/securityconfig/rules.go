// Package securityconfig holds the global security rules that admins tune
// at runtime: request rate limits, queue quotas and lockout policy.
package securityconfig

import (
	"context"
	"time"
)

// Target is the audit target for every rules change.
const Target = "GLOBAL_RULES"

// Bounds for each tunable rule.
const (
	MinRateLimitPerMinute = 1
	MaxRateLimitPerMinute = 100000
	MinActiveQueues       = 1
	MaxActiveQueues       = 100
	MinLockoutThreshold   = 1
	MaxLockoutThreshold   = 50
)

// Rules is the full, current rule set.
type Rules struct {
	RateLimitPerMinute       int       `json:"rate_limit_per_minute"`
	MaxActiveQueuesPerUser   int       `json:"max_active_queues_per_user"`
	LockoutThreshold         int       `json:"lockout_threshold"`
	RequirePhoneVerification bool      `json:"require_phone_verification"`
	UpdatedBy                string    `json:"updated_by,omitempty"`
	UpdatedAt                time.Time `json:"updated_at,omitempty"`
}

// Defaults is the rule set before any admin change.
func Defaults() Rules {
	return Rules{
		RateLimitPerMinute:       60,
		MaxActiveQueuesPerUser:   3,
		LockoutThreshold:         5,
		RequirePhoneVerification: true,
	}
}

// Patch names the fields to change; nil fields keep their current value.
type Patch struct {
	RateLimitPerMinute       *int
	MaxActiveQueuesPerUser   *int
	LockoutThreshold         *int
	RequirePhoneVerification *bool
	UpdatedBy                string
	UpdatedAt                time.Time
}

// Empty reports whether the patch changes no rule.
func (p Patch) Empty() bool {
	return p.RateLimitPerMinute == nil &&
		p.MaxActiveQueuesPerUser == nil &&
		p.LockoutThreshold == nil &&
		p.RequirePhoneVerification == nil
}

// Apply returns current with the patch merged in.
func (p Patch) Apply(current Rules) Rules {
	if p.RateLimitPerMinute != nil {
		current.RateLimitPerMinute = *p.RateLimitPerMinute
	}
	if p.MaxActiveQueuesPerUser != nil {
		current.MaxActiveQueuesPerUser = *p.MaxActiveQueuesPerUser
	}
	if p.LockoutThreshold != nil {
		current.LockoutThreshold = *p.LockoutThreshold
	}
	if p.RequirePhoneVerification != nil {
		current.RequirePhoneVerification = *p.RequirePhoneVerification
	}
	current.UpdatedBy = p.UpdatedBy
	current.UpdatedAt = p.UpdatedAt
	return current
}

// Store persists the single global rule set. Update merges atomically so
// concurrent patches to different fields do not overwrite each other.
type Store interface {
	Get(ctx context.Context) (Rules, error)
	Update(ctx context.Context, patch Patch) (Rules, error)
}
