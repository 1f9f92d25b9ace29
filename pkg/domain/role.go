package domain

import (
	"strings"

	dErrors "navbat/pkg/domain-errors"
)

// Role is the role claim carried by an operator credential.
// This is a domain primitive that enforces validity at parse time.
type Role string

// Known roles. Only RoleAdmin may enter an administrative action.
const (
	RoleAdmin    Role = "ADMIN"
	RoleOperator Role = "OPERATOR"
	RoleViewer   Role = "VIEWER"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:    {},
	RoleOperator: {},
	RoleViewer:   {},
}

// ParseRole validates a role claim. Matching is exact: "admin" is not ADMIN.
func ParseRole(s string) (Role, error) {
	if strings.TrimSpace(s) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role is required")
	}
	r := Role(s)
	if _, ok := knownRoles[r]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	return r, nil
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsAdmin reports whether the role may run administrative actions.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
