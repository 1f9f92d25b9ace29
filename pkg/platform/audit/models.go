package audit

import (
	"context"
	"fmt"
)

// Action tags an administrative action. The set is closed: new tags are added
// here, never built from free text.
type Action string

const (
	ActionOrgCreated           Action = "ORG_CREATED"
	ActionSecurityConfigChange Action = "SECURITY_CONFIG_CHANGE"
	ActionSystemError          Action = "SYSTEM_ERROR"
	// ActionAccessDenied is only written when denial auditing is enabled.
	ActionAccessDenied Action = "ACCESS_DENIED"
)

var knownActions = map[Action]struct{}{
	ActionOrgCreated:           {},
	ActionSecurityConfigChange: {},
	ActionSystemError:          {},
	ActionAccessDenied:         {},
}

// Valid reports whether the action belongs to the closed set.
func (a Action) Valid() bool {
	_, ok := knownActions[a]
	return ok
}

// ParseAction validates a stored action tag.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown audit action %q", s)
	}
	return a, nil
}

// Status is the terminal outcome of an action. It is never revised after write.
type Status string

const (
	StatusSuccess  Status = "SUCCESS"
	StatusFailed   Status = "FAILED"
	StatusCritical Status = "CRITICAL"
)

// Valid reports whether the status is one of the three terminal states.
func (s Status) Valid() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusCritical:
		return true
	}
	return false
}

// ActorSystem is the reserved actor for entries not triggered by an operator.
const ActorSystem = "system"

// Record is one immutable, append-only audit entry.
type Record struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"` // Unix seconds, set at write time
	Action    Action `json:"action"`
	Actor     string `json:"actor"`
	Target    string `json:"target"`
	Status    Status `json:"status"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Sink is the durable, append-only destination for records. Implementations
// must make concurrent appends safe; each Append is one atomic record.
type Sink interface {
	Append(ctx context.Context, record Record) error
	Close() error
	Name() string
}

// Reader lists previously appended records, newest first.
type Reader interface {
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}
