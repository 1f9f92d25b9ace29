// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets the values; services and the audit publisher read them. Keeping
// this package free of net/http lets services import it without the transport.
//
// Usage in services (read values):
//
//	identity, ok := requestcontext.IdentityFrom(ctx)
//	requestID := requestcontext.RequestID(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithIdentity(ctx, requestcontext.Identity{SubjectID: "op-1", Role: domain.RoleAdmin})
package requestcontext

import (
	"context"

	"navbat/pkg/domain"
)

type (
	identityKey  struct{}
	requestIDKey struct{}
)

// Identity is the authenticated caller of a single request. It is derived from
// the bearer credential by the access gate and discarded with the request.
type Identity struct {
	SubjectID string
	Role      domain.Role
}

// IdentityFrom returns the caller identity placed by the access gate.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}

// Actor returns the subject of the authenticated caller, or "" if none.
func Actor(ctx context.Context) string {
	identity, _ := IdentityFrom(ctx)
	return identity.SubjectID
}

// WithIdentity injects a caller identity into the context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}
