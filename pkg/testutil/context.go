package testutil

import (
	"net/http"

	"navbat/pkg/domain"
	"navbat/pkg/requestcontext"
)

// WithIdentity adds a caller identity to the request context, simulating what
// the access gate does for an allowed request.
func WithIdentity(req *http.Request, subjectID string, role domain.Role) *http.Request {
	ctx := requestcontext.WithIdentity(req.Context(), requestcontext.Identity{
		SubjectID: subjectID,
		Role:      role,
	})
	return req.WithContext(ctx)
}

// WithBearer sets the Authorization header to a bearer token.
func WithBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
