// Package auth is the access gate in front of every administrative route.
//
// The gate verifies the bearer credential, extracts the role claim and allows
// the request only for ADMIN. It never calls a handler or a store on denial.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"navbat/pkg/domain"
	dErrors "navbat/pkg/domain-errors"
	audit "navbat/pkg/platform/audit"
	"navbat/pkg/platform/audit/publisher"
	"navbat/pkg/platform/httputil"
	"navbat/pkg/requestcontext"
)

const (
	msgUnauthenticated = "authentication required"
	msgForbidden       = "insufficient privileges"
)

var (
	ErrUnauthenticated = dErrors.New(dErrors.CodeUnauthorized, msgUnauthenticated)
	ErrForbidden       = dErrors.New(dErrors.CodeForbidden, msgForbidden)
)

// Claims is the verified content of a bearer credential.
type Claims struct {
	Subject string
	Role    string
	JTI     string // JWT ID for revocation tracking
}

// Verifier validates a raw bearer token.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// TokenRevocationChecker reports whether a token ID was revoked.
type TokenRevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// DenialRecorder writes ACCESS_DENIED records when denial auditing is on.
type DenialRecorder interface {
	Record(ctx context.Context, e publisher.Entry) audit.Record
}

// Gate is safe for concurrent use.
type Gate struct {
	verifier    Verifier
	revocations TokenRevocationChecker
	denials     DenialRecorder
	logger      *slog.Logger
}

type Option func(*Gate)

func WithRevocationChecker(checker TokenRevocationChecker) Option {
	return func(g *Gate) {
		g.revocations = checker
	}
}

// WithDenialAuditing records every denied request. Off by default.
func WithDenialAuditing(recorder DenialRecorder) Option {
	return func(g *Gate) {
		g.denials = recorder
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func NewGate(verifier Verifier, opts ...Option) *Gate {
	g := &Gate{
		verifier: verifier,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authorize decides a single request from its Authorization header. On
// ErrForbidden the returned identity still carries the verified subject.
func (g *Gate) Authorize(ctx context.Context, authHeader string) (requestcontext.Identity, error) {
	const bearerPrefix = "Bearer "
	token, ok := strings.CutPrefix(authHeader, bearerPrefix)
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		g.logger.WarnContext(ctx, "unauthorized access - missing token",
			"request_id", requestcontext.RequestID(ctx),
		)
		return requestcontext.Identity{}, ErrUnauthenticated
	}

	claims, err := g.verifier.Verify(token)
	if err != nil {
		g.logger.WarnContext(ctx, "unauthorized access - invalid token",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return requestcontext.Identity{}, ErrUnauthenticated
	}

	if g.revocations != nil {
		if claims.JTI == "" {
			g.logger.WarnContext(ctx, "unauthorized access - missing token jti",
				"request_id", requestcontext.RequestID(ctx),
			)
			return requestcontext.Identity{}, ErrUnauthenticated
		}
		revoked, err := g.revocations.IsRevoked(ctx, claims.JTI)
		if err != nil {
			g.logger.ErrorContext(ctx, "failed to check token revocation",
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			return requestcontext.Identity{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "authentication unavailable")
		}
		if revoked {
			g.logger.WarnContext(ctx, "unauthorized access - token revoked",
				"jti", claims.JTI,
				"request_id", requestcontext.RequestID(ctx),
			)
			return requestcontext.Identity{}, ErrUnauthenticated
		}
	}

	identity := requestcontext.Identity{SubjectID: claims.Subject}
	role, err := domain.ParseRole(claims.Role)
	if err != nil || !role.IsAdmin() {
		g.logger.WarnContext(ctx, "forbidden - role not permitted",
			"subject", claims.Subject,
			"role", claims.Role,
			"request_id", requestcontext.RequestID(ctx),
		)
		return identity, ErrForbidden
	}
	identity.Role = role
	return identity, nil
}

// RequireAdmin is the middleware form of Authorize. Allowed requests carry the
// identity in their context.
func (g *Gate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identity, err := g.Authorize(ctx, r.Header.Get("Authorization"))
			if err != nil {
				g.recordDenial(ctx, identity, r.URL.Path, err)
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithIdentity(ctx, identity)))
		})
	}
}

func (g *Gate) recordDenial(ctx context.Context, identity requestcontext.Identity, path string, err error) {
	if g.denials == nil {
		return
	}
	var reason string
	switch dErrors.CodeOf(err) {
	case dErrors.CodeUnauthorized:
		reason = "unauthenticated"
	case dErrors.CodeForbidden:
		reason = "forbidden"
	default:
		return
	}
	g.denials.Record(ctx, publisher.Entry{
		Action: audit.ActionAccessDenied,
		Actor:  identity.SubjectID,
		Target: path,
		Status: audit.StatusFailed,
		Reason: reason,
	})
}
