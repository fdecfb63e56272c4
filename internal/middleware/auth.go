package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hongminglow/holonet-be/internal/auth"
	"github.com/hongminglow/holonet-be/internal/http/respond"
	"github.com/hongminglow/holonet-be/internal/observability"
)

// RequestAuthenticator resolves the principal behind a request.
type RequestAuthenticator interface {
	AuthenticateRequest(r *http.Request) (auth.Principal, error)
}

// AuthGuard authenticates requests and applies per-route role requirements.
type AuthGuard struct {
	authn   RequestAuthenticator
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAuthGuard creates the guard. metrics may be nil.
func NewAuthGuard(authn RequestAuthenticator, logger *slog.Logger, metrics *observability.Metrics) *AuthGuard {
	return &AuthGuard{authn: authn, logger: logger, metrics: metrics}
}

// Require wraps next so it only runs for principals that satisfy req.
// route labels logs and metrics.
func (g *AuthGuard) Require(route string, req auth.Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := g.authn.AuthenticateRequest(r)
			if err != nil {
				outcome := "unauthenticated"
				if errors.Is(err, auth.ErrDirectoryUnavailable) {
					outcome = "directory_unavailable"
					g.logger.ErrorContext(r.Context(), "token resolution failed", "route", route, "err", err.Error())
				} else {
					g.logger.DebugContext(r.Context(), "request not authenticated", "route", route, "err", err.Error())
				}
				g.metrics.RecordDecision(route, outcome)
				respond.AuthError(w, err)
				return
			}

			if err := auth.Check(principal, req); err != nil {
				g.logger.WarnContext(r.Context(), "access denied",
					"route", route,
					"user_id", principal.User.ID,
					"role", string(principal.Role()),
				)
				g.metrics.RecordDecision(route, "forbidden")
				respond.AuthError(w, err)
				return
			}

			g.metrics.RecordDecision(route, "allow")
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
		})
	}
}
