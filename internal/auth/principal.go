package auth

import (
	"context"
	"time"

	"github.com/hongminglow/holonet-be/internal/models"
)

// Principal is the request-scoped identity produced by Resolve.
// User holds the directory's current fields, except Role, which is the
// role signed into the token.
type Principal struct {
	User      models.User
	TokenID   string
	ExpiresAt time.Time
}

// Role returns the role taken from the token claims.
func (p Principal) Role() models.Role {
	return p.User.Role
}

type principalContextKey struct{}

// WithPrincipal attaches p to ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
