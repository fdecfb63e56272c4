package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hongminglow/holonet-be/internal/models"
	"github.com/hongminglow/holonet-be/internal/storage"
)

// Directory is the read side of the user store the authenticator depends on.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
}

// Authenticator verifies credentials at login and bearer tokens on every request.
type Authenticator struct {
	users     Directory
	tokens    *TokenManager
	passwords *PasswordHasher
	extract   TokenExtractor
	dummyHash string
}

// AuthenticatorOption customizes an Authenticator.
type AuthenticatorOption func(*Authenticator)

// WithTokenExtractor replaces BearerTokenFromHeader.
func WithTokenExtractor(fn TokenExtractor) AuthenticatorOption {
	return func(a *Authenticator) {
		a.extract = fn
	}
}

// NewAuthenticator wires the directory, token manager and password hasher together.
func NewAuthenticator(users Directory, tokens *TokenManager, passwords *PasswordHasher, opts ...AuthenticatorOption) (*Authenticator, error) {
	if users == nil || tokens == nil || passwords == nil {
		return nil, errors.New("auth: directory, token manager and password hasher are required")
	}
	// Compared against on unknown emails so both login failures cost one bcrypt run.
	dummy, err := passwords.Hash("holonet-login-timing-guard")
	if err != nil {
		return nil, fmt.Errorf("auth: prepare dummy hash: %w", err)
	}
	a := &Authenticator{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		extract:   BearerTokenFromHeader,
		dummyHash: dummy,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Login checks email and password and returns the user without its hash.
func (a *Authenticator) Login(ctx context.Context, email, password string) (models.User, error) {
	user, err := a.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			a.passwords.Verify(password, a.dummyHash)
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	if !a.passwords.Verify(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}
	return user.Public(), nil
}

// IssueToken runs Login and signs a token for the resulting user.
func (a *Authenticator) IssueToken(ctx context.Context, email, password string) (string, error) {
	user, err := a.Login(ctx, email, password)
	if err != nil {
		return "", err
	}
	return a.tokens.Issue(user)
}

// Resolve verifies a raw token and re-reads the identity it names from the directory.
func (a *Authenticator) Resolve(ctx context.Context, token string) (Principal, error) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return Principal{}, err
	}

	user, err := a.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Principal{}, fmt.Errorf("%w: identity no longer exists", ErrUnauthenticated)
		}
		return Principal{}, fmt.Errorf("%w: %w", ErrDirectoryUnavailable, err)
	}
	// The email may have been released and reused by a different account.
	if id, _ := claims.SubjectID(); id != user.ID {
		return Principal{}, fmt.Errorf("%w: identity changed since issuance", ErrUnauthenticated)
	}

	user = user.Public()
	user.Role = claims.Role
	p := Principal{User: user, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		p.ExpiresAt = claims.ExpiresAt.Time
	}
	return p, nil
}

// AuthenticateRequest extracts the bearer token from r and resolves it.
func (a *Authenticator) AuthenticateRequest(r *http.Request) (Principal, error) {
	token, err := a.extract(r)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return a.Resolve(r.Context(), token)
}
