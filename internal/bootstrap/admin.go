package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/hongminglow/holonet-be/internal/auth"
	"github.com/hongminglow/holonet-be/internal/models"
)

// AdminUpserter creates or refreshes a user keyed by email.
type AdminUpserter interface {
	UpsertUserByEmail(ctx context.Context, user models.User) (models.User, error)
}

// EnsureAdmin makes sure an ADMIN account with the given credentials exists.
func EnsureAdmin(ctx context.Context, store AdminUpserter, passwords *auth.PasswordHasher, email, password string) (models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.User{}, fmt.Errorf("bootstrap admin: email and password are required")
	}
	hash, err := passwords.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("bootstrap admin: hash password: %w", err)
	}
	user, err := store.UpsertUserByEmail(ctx, models.User{
		Email:        email,
		Name:         "Admin User",
		Role:         models.RoleAdmin,
		PasswordHash: hash,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("bootstrap admin: %w", err)
	}
	return user.Public(), nil
}
