package auth

import (
	"errors"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hongminglow/holonet-be/internal/models"
)

// Claims is the payload signed into every access token.
type Claims struct {
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	jwt.RegisteredClaims
}

// SubjectID returns the numeric user id carried in the subject claim.
func (c Claims) SubjectID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// Validate runs after the standard time and issuer checks.
func (c Claims) Validate() error {
	if c.Email == "" {
		return errors.New("email claim is required")
	}
	if !c.Role.Valid() {
		return errors.New("role claim is invalid")
	}
	if _, err := c.SubjectID(); err != nil {
		return errors.New("subject claim is not a user id")
	}
	return nil
}
