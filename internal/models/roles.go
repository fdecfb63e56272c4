package models

import (
	"fmt"
	"strings"
)

// Role is the access level stored on a user and signed into its tokens.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// ParseRole normalizes input such as "admin" into a Role.
func ParseRole(input string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(input)))
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", input)
	}
	return role, nil
}
