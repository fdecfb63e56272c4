package auth

import "github.com/hongminglow/holonet-be/internal/models"

// Decision is the outcome of Authorize.
type Decision int

const (
	Deny Decision = iota
	Allow
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "deny"
}

// Requirement is the set of roles an operation accepts. Empty means any
// authenticated principal.
type Requirement []models.Role

// Require builds a Requirement from roles.
func Require(roles ...models.Role) Requirement {
	return Requirement(roles)
}

// Allows reports whether role satisfies r.
func (r Requirement) Allows(role models.Role) bool {
	if len(r) == 0 {
		return true
	}
	for _, want := range r {
		if want == role {
			return true
		}
	}
	return false
}

// Authorize compares an already resolved principal against req.
func Authorize(p Principal, req Requirement) Decision {
	if req.Allows(p.Role()) {
		return Allow
	}
	return Deny
}

// Check is Authorize expressed as an error.
func Check(p Principal, req Requirement) error {
	if Authorize(p, req) == Deny {
		return ErrForbidden
	}
	return nil
}
