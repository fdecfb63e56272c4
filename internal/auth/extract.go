package auth

import (
	"net/http"
	"strings"
)

// TokenExtractor pulls the raw bearer token out of a request.
type TokenExtractor func(r *http.Request) (string, error)

// BearerTokenFromHeader reads "Authorization: Bearer <token>".
func BearerTokenFromHeader(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", ErrUnauthenticated
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrUnauthenticated
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrUnauthenticated
	}
	return token, nil
}
