package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hongminglow/holonet-be/internal/auth"
	"github.com/hongminglow/holonet-be/internal/http/respond"
	"github.com/hongminglow/holonet-be/internal/models/dto"
	"github.com/hongminglow/holonet-be/internal/observability"
)

// AuthHandler owns the login and current-principal endpoints.
type AuthHandler struct {
	authn   *auth.Authenticator
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewAuthHandler constructs the handler. metrics may be nil.
func NewAuthHandler(authn *auth.Authenticator, logger *slog.Logger, metrics *observability.Metrics) *AuthHandler {
	return &AuthHandler{authn: authn, logger: logger, metrics: metrics}
}

// Routes lists the auth endpoints.
func (h *AuthHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodPost, Path: "/auth/login", Handler: h.handleLogin, Public: true},
		{Method: http.MethodGet, Path: "/auth/me", Handler: h.handleMe},
	}
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, err := h.authn.IssueToken(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			h.metrics.RecordLogin("invalid_credentials")
			h.logger.WarnContext(r.Context(), "login failed", "email", strings.TrimSpace(req.Email))
		case errors.Is(err, auth.ErrDirectoryUnavailable):
			h.metrics.RecordLogin("directory_unavailable")
			h.logger.ErrorContext(r.Context(), "login lookup failed", "err", err.Error())
		default:
			h.metrics.RecordLogin("error")
			h.logger.ErrorContext(r.Context(), "token issuance failed", "err", err.Error())
		}
		respond.AuthError(w, err)
		return
	}

	h.metrics.RecordLogin("success")
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{AccessToken: token})
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		respond.AuthError(w, auth.ErrUnauthenticated)
		return
	}
	respond.JSON(w, http.StatusOK, "current user", map[string]any{
		"user":       principal.User,
		"expires_at": principal.ExpiresAt,
	})
}
