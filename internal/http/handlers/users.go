package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/hongminglow/holonet-be/internal/auth"
	"github.com/hongminglow/holonet-be/internal/http/respond"
	"github.com/hongminglow/holonet-be/internal/models"
	"github.com/hongminglow/holonet-be/internal/models/dto"
	"github.com/hongminglow/holonet-be/internal/storage"
)

const (
	minPasswordLength = 6
	// bcrypt ignores input past 72 bytes.
	maxPasswordBytes = 72
)

// UsersHandler exposes user administration endpoints.
type UsersHandler struct {
	store     storage.UserStore
	passwords *auth.PasswordHasher
	logger    *slog.Logger
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(store storage.UserStore, passwords *auth.PasswordHasher, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{store: store, passwords: passwords, logger: logger}
}

// Routes lists the user endpoints and their role requirements.
func (h *UsersHandler) Routes() []Route {
	admin := auth.Require(models.RoleAdmin)
	return []Route{
		{Method: http.MethodPost, Path: "/users", Handler: h.handleCreate, Requires: admin},
		{Method: http.MethodGet, Path: "/users", Handler: h.handleList},
		{Method: http.MethodGet, Path: "/users/{id}", Handler: h.handleGet},
		{Method: http.MethodPut, Path: "/users/{id}", Handler: h.handleUpdate, Requires: admin},
	}
}

func (h *UsersHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	role := models.RoleUser
	if strings.TrimSpace(req.Role) != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "role must be ADMIN or USER")
			return
		}
		role = parsed
	}
	if err := validateNewUser(req.Name, req.Email, req.Password); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	hash, err := h.passwords.Hash(req.Password)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	created, err := h.store.CreateUser(r.Context(), models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Role:         role,
		PasswordHash: hash,
	})
	if err != nil {
		h.storeError(w, r, "create user", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "user created", created.Public())
}

func (h *UsersHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	user, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		h.storeError(w, r, "get user", err)
		return
	}
	respond.JSON(w, http.StatusOK, "user", user.Public())
}

func (h *UsersHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := dto.ParsePagination(q)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	filter := storage.UserFilter{
		Name:  strings.TrimSpace(q.Get("name")),
		Email: strings.TrimSpace(q.Get("email")),
	}
	if raw := q.Get("role"); raw != "" {
		role, err := models.ParseRole(raw)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "role must be ADMIN or USER")
			return
		}
		filter.Role = role
	}

	users, err := h.store.ListUsers(r.Context(), filter, storage.Page{Skip: page.Skip, Take: page.Take})
	if err != nil {
		h.storeError(w, r, "list users", err)
		return
	}
	total, err := h.store.CountUsers(r.Context(), filter)
	if err != nil {
		h.storeError(w, r, "count users", err)
		return
	}

	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	respond.JSON(w, http.StatusOK, "users", dto.PaginatedUsers{Users: out, Total: total, Skip: page.Skip, Take: page.Take})
}

func (h *UsersHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var req dto.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	user, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		h.storeError(w, r, "get user", err)
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			respond.Error(w, http.StatusBadRequest, "name must not be empty")
			return
		}
		user.Name = name
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if !looksLikeEmail(email) {
			respond.Error(w, http.StatusBadRequest, "email is invalid")
			return
		}
		user.Email = email
	}
	if req.Role != nil {
		role, err := models.ParseRole(*req.Role)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "role must be ADMIN or USER")
			return
		}
		user.Role = role
	}

	updated, err := h.store.UpdateUser(r.Context(), user)
	if err != nil {
		h.storeError(w, r, "update user", err)
		return
	}
	respond.JSON(w, http.StatusOK, "user updated", updated.Public())
}

func (h *UsersHandler) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "user not found")
	case errors.Is(err, storage.ErrAlreadyExists):
		respond.Error(w, http.StatusConflict, "user already exists")
	default:
		h.logger.ErrorContext(r.Context(), op+" failed", "err", err.Error())
		respond.Error(w, http.StatusInternalServerError, "failed to "+op)
	}
}

func validateNewUser(name, email, password string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
		return errors.New("name and email are required")
	}
	if !looksLikeEmail(strings.TrimSpace(email)) {
		return errors.New("email is invalid")
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordBytes || !utf8.ValidString(password) {
		return errors.New("password must be between 6 and 72 bytes")
	}
	return nil
}

func looksLikeEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}
