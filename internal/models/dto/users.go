package dto

import "github.com/hongminglow/holonet-be/internal/models"

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserRequest leaves nil fields untouched.
type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

type PaginatedUsers struct {
	Users []models.User `json:"users"`
	Total int64         `json:"total"`
	Skip  int           `json:"skip"`
	Take  int           `json:"take"`
}
