package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/holonet-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UserFilter narrows list and count queries. Empty fields match everything.
type UserFilter struct {
	Name  string
	Email string
	Role  models.Role
}

// Page selects a window of an ordered result set.
type Page struct {
	Skip int
	Take int
}

// UserStore captures persistence operations needed by handlers and the auth core.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	UpdateUser(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context, filter UserFilter, page Page) ([]models.User, error)
	CountUsers(ctx context.Context, filter UserFilter) (int64, error)
}

// FilmStore captures persistence operations for the film catalogue.
type FilmStore interface {
	// CreateFilm stores the film and links its characters, creating any
	// character or homeworld not yet known by name.
	CreateFilm(ctx context.Context, film models.Film) (models.Film, error)
	// UpdateFilm changes scalar fields only; the cast is kept.
	UpdateFilm(ctx context.Context, film models.Film) (models.Film, error)
	DeleteFilm(ctx context.Context, id int64) error
	// FindFilm returns the film with its characters and their homeworlds.
	FindFilm(ctx context.Context, id int64) (models.Film, error)
	// ListFilms omits characters.
	ListFilms(ctx context.Context, page Page) ([]models.Film, error)
	CountFilms(ctx context.Context) (int64, error)
}
