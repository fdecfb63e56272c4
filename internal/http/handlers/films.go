package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hongminglow/holonet-be/internal/auth"
	"github.com/hongminglow/holonet-be/internal/http/respond"
	"github.com/hongminglow/holonet-be/internal/models"
	"github.com/hongminglow/holonet-be/internal/models/dto"
	"github.com/hongminglow/holonet-be/internal/storage"
)

// FilmsHandler exposes the film catalogue.
type FilmsHandler struct {
	store  storage.FilmStore
	logger *slog.Logger
}

// NewFilmsHandler constructs the handler.
func NewFilmsHandler(store storage.FilmStore, logger *slog.Logger) *FilmsHandler {
	return &FilmsHandler{store: store, logger: logger}
}

// Routes lists the film endpoints and their role requirements.
func (h *FilmsHandler) Routes() []Route {
	admin := auth.Require(models.RoleAdmin)
	readers := auth.Require(models.RoleUser, models.RoleAdmin)
	return []Route{
		{Method: http.MethodPost, Path: "/films", Handler: h.handleCreate, Requires: admin},
		{Method: http.MethodGet, Path: "/films", Handler: h.handleList, Requires: readers},
		{Method: http.MethodGet, Path: "/films/{id}", Handler: h.handleGet, Requires: readers},
		{Method: http.MethodPut, Path: "/films/{id}", Handler: h.handleUpdate, Requires: admin},
		{Method: http.MethodDelete, Path: "/films/{id}", Handler: h.handleDelete, Requires: admin},
	}
}

func (h *FilmsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	film, ok := decodeFilm(w, r, true)
	if !ok {
		return
	}
	created, err := h.store.CreateFilm(r.Context(), film)
	if err != nil {
		h.storeError(w, r, "create film", err)
		return
	}
	respond.JSON(w, http.StatusCreated, "film created", created)
}

func (h *FilmsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := dto.ParsePagination(r.URL.Query())
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	films, err := h.store.ListFilms(r.Context(), storage.Page{Skip: page.Skip, Take: page.Take})
	if err != nil {
		h.storeError(w, r, "list films", err)
		return
	}
	total, err := h.store.CountFilms(r.Context())
	if err != nil {
		h.storeError(w, r, "count films", err)
		return
	}
	if films == nil {
		films = []models.Film{}
	}
	respond.JSON(w, http.StatusOK, "films", dto.PaginatedFilms{Films: films, Total: total, Skip: page.Skip, Take: page.Take})
}

func (h *FilmsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "invalid film id")
		return
	}
	film, err := h.store.FindFilm(r.Context(), id)
	if err != nil {
		h.storeError(w, r, "get film", err)
		return
	}
	respond.JSON(w, http.StatusOK, "film", film)
}

func (h *FilmsHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "invalid film id")
		return
	}
	film, ok := decodeFilm(w, r, false)
	if !ok {
		return
	}
	film.ID = id
	updated, err := h.store.UpdateFilm(r.Context(), film)
	if err != nil {
		h.storeError(w, r, "update film", err)
		return
	}
	respond.JSON(w, http.StatusOK, "film updated", updated)
}

func (h *FilmsHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respond.Error(w, http.StatusBadRequest, "invalid film id")
		return
	}
	if err := h.store.DeleteFilm(r.Context(), id); err != nil {
		h.storeError(w, r, "delete film", err)
		return
	}
	respond.JSON(w, http.StatusOK, "film deleted", nil)
}

func (h *FilmsHandler) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		respond.Error(w, http.StatusNotFound, "film not found")
		return
	}
	h.logger.ErrorContext(r.Context(), op+" failed", "err", err.Error())
	respond.Error(w, http.StatusInternalServerError, "failed to "+op)
}

// decodeFilm reads a FilmRequest. Characters are only taken on create; updates
// leave the cast untouched.
func decodeFilm(w http.ResponseWriter, r *http.Request, withCharacters bool) (models.Film, bool) {
	var req dto.FilmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return models.Film{}, false
	}
	if strings.TrimSpace(req.Title) == "" {
		respond.Error(w, http.StatusBadRequest, "title is required")
		return models.Film{}, false
	}
	film := models.Film{
		Title:        strings.TrimSpace(req.Title),
		OpeningCrawl: req.OpeningCrawl,
		Director:     strings.TrimSpace(req.Director),
		Producer:     strings.TrimSpace(req.Producer),
		ReleaseDate:  req.ReleaseDate.Ptr(),
	}
	if !withCharacters {
		return film, true
	}
	if req.Characters == nil {
		respond.Error(w, http.StatusBadRequest, "characters must be an array")
		return models.Film{}, false
	}
	film.Characters = make([]models.Character, 0, len(req.Characters))
	for _, c := range req.Characters {
		name, homeworld := strings.TrimSpace(c.Name), strings.TrimSpace(c.Homeworld)
		if name == "" || homeworld == "" {
			respond.Error(w, http.StatusBadRequest, "every character needs a name and a homeworld")
			return models.Film{}, false
		}
		film.Characters = append(film.Characters, models.Character{
			Name:      name,
			Gender:    strings.TrimSpace(c.Gender),
			Homeworld: models.Planet{Name: homeworld},
		})
	}
	return film, true
}
