package server

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hongminglow/holonet-be/internal/models"
	"github.com/hongminglow/holonet-be/internal/storage"
)

type memoryStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
	films  map[int64]models.Film
	cast   map[string]models.Character
	worlds map[string]models.Planet
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:  map[int64]models.User{},
		films:  map[int64]models.Film{},
		cast:   map[string]models.Character{},
		worlds: map[string]models.Planet{},
	}
}

func (m *memoryStore) CreateUser(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryStore) UpdateUser(_ context.Context, user models.User) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return models.User{}, storage.ErrNotFound
	}
	user.UpdatedAt = time.Now()
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryStore) deleteUser(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

func (m *memoryStore) FindByID(_ context.Context, id int64) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (m *memoryStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (m *memoryStore) matching(filter storage.UserFilter) []models.User {
	var out []models.User
	for _, u := range m.users {
		if filter.Name != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Email != "" && !strings.Contains(u.Email, filter.Email) {
			continue
		}
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memoryStore) ListUsers(_ context.Context, filter storage.UserFilter, page storage.Page) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.matching(filter)
	if page.Skip >= len(all) {
		return nil, nil
	}
	end := page.Skip + page.Take
	if end > len(all) {
		end = len(all)
	}
	return all[page.Skip:end], nil
}

func (m *memoryStore) CountUsers(_ context.Context, filter storage.UserFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matching(filter))), nil
}

func (m *memoryStore) CreateFilm(_ context.Context, film models.Film) (models.Film, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	film.ID = m.nextID
	var linked []models.Character
	seen := map[string]bool{}
	for _, c := range film.Characters {
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		linked = append(linked, m.connectCharacter(c))
	}
	film.Characters = linked
	m.films[film.ID] = film
	return film, nil
}

func (m *memoryStore) connectCharacter(c models.Character) models.Character {
	if existing, ok := m.cast[c.Name]; ok {
		return existing
	}
	planet, ok := m.worlds[c.Homeworld.Name]
	if !ok {
		m.nextID++
		planet = models.Planet{ID: m.nextID, Name: c.Homeworld.Name}
		m.worlds[planet.Name] = planet
	}
	m.nextID++
	c.ID = m.nextID
	c.Homeworld = planet
	m.cast[c.Name] = c
	return c
}

func (m *memoryStore) UpdateFilm(_ context.Context, film models.Film) (models.Film, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.films[film.ID]
	if !ok {
		return models.Film{}, storage.ErrNotFound
	}
	film.Characters = existing.Characters
	m.films[film.ID] = film
	return film, nil
}

func (m *memoryStore) DeleteFilm(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.films[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.films, id)
	return nil
}

func (m *memoryStore) FindFilm(_ context.Context, id int64) (models.Film, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.films[id]
	if !ok {
		return models.Film{}, storage.ErrNotFound
	}
	return f, nil
}

func (m *memoryStore) ListFilms(_ context.Context, page storage.Page) ([]models.Film, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []models.Film
	for _, f := range m.films {
		f.Characters = nil
		all = append(all, f)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	if page.Skip >= len(all) {
		return nil, nil
	}
	end := page.Skip + page.Take
	if end > len(all) {
		end = len(all)
	}
	return all[page.Skip:end], nil
}

func (m *memoryStore) CountFilms(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.films)), nil
}
