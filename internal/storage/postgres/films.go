package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/holonet-be/internal/models"
	"github.com/hongminglow/holonet-be/internal/storage"
	"github.com/jackc/pgx/v5"
)

const filmColumns = `id, title, opening_crawl, director, producer, release_date, created_at, updated_at`

const characterSelect = `
	SELECT c.id, c.name, c.gender, p.id, p.name
	FROM characters c
	JOIN planets p ON p.id = c.homeworld_id`

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CreateFilm inserts a film and links its characters in one transaction.
// Characters and planets are matched by name; an existing character keeps its
// stored gender and homeworld.
func (s *Store) CreateFilm(ctx context.Context, film models.Film) (models.Film, error) {
	var created models.Film
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO films (title, opening_crawl, director, producer, release_date)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING ` + filmColumns
		row := tx.QueryRow(ctx, query, film.Title, film.OpeningCrawl, film.Director, film.Producer, film.ReleaseDate)
		var err error
		if created, err = scanFilm(row); err != nil {
			return err
		}

		seen := make(map[int64]bool, len(film.Characters))
		for _, c := range film.Characters {
			character, err := connectCharacter(ctx, tx, c)
			if err != nil {
				return err
			}
			if seen[character.ID] {
				continue
			}
			seen[character.ID] = true
			if _, err := tx.Exec(ctx,
				`INSERT INTO film_characters (film_id, character_id) VALUES ($1, $2)`,
				created.ID, character.ID); err != nil {
				return fmt.Errorf("link character %q: %w", c.Name, err)
			}
			created.Characters = append(created.Characters, character)
		}
		return nil
	})
	if err != nil {
		return models.Film{}, err
	}
	return created, nil
}

func connectCharacter(ctx context.Context, tx pgx.Tx, c models.Character) (models.Character, error) {
	existing, err := scanCharacter(tx.QueryRow(ctx, characterSelect+` WHERE c.name = $1`, c.Name))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.Character{}, fmt.Errorf("find character %q: %w", c.Name, err)
	}

	var planetID int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO planets (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`, c.Homeworld.Name).Scan(&planetID); err != nil {
		return models.Character{}, fmt.Errorf("upsert planet %q: %w", c.Homeworld.Name, err)
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO characters (name, gender, homeworld_id) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING`, c.Name, c.Gender, planetID); err != nil {
		return models.Character{}, fmt.Errorf("upsert character %q: %w", c.Name, err)
	}
	// Re-read so a concurrent insert of the same name wins consistently.
	return scanCharacter(tx.QueryRow(ctx, characterSelect+` WHERE c.name = $1`, c.Name))
}

// UpdateFilm overwrites the scalar fields of an existing film.
func (s *Store) UpdateFilm(ctx context.Context, film models.Film) (models.Film, error) {
	query := `
		UPDATE films
		SET title = $2, opening_crawl = $3, director = $4, producer = $5, release_date = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + filmColumns
	row := s.pool.QueryRow(ctx, query, film.ID, film.Title, film.OpeningCrawl, film.Director, film.Producer, film.ReleaseDate)
	updated, err := scanFilm(row)
	if err != nil {
		return models.Film{}, err
	}
	if updated.Characters, err = filmCharacters(ctx, s.pool, updated.ID); err != nil {
		return models.Film{}, err
	}
	return updated, nil
}

// DeleteFilm removes a film by id. Its character links go with it.
func (s *Store) DeleteFilm(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM films WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete film: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// FindFilm fetches a film by id together with its characters.
func (s *Store) FindFilm(ctx context.Context, id int64) (models.Film, error) {
	film, err := scanFilm(s.pool.QueryRow(ctx, `SELECT `+filmColumns+` FROM films WHERE id = $1`, id))
	if err != nil {
		return models.Film{}, err
	}
	if film.Characters, err = filmCharacters(ctx, s.pool, id); err != nil {
		return models.Film{}, err
	}
	return film, nil
}

func filmCharacters(ctx context.Context, q querier, filmID int64) ([]models.Character, error) {
	rows, err := q.Query(ctx, characterSelect+`
		JOIN film_characters fc ON fc.character_id = c.id
		WHERE fc.film_id = $1
		ORDER BY c.id`, filmID)
	if err != nil {
		return nil, fmt.Errorf("list film characters: %w", err)
	}
	defer rows.Close()

	var out []models.Character
	for rows.Next() {
		character, err := scanCharacter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, character)
	}
	return out, rows.Err()
}

// ListFilms returns one page of films ordered by id.
func (s *Store) ListFilms(ctx context.Context, page storage.Page) ([]models.Film, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+filmColumns+` FROM films ORDER BY id LIMIT $1 OFFSET $2`, page.Take, page.Skip)
	if err != nil {
		return nil, fmt.Errorf("list films: %w", err)
	}
	defer rows.Close()

	var out []models.Film
	for rows.Next() {
		film, err := scanFilm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, film)
	}
	return out, rows.Err()
}

// CountFilms returns the number of films.
func (s *Store) CountFilms(ctx context.Context) (int64, error) {
	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM films`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count films: %w", err)
	}
	return total, nil
}

func scanFilm(row pgx.Row) (models.Film, error) {
	var film models.Film
	if err := row.Scan(&film.ID, &film.Title, &film.OpeningCrawl, &film.Director, &film.Producer, &film.ReleaseDate, &film.CreatedAt, &film.UpdatedAt); err != nil {
		return models.Film{}, translate(err)
	}
	return film, nil
}

func scanCharacter(row pgx.Row) (models.Character, error) {
	var c models.Character
	if err := row.Scan(&c.ID, &c.Name, &c.Gender, &c.Homeworld.ID, &c.Homeworld.Name); err != nil {
		return models.Character{}, translate(err)
	}
	return c, nil
}
