package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hongminglow/holonet-be/internal/models"
)

type FilmRequest struct {
	Title        string             `json:"title"`
	OpeningCrawl string             `json:"opening_crawl"`
	Director     string             `json:"director"`
	Producer     string             `json:"producer"`
	ReleaseDate  *Date              `json:"release_date"`
	Characters   []CharacterRequest `json:"characters"`
}

// CharacterRequest names a character and its homeworld. Both are matched by
// name and created when missing.
type CharacterRequest struct {
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	Homeworld string `json:"homeworld"`
}

type PaginatedFilms struct {
	Films []models.Film `json:"films"`
	Total int64         `json:"total"`
	Skip  int           `json:"skip"`
	Take  int           `json:"take"`
}

// Date decodes either a calendar date (2006-01-02) or an RFC 3339 timestamp.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("date %q must be YYYY-MM-DD or RFC 3339", raw)
}

// Ptr returns nil for a nil Date.
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
