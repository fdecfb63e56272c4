package models

import "time"

// Film is a catalogue entry.
type Film struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	OpeningCrawl string      `json:"opening_crawl,omitempty"`
	Director     string      `json:"director,omitempty"`
	Producer     string      `json:"producer,omitempty"`
	ReleaseDate  *time.Time  `json:"release_date,omitempty"`
	Characters   []Character `json:"characters,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Character appears in one or more films. Names are unique.
type Character struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	Homeworld Planet `json:"homeworld"`
}

// Planet is a character's homeworld. Names are unique.
type Planet struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
