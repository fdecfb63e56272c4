package dto

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultTake = 5
	MaxTake     = 25
)

// Pagination mirrors the skip/take query parameters accepted by list endpoints.
type Pagination struct {
	Skip int
	Take int
}

// ParsePagination reads skip and take from the query string, applying defaults.
func ParsePagination(q url.Values) (Pagination, error) {
	p := Pagination{Skip: 0, Take: DefaultTake}
	if raw := strings.TrimSpace(q.Get("skip")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Pagination{}, errors.New("skip must be a non-negative integer")
		}
		p.Skip = n
	}
	if raw := strings.TrimSpace(q.Get("take")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > MaxTake {
			return Pagination{}, errors.New("take must be between 1 and 25")
		}
		p.Take = n
	}
	return p, nil
}
