package models

import (
	"fmt"
	"strings"
)

// DefaultLimit is the number of results returned when the caller does not ask
// for a specific count.
const DefaultLimit = 5

// SearchQuery represents a search request with optional metadata filters.
type SearchQuery struct {
	// Query is the natural-language text to embed and match against chunks.
	Query string `json:"query"`
	// Limit is the maximum number of results to return.
	Limit int `json:"limit,omitempty"`
	// Folder restricts results to notes whose folder path starts with this prefix.
	Folder string `json:"folder,omitempty"`
	// Filter is a metadata predicate, e.g. "status='active' AND priority<=2".
	Filter string `json:"filter,omitempty"`
}

// Validate checks the query text and normalizes the limit. An empty or
// whitespace-only query and a negative limit are errors; a zero limit becomes
// DefaultLimit.
func (q *SearchQuery) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return fmt.Errorf("query cannot be empty")
	}
	if q.Limit < 0 {
		return fmt.Errorf("limit must be positive, got %d", q.Limit)
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	return nil
}

// HasFilters reports whether any metadata filter is active.
func (q *SearchQuery) HasFilters() bool {
	return q.Folder != "" || strings.TrimSpace(q.Filter) != ""
}
