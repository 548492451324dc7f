package models

// SearchResult is a single chunk hit joined with its note's metadata.
// Metadata fields are empty when the note row is missing or the field was
// never set; Tags is always non-nil.
type SearchResult struct {
	ChunkID  string   `json:"chunk_id"`
	Path     string   `json:"path"`
	Heading  string   `json:"heading,omitempty"`
	Snippet  string   `json:"snippet"`
	Distance float64  `json:"distance"`
	Title    string   `json:"title,omitempty"`
	Folder   string   `json:"folder,omitempty"`
	Status   string   `json:"status,omitempty"`
	Priority string   `json:"priority,omitempty"`
	Due      string   `json:"due,omitempty"`
	Tags     []string `json:"tags"`
}

// SearchResponse is the response for a search request.
// Results are ordered by ascending distance, best match first.
type SearchResponse struct {
	Query     string          `json:"query"`
	Results   []*SearchResult `json:"results"`
	Count     int             `json:"count"`
	QueryTime int64           `json:"query_time_ms"`
}
