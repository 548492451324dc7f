// Package models defines core data structures for notes, chunks, queries, and search results.
package models

// Note holds per-note metadata extracted from front matter at index time.
// An empty string means the field was absent in the source note.
type Note struct {
	Path     string   `json:"path" db:"path"`
	Title    string   `json:"title,omitempty" db:"title"`
	Folder   string   `json:"folder,omitempty" db:"folder"`
	Status   string   `json:"status,omitempty" db:"status"`
	Priority string   `json:"priority,omitempty" db:"priority"`
	Due      string   `json:"due,omitempty" db:"due"`
	Tags     []string `json:"tags" db:"tags"`
}

// Chunk is one embedded section of a note. Path links the chunk back to the
// note it came from; Heading is the nearest markdown heading, when known.
type Chunk struct {
	ID        string    `json:"chunk_id" db:"chunk_id"`
	Path      string    `json:"path" db:"path"`
	Heading   string    `json:"heading,omitempty" db:"heading"`
	Text      string    `json:"text" db:"chunk_text"`
	Embedding []float32 `json:"-" db:"-"`
}
