// Package storage defines persistence for the vault index: per-note metadata
// and embedded chunks in a single SQLite file.
package storage

import (
	"context"
	"errors"

	"github.com/loupe-search/loupe/internal/models"
)

// ErrVaultNotFound reports that no vault index exists at the configured path.
// Callers match it with errors.Is to tell a missing index apart from a query
// failure.
var ErrVaultNotFound = errors.New("vault index not found")

// ChunkVector pairs a chunk ID with its stored embedding.
type ChunkVector struct {
	ID     string
	Vector []float32
}

// Store defines read and bootstrap operations over the vault index.
type Store interface {
	// Read side, used by search.
	ChunkVectors(ctx context.Context) ([]ChunkVector, error)
	ChunksByIDs(ctx context.Context, ids []string) (map[string]*models.Chunk, error)
	NotesByPaths(ctx context.Context, paths []string) (map[string]*models.Note, error)

	// Stats, used by status.
	CountNotes(ctx context.Context) (int64, error)
	CountChunks(ctx context.Context) (int64, error)
	EmbeddingDimensions(ctx context.Context) (int, error)

	// Write side, used by indexers and test fixtures.
	CreateNote(ctx context.Context, note *models.Note) error
	CreateChunk(ctx context.Context, chunk *models.Chunk) error
	BatchCreateChunks(ctx context.Context, chunks []*models.Chunk) error

	Close() error
}
