package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/loupe-search/loupe/internal/models"
)

// maxBatchParams caps bound parameters per statement; SQLite builds differ in
// their limit, 500 is safe everywhere.
const maxBatchParams = 500

// SQLiteStore implements Store over a single SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenVault opens an existing vault index read-only. A missing file yields
// ErrVaultNotFound so callers can direct the user to (re)build the index.
func OpenVault(dbPath string) (*SQLiteStore, error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrVaultNotFound, dbPath)
		}
		return nil, fmt.Errorf("failed to stat vault index: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("vault index path is a directory: %s", dbPath)
	}

	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open vault index: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open vault index: %w", err)
	}
	return &SQLiteStore{db: db, path: dbPath}, nil
}

// CreateVault opens or creates a writable vault index at dbPath and ensures
// the schema exists. Parent directories are created as needed. This is the
// entry point for indexers and test fixtures; search uses OpenVault.
func CreateVault(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create vault directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault index: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db, path: dbPath}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS notes (
		path TEXT PRIMARY KEY,
		title TEXT,
		folder TEXT,
		status TEXT,
		priority TEXT,
		due TEXT,
		tags TEXT
	);

	CREATE TABLE IF NOT EXISTS chunks (
		chunk_id TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		heading TEXT,
		chunk_text TEXT NOT NULL,
		embedding BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_path ON chunks(path);
	CREATE INDEX IF NOT EXISTS idx_notes_folder ON notes(folder);
	`
	_, err := db.Exec(schema)
	return err
}

// ChunkVectors returns the ID and embedding of every chunk, in unspecified
// order. This feeds the scan index at query time.
func (s *SQLiteStore) ChunkVectors(ctx context.Context) ([]ChunkVector, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT chunk_id, embedding FROM chunks`)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk vectors: %w", err)
	}
	defer rows.Close()

	var out []ChunkVector
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, err
		}
		vec, err := decodeEmbedding(blob)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", id, err)
		}
		out = append(out, ChunkVector{ID: id, Vector: vec})
	}
	return out, rows.Err()
}

// ChunksByIDs returns the chunks with the given IDs, without embeddings.
// IDs with no row are simply absent from the map.
func (s *SQLiteStore) ChunksByIDs(ctx context.Context, ids []string) (map[string]*models.Chunk, error) {
	out := make(map[string]*models.Chunk, len(ids))
	for start := 0; start < len(ids); start += maxBatchParams {
		end := start + maxBatchParams
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]
		query := `SELECT chunk_id, path, heading, chunk_text FROM chunks WHERE chunk_id IN (` +
			placeholders(len(batch)) + `)`
		rows, err := s.db.QueryContext(ctx, query, toArgs(batch)...)
		if err != nil {
			return nil, fmt.Errorf("failed to read chunks: %w", err)
		}
		for rows.Next() {
			var c models.Chunk
			var heading sql.NullString
			if err := rows.Scan(&c.ID, &c.Path, &heading, &c.Text); err != nil {
				rows.Close()
				return nil, err
			}
			c.Heading = heading.String
			out[c.ID] = &c
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}

// NotesByPaths returns note metadata keyed by path. Paths with no note row
// are absent from the map, which is how the left join surfaces chunks whose
// note was never indexed.
func (s *SQLiteStore) NotesByPaths(ctx context.Context, paths []string) (map[string]*models.Note, error) {
	out := make(map[string]*models.Note, len(paths))
	unique := dedupe(paths)
	for start := 0; start < len(unique); start += maxBatchParams {
		end := start + maxBatchParams
		if end > len(unique) {
			end = len(unique)
		}
		batch := unique[start:end]
		query := `SELECT path, title, folder, status, priority, due, tags FROM notes WHERE path IN (` +
			placeholders(len(batch)) + `)`
		rows, err := s.db.QueryContext(ctx, query, toArgs(batch)...)
		if err != nil {
			return nil, fmt.Errorf("failed to read notes: %w", err)
		}
		for rows.Next() {
			var n models.Note
			var title, folder, status, priority, due, tags sql.NullString
			if err := rows.Scan(&n.Path, &title, &folder, &status, &priority, &due, &tags); err != nil {
				rows.Close()
				return nil, err
			}
			n.Title = title.String
			n.Folder = folder.String
			n.Status = status.String
			n.Priority = priority.String
			n.Due = due.String
			n.Tags = decodeTags(tags.String)
			out[n.Path] = &n
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}

// CountNotes returns the total number of indexed notes.
func (s *SQLiteStore) CountNotes(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&count)
	return count, err
}

// CountChunks returns the total number of embedded chunks.
func (s *SQLiteStore) CountChunks(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count)
	return count, err
}

// EmbeddingDimensions probes the dimension of stored embeddings from one
// chunk. Returns 0 for an empty vault.
func (s *SQLiteStore) EmbeddingDimensions(ctx context.Context) (int, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT length(embedding) FROM chunks LIMIT 1`).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if n%4 != 0 {
		return 0, fmt.Errorf("embedding blob length %d is not a multiple of 4", n)
	}
	return int(n / 4), nil
}

// CreateNote inserts or replaces note metadata. Empty fields store as NULL,
// matching what the vault indexer writes for missing front matter.
func (s *SQLiteStore) CreateNote(ctx context.Context, note *models.Note) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO notes (path, title, folder, status, priority, due, tags)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		note.Path, nullable(note.Title), nullable(note.Folder), nullable(note.Status),
		nullable(note.Priority), nullable(note.Due), encodeTags(note.Tags),
	)
	if err != nil {
		return fmt.Errorf("failed to store note %s: %w", note.Path, err)
	}
	return nil
}

// CreateChunk inserts a chunk with its embedding. A blank ID gets a
// path-scoped random one.
func (s *SQLiteStore) CreateChunk(ctx context.Context, chunk *models.Chunk) error {
	if chunk.ID == "" {
		chunk.ID = newChunkID(chunk.Path)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chunks (chunk_id, path, heading, chunk_text, embedding)
		 VALUES (?, ?, ?, ?, ?)`,
		chunk.ID, chunk.Path, nullable(chunk.Heading), chunk.Text, encodeEmbedding(chunk.Embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to store chunk %s: %w", chunk.ID, err)
	}
	return nil
}

// BatchCreateChunks inserts chunks in a single transaction.
func (s *SQLiteStore) BatchCreateChunks(ctx context.Context, chunks []*models.Chunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (chunk_id, path, heading, chunk_text, embedding)
		 VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		if chunk.ID == "" {
			chunk.ID = newChunkID(chunk.Path)
		}
		if _, err := stmt.ExecContext(ctx,
			chunk.ID, chunk.Path, nullable(chunk.Heading), chunk.Text,
			encodeEmbedding(chunk.Embedding)); err != nil {
			return fmt.Errorf("failed to store chunk %s: %w", chunk.ID, err)
		}
	}
	return tx.Commit()
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func newChunkID(path string) string {
	return path + "#" + uuid.New().String()[:8]
}

// nullable maps the empty string to NULL so absent metadata stays absent.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(vals []string) []interface{} {
	args := make([]interface{}, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	return args
}

func dedupe(vals []string) []string {
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
