package storage

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/loupe-search/loupe/internal/models"
)

func newTestVault(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := CreateVault(filepath.Join(t.TempDir(), "vault.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenVault_Missing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "vault.db")
	_, err := OpenVault(path)
	if err == nil {
		t.Fatal("OpenVault on a missing file should fail")
	}
	if !errors.Is(err, ErrVaultNotFound) {
		t.Errorf("err = %v, want ErrVaultNotFound", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Errorf("error should name the path, got %q", err)
	}
}

func TestOpenVault_ReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.db")
	w, err := CreateVault(path)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := w.CreateNote(ctx, &models.Note{Path: "a.md", Folder: "inbox"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := OpenVault(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	notes, err := r.NotesByPaths(ctx, []string{"a.md"})
	if err != nil {
		t.Fatal(err)
	}
	if notes["a.md"] == nil || notes["a.md"].Folder != "inbox" {
		t.Errorf("read-only open lost data: %+v", notes["a.md"])
	}

	if err := r.CreateNote(ctx, &models.Note{Path: "b.md"}); err == nil {
		t.Error("writes through a read-only handle should fail")
	}
}

func TestSQLiteStore_NotesRoundTrip(t *testing.T) {
	store := newTestVault(t)
	ctx := context.Background()

	full := &models.Note{
		Path:     "projects/acme/plan.md",
		Title:    "Acme Plan",
		Folder:   "projects/acme",
		Status:   "active",
		Priority: "2",
		Due:      "2026-03-15",
		Tags:     []string{"planning", "q1"},
	}
	bare := &models.Note{Path: "inbox/scratch.md"}
	for _, n := range []*models.Note{full, bare} {
		if err := store.CreateNote(ctx, n); err != nil {
			t.Fatal(err)
		}
	}

	notes, err := store.NotesByPaths(ctx, []string{full.Path, bare.Path, "missing.md"})
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	got := notes[full.Path]
	if got.Title != "Acme Plan" || got.Status != "active" || got.Due != "2026-03-15" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "planning" {
		t.Errorf("tags = %v", got.Tags)
	}

	b := notes[bare.Path]
	if b.Title != "" || b.Status != "" {
		t.Errorf("bare note fields should be empty: %+v", b)
	}
	if b.Tags == nil || len(b.Tags) != 0 {
		t.Errorf("bare note tags should be an empty non-nil slice, got %v", b.Tags)
	}
	if _, ok := notes["missing.md"]; ok {
		t.Error("missing path must not appear in the map")
	}
}

func TestSQLiteStore_Chunks(t *testing.T) {
	store := newTestVault(t)
	ctx := context.Background()

	first := &models.Chunk{
		ID: "plan.md#0", Path: "plan.md", Heading: "Goals",
		Text: "ship the thing", Embedding: []float32{0.1, 0.2, 0.3},
	}
	if err := store.CreateChunk(ctx, first); err != nil {
		t.Fatal(err)
	}
	batch := []*models.Chunk{
		{ID: "plan.md#1", Path: "plan.md", Text: "more detail", Embedding: []float32{0.4, 0.5, 0.6}},
		{ID: "other.md#0", Path: "other.md", Text: "unrelated", Embedding: []float32{0.7, 0.8, 0.9}},
	}
	if err := store.BatchCreateChunks(ctx, batch); err != nil {
		t.Fatal(err)
	}

	vectors, err := store.ChunkVectors(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(vectors) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vectors))
	}
	for _, cv := range vectors {
		if len(cv.Vector) != 3 {
			t.Errorf("vector %s has %d dims", cv.ID, len(cv.Vector))
		}
	}

	chunks, err := store.ChunksByIDs(ctx, []string{"plan.md#0", "other.md#0", "ghost"})
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks["plan.md#0"].Heading != "Goals" || chunks["plan.md#0"].Text != "ship the thing" {
		t.Errorf("chunk fields: %+v", chunks["plan.md#0"])
	}
	if chunks["other.md#0"].Heading != "" {
		t.Errorf("absent heading should be empty, got %q", chunks["other.md#0"].Heading)
	}

	dims, err := store.EmbeddingDimensions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if dims != 3 {
		t.Errorf("dimensions = %d, want 3", dims)
	}
}

func TestSQLiteStore_ChunkAutoID(t *testing.T) {
	store := newTestVault(t)
	ctx := context.Background()

	c := &models.Chunk{Path: "note.md", Text: "text", Embedding: []float32{1}}
	if err := store.CreateChunk(ctx, c); err != nil {
		t.Fatal(err)
	}
	if c.ID == "" || !strings.HasPrefix(c.ID, "note.md#") {
		t.Errorf("auto ID = %q, want note.md# prefix", c.ID)
	}
}

func TestSQLiteStore_Counts(t *testing.T) {
	store := newTestVault(t)
	ctx := context.Background()

	n, err := store.CountNotes(ctx)
	if err != nil || n != 0 {
		t.Errorf("CountNotes: %v, %d", err, n)
	}
	dims, err := store.EmbeddingDimensions(ctx)
	if err != nil || dims != 0 {
		t.Errorf("empty vault dimensions: %v, %d", err, dims)
	}

	_ = store.CreateNote(ctx, &models.Note{Path: "x.md"})
	_ = store.CreateChunk(ctx, &models.Chunk{Path: "x.md", Text: "t", Embedding: []float32{1, 2}})

	n, _ = store.CountNotes(ctx)
	if n != 1 {
		t.Errorf("expected 1 note, got %d", n)
	}
	n, _ = store.CountChunks(ctx)
	if n != 1 {
		t.Errorf("expected 1 chunk, got %d", n)
	}
}
