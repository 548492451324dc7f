// Package search implements semantic retrieval over the vault index.
package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/loupe-search/loupe/internal/config"
	"github.com/loupe-search/loupe/internal/embedding"
	"github.com/loupe-search/loupe/internal/filter"
	"github.com/loupe-search/loupe/internal/models"
	"github.com/loupe-search/loupe/internal/storage"
	"github.com/loupe-search/loupe/internal/vector"
	"github.com/loupe-search/loupe/pkg/utils"
)

// Retriever answers search queries against a vault index. It embeds the query,
// scans stored chunk vectors for the nearest matches, joins in note metadata,
// and applies any folder or filter constraints.
type Retriever struct {
	store    storage.Store
	embedder embedding.Embedder
	config   *config.SearchConfig
	logger   *zap.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithLogger attaches a logger for debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Retriever) {
		r.logger = logger
	}
}

// NewRetriever creates a retriever with the given dependencies.
func NewRetriever(store storage.Store, embedder embedding.Embedder, cfg *config.SearchConfig, opts ...Option) *Retriever {
	r := &Retriever{
		store:    store,
		embedder: embedder,
		config:   cfg,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Search runs the full retrieval pipeline and returns at most query.Limit
// results ordered by ascending distance. Any storage or embedding failure
// fails the whole search; partial result sets are never returned. An empty
// result set is not an error.
func (r *Retriever) Search(ctx context.Context, query *models.SearchQuery) (*models.SearchResponse, error) {
	startTime := time.Now()

	if err := query.Validate(); err != nil {
		return nil, err
	}

	// Parse the filter before paying for an embedding, so a malformed
	// expression fails fast.
	var expr *filter.Expression
	if strings.TrimSpace(query.Filter) != "" {
		var err error
		expr, err = filter.Parse(query.Filter)
		if err != nil {
			return nil, fmt.Errorf("invalid filter: %w", err)
		}
	}

	queryVec, err := r.embedder.Embed(ctx, query.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	storedDims, err := r.store.EmbeddingDimensions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read vault dimensions: %w", err)
	}
	if storedDims != 0 && storedDims != len(queryVec) {
		return nil, fmt.Errorf("embedding dimension mismatch: model produces %d, vault index holds %d", len(queryVec), storedDims)
	}

	index, err := r.buildIndex(ctx, len(queryVec))
	if err != nil {
		return nil, err
	}

	fetchLimit := query.Limit
	if query.HasFilters() && r.config.OverfetchFactor > 1 {
		fetchLimit = query.Limit * r.config.OverfetchFactor
	}

	var results []*models.SearchResult
	for {
		matches, err := index.Search(ctx, queryVec, fetchLimit)
		if err != nil {
			return nil, fmt.Errorf("vector scan failed: %w", err)
		}

		results, err = r.collect(ctx, matches, query, expr)
		if err != nil {
			return nil, err
		}

		// Filters can starve the window; widen it while part of the index
		// has not been scanned yet.
		if !query.HasFilters() || len(results) >= query.Limit || fetchLimit >= index.Size() {
			break
		}
		fetchLimit *= 2
		if fetchLimit > index.Size() {
			fetchLimit = index.Size()
		}
		r.logger.Debug("widening scan window",
			zap.Int("fetch_limit", fetchLimit),
			zap.Int("survivors", len(results)),
		)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if len(results) > query.Limit {
		results = results[:query.Limit]
	}

	r.logger.Debug("search complete",
		zap.String("query", query.Query),
		zap.Int("results", len(results)),
		zap.Int("index_size", index.Size()),
		zap.Duration("elapsed", time.Since(startTime)),
	)

	return &models.SearchResponse{
		Query:     query.Query,
		Results:   results,
		Count:     len(results),
		QueryTime: time.Since(startTime).Milliseconds(),
	}, nil
}

// buildIndex loads every stored chunk vector into a fresh scan index.
func (r *Retriever) buildIndex(ctx context.Context, dimensions int) (vector.Index, error) {
	chunkVectors, err := r.store.ChunkVectors(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunk vectors: %w", err)
	}

	index, err := vector.NewBruteIndex(dimensions)
	if err != nil {
		return nil, err
	}
	if len(chunkVectors) == 0 {
		return index, nil
	}

	ids := make([]string, len(chunkVectors))
	vectors := make([][]float32, len(chunkVectors))
	for i, cv := range chunkVectors {
		ids[i] = cv.ID
		vectors[i] = cv.Vector
	}
	if err := index.Add(ctx, ids, vectors); err != nil {
		return nil, fmt.Errorf("failed to build scan index: %w", err)
	}
	return index, nil
}

// collect joins scan matches with their chunk and note rows and keeps those
// that satisfy the query's folder and filter constraints. Match order is
// preserved.
func (r *Retriever) collect(ctx context.Context, matches []*vector.Match, query *models.SearchQuery, expr *filter.Expression) ([]*models.SearchResult, error) {
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	chunks, err := r.store.ChunksByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}

	paths := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		paths = append(paths, chunk.Path)
	}
	notes, err := r.store.NotesByPaths(ctx, paths)
	if err != nil {
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}

	results := make([]*models.SearchResult, 0, len(matches))
	for _, m := range matches {
		chunk, ok := chunks[m.ID]
		if !ok {
			// Row deleted since the scan.
			continue
		}
		// Missing note rows stay nil; conditions on them never hold.
		note := notes[chunk.Path]
		if !r.matches(note, query, expr) {
			continue
		}
		results = append(results, r.shape(chunk, note, m.Distance))
	}
	return results, nil
}

// matches reports whether a note satisfies the query's folder prefix and
// filter expression. Both must hold when both are set.
func (r *Retriever) matches(note *models.Note, query *models.SearchQuery, expr *filter.Expression) bool {
	if query.Folder != "" {
		if note == nil || !strings.HasPrefix(note.Folder, query.Folder) {
			return false
		}
	}
	if expr != nil && !expr.Eval(note) {
		return false
	}
	return true
}

// shape builds the outward result for a matched chunk. The snippet is the
// chunk text cut at the configured rune length; tags are never nil.
func (r *Retriever) shape(chunk *models.Chunk, note *models.Note, distance float64) *models.SearchResult {
	result := &models.SearchResult{
		ChunkID:  chunk.ID,
		Path:     chunk.Path,
		Heading:  chunk.Heading,
		Snippet:  utils.TruncateRunes(chunk.Text, r.config.SnippetLength),
		Distance: distance,
		Tags:     []string{},
	}
	if note != nil {
		result.Title = note.Title
		result.Folder = note.Folder
		result.Status = note.Status
		result.Priority = note.Priority
		result.Due = note.Due
		if note.Tags != nil {
			result.Tags = note.Tags
		}
	}
	return result
}
