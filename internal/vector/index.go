// Package vector provides the nearest-neighbor scan over embedded chunks.
package vector

import "context"

// Index finds the stored vectors nearest to a query vector.
type Index interface {
	Add(ctx context.Context, ids []string, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*Match, error)
	Size() int
	Dimensions() int
}

// Match is a single scan hit. Distance is cosine distance (1 minus cosine
// similarity): 0 means identical direction, 1 orthogonal, 2 opposite.
type Match struct {
	ID       string
	Distance float64
}
