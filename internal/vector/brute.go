package vector

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// checkEvery is how many vectors are scanned between context checks.
const checkEvery = 1024

// BruteIndex is an exhaustive in-memory scan. Exact, and fast enough at
// personal-vault scale where every query can afford to see every chunk.
type BruteIndex struct {
	dimensions int
	ids        []string
	vectors    [][]float32
	mu         sync.RWMutex
}

// NewBruteIndex creates an empty index for vectors of the given dimension.
func NewBruteIndex(dimensions int) (*BruteIndex, error) {
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive, got %d", dimensions)
	}
	return &BruteIndex{dimensions: dimensions}, nil
}

// Add appends vectors with the given IDs. Vectors are copied.
func (b *BruteIndex) Add(ctx context.Context, ids []string, vectors [][]float32) error {
	if len(ids) != len(vectors) {
		return fmt.Errorf("ids and vectors length mismatch: %d vs %d", len(ids), len(vectors))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, id := range ids {
		if len(vectors[i]) != b.dimensions {
			return fmt.Errorf("dimension mismatch: got %d, expected %d", len(vectors[i]), b.dimensions)
		}
		vec := make([]float32, b.dimensions)
		copy(vec, vectors[i])
		b.ids = append(b.ids, id)
		b.vectors = append(b.vectors, vec)
	}
	return nil
}

// Search returns the k nearest vectors by ascending cosine distance. Ties
// break by ID so results are deterministic. k larger than the index is
// clamped; k <= 0 returns nothing.
func (b *BruteIndex) Search(ctx context.Context, query []float32, k int) ([]*Match, error) {
	if len(query) != b.dimensions {
		return nil, fmt.Errorf("query dimension mismatch: got %d, expected %d", len(query), b.dimensions)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if k <= 0 || len(b.ids) == 0 {
		return nil, nil
	}

	qnorm := l2(query)
	matches := make([]*Match, len(b.ids))
	for i, vec := range b.vectors {
		if i%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		matches[i] = &Match{ID: b.ids[i], Distance: distanceWithNorm(query, qnorm, vec)}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].ID < matches[j].ID
	})
	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

// Size returns the number of stored vectors.
func (b *BruteIndex) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.ids)
}

// Dimensions returns the vector dimension the index accepts.
func (b *BruteIndex) Dimensions() int {
	return b.dimensions
}

// distanceWithNorm computes cosine distance reusing a precomputed query norm.
// Stored vectors are not assumed normalized. The result is clamped at 0 so
// rounding on identical vectors never yields a negative distance.
func distanceWithNorm(query []float32, qnorm float64, vec []float32) float64 {
	var dot, sq float64
	for j := range vec {
		dot += float64(query[j]) * float64(vec[j])
		sq += float64(vec[j]) * float64(vec[j])
	}
	if qnorm == 0 || sq == 0 {
		return 1
	}
	d := 1 - dot/(qnorm*math.Sqrt(sq))
	if d < 0 {
		return 0
	}
	return d
}
