// Package flat provides an exact, linear-scan vector index over raw
// float32 embeddings using squared Euclidean distance.
//
// Exact search is chosen over approximate structures deliberately: tenant
// knowledge bases are document-count sized, not corpus sized, and exactness
// keeps top-k results deterministic and reproducible. Every query compares
// against every entry.
package flat

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kbase-labs/kbase-cli/internal/core/domain"
	"github.com/kbase-labs/kbase-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Index is an append-only in-memory vector index. The zero dimension means
// no entries have been added yet; the first Add establishes it. All entries
// share the same dimension and insertion order is preserved.
//
// Concurrent Search calls are safe. Add and Save take the write lock.
type Index struct {
	mu        sync.RWMutex
	dimension int
	entries   []domain.Entry
}

// New creates an empty index. The dimension is established by the first Add,
// or by Load when restoring persisted state.
func New() *Index {
	return &Index{}
}

// Len returns the number of entries.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Dimensions returns the established embedding dimension, or 0 when empty.
func (ix *Index) Dimensions() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.dimension
}

// Add appends entries. The whole batch is validated before anything is
// written, so a dimension mismatch leaves the index unchanged.
func (ix *Index) Add(_ context.Context, entries []domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	dim := ix.dimension
	if dim == 0 {
		dim = len(entries[0].Embedding)
		if dim == 0 {
			return fmt.Errorf("%w: zero-length embedding", domain.ErrDimensionMismatch)
		}
	}

	for i, e := range entries {
		if len(e.Embedding) != dim {
			return fmt.Errorf("%w: entry %d has dimension %d, index has %d",
				domain.ErrDimensionMismatch, i, len(e.Embedding), dim)
		}
	}

	ix.dimension = dim
	ix.entries = append(ix.entries, entries...)
	return nil
}

// Search compares query against every entry and returns the min(k, Len())
// nearest, ascending by squared Euclidean distance. The sort is stable:
// equidistant entries rank by insertion order.
//
// An empty index returns an empty slice rather than an error; callers that
// need to distinguish "never ingested" do so before the index is loaded.
func (ix *Index) Search(_ context.Context, query []float32, k int) ([]domain.Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidArgument, k)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if len(ix.entries) == 0 {
		return []domain.Hit{}, nil
	}
	if len(query) != ix.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			domain.ErrDimensionMismatch, len(query), ix.dimension)
	}

	type scored struct {
		pos  int
		dist float64
	}
	ranked := make([]scored, len(ix.entries))
	for i := range ix.entries {
		ranked[i] = scored{pos: i, dist: squaredL2(query, ix.entries[i].Embedding)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].dist < ranked[j].dist
	})

	if k > len(ranked) {
		k = len(ranked)
	}

	hits := make([]domain.Hit, k)
	for i := 0; i < k; i++ {
		e := &ix.entries[ranked[i].pos]
		hits[i] = domain.Hit{
			Text:     e.Text,
			Ref:      e.Ref,
			Distance: ranked[i].dist,
		}
	}
	return hits, nil
}

// squaredL2 computes the squared Euclidean distance between two vectors of
// equal length. Accumulation is in float64 to limit rounding drift.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
