package driven

import (
	"context"

	"github.com/kbase-labs/kbase-cli/internal/core/domain"
)

// VectorIndex stores embeddings with their chunk text and metadata and
// supports exact k-nearest-neighbour search plus durable persistence.
//
// The index is append-only: no update or delete operation exists. A tenant
// is re-ingested by building a fresh index and replacing the old one.
type VectorIndex interface {
	// Add appends entries. The first Add on an empty index establishes the
	// embedding dimension; any entry whose vector disagrees with it fails
	// with domain.ErrDimensionMismatch and leaves the index unchanged.
	Add(ctx context.Context, entries []domain.Entry) error

	// Search returns the min(k, Len()) nearest entries to query, ordered
	// ascending by squared Euclidean distance with ties broken by insertion
	// order. An empty index yields an empty slice, not an error.
	Search(ctx context.Context, query []float32, k int) ([]domain.Hit, error)

	// Len returns the number of entries.
	Len() int

	// Dimensions returns the established embedding dimension, or 0 when the
	// index is empty and no dimension has been established yet.
	Dimensions() int

	// Save persists the full entry set to dir, replacing any prior state.
	Save(dir string) error
}
