package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbase-labs/kbase-cli/internal/core/domain"
	"github.com/kbase-labs/kbase-cli/internal/core/ports/driven"
	"github.com/kbase-labs/kbase-cli/internal/core/ports/driving"
	"github.com/kbase-labs/kbase-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService answers queries with ranked context chunks from one
// tenant's knowledge base. Indexes load lazily on first use and are cached
// for the process lifetime.
type RetrievalService struct {
	embedder driven.EmbeddingService
	cache    *IndexCache
}

// NewRetrievalService creates a retriever over the shared index cache.
func NewRetrievalService(embedder driven.EmbeddingService, cache *IndexCache) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		cache:    cache,
	}
}

// Retrieve embeds query and returns the k nearest chunks, ascending by
// distance. A tenant without a persisted index fails with
// domain.ErrTenantNotIngested; a tenant whose index exists but is empty
// yields an empty result. The two cases are never conflated.
func (s *RetrievalService) Retrieve(
	ctx context.Context, tenantID, query string, k int,
) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidArgument, k)
	}

	logger.Section("Retrieval")
	logger.Debug("Tenant: %s, query: %q, k: %d", tenantID, query, k)

	ix, err := s.cache.Get(tenantID)
	if err != nil {
		if errors.Is(err, domain.ErrIndexNotFound) {
			return nil, fmt.Errorf("%w: tenant %s", domain.ErrTenantNotIngested, tenantID)
		}
		return nil, fmt.Errorf("loading index for tenant %s: %w", tenantID, err)
	}

	if ix.Len() == 0 {
		logger.Warn("Index for tenant %s is empty", tenantID)
		return []domain.RetrievedChunk{}, nil
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(vector))

	if len(vector) != ix.Dimensions() {
		return nil, fmt.Errorf("%w: query embedding has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(vector), ix.Dimensions())
	}

	hits, err := ix.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	logger.Info("Retrieved %d chunks", len(hits))

	results := make([]domain.RetrievedChunk, len(hits))
	for i, h := range hits {
		results[i] = domain.RetrievedChunk{
			Text:     h.Text,
			Ref:      h.Ref,
			Distance: h.Distance,
		}
	}
	return results, nil
}
