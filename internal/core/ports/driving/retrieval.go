package driving

import (
	"context"

	"github.com/kbase-labs/kbase-cli/internal/core/domain"
)

// RetrievalService answers a natural-language query with ranked context
// chunks from one tenant's knowledge base.
type RetrievalService interface {
	// Retrieve embeds query and returns the k nearest chunks in ascending
	// distance order. Fails with domain.ErrTenantNotIngested when the tenant
	// has no persisted index, and with domain.ErrInvalidArgument when k <= 0.
	Retrieve(ctx context.Context, tenantID, query string, k int) ([]domain.RetrievedChunk, error)
}
