package driving

import (
	"context"

	"github.com/kbase-labs/kbase-cli/internal/core/domain"
)

// IngestionService turns a directory of documents into a populated,
// persisted vector index for one tenant.
type IngestionService interface {
	// Ingest enumerates supported documents under documentsDir, chunks and
	// embeds them, and replaces the tenant's persisted index. Unsupported
	// files are skipped and extraction failures are recorded per document;
	// the run fails only when zero documents could be processed.
	Ingest(ctx context.Context, tenantID, documentsDir string) (*domain.IngestionReport, error)
}
