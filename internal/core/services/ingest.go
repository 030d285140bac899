package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kbase-labs/kbase-cli/internal/chunker"
	"github.com/kbase-labs/kbase-cli/internal/core/domain"
	"github.com/kbase-labs/kbase-cli/internal/core/ports/driven"
	"github.com/kbase-labs/kbase-cli/internal/core/ports/driving"
	"github.com/kbase-labs/kbase-cli/internal/extractors"
	"github.com/kbase-labs/kbase-cli/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// DefaultBatchSize bounds how many chunk texts go to the embedding provider
// per request.
const DefaultBatchSize = 64

// NewIndexFunc creates an empty vector index for a fresh ingestion run.
type NewIndexFunc func() driven.VectorIndex

// IndexDirFunc resolves the tenant-scoped directory for persisted state.
type IndexDirFunc func(tenantID string) string

// IngestionService turns a directory of documents into a populated,
// persisted index for one tenant. Re-ingestion replaces the previous index
// rather than merging into it, so running it twice over an unchanged
// directory is idempotent.
type IngestionService struct {
	registry  *extractors.Registry
	chunker   *chunker.Chunker
	embedder  driven.EmbeddingService
	cache     *IndexCache
	newIndex  NewIndexFunc
	indexDir  IndexDirFunc
	batchSize int
}

// NewIngestionService creates an ingestion pipeline.
func NewIngestionService(
	registry *extractors.Registry,
	ck *chunker.Chunker,
	embedder driven.EmbeddingService,
	cache *IndexCache,
	newIndex NewIndexFunc,
	indexDir IndexDirFunc,
	batchSize int,
) *IngestionService {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &IngestionService{
		registry:  registry,
		chunker:   ck,
		embedder:  embedder,
		cache:     cache,
		newIndex:  newIndex,
		indexDir:  indexDir,
		batchSize: batchSize,
	}
}

// Ingest runs the full pipeline for one tenant. It holds the tenant's
// writer lock for the whole run; readers keep serving from the previously
// cached index until the new one is saved and swapped in.
func (s *IngestionService) Ingest(
	ctx context.Context, tenantID, documentsDir string,
) (*domain.IngestionReport, error) {
	lock := s.cache.IngestLock(tenantID)
	lock.Lock()
	defer lock.Unlock()

	logger.Section("Ingestion")
	logger.Info("Tenant: %s, documents: %s", tenantID, documentsDir)

	start := time.Now()
	report := &domain.IngestionReport{
		RunID:  uuid.New().String(),
		Tenant: tenantID,
	}

	entries, err := os.ReadDir(documentsDir)
	if err != nil {
		return nil, fmt.Errorf("reading documents directory: %w", err)
	}

	// os.ReadDir returns entries sorted by name, which keeps chunk and
	// entry order stable across runs.
	var chunks []domain.Chunk
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		name := de.Name()

		extractor, ok := s.registry.For(name)
		if !ok {
			logger.Debug("Skipping unsupported file: %s", name)
			report.DocumentsSkipped++
			continue
		}

		text, err := extractor.Extract(ctx, filepath.Join(documentsDir, name))
		if err != nil {
			logger.Warn("Extraction failed for %s: %v", name, err)
			report.Failures = append(report.Failures, domain.DocumentFailure{
				Source: name,
				Reason: err.Error(),
			})
			continue
		}
		if strings.TrimSpace(text) == "" {
			logger.Warn("No text extracted from %s", name)
			report.Failures = append(report.Failures, domain.DocumentFailure{
				Source: name,
				Reason: "no text extracted",
			})
			continue
		}

		docChunks := s.chunker.Split(name, text)
		logger.Debug("%s: %d chunks", name, len(docChunks))
		chunks = append(chunks, docChunks...)
		report.DocumentsProcessed++
		report.ChunksProduced += len(docChunks)
	}

	if report.DocumentsProcessed == 0 {
		return report, fmt.Errorf("%w: %d skipped, %d failed",
			domain.ErrNoDocuments, report.DocumentsSkipped, len(report.Failures))
	}

	ix := s.newIndex()
	if err := s.embedAndAdd(ctx, ix, chunks); err != nil {
		return report, err
	}
	report.EntriesWritten = ix.Len()

	dir := s.indexDir(tenantID)
	if err := ix.Save(dir); err != nil {
		return report, fmt.Errorf("saving index for tenant %s: %w", tenantID, err)
	}
	logger.Info("Saved %d entries to %s", report.EntriesWritten, dir)

	// Readers only ever see the new index after it is durably on disk.
	s.cache.Swap(tenantID, ix)

	report.Duration = time.Since(start)
	return report, nil
}

// embedAndAdd embeds chunk texts in bounded batches and appends the
// resulting entries to the index.
func (s *IngestionService) embedAndAdd(
	ctx context.Context, ix driven.VectorIndex, chunks []domain.Chunk,
) error {
	for lo := 0; lo < len(chunks); lo += s.batchSize {
		hi := lo + s.batchSize
		if hi > len(chunks) {
			hi = len(chunks)
		}
		batch := chunks[lo:hi]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch %d-%d: %w", lo, hi, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("%w: provider returned %d vectors for %d texts",
				domain.ErrDimensionMismatch, len(vectors), len(batch))
		}

		entries := make([]domain.Entry, len(batch))
		for i, c := range batch {
			entries[i] = domain.Entry{
				Embedding: vectors[i],
				Text:      c.Text,
				Ref: domain.Ref{
					DocumentID: c.Source,
					Ordinal:    c.Ordinal,
				},
			}
		}

		if err := ix.Add(ctx, entries); err != nil {
			return fmt.Errorf("indexing batch %d-%d: %w", lo, hi, err)
		}
		logger.Debug("Indexed batch %d-%d", lo, hi)
	}
	return nil
}
