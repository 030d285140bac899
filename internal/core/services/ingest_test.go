package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbase-labs/kbase-cli/internal/chunker"
	"github.com/kbase-labs/kbase-cli/internal/core/domain"
	"github.com/kbase-labs/kbase-cli/internal/core/ports/driven"
	"github.com/kbase-labs/kbase-cli/internal/extractors"
	"github.com/kbase-labs/kbase-cli/internal/extractors/plaintext"
	"github.com/kbase-labs/kbase-cli/internal/index/flat"
)

type pipeline struct {
	ingester  *IngestionService
	retriever *RetrievalService
	embedder  *stubEmbedder
	cache     *IndexCache
	dataDir   string
}

func newPipeline(t *testing.T, opts ...chunker.Option) *pipeline {
	t.Helper()

	ck, err := chunker.New(opts...)
	require.NoError(t, err)

	dataDir := t.TempDir()
	indexDir := func(tenantID string) string {
		return filepath.Join(dataDir, "tenants", tenantID, "index")
	}
	cache := NewIndexCache(func(tenantID string) (driven.VectorIndex, error) {
		return flat.Load(indexDir(tenantID))
	})

	embedder := &stubEmbedder{}
	ingester := NewIngestionService(
		extractors.NewRegistry(plaintext.New()),
		ck,
		embedder,
		cache,
		func() driven.VectorIndex { return flat.New() },
		indexDir,
		0,
	)
	return &pipeline{
		ingester:  ingester,
		retriever: NewRetrievalService(embedder, cache),
		embedder:  embedder,
		cache:     cache,
		dataDir:   dataDir,
	}
}

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
}

func TestIngest_Report(t *testing.T) {
	p := newPipeline(t)
	docs := t.TempDir()
	writeDoc(t, docs, "alpha.txt", "the first document body")
	writeDoc(t, docs, "beta.md", "the second document body")
	writeDoc(t, docs, "photo.jpg", "binary-ish")
	require.NoError(t, os.Mkdir(filepath.Join(docs, "nested"), 0700))

	report, err := p.ingester.Ingest(context.Background(), "acme", docs)
	require.NoError(t, err)

	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, "acme", report.Tenant)
	assert.Equal(t, 2, report.DocumentsProcessed)
	assert.Equal(t, 1, report.DocumentsSkipped)
	assert.Empty(t, report.Failures)
	assert.Equal(t, 2, report.ChunksProduced)
	assert.Equal(t, report.ChunksProduced, report.EntriesWritten)

	indexDir := filepath.Join(p.dataDir, "tenants", "acme", "index")
	assert.FileExists(t, filepath.Join(indexDir, flat.VectorsFile))
	assert.FileExists(t, filepath.Join(indexDir, flat.ChunksFile))
}

func TestIngest_EmptyDirectory(t *testing.T) {
	p := newPipeline(t)

	report, err := p.ingester.Ingest(context.Background(), "acme", t.TempDir())
	require.ErrorIs(t, err, domain.ErrNoDocuments)
	require.NotNil(t, report)
	assert.Equal(t, 0, report.DocumentsProcessed)
}

func TestIngest_MissingDirectory(t *testing.T) {
	p := newPipeline(t)

	_, err := p.ingester.Ingest(context.Background(), "acme", filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestIngest_EmptyFileIsFailure(t *testing.T) {
	p := newPipeline(t)
	docs := t.TempDir()
	writeDoc(t, docs, "blank.txt", "   \n\t  ")
	writeDoc(t, docs, "real.txt", "actual content")

	report, err := p.ingester.Ingest(context.Background(), "acme", docs)
	require.NoError(t, err)

	assert.Equal(t, 1, report.DocumentsProcessed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "blank.txt", report.Failures[0].Source)
	assert.Equal(t, "no text extracted", report.Failures[0].Reason)
}

func TestIngest_ReplacesPreviousIndex(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()

	first := t.TempDir()
	writeDoc(t, first, "a.txt", "one")
	writeDoc(t, first, "b.txt", "two")
	_, err := p.ingester.Ingest(ctx, "acme", first)
	require.NoError(t, err)

	second := t.TempDir()
	writeDoc(t, second, "c.txt", "three")
	report, err := p.ingester.Ingest(ctx, "acme", second)
	require.NoError(t, err)
	assert.Equal(t, 1, report.EntriesWritten)

	// Both the cached and the persisted index reflect only the second run.
	ix, err := p.cache.Get("acme")
	require.NoError(t, err)
	assert.Equal(t, 1, ix.Len())

	reloaded, err := flat.Load(filepath.Join(p.dataDir, "tenants", "acme", "index"))
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Len())
}

func TestIngest_Idempotent(t *testing.T) {
	p := newPipeline(t, chunker.WithChunkSize(8), chunker.WithOverlap(2))
	ctx := context.Background()
	docs := t.TempDir()
	writeDoc(t, docs, "a.txt", "a body long enough to produce several chunks here")

	first, err := p.ingester.Ingest(ctx, "acme", docs)
	require.NoError(t, err)
	second, err := p.ingester.Ingest(ctx, "acme", docs)
	require.NoError(t, err)

	assert.Equal(t, first.ChunksProduced, second.ChunksProduced)
	assert.Equal(t, first.EntriesWritten, second.EntriesWritten)

	ix, err := p.cache.Get("acme")
	require.NoError(t, err)
	assert.Equal(t, second.EntriesWritten, ix.Len())
}

func TestIngest_BatchesEmbeddingCalls(t *testing.T) {
	p := newPipeline(t, chunker.WithChunkSize(5), chunker.WithOverlap(0))
	p.ingester.batchSize = 2
	docs := t.TempDir()
	writeDoc(t, docs, "a.txt", "aaaaabbbbbccccc") // 3 chunks

	report, err := p.ingester.Ingest(context.Background(), "acme", docs)
	require.NoError(t, err)
	assert.Equal(t, 3, report.ChunksProduced)
	assert.Equal(t, 2, p.embedder.calls)
}

func TestIngest_ProviderVectorCountMismatch(t *testing.T) {
	p := newPipeline(t)
	docs := t.TempDir()
	writeDoc(t, docs, "a.txt", "one")
	writeDoc(t, docs, "b.txt", "two")

	broken := &brokenEmbedder{}
	p.ingester.embedder = broken

	_, err := p.ingester.Ingest(context.Background(), "acme", docs)
	require.ErrorIs(t, err, domain.ErrDimensionMismatch)

	// Nothing was saved, so the tenant still reads as not ingested.
	_, err = p.cache.Get("acme")
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
}

// End to end over the documented overlap example: chunk size 5, overlap 1,
// every text embedded as the 1-dimensional vector [len(text)].
func TestIngest_ThenRetrieve(t *testing.T) {
	p := newPipeline(t, chunker.WithChunkSize(5), chunker.WithOverlap(1))
	ctx := context.Background()
	docs := t.TempDir()
	writeDoc(t, docs, "doc.txt", "A. B. C. D. ")

	report, err := p.ingester.Ingest(ctx, "acme", docs)
	require.NoError(t, err)
	assert.Equal(t, 3, report.EntriesWritten)

	// Query of length 5 matches the two 5-character chunks at distance 0;
	// insertion order breaks the tie.
	results, err := p.retriever.Retrieve(ctx, "acme", "12345", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "A. B.", results[0].Text)
	assert.Equal(t, float64(0), results[0].Distance)
	assert.Equal(t, "doc.txt", results[0].Ref.DocumentID)
	assert.Equal(t, 0, results[0].Ref.Ordinal)

	all, err := p.retriever.Retrieve(ctx, "acme", "12345", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "A. B.", all[0].Text)
	assert.Equal(t, ". C. ", all[1].Text)
	assert.Equal(t, " D. ", all[2].Text)
	assert.Equal(t, float64(1), all[2].Distance) // len 4 vs query 5
}
