package services

import (
	"context"
	"fmt"

	"github.com/kbase-labs/kbase-cli/internal/core/domain"
	"github.com/kbase-labs/kbase-cli/internal/core/ports/driven"
)

// stubEmbedder maps each text to the 1-dimensional vector [len(text)].
// Deterministic, so distances in tests can be computed by hand.
type stubEmbedder struct {
	embedErr error
	batchErr error
	calls    int
}

var _ driven.EmbeddingService = (*stubEmbedder)(nil)

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if s.embedErr != nil {
		return nil, s.embedErr
	}
	return []float32{float32(len(text))}, nil
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	s.calls++
	if s.batchErr != nil {
		return nil, s.batchErr
	}
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = []float32{float32(len(t))}
	}
	return vectors, nil
}

func (s *stubEmbedder) Dimensions() int   { return 1 }
func (s *stubEmbedder) ModelName() string { return "stub" }

func (s *stubEmbedder) Ping(context.Context) error { return nil }
func (s *stubEmbedder) Close() error               { return nil }

// brokenEmbedder returns vectors of the wrong count to exercise the
// provider-contract check in the pipeline.
type brokenEmbedder struct {
	stubEmbedder
}

func (b *brokenEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	return [][]float32{{1}}, nil
}

func notFoundErr(tenantID string) error {
	return fmt.Errorf("%w: tenant %s", domain.ErrIndexNotFound, tenantID)
}

func notFoundLoader(tenantID string) (driven.VectorIndex, error) {
	return nil, notFoundErr(tenantID)
}
