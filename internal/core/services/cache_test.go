package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbase-labs/kbase-cli/internal/core/domain"
	"github.com/kbase-labs/kbase-cli/internal/core/ports/driven"
	"github.com/kbase-labs/kbase-cli/internal/index/flat"
)

func TestCache_GetLoadsOnce(t *testing.T) {
	var loads atomic.Int32
	cache := NewIndexCache(func(string) (driven.VectorIndex, error) {
		loads.Add(1)
		return flat.New(), nil
	})

	first, err := cache.Get("acme")
	require.NoError(t, err)
	second, err := cache.Get("acme")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(1), loads.Load())
}

func TestCache_GetDoesNotCacheFailures(t *testing.T) {
	var loads atomic.Int32
	cache := NewIndexCache(func(tenantID string) (driven.VectorIndex, error) {
		if loads.Add(1) == 1 {
			return nil, notFoundErr(tenantID)
		}
		return flat.New(), nil
	})

	_, err := cache.Get("acme")
	require.ErrorIs(t, err, domain.ErrIndexNotFound)

	// The tenant gets ingested between calls; the next Get retries the load.
	_, err = cache.Get("acme")
	require.NoError(t, err)
	assert.Equal(t, int32(2), loads.Load())
}

func TestCache_SwapReplacesEntry(t *testing.T) {
	cache := NewIndexCache(notFoundLoader)

	old := flat.New()
	cache.Swap("acme", old)

	replacement := flat.New()
	require.NoError(t, replacement.Add(context.Background(), []domain.Entry{
		{Embedding: []float32{1}, Text: "x", Ref: domain.Ref{DocumentID: "a.txt", Ordinal: 0}},
	}))
	cache.Swap("acme", replacement)

	got, err := cache.Get("acme")
	require.NoError(t, err)
	assert.Same(t, replacement, got)
	assert.Equal(t, 1, got.Len())
}

func TestCache_IngestLockPerTenant(t *testing.T) {
	cache := NewIndexCache(notFoundLoader)

	assert.Same(t, cache.IngestLock("acme"), cache.IngestLock("acme"))
	assert.NotSame(t, cache.IngestLock("acme"), cache.IngestLock("globex"))
}

func TestCache_ConcurrentGet(t *testing.T) {
	cache := NewIndexCache(func(string) (driven.VectorIndex, error) {
		return flat.New(), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ix, err := cache.Get("acme")
			assert.NoError(t, err)
			assert.NotNil(t, ix)
		}()
	}
	wg.Wait()
}
