package services

import (
	"sync"

	"github.com/kbase-labs/kbase-cli/internal/core/ports/driven"
)

// IndexLoader restores a tenant's persisted index. It fails with
// domain.ErrIndexNotFound when the tenant has no persisted state.
type IndexLoader func(tenantID string) (driven.VectorIndex, error)

// IndexCache is the process-wide, lazily populated map from tenant ID to
// loaded index. Entries live for the process lifetime and are replaced only
// by a successful re-ingestion (swap-on-save).
//
// Reads are shared: concurrent retrievals for the same tenant serve from the
// same immutable-after-ingest index. Writes are exclusive per tenant via
// IngestLock; an in-flight ingestion does not block readers, which keep
// using the old entry until Swap.
type IndexCache struct {
	mu      sync.RWMutex
	indexes map[string]driven.VectorIndex

	lockMu sync.Mutex
	locks  map[string]*sync.Mutex

	loader IndexLoader
}

// NewIndexCache creates a cache that loads missing tenants with loader.
func NewIndexCache(loader IndexLoader) *IndexCache {
	return &IndexCache{
		indexes: make(map[string]driven.VectorIndex),
		locks:   make(map[string]*sync.Mutex),
		loader:  loader,
	}
}

// Get returns the tenant's index, loading it on first use.
// Concurrent first-use calls for the same tenant may race to load; the
// loser's result is discarded, which is harmless because loads are
// read-only and idempotent.
func (c *IndexCache) Get(tenantID string) (driven.VectorIndex, error) {
	c.mu.RLock()
	ix, ok := c.indexes[tenantID]
	c.mu.RUnlock()
	if ok {
		return ix, nil
	}

	loaded, err := c.loader(tenantID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.indexes[tenantID]; ok {
		return existing, nil
	}
	c.indexes[tenantID] = loaded
	return loaded, nil
}

// Swap atomically replaces the tenant's cached index. Called by the
// ingestion pipeline only after Save succeeded.
func (c *IndexCache) Swap(tenantID string, ix driven.VectorIndex) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexes[tenantID] = ix
}

// IngestLock returns the tenant's writer mutex. An ingestion holds it for
// its full duration, making concurrent ingestions for one tenant mutually
// exclusive without serialising different tenants.
func (c *IndexCache) IngestLock(tenantID string) *sync.Mutex {
	c.lockMu.Lock()
	defer c.lockMu.Unlock()
	l, ok := c.locks[tenantID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[tenantID] = l
	}
	return l
}
