package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"

	"github.com/driftline/ndbc/internal/models"
	"github.com/driftline/ndbc/internal/store"
)

// LRUCacheEntry wraps a cached dataset with its expiry.
type LRUCacheEntry struct {
	Data      *models.Dataset
	ExpiresAt time.Time
}

// DatasetCache is a read-through LRU in front of the persistence store.
// Reads serve fresh LRU entries first, then fall back to the store; writes
// go through to the store and refresh the LRU.
type DatasetCache struct {
	lru     *lru.Cache[string, *LRUCacheEntry]
	backing store.Store
	ttl     time.Duration
	clock   clockwork.Clock

	// counters use atomics; Get runs from concurrent fetch workers
	lruHits     atomic.Uint64
	lruMisses   atomic.Uint64
	storeHits   atomic.Uint64
	storeMisses atomic.Uint64
}

func NewDatasetCache(backing store.Store, size int, ttl time.Duration) (*DatasetCache, error) {
	lruCache, err := lru.New[string, *LRUCacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}

	return &DatasetCache{
		lru:     lruCache,
		backing: backing,
		ttl:     ttl,
		clock:   clockwork.NewRealClock(),
	}, nil
}

func cacheKey(stationID, category string) string {
	return fmt.Sprintf("%s:%s", stationID, category)
}

// Get returns the dataset for a station and category, trying the LRU first
// and the store second. Returns (nil, nil) when neither has it.
func (c *DatasetCache) Get(ctx context.Context, stationID, category string) (*models.Dataset, error) {
	key := cacheKey(stationID, category)
	if entry, ok := c.lru.Get(key); ok {
		if c.clock.Now().Before(entry.ExpiresAt) {
			c.lruHits.Add(1)
			return entry.Data, nil
		}
		c.lru.Remove(key)
	}
	c.lruMisses.Add(1)

	ds, err := c.backing.Load(ctx, stationID, category)
	if err != nil {
		return nil, fmt.Errorf("loading dataset from store: %w", err)
	}

	if ds != nil {
		c.storeHits.Add(1)
		c.lru.Add(key, &LRUCacheEntry{
			Data:      ds,
			ExpiresAt: c.clock.Now().Add(c.ttl),
		})
		return ds, nil
	}
	c.storeMisses.Add(1)

	return nil, nil
}

// Put saves the dataset to the store and refreshes the LRU entry.
func (c *DatasetCache) Put(ctx context.Context, stationID, category string, ds *models.Dataset) error {
	if err := c.backing.Save(ctx, stationID, category, ds); err != nil {
		return err
	}

	c.lru.Add(cacheKey(stationID, category), &LRUCacheEntry{
		Data:      ds,
		ExpiresAt: c.clock.Now().Add(c.ttl),
	})
	return nil
}

// Stats returns cache hit/miss counts.
func (c *DatasetCache) Stats() map[string]uint64 {
	return map[string]uint64{
		"lru_hits":     c.lruHits.Load(),
		"lru_misses":   c.lruMisses.Load(),
		"store_hits":   c.storeHits.Load(),
		"store_misses": c.storeMisses.Load(),
	}
}

// Clear removes all entries from the LRU cache.
func (c *DatasetCache) Clear() {
	c.lru.Purge()
}
