package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/driftline/ndbc/internal/models"
)

// MetadataCache holds station metadata with a TTL. Station descriptions
// change rarely, so re-fetching the station page per request is wasted load
// on the provider.
type MetadataCache struct {
	entries map[string]metadataEntry
	ttl     time.Duration
	clock   clockwork.Clock
	mu      sync.RWMutex
}

type metadataEntry struct {
	meta    models.StationMetadata
	fetched time.Time
}

func NewMetadataCache(ttl time.Duration) *MetadataCache {
	return &MetadataCache{
		entries: make(map[string]metadataEntry),
		ttl:     ttl,
		clock:   clockwork.NewRealClock(),
	}
}

// Get returns the cached metadata for a station, or nil when absent or expired.
func (c *MetadataCache) Get(stationID string) *models.StationMetadata {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[stationID]
	if !ok || c.clock.Since(entry.fetched) > c.ttl {
		return nil
	}
	meta := entry.meta
	return &meta
}

// Set stores metadata for a station.
func (c *MetadataCache) Set(stationID string, meta models.StationMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[stationID] = metadataEntry{meta: meta, fetched: c.clock.Now()}
}
