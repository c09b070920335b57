package store

import (
	"context"
	"sync"

	"github.com/driftline/ndbc/internal/models"
)

// MemoryStore keeps datasets in process memory. Used by tests and by the
// scrape CLI's dry-run mode; datasets are copied through the wire codec on
// both paths so it round-trips exactly like the durable backends.
type MemoryStore struct {
	records map[string]map[string]datasetRecord // map[stationID]map[category]
	mu      sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]map[string]datasetRecord),
	}
}

func (s *MemoryStore) Load(_ context.Context, stationID, category string) (*models.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byCategory, ok := s.records[stationID]
	if !ok {
		return nil, nil
	}
	rec, ok := byCategory[category]
	if !ok {
		return nil, nil
	}
	return rec.decode(), nil
}

func (s *MemoryStore) Save(_ context.Context, stationID, category string, ds *models.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.records[stationID] == nil {
		s.records[stationID] = make(map[string]datasetRecord)
	}
	s.records[stationID][category] = encodeDataset(ds, 0)
	return nil
}
