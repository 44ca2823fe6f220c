package memory

import (
	"context"
	"sort"
	"sync"

	"mining-intel/internal/domain"
	"mining-intel/internal/storage"
)

// CorrelationStore is an in-memory implementation of storage.CorrelationStore.
type CorrelationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.CorrelationResult // keyed by event id
}

// NewCorrelationStore creates a new in-memory correlation store.
func NewCorrelationStore() *CorrelationStore {
	return &CorrelationStore{
		data: make(map[string]*domain.CorrelationResult),
	}
}

// Insert adds a new result. Returns ErrDuplicateKey if the event was
// already analyzed.
func (s *CorrelationStore) Insert(_ context.Context, r *domain.CorrelationResult) error {
	if r == nil || r.EventID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.EventID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[r.EventID] = copyResult(r)
	return nil
}

// GetByEventID retrieves the result for an event. Returns ErrNotFound if
// the event was never analyzed.
func (s *CorrelationStore) GetByEventID(_ context.Context, eventID string) (*domain.CorrelationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[eventID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyResult(r), nil
}

// GetTop retrieves up to limit results ordered by overall impact DESC.
func (s *CorrelationStore) GetTop(_ context.Context, limit int) ([]*domain.CorrelationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.CorrelationResult, 0, len(s.data))
	for _, r := range s.data {
		result = append(result, copyResult(r))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].OverallImpactScore != result[j].OverallImpactScore {
			return result[i].OverallImpactScore > result[j].OverallImpactScore
		}
		return result[i].EventID < result[j].EventID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func copyResult(r *domain.CorrelationResult) *domain.CorrelationResult {
	resultCopy := *r
	resultCopy.InstrumentImpacts = append([]domain.InstrumentImpact(nil), r.InstrumentImpacts...)
	resultCopy.CommodityImpacts = append([]domain.CommodityImpactResult(nil), r.CommodityImpacts...)
	resultCopy.SecondaryEffects = append([]string(nil), r.SecondaryEffects...)
	return &resultCopy
}

// Verify interface compliance at compile time.
var _ storage.CorrelationStore = (*CorrelationStore)(nil)
