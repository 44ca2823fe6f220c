package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"mining-intel/internal/domain"
	"mining-intel/internal/storage"
)

// PriceSeriesStore is an in-memory implementation of storage.PriceSeriesStore.
type PriceSeriesStore struct {
	mu   sync.RWMutex
	data map[string]map[int64]domain.PricePoint // symbol → unix ms → point
}

// NewPriceSeriesStore creates a new in-memory price series store.
func NewPriceSeriesStore() *PriceSeriesStore {
	return &PriceSeriesStore{
		data: make(map[string]map[int64]domain.PricePoint),
	}
}

// InsertBulk adds points for a symbol. Duplicate (symbol, timestamp) pairs
// are silently deduplicated, last write wins.
func (s *PriceSeriesStore) InsertBulk(_ context.Context, symbol string, points []domain.PricePoint) error {
	if symbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	series, ok := s.data[symbol]
	if !ok {
		series = make(map[int64]domain.PricePoint, len(points))
		s.data[symbol] = series
	}
	for _, p := range points {
		series[p.Timestamp.UnixMilli()] = p
	}
	return nil
}

// GetByRange retrieves points for a symbol within [from, to) ordered by
// timestamp ASC. An empty slice means no data, not an error.
func (s *PriceSeriesStore) GetByRange(_ context.Context, symbol string, from, to time.Time) ([]domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.PricePoint
	for _, p := range s.data[symbol] {
		if p.Timestamp.Before(from) || !p.Timestamp.Before(to) {
			continue
		}
		result = append(result, p)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.PriceSeriesStore = (*PriceSeriesStore)(nil)
