package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"mining-intel/internal/domain"
	"mining-intel/internal/storage"
)

// EventStore is an in-memory implementation of storage.EventStore.
type EventStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Event // keyed by event id
}

// NewEventStore creates a new in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{
		data: make(map[string]*domain.Event),
	}
}

// Insert adds a new event. Returns ErrDuplicateKey if the id exists.
func (s *EventStore) Insert(_ context.Context, e *domain.Event) error {
	if e == nil || e.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[e.ID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[e.ID] = copyEvent(e)
	return nil
}

// GetByID retrieves an event by its id. Returns ErrNotFound if not exists.
func (s *EventStore) GetByID(_ context.Context, eventID string) (*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.data[eventID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyEvent(e), nil
}

// GetByTimeRange retrieves events published within [start, end] (inclusive)
// with PriorityScore >= minPriority, ordered by priority DESC, published DESC.
func (s *EventStore) GetByTimeRange(_ context.Context, start, end time.Time, minPriority float64) ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Event
	for _, e := range s.data {
		if e.PublishedAt.Before(start) || e.PublishedAt.After(end) {
			continue
		}
		if e.PriorityScore < minPriority {
			continue
		}
		result = append(result, copyEvent(e))
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].PriorityScore != result[j].PriorityScore {
			return result[i].PriorityScore > result[j].PriorityScore
		}
		return result[i].PublishedAt.After(result[j].PublishedAt)
	})

	return result, nil
}

// GetBySource retrieves all events from one source, ordered by published ASC.
func (s *EventStore) GetBySource(_ context.Context, sourceID string) ([]*domain.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Event
	for _, e := range s.data {
		if e.SourceID == sourceID {
			result = append(result, copyEvent(e))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].PublishedAt.Before(result[j].PublishedAt)
	})

	return result, nil
}

// copyEvent deep-copies an event so stored state cannot be mutated from
// outside.
func copyEvent(e *domain.Event) *domain.Event {
	eventCopy := *e
	if e.CommodityImpact != nil {
		eventCopy.CommodityImpact = make(map[string]float64, len(e.CommodityImpact))
		for k, v := range e.CommodityImpact {
			eventCopy.CommodityImpact[k] = v
		}
	}
	eventCopy.Organizations = append([]string(nil), e.Organizations...)
	eventCopy.Keywords = append([]string(nil), e.Keywords...)
	return &eventCopy
}

// Verify interface compliance at compile time.
var _ storage.EventStore = (*EventStore)(nil)
