// Package storage defines the persistence interfaces for the pipeline.
// The pipeline runs in a reduced stateless mode when stores are absent,
// operating purely on the current batch.
package storage

import (
	"context"
	"time"

	"mining-intel/internal/domain"
)

// EventStore provides access to scored event storage. The dedup window and
// batch-to-batch idempotency are built on it.
type EventStore interface {
	// Insert adds a new event. Returns ErrDuplicateKey if the id exists.
	Insert(ctx context.Context, e *domain.Event) error

	// GetByID retrieves an event by its id. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, eventID string) (*domain.Event, error)

	// GetByTimeRange retrieves events published within [start, end]
	// (inclusive) with PriorityScore >= minPriority, ordered by
	// priority DESC, published DESC.
	GetByTimeRange(ctx context.Context, start, end time.Time, minPriority float64) ([]*domain.Event, error)

	// GetBySource retrieves all events from one source, ordered by published ASC.
	GetBySource(ctx context.Context, sourceID string) ([]*domain.Event, error)
}

// CorrelationStore provides access to correlation result storage.
type CorrelationStore interface {
	// Insert adds a new result. Returns ErrDuplicateKey if the event was
	// already analyzed.
	Insert(ctx context.Context, r *domain.CorrelationResult) error

	// GetByEventID retrieves the result for an event. Returns ErrNotFound
	// if the event was never analyzed.
	GetByEventID(ctx context.Context, eventID string) (*domain.CorrelationResult, error)

	// GetTop retrieves up to limit results ordered by overall impact DESC.
	GetTop(ctx context.Context, limit int) ([]*domain.CorrelationResult, error)
}

// PriceSeriesStore caches provider price series so correlation runs can be
// replayed without re-querying the provider.
type PriceSeriesStore interface {
	// InsertBulk adds points for a symbol. Duplicate (symbol, timestamp)
	// pairs are silently deduplicated by the backend.
	InsertBulk(ctx context.Context, symbol string, points []domain.PricePoint) error

	// GetByRange retrieves points for a symbol within [from, to)
	// ordered by timestamp ASC. An empty slice means no data, not an error.
	GetByRange(ctx context.Context, symbol string, from, to time.Time) ([]domain.PricePoint, error)
}
