package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"mining-intel/internal/domain"
	"mining-intel/internal/storage"
)

// EventStore implements storage.EventStore using PostgreSQL.
type EventStore struct {
	pool *Pool
}

// NewEventStore creates a new EventStore.
func NewEventStore(pool *Pool) *EventStore {
	return &EventStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EventStore = (*EventStore)(nil)

// Insert adds a new event. Returns ErrDuplicateKey if the id exists.
func (s *EventStore) Insert(ctx context.Context, e *domain.Event) error {
	commodityJSON, err := json.Marshal(e.CommodityImpact)
	if err != nil {
		return fmt.Errorf("marshal commodity impact: %w", err)
	}
	orgsJSON, err := json.Marshal(e.Organizations)
	if err != nil {
		return fmt.Errorf("marshal organizations: %w", err)
	}
	keywordsJSON, err := json.Marshal(e.Keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}

	query := `
		INSERT INTO events (
			event_id, headline, summary, url, source_id, published_at,
			priority_score, event_type, impact_level, regional_relevance,
			commodity_impact, organizations, keywords, sentiment
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = s.pool.Exec(ctx, query,
		e.ID,
		e.Headline,
		e.Summary,
		e.URL,
		e.SourceID,
		e.PublishedAt,
		e.PriorityScore,
		string(e.EventType),
		string(e.ImpactLevel),
		e.RegionalRelevance,
		commodityJSON,
		orgsJSON,
		keywordsJSON,
		string(e.Sentiment),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by its id. Returns ErrNotFound if not exists.
func (s *EventStore) GetByID(ctx context.Context, eventID string) (*domain.Event, error) {
	query := selectEventColumns + ` WHERE event_id = $1`

	row := s.pool.QueryRow(ctx, query, eventID)
	e, err := scanEvent(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get event by id: %w", err)
	}
	return e, nil
}

// GetByTimeRange retrieves events published within [start, end] (inclusive)
// with priority at or above minPriority, ordered by priority DESC,
// published DESC.
func (s *EventStore) GetByTimeRange(ctx context.Context, start, end time.Time, minPriority float64) ([]*domain.Event, error) {
	query := selectEventColumns + `
		WHERE published_at >= $1 AND published_at <= $2 AND priority_score >= $3
		ORDER BY priority_score DESC, published_at DESC, event_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end, minPriority)
	if err != nil {
		return nil, fmt.Errorf("get events by time range: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetBySource retrieves all events from one source, ordered by published ASC.
func (s *EventStore) GetBySource(ctx context.Context, sourceID string) ([]*domain.Event, error) {
	query := selectEventColumns + `
		WHERE source_id = $1
		ORDER BY published_at ASC, event_id ASC
	`

	rows, err := s.pool.Query(ctx, query, sourceID)
	if err != nil {
		return nil, fmt.Errorf("get events by source: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

const selectEventColumns = `
	SELECT event_id, headline, summary, url, source_id, published_at,
	       priority_score, event_type, impact_level, regional_relevance,
	       commodity_impact, organizations, keywords, sentiment
	FROM events
`

// scanEvent scans a single row into an Event.
func scanEvent(row pgx.Row) (*domain.Event, error) {
	var (
		e             domain.Event
		eventTypeStr  string
		impactStr     string
		sentimentStr  string
		commodityJSON []byte
		orgsJSON      []byte
		keywordsJSON  []byte
	)

	err := row.Scan(
		&e.ID,
		&e.Headline,
		&e.Summary,
		&e.URL,
		&e.SourceID,
		&e.PublishedAt,
		&e.PriorityScore,
		&eventTypeStr,
		&impactStr,
		&e.RegionalRelevance,
		&commodityJSON,
		&orgsJSON,
		&keywordsJSON,
		&sentimentStr,
	)
	if err != nil {
		return nil, err
	}

	e.EventType = domain.EventType(eventTypeStr)
	e.ImpactLevel = domain.ImpactLevel(impactStr)
	e.Sentiment = domain.Sentiment(sentimentStr)
	if err := json.Unmarshal(commodityJSON, &e.CommodityImpact); err != nil {
		return nil, fmt.Errorf("unmarshal commodity impact: %w", err)
	}
	if err := json.Unmarshal(orgsJSON, &e.Organizations); err != nil {
		return nil, fmt.Errorf("unmarshal organizations: %w", err)
	}
	if err := json.Unmarshal(keywordsJSON, &e.Keywords); err != nil {
		return nil, fmt.Errorf("unmarshal keywords: %w", err)
	}
	return &e, nil
}

// scanEvents scans multiple rows into a slice of Event.
func scanEvents(rows pgx.Rows) ([]*domain.Event, error) {
	var events []*domain.Event

	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event rows: %w", err)
	}

	return events, nil
}
