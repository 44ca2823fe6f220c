package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"mining-intel/internal/domain"
	"mining-intel/internal/storage"
)

// CorrelationStore implements storage.CorrelationStore using PostgreSQL.
type CorrelationStore struct {
	pool *Pool
}

// NewCorrelationStore creates a new CorrelationStore.
func NewCorrelationStore(pool *Pool) *CorrelationStore {
	return &CorrelationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CorrelationStore = (*CorrelationStore)(nil)

// Insert adds a new result. Returns ErrDuplicateKey if the event was
// already analyzed.
func (s *CorrelationStore) Insert(ctx context.Context, r *domain.CorrelationResult) error {
	instrumentsJSON, err := json.Marshal(r.InstrumentImpacts)
	if err != nil {
		return fmt.Errorf("marshal instrument impacts: %w", err)
	}
	commoditiesJSON, err := json.Marshal(r.CommodityImpacts)
	if err != nil {
		return fmt.Errorf("marshal commodity impacts: %w", err)
	}
	effectsJSON, err := json.Marshal(r.SecondaryEffects)
	if err != nil {
		return fmt.Errorf("marshal secondary effects: %w", err)
	}

	query := `
		INSERT INTO correlations (
			event_id, analyzed_at, instrument_impacts, commodity_impacts,
			overall_impact_score, correlation_strength,
			primary_impact, secondary_effects, market_narrative
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = s.pool.Exec(ctx, query,
		r.EventID,
		r.AnalyzedAt,
		instrumentsJSON,
		commoditiesJSON,
		r.OverallImpactScore,
		string(r.CorrelationStrength),
		r.PrimaryImpact,
		effectsJSON,
		r.MarketNarrative,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert correlation: %w", err)
	}
	return nil
}

// GetByEventID retrieves the result for an event. Returns ErrNotFound if
// the event was never analyzed.
func (s *CorrelationStore) GetByEventID(ctx context.Context, eventID string) (*domain.CorrelationResult, error) {
	query := selectCorrelationColumns + ` WHERE event_id = $1`

	row := s.pool.QueryRow(ctx, query, eventID)
	r, err := scanCorrelation(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get correlation by event id: %w", err)
	}
	return r, nil
}

// GetTop retrieves up to limit results ordered by overall impact DESC.
func (s *CorrelationStore) GetTop(ctx context.Context, limit int) ([]*domain.CorrelationResult, error) {
	query := selectCorrelationColumns + `
		ORDER BY overall_impact_score DESC, event_id ASC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get top correlations: %w", err)
	}
	defer rows.Close()

	var results []*domain.CorrelationResult
	for rows.Next() {
		r, err := scanCorrelation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan correlation row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate correlation rows: %w", err)
	}
	return results, nil
}

const selectCorrelationColumns = `
	SELECT event_id, analyzed_at, instrument_impacts, commodity_impacts,
	       overall_impact_score, correlation_strength,
	       primary_impact, secondary_effects, market_narrative
	FROM correlations
`

// scanCorrelation scans a single row into a CorrelationResult.
func scanCorrelation(row pgx.Row) (*domain.CorrelationResult, error) {
	var (
		r               domain.CorrelationResult
		strengthStr     string
		instrumentsJSON []byte
		commoditiesJSON []byte
		effectsJSON     []byte
	)

	err := row.Scan(
		&r.EventID,
		&r.AnalyzedAt,
		&instrumentsJSON,
		&commoditiesJSON,
		&r.OverallImpactScore,
		&strengthStr,
		&r.PrimaryImpact,
		&effectsJSON,
		&r.MarketNarrative,
	)
	if err != nil {
		return nil, err
	}

	r.CorrelationStrength = domain.CorrelationStrength(strengthStr)
	if err := json.Unmarshal(instrumentsJSON, &r.InstrumentImpacts); err != nil {
		return nil, fmt.Errorf("unmarshal instrument impacts: %w", err)
	}
	if err := json.Unmarshal(commoditiesJSON, &r.CommodityImpacts); err != nil {
		return nil, fmt.Errorf("unmarshal commodity impacts: %w", err)
	}
	if err := json.Unmarshal(effectsJSON, &r.SecondaryEffects); err != nil {
		return nil, fmt.Errorf("unmarshal secondary effects: %w", err)
	}
	return &r, nil
}
