package clickhouse

import (
	"context"
	"fmt"
	"time"

	"mining-intel/internal/domain"
	"mining-intel/internal/storage"
)

// PriceSeriesStore implements storage.PriceSeriesStore using ClickHouse.
// The backing table is a ReplacingMergeTree keyed on (symbol, timestamp_ms),
// so re-inserting the same point is harmless.
type PriceSeriesStore struct {
	conn *Conn
}

// NewPriceSeriesStore creates a new PriceSeriesStore.
func NewPriceSeriesStore(conn *Conn) *PriceSeriesStore {
	return &PriceSeriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceSeriesStore = (*PriceSeriesStore)(nil)

// InsertBulk adds points for a symbol. Duplicate (symbol, timestamp) pairs
// are deduplicated by the ReplacingMergeTree on merge.
func (s *PriceSeriesStore) InsertBulk(ctx context.Context, symbol string, points []domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_series (symbol, timestamp_ms, close, volume)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(symbol, uint64(p.Timestamp.UnixMilli()), p.Close, p.Volume); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByRange retrieves points for a symbol within [from, to) ordered by
// timestamp ASC. FINAL collapses ReplacingMergeTree duplicates at read time.
func (s *PriceSeriesStore) GetByRange(ctx context.Context, symbol string, from, to time.Time) ([]domain.PricePoint, error) {
	query := `
		SELECT timestamp_ms, close, volume
		FROM price_series FINAL
		WHERE symbol = ? AND timestamp_ms >= ? AND timestamp_ms < ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, symbol, uint64(from.UnixMilli()), uint64(to.UnixMilli()))
	if err != nil {
		return nil, fmt.Errorf("query price series: %w", err)
	}
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var (
			tsMs   uint64
			close  float64
			volume float64
		)
		if err := rows.Scan(&tsMs, &close, &volume); err != nil {
			return nil, fmt.Errorf("scan price point: %w", err)
		}
		points = append(points, domain.PricePoint{
			Timestamp: time.UnixMilli(int64(tsMs)).UTC(),
			Close:     close,
			Volume:    volume,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price rows: %w", err)
	}
	return points, nil
}
