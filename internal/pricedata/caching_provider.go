package pricedata

import (
	"context"
	"log"
	"time"

	"mining-intel/internal/domain"
	"mining-intel/internal/storage"
)

// CachingProvider reads from a local store first and fills misses from a
// remote provider, persisting fetched points back into the store.
type CachingProvider struct {
	store  storage.PriceSeriesStore
	remote Provider
	logger *log.Logger
}

// NewCachingProvider creates a fill-through cache over remote.
func NewCachingProvider(store storage.PriceSeriesStore, remote Provider, logger *log.Logger) *CachingProvider {
	if logger == nil {
		logger = log.Default()
	}
	return &CachingProvider{
		store:  store,
		remote: remote,
		logger: logger,
	}
}

var _ Provider = (*CachingProvider)(nil)

// GetSeries returns cached points when present, otherwise fetches the range
// from the remote provider and caches it. A cache write failure does not
// fail the query; the fetched points are still returned.
func (p *CachingProvider) GetSeries(ctx context.Context, symbol string, from, to time.Time) ([]domain.PricePoint, error) {
	cached, err := p.store.GetByRange(ctx, symbol, from, to)
	if err == nil && len(cached) > 0 {
		return cached, nil
	}
	if err != nil {
		p.logger.Printf("[pricedata] cache read for %s failed, falling back to remote: %v", symbol, err)
	}

	points, err := p.remote.GetSeries(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}

	if len(points) > 0 {
		if err := p.store.InsertBulk(ctx, symbol, points); err != nil {
			p.logger.Printf("[pricedata] cache write for %s failed: %v", symbol, err)
		}
	}
	return points, nil
}
