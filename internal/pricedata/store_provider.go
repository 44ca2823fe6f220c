package pricedata

import (
	"context"
	"fmt"
	"time"

	"mining-intel/internal/domain"
	"mining-intel/internal/storage"
)

// StoreProvider serves price series from a local PriceSeriesStore.
type StoreProvider struct {
	store storage.PriceSeriesStore
}

// NewStoreProvider creates a provider backed by the given store.
func NewStoreProvider(store storage.PriceSeriesStore) *StoreProvider {
	return &StoreProvider{store: store}
}

var _ Provider = (*StoreProvider)(nil)

// GetSeries reads points for symbol over [from, to) from the store.
// An empty range is not an error; correlation treats it as no data.
func (p *StoreProvider) GetSeries(ctx context.Context, symbol string, from, to time.Time) ([]domain.PricePoint, error) {
	points, err := p.store.GetByRange(ctx, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSeriesUnavailable, symbol, err)
	}
	return points, nil
}
