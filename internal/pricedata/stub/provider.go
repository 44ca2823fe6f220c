package stub

import (
	"context"
	"sort"
	"sync"
	"time"

	"mining-intel/internal/domain"
)

// Provider returns fixed in-memory price series for testing.
// Implements pricedata.Provider.
type Provider struct {
	mu     sync.Mutex
	series map[string][]domain.PricePoint
	errs   map[string]error
}

// NewProvider creates a stub provider with the given per-symbol series.
func NewProvider(series map[string][]domain.PricePoint) *Provider {
	if series == nil {
		series = make(map[string][]domain.PricePoint)
	}
	return &Provider{
		series: series,
		errs:   make(map[string]error),
	}
}

// SetSeries replaces the series for a symbol.
func (p *Provider) SetSeries(symbol string, points []domain.PricePoint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.series[symbol] = points
}

// FailSymbol makes queries for symbol return err.
func (p *Provider) FailSymbol(symbol string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[symbol] = err
}

// GetSeries returns copies of points within [from, to) in ascending order.
func (p *Provider) GetSeries(_ context.Context, symbol string, from, to time.Time) ([]domain.PricePoint, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.errs[symbol]; err != nil {
		return nil, err
	}

	var result []domain.PricePoint
	for _, pt := range p.series[symbol] {
		if !pt.Timestamp.Before(from) && pt.Timestamp.Before(to) {
			result = append(result, pt)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	return result, nil
}
