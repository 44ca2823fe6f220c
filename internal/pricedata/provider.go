// Package pricedata supplies historical price series for instruments and
// commodities. Providers answer range queries used by correlation analysis;
// callers never care whether a series came from a remote API, a local
// store, or a cache in front of both.
package pricedata

import (
	"context"
	"errors"
	"time"

	"mining-intel/internal/domain"
)

// ErrSeriesUnavailable indicates no series could be produced for a symbol.
var ErrSeriesUnavailable = errors.New("pricedata: series unavailable")

// Provider answers price-series range queries.
// Points are returned in ascending timestamp order over [from, to).
type Provider interface {
	GetSeries(ctx context.Context, symbol string, from, to time.Time) ([]domain.PricePoint, error)
}
