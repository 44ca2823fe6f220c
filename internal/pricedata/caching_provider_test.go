package pricedata

import (
	"context"
	"errors"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"mining-intel/internal/domain"
	"mining-intel/internal/storage/memory"
)

// countingProvider wraps another provider and counts calls.
type countingProvider struct {
	inner Provider
	calls atomic.Int32
}

func (p *countingProvider) GetSeries(ctx context.Context, symbol string, from, to time.Time) ([]domain.PricePoint, error) {
	p.calls.Add(1)
	return p.inner.GetSeries(ctx, symbol, from, to)
}

// fixedProvider returns the same points for every query.
type fixedProvider struct {
	points []domain.PricePoint
	err    error
}

func (p fixedProvider) GetSeries(context.Context, string, time.Time, time.Time) ([]domain.PricePoint, error) {
	return p.points, p.err
}

func TestCachingProvider_FillThrough(t *testing.T) {
	store := memory.NewPriceSeriesStore()
	remote := &countingProvider{inner: fixedProvider{points: []domain.PricePoint{
		{Timestamp: seriesFrom.Add(time.Hour), Close: 100},
	}}}
	p := NewCachingProvider(store, remote, log.New(io.Discard, "", 0))
	ctx := context.Background()

	// Miss: served by the remote and written back.
	points, err := p.GetSeries(ctx, "CPER", seriesFrom, seriesTo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 1 || remote.calls.Load() != 1 {
		t.Fatalf("expected 1 remote fetch, got %d points, %d calls", len(points), remote.calls.Load())
	}

	// Hit: the second query never reaches the remote.
	points, err = p.GetSeries(ctx, "CPER", seriesFrom, seriesTo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("expected cached point, got %d", len(points))
	}
	if remote.calls.Load() != 1 {
		t.Errorf("expected cache hit, remote called %d times", remote.calls.Load())
	}
}

func TestCachingProvider_RemoteErrorPropagates(t *testing.T) {
	store := memory.NewPriceSeriesStore()
	remoteErr := errors.New("remote down")
	p := NewCachingProvider(store, fixedProvider{err: remoteErr}, log.New(io.Discard, "", 0))

	_, err := p.GetSeries(context.Background(), "CPER", seriesFrom, seriesTo)
	if !errors.Is(err, remoteErr) {
		t.Fatalf("expected remote error, got %v", err)
	}
}

func TestCachingProvider_EmptyRemoteResultNotCached(t *testing.T) {
	store := memory.NewPriceSeriesStore()
	remote := &countingProvider{inner: fixedProvider{}}
	p := NewCachingProvider(store, remote, log.New(io.Discard, "", 0))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		points, err := p.GetSeries(ctx, "CPER", seriesFrom, seriesTo)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(points) != 0 {
			t.Fatalf("expected no points, got %d", len(points))
		}
	}
	// Nothing to cache, so every query goes remote.
	if remote.calls.Load() != 2 {
		t.Errorf("expected 2 remote calls, got %d", remote.calls.Load())
	}
}

func TestStoreProvider_GetSeries(t *testing.T) {
	store := memory.NewPriceSeriesStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, "GLD", []domain.PricePoint{
		{Timestamp: seriesFrom.Add(time.Hour), Close: 100},
		{Timestamp: seriesTo.Add(time.Hour), Close: 200}, // outside range
	})
	if err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}

	p := NewStoreProvider(store)

	points, err := p.GetSeries(ctx, "GLD", seriesFrom, seriesTo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 1 || points[0].Close != 100 {
		t.Errorf("unexpected points %+v", points)
	}

	// No data is an empty result, not an error.
	points, err = p.GetSeries(ctx, "UNKNOWN", seriesFrom, seriesTo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(points) != 0 {
		t.Errorf("expected empty series, got %+v", points)
	}
}
