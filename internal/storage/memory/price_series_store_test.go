package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"mining-intel/internal/domain"
	"mining-intel/internal/storage"
)

func point(offset time.Duration, close float64) domain.PricePoint {
	return domain.PricePoint{Timestamp: baseTime.Add(offset), Close: close}
}

func TestPriceSeriesStore_InsertAndGetRange(t *testing.T) {
	store := NewPriceSeriesStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, "CPER", []domain.PricePoint{
		point(2*time.Hour, 102),
		point(0, 100),
		point(time.Hour, 101),
		point(5*time.Hour, 105), // outside query range
	})
	if err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}

	got, err := store.GetByRange(ctx, "CPER", baseTime, baseTime.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("expected 3 points, got %d", len(got))
	}
	// Ascending by timestamp regardless of insert order.
	for i, want := range []float64{100, 101, 102} {
		if got[i].Close != want {
			t.Errorf("position %d: expected close %f, got %f", i, want, got[i].Close)
		}
	}
}

func TestPriceSeriesStore_RangeBoundsHalfOpen(t *testing.T) {
	store := NewPriceSeriesStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, "GLD", []domain.PricePoint{point(0, 100), point(time.Hour, 101)}); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}

	// [from, to): the from bound is included, the to bound is not.
	got, err := store.GetByRange(ctx, "GLD", baseTime, baseTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Close != 100 {
		t.Errorf("expected only the from-bound point, got %+v", got)
	}
}

func TestPriceSeriesStore_DuplicateTimestampLastWriteWins(t *testing.T) {
	store := NewPriceSeriesStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, "GLD", []domain.PricePoint{point(0, 100)}); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}
	if err := store.InsertBulk(ctx, "GLD", []domain.PricePoint{point(0, 200)}); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}

	got, err := store.GetByRange(ctx, "GLD", baseTime, baseTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Close != 200 {
		t.Errorf("expected single deduplicated point with close 200, got %+v", got)
	}
}

func TestPriceSeriesStore_EmptyResults(t *testing.T) {
	store := NewPriceSeriesStore()
	ctx := context.Background()

	got, err := store.GetByRange(ctx, "UNKNOWN", baseTime, baseTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("expected no error for unknown symbol, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty result, got %+v", got)
	}
}

func TestPriceSeriesStore_InvalidInput(t *testing.T) {
	err := NewPriceSeriesStore().InsertBulk(context.Background(), "", []domain.PricePoint{point(0, 100)})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty symbol, got %v", err)
	}
}
