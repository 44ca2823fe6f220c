package memory

import (
	"context"
	"errors"
	"testing"

	"mining-intel/internal/domain"
	"mining-intel/internal/storage"
)

func testResult(eventID string, overall float64) *domain.CorrelationResult {
	return &domain.CorrelationResult{
		EventID:             eventID,
		AnalyzedAt:          baseTime,
		OverallImpactScore:  overall,
		CorrelationStrength: domain.CorrelationModerate,
	}
}

func TestCorrelationStore_InsertAndGet(t *testing.T) {
	store := NewCorrelationStore()
	ctx := context.Background()

	r := testResult("evt1", 42)
	r.SecondaryEffects = []string{"Policy uncertainty impact"}

	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}

	got, err := store.GetByEventID(ctx, "evt1")
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if got.OverallImpactScore != 42 || len(got.SecondaryEffects) != 1 {
		t.Errorf("unexpected result %+v", got)
	}
}

func TestCorrelationStore_DuplicateInsert(t *testing.T) {
	store := NewCorrelationStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testResult("evt1", 42)); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}
	err := store.Insert(ctx, testResult("evt1", 50))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestCorrelationStore_NotFound(t *testing.T) {
	_, err := NewCorrelationStore().GetByEventID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCorrelationStore_InvalidInput(t *testing.T) {
	store := NewCorrelationStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil result, got %v", err)
	}
	if err := store.Insert(ctx, &domain.CorrelationResult{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty event id, got %v", err)
	}
}

func TestCorrelationStore_GetTop(t *testing.T) {
	store := NewCorrelationStore()
	ctx := context.Background()

	for _, r := range []*domain.CorrelationResult{
		testResult("evt1", 10),
		testResult("evt2", 90),
		testResult("evt3", 50),
		testResult("evt0", 90), // ties broken by event id
	} {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("unexpected insert error: %v", err)
		}
	}

	got, err := store.GetTop(ctx, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"evt0", "evt2", "evt3"}
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].EventID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, got[i].EventID)
		}
	}
}

func TestCorrelationStore_CopyIsolation(t *testing.T) {
	store := NewCorrelationStore()
	ctx := context.Background()

	r := testResult("evt1", 42)
	r.SecondaryEffects = []string{"original"}
	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}

	r.SecondaryEffects[0] = "mutated"

	got, err := store.GetByEventID(ctx, "evt1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SecondaryEffects[0] != "original" {
		t.Errorf("store leaked caller mutation: %v", got.SecondaryEffects)
	}
}
