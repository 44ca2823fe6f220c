package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"mining-intel/internal/domain"
	"mining-intel/internal/storage"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testEvent(id string, priority float64, published time.Time) *domain.Event {
	return &domain.Event{
		ID:            id,
		Headline:      "headline " + id,
		SourceID:      "source-1",
		PublishedAt:   published,
		PriorityScore: priority,
	}
}

func TestEventStore_InsertAndGet(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	e := testEvent("evt1", 80, baseTime)
	e.CommodityImpact = map[string]float64{"copper": 70}

	if err := store.Insert(ctx, e); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}

	got, err := store.GetByID(ctx, "evt1")
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if got.Headline != e.Headline || got.PriorityScore != 80 {
		t.Errorf("unexpected event %+v", got)
	}
	if got.CommodityImpact["copper"] != 70 {
		t.Errorf("expected commodity impact preserved, got %v", got.CommodityImpact)
	}
}

func TestEventStore_DuplicateInsert(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testEvent("evt1", 80, baseTime)); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}
	err := store.Insert(ctx, testEvent("evt1", 90, baseTime))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestEventStore_NotFound(t *testing.T) {
	_, err := NewEventStore().GetByID(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEventStore_InvalidInput(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for nil event, got %v", err)
	}
	if err := store.Insert(ctx, &domain.Event{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty id, got %v", err)
	}
}

func TestEventStore_GetByTimeRange(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	events := []*domain.Event{
		testEvent("evt1", 90, baseTime),
		testEvent("evt2", 70, baseTime.Add(time.Hour)),
		testEvent("evt3", 50, baseTime.Add(2*time.Hour)),    // below min priority
		testEvent("evt4", 95, baseTime.Add(-24*time.Hour)),  // outside range
	}
	for _, e := range events {
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("unexpected insert error: %v", err)
		}
	}

	got, err := store.GetByTimeRange(ctx, baseTime, baseTime.Add(3*time.Hour), 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	// Priority descending.
	if got[0].ID != "evt1" || got[1].ID != "evt2" {
		t.Errorf("expected evt1, evt2, got %s, %s", got[0].ID, got[1].ID)
	}
}

func TestEventStore_GetByTimeRange_PriorityTieOrdersByPublishedDesc(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	if err := store.Insert(ctx, testEvent("older", 80, baseTime)); err != nil {
		t.Fatal(err)
	}
	if err := store.Insert(ctx, testEvent("newer", 80, baseTime.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetByTimeRange(ctx, baseTime, baseTime.Add(2*time.Hour), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0].ID != "newer" || got[1].ID != "older" {
		t.Errorf("expected newer first on priority tie, got %s, %s", got[0].ID, got[1].ID)
	}
}

func TestEventStore_GetBySource(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	e1 := testEvent("evt1", 80, baseTime.Add(time.Hour))
	e2 := testEvent("evt2", 70, baseTime)
	e3 := testEvent("evt3", 60, baseTime)
	e3.SourceID = "source-2"

	for _, e := range []*domain.Event{e1, e2, e3} {
		if err := store.Insert(ctx, e); err != nil {
			t.Fatalf("unexpected insert error: %v", err)
		}
	}

	got, err := store.GetBySource(ctx, "source-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	// Published ascending.
	if got[0].ID != "evt2" || got[1].ID != "evt1" {
		t.Errorf("expected evt2, evt1, got %s, %s", got[0].ID, got[1].ID)
	}
}

func TestEventStore_CopyIsolation(t *testing.T) {
	store := NewEventStore()
	ctx := context.Background()

	e := testEvent("evt1", 80, baseTime)
	e.CommodityImpact = map[string]float64{"copper": 70}
	if err := store.Insert(ctx, e); err != nil {
		t.Fatalf("unexpected insert error: %v", err)
	}

	// Mutating the inserted value must not reach the store.
	e.CommodityImpact["copper"] = 0
	e.Headline = "mutated"

	got, err := store.GetByID(ctx, "evt1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CommodityImpact["copper"] != 70 || got.Headline != "headline evt1" {
		t.Errorf("store leaked caller mutation: %+v", got)
	}

	// Mutating a returned value must not reach the store either.
	got.CommodityImpact["copper"] = 1
	again, _ := store.GetByID(ctx, "evt1")
	if again.CommodityImpact["copper"] != 70 {
		t.Errorf("store leaked reader mutation: %v", again.CommodityImpact)
	}
}
