package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mining-intel/internal/domain"
	"mining-intel/internal/storage"
)

// createTestEvent inserts the parent event a correlation row references.
func createTestEvent(t *testing.T, ctx context.Context, pool *Pool, id string) string {
	t.Helper()
	require.NoError(t, NewEventStore(pool).Insert(ctx, testEvent(id, 85, testPublished)))
	return id
}

func testCorrelation(eventID string, overall float64) *domain.CorrelationResult {
	return &domain.CorrelationResult{
		EventID:    eventID,
		AnalyzedAt: testPublished.Add(24 * time.Hour),
		InstrumentImpacts: []domain.InstrumentImpact{
			{Symbol: "TECK-B.TO", Name: "Teck Resources Limited", PriceBefore: 50, PriceAfter: 48, ChangePct: -4, VolumeRatio: 1.2, ImpactScore: 80, Confidence: 0.9},
		},
		CommodityImpacts: []domain.CommodityImpactResult{
			{Commodity: "copper", PriceBefore: 100, PriceAfter: 95, ChangePct: -5, ImpactScore: 375, Confidence: 1.0},
		},
		OverallImpactScore:  overall,
		CorrelationStrength: domain.CorrelationStrong,
		PrimaryImpact:       "Copper decline of 5.0%",
		SecondaryEffects:    []string{"Policy uncertainty impact"},
		MarketNarrative:     "Following the tariff announcement, copper declined 5.0%.",
	}
}

func TestCorrelationStore_InsertAndGetByEventID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	eventID := createTestEvent(t, ctx, pool, "evt-1")
	store := NewCorrelationStore(pool)

	r := testCorrelation(eventID, 64)
	require.NoError(t, store.Insert(ctx, r))

	got, err := store.GetByEventID(ctx, eventID)
	require.NoError(t, err)

	assert.Equal(t, r.EventID, got.EventID)
	assert.True(t, got.AnalyzedAt.Equal(r.AnalyzedAt))
	assert.Equal(t, r.InstrumentImpacts, got.InstrumentImpacts)
	assert.Equal(t, r.CommodityImpacts, got.CommodityImpacts)
	assert.InDelta(t, r.OverallImpactScore, got.OverallImpactScore, 0.0001)
	assert.Equal(t, r.CorrelationStrength, got.CorrelationStrength)
	assert.Equal(t, r.PrimaryImpact, got.PrimaryImpact)
	assert.Equal(t, r.SecondaryEffects, got.SecondaryEffects)
	assert.Equal(t, r.MarketNarrative, got.MarketNarrative)
}

func TestCorrelationStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	eventID := createTestEvent(t, ctx, pool, "evt-1")
	store := NewCorrelationStore(pool)

	require.NoError(t, store.Insert(ctx, testCorrelation(eventID, 64)))

	err := store.Insert(ctx, testCorrelation(eventID, 70))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestCorrelationStore_GetByEventIDNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewCorrelationStore(pool).GetByEventID(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCorrelationStore_GetTop(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewCorrelationStore(pool)

	for _, tc := range []struct {
		eventID string
		overall float64
	}{
		{"evt-low", 10},
		{"evt-high", 90},
		{"evt-mid", 50},
		{"evt-also-high", 90}, // ties broken by event id
	} {
		createTestEvent(t, ctx, pool, tc.eventID)
		require.NoError(t, store.Insert(ctx, testCorrelation(tc.eventID, tc.overall)))
	}

	got, err := store.GetTop(ctx, 3)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, "evt-also-high", got[0].EventID)
	assert.Equal(t, "evt-high", got[1].EventID)
	assert.Equal(t, "evt-mid", got[2].EventID)
}
