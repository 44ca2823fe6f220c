package reporting

import (
	"time"

	"mining-intel/internal/aggregate"
	"mining-intel/internal/domain"
)

// Report is the intelligence brief produced after a pipeline run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	WindowStart time.Time
	WindowEnd   time.Time

	// Batch summary
	Summary BatchSummary

	// Top events (sorted by priority descending)
	TopEvents []EventRow

	// Per-commodity rollups (sorted by total impact descending)
	Rollups []aggregate.CommodityRollup

	// Source failures carried through from the fetch phase
	SourceFailures []domain.SourceFailure
	Incomplete     bool
}

// BatchSummary counts what the run processed.
type BatchSummary struct {
	TotalEvents     int
	CriticalEvents  int
	HighEvents      int
	CorrelatedCount int
	StrongCount     int
}

// EventRow is one event in the report's top-events table.
type EventRow struct {
	ShortID       string
	Headline      string
	SourceID      string
	PublishedAt   time.Time
	PriorityScore float64
	EventType     domain.EventType
	ImpactLevel   domain.ImpactLevel
	Sentiment     domain.Sentiment

	// Correlation fields, zero-valued when the event was not analyzed
	OverallImpact float64
	Strength      domain.CorrelationStrength
	PrimaryImpact string
	Narrative     string
}
