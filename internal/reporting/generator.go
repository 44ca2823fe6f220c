// Package reporting renders pipeline results as intelligence briefs.
package reporting

import (
	"context"
	"errors"
	"time"

	"mining-intel/internal/aggregate"
	"mining-intel/internal/domain"
	"mining-intel/internal/idhash"
	"mining-intel/internal/orchestrator"
	"mining-intel/internal/storage"
)

// Generator builds reports from stored events and correlations.
type Generator struct {
	eventStore storage.EventStore
	corrStore  storage.CorrelationStore
	topK       int
	now        func() time.Time
}

// NewGenerator creates a report generator over the given stores.
func NewGenerator(eventStore storage.EventStore, corrStore storage.CorrelationStore, topK int) *Generator {
	if topK <= 0 {
		topK = 10
	}
	return &Generator{
		eventStore: eventStore,
		corrStore:  corrStore,
		topK:       topK,
		now:        time.Now,
	}
}

// WithClock overrides the report timestamp clock, for tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds a report over events published within [start, end] with
// priority at or above minPriority.
func (g *Generator) Generate(ctx context.Context, start, end time.Time, minPriority float64) (*Report, error) {
	events, err := g.eventStore.GetByTimeRange(ctx, start, end, minPriority)
	if err != nil {
		return nil, err
	}

	scored := make([]aggregate.Scored, 0, len(events))
	for _, e := range events {
		s := aggregate.Scored{Event: e}
		if g.corrStore != nil {
			corr, err := g.corrStore.GetByEventID(ctx, e.ID)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return nil, err
			}
			s.Correlation = corr
		}
		scored = append(scored, s)
	}

	report := buildReport(scored, g.topK)
	report.GeneratedAt = g.now().UTC()
	report.WindowStart = start
	report.WindowEnd = end
	return report, nil
}

// FromRunResult builds a report directly from a pipeline run, for stateless
// batch mode where no stores exist.
func FromRunResult(result *orchestrator.RunResult, now time.Time) *Report {
	report := buildReport(result.TopEvents, len(result.TopEvents))
	report.GeneratedAt = now.UTC()
	report.Rollups = result.Rollups
	report.SourceFailures = result.SourceFailures
	report.Incomplete = result.Incomplete
	return report
}

func buildReport(scored []aggregate.Scored, topK int) *Report {
	report := &Report{}

	for _, s := range scored {
		if s.Event == nil {
			continue
		}
		report.Summary.TotalEvents++
		switch s.Event.ImpactLevel {
		case domain.ImpactCritical:
			report.Summary.CriticalEvents++
		case domain.ImpactHigh:
			report.Summary.HighEvents++
		}
		if s.Correlation != nil {
			report.Summary.CorrelatedCount++
			if s.Correlation.CorrelationStrength == domain.CorrelationStrong {
				report.Summary.StrongCount++
			}
		}
	}

	for _, s := range aggregate.TopEvents(scored, topK) {
		e := s.Event
		row := EventRow{
			ShortID:       idhash.ShortID(e.ID),
			Headline:      e.Headline,
			SourceID:      e.SourceID,
			PublishedAt:   e.PublishedAt,
			PriorityScore: e.PriorityScore,
			EventType:     e.EventType,
			ImpactLevel:   e.ImpactLevel,
			Sentiment:     e.Sentiment,
			Narrative:     aggregate.Narrative(s),
		}
		if s.Correlation != nil {
			row.OverallImpact = s.Correlation.OverallImpactScore
			row.Strength = s.Correlation.CorrelationStrength
			row.PrimaryImpact = s.Correlation.PrimaryImpact
		}
		report.TopEvents = append(report.TopEvents, row)
	}

	report.Rollups = aggregate.CommodityRollups(scored)
	return report
}
