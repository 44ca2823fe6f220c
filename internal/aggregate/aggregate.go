// Package aggregate ranks scored events and rolls their market impact up by
// commodity. Everything here is a pure transformation over its inputs, safe
// to recompute on demand.
package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"mining-intel/internal/domain"
)

// Scored pairs an event with its correlation result, when one exists.
// Events below the correlation threshold carry a nil Correlation.
type Scored struct {
	Event       *domain.Event             `json:"event"`
	Correlation *domain.CorrelationResult `json:"correlation,omitempty"`
}

// CommodityRollup summarizes impact across all events touching one commodity.
type CommodityRollup struct {
	Commodity   string  `json:"commodity"`
	EventCount  int     `json:"event_count"`
	TotalImpact float64 `json:"total_impact"`
	AvgImpact   float64 `json:"avg_impact"`
	MaxImpact   float64 `json:"max_impact"`
}

// TopEvents returns the k highest-priority entries, priority descending with
// ties broken by PublishedAt descending then ID ascending. The input slice
// is not modified.
func TopEvents(scored []Scored, k int) []Scored {
	if k <= 0 {
		return nil
	}

	ranked := make([]Scored, len(scored))
	copy(ranked, scored)
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i].Event, ranked[j].Event
		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}
		if !a.PublishedAt.Equal(b.PublishedAt) {
			return a.PublishedAt.After(b.PublishedAt)
		}
		return a.ID < b.ID
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k]
}

// CommodityRollups aggregates per-commodity impact over all entries. An
// event contributes its classifier commodity-impact score; when a
// correlation result carries a measured impact for the same commodity, the
// measured score is used instead. Output sorted by TotalImpact descending,
// ties by commodity name.
func CommodityRollups(scored []Scored) []CommodityRollup {
	type acc struct {
		count int
		sum   float64
		max   float64
	}
	byCommodity := make(map[string]*acc)

	for _, s := range scored {
		if s.Event == nil {
			continue
		}

		measured := make(map[string]float64)
		if s.Correlation != nil {
			for _, impact := range s.Correlation.CommodityImpacts {
				measured[impact.Commodity] = math.Abs(impact.ImpactScore)
			}
		}

		for commodity, classifierScore := range s.Event.CommodityImpact {
			score := classifierScore
			if m, ok := measured[commodity]; ok {
				score = m
			}

			a := byCommodity[commodity]
			if a == nil {
				a = &acc{}
				byCommodity[commodity] = a
			}
			a.count++
			a.sum += score
			if score > a.max {
				a.max = score
			}
		}
	}

	rollups := make([]CommodityRollup, 0, len(byCommodity))
	for commodity, a := range byCommodity {
		rollups = append(rollups, CommodityRollup{
			Commodity:   commodity,
			EventCount:  a.count,
			TotalImpact: a.sum,
			AvgImpact:   a.sum / float64(a.count),
			MaxImpact:   a.max,
		})
	}
	sort.Slice(rollups, func(i, j int) bool {
		if rollups[i].TotalImpact != rollups[j].TotalImpact {
			return rollups[i].TotalImpact > rollups[j].TotalImpact
		}
		return rollups[i].Commodity < rollups[j].Commodity
	})
	return rollups
}

// Narrative composes a deterministic one-line summary for a scored event
// from its event type and dominant market move.
func Narrative(s Scored) string {
	if s.Event == nil {
		return ""
	}
	e := s.Event

	var parts []string
	parts = append(parts, fmt.Sprintf("%s event (priority %.0f)", e.EventType, e.PriorityScore))

	if s.Correlation != nil {
		if len(s.Correlation.CommodityImpacts) > 0 {
			top := s.Correlation.CommodityImpacts[0]
			direction := "up"
			if top.ChangePct < 0 {
				direction = "down"
			}
			parts = append(parts, fmt.Sprintf("%s %s %.1f%%", top.Commodity, direction, math.Abs(top.ChangePct)))
		}
		if len(s.Correlation.InstrumentImpacts) > 0 {
			top := s.Correlation.InstrumentImpacts[0]
			direction := "up"
			if top.ChangePct < 0 {
				direction = "down"
			}
			parts = append(parts, fmt.Sprintf("%s %s %.1f%%", top.Symbol, direction, math.Abs(top.ChangePct)))
		}
		parts = append(parts, fmt.Sprintf("correlation %s", s.Correlation.CorrelationStrength))
	} else if dominant := dominantCommodity(e); dominant != "" {
		parts = append(parts, fmt.Sprintf("%s exposure flagged", dominant))
	}

	return strings.Join(parts, ", ")
}

// dominantCommodity returns the event's highest-scored commodity, ties
// broken by name for determinism.
func dominantCommodity(e *domain.Event) string {
	var (
		best      string
		bestScore float64
	)
	for commodity, score := range e.CommodityImpact {
		if score > bestScore || (score == bestScore && (best == "" || commodity < best)) {
			best = commodity
			bestScore = score
		}
	}
	return best
}
