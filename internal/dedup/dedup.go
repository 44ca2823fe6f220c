// Package dedup collapses near-identical events — the same story picked up
// by multiple sources — into one canonical representative per group.
package dedup

import (
	"sort"

	"mining-intel/internal/domain"
)

// Thresholds controls when two events count as the same story.
type Thresholds struct {
	Headline        float64 // headline similarity alone
	HeadlineRelaxed float64 // relaxed headline bound when the summary confirms
	SummaryConfirm  float64 // summary similarity required with the relaxed bound
}

// DefaultThresholds returns the default grouping thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Headline:        0.8,
		HeadlineRelaxed: 0.6,
		SummaryConfirm:  0.7,
	}
}

// Deduplicator groups events by text similarity within a bounded window.
// Comparison is O(n²) over the window, which stays acceptable while windows
// hold hundreds of items.
type Deduplicator struct {
	sim        Similarity
	thresholds Thresholds
}

// New creates a deduplicator with the given similarity measure.
func New(sim Similarity, thresholds Thresholds) *Deduplicator {
	return &Deduplicator{sim: sim, thresholds: thresholds}
}

// NewDefault creates a deduplicator with token-overlap similarity and
// default thresholds.
func NewDefault() *Deduplicator {
	return New(TokenOverlap{}, DefaultThresholds())
}

// Result is the outcome of deduplicating one batch.
type Result struct {
	Events    []domain.Event // one canonical representative per group
	Collapsed int            // duplicates removed, for observability
}

// Deduplicate partitions the batch into duplicate groups and keeps one
// representative per group: highest priority score, ties broken by earliest
// published time, then smallest id for full determinism. Input order does
// not affect the outcome.
func (d *Deduplicator) Deduplicate(events []domain.Event) Result {
	n := len(events)
	if n <= 1 {
		return Result{Events: append([]domain.Event(nil), events...)}
	}

	// Sort a working copy so grouping is independent of input order.
	sorted := append([]domain.Event(nil), events...)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].PublishedAt.Equal(sorted[j].PublishedAt) {
			return sorted[i].PublishedAt.Before(sorted[j].PublishedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	// Union by comparing each event against the representative of every
	// existing group; first matching group wins.
	var groups [][]domain.Event
	for _, e := range sorted {
		placed := false
		for gi := range groups {
			if d.sameStory(groups[gi][0], e) {
				groups[gi] = append(groups[gi], e)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []domain.Event{e})
		}
	}

	result := Result{
		Events:    make([]domain.Event, 0, len(groups)),
		Collapsed: n - len(groups),
	}
	for _, group := range groups {
		result.Events = append(result.Events, representative(group))
	}
	return result
}

// FilterKnown drops batch events that duplicate an already-known event,
// by id or by story similarity. Used to extend deduplication across batches
// when a persistent window is available. Returns survivors and the number
// of events dropped.
func (d *Deduplicator) FilterKnown(events, known []domain.Event) ([]domain.Event, int) {
	if len(known) == 0 {
		return append([]domain.Event(nil), events...), 0
	}

	knownIDs := make(map[string]struct{}, len(known))
	for _, k := range known {
		knownIDs[k.ID] = struct{}{}
	}

	survivors := make([]domain.Event, 0, len(events))
	for _, e := range events {
		if _, dup := knownIDs[e.ID]; dup {
			continue
		}
		matched := false
		for _, k := range known {
			if d.sameStory(k, e) {
				matched = true
				break
			}
		}
		if !matched {
			survivors = append(survivors, e)
		}
	}
	return survivors, len(events) - len(survivors)
}

// sameStory applies the threshold rule: headline similarity alone, or a
// relaxed headline bound confirmed by summary similarity.
func (d *Deduplicator) sameStory(a, b domain.Event) bool {
	hs := d.sim.Score(a.Headline, b.Headline)
	if hs >= d.thresholds.Headline {
		return true
	}
	if hs >= d.thresholds.HeadlineRelaxed {
		return d.sim.Score(a.Summary, b.Summary) >= d.thresholds.SummaryConfirm
	}
	return false
}

func representative(group []domain.Event) domain.Event {
	best := group[0]
	for _, e := range group[1:] {
		switch {
		case e.PriorityScore > best.PriorityScore:
			best = e
		case e.PriorityScore == best.PriorityScore && e.PublishedAt.Before(best.PublishedAt):
			best = e
		case e.PriorityScore == best.PriorityScore && e.PublishedAt.Equal(best.PublishedAt) && e.ID < best.ID:
			best = e
		}
	}
	return best
}
