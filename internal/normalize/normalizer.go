// Package normalize converts raw candidates into canonical events with a
// deterministic identity.
package normalize

import (
	"errors"
	"strings"
	"time"

	"mining-intel/internal/domain"
	"mining-intel/internal/idhash"
)

// ErrMalformedCandidate is returned for candidates that cannot become
// events (empty headline). Callers count and drop these; they are never
// fatal to a batch.
var ErrMalformedCandidate = errors.New("malformed candidate")

// Normalizer turns raw candidates into events. The clock is injectable so
// the lossy missing-timestamp fallback stays deterministic under test.
type Normalizer struct {
	now func() time.Time
}

// New creates a normalizer with the real clock.
func New() *Normalizer {
	return &Normalizer{now: func() time.Time { return time.Now().UTC() }}
}

// WithClock sets a custom clock function and returns the normalizer.
func (n *Normalizer) WithClock(now func() time.Time) *Normalizer {
	n.now = now
	return n
}

// Normalize converts one candidate into an event with zeroed scoring fields
// and identity computed from the normalized headline and URL. Re-normalizing
// the same candidate always yields the same id.
//
// Candidates with an empty headline are rejected with ErrMalformedCandidate.
// A missing publication time is replaced with "now" — a documented lossy
// fallback, applied only when the headline is usable.
func (n *Normalizer) Normalize(rc domain.RawCandidate) (domain.Event, error) {
	headline := strings.TrimSpace(rc.Headline)
	if headline == "" {
		return domain.Event{}, ErrMalformedCandidate
	}

	publishedAt := rc.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = n.now()
	}

	return domain.Event{
		ID:          idhash.ComputeEventID(headline, rc.URL),
		Headline:    headline,
		Summary:     strings.TrimSpace(rc.Summary),
		URL:         rc.URL,
		SourceID:    rc.SourceID,
		PublishedAt: publishedAt,

		EventType:   domain.EventTypeGeneral,
		ImpactLevel: domain.ImpactLow,
		Sentiment:   domain.SentimentNeutral,
	}, nil
}

// NormalizeBatch converts a batch, dropping malformed candidates. It returns
// the events plus the number dropped.
func (n *Normalizer) NormalizeBatch(candidates []domain.RawCandidate) ([]domain.Event, int) {
	events := make([]domain.Event, 0, len(candidates))
	dropped := 0
	for _, rc := range candidates {
		e, err := n.Normalize(rc)
		if err != nil {
			dropped++
			continue
		}
		events = append(events, e)
	}
	return events, dropped
}
