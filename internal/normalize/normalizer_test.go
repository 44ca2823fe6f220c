package normalize

import (
	"errors"
	"testing"
	"time"

	"mining-intel/internal/domain"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testNormalizer() *Normalizer {
	return New().WithClock(func() time.Time { return fixedNow })
}

func TestNormalize_StableIdentity(t *testing.T) {
	rc := domain.RawCandidate{
		SourceID:    "reuters-mining",
		Headline:    "US announces 25% tariff on copper imports",
		Summary:     "Ottawa weighs response.",
		URL:         "https://example.com/tariff",
		PublishedAt: fixedNow,
	}

	n := testNormalizer()
	first, err := n.Normalize(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := n.Normalize(rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID == "" {
		t.Fatal("expected non-empty id")
	}
	if first.ID != second.ID {
		t.Errorf("expected stable id, got %s and %s", first.ID, second.ID)
	}
	if first.SourceID != "reuters-mining" || first.URL != rc.URL {
		t.Errorf("expected candidate fields carried over, got %+v", first)
	}
}

func TestNormalize_IdentityIgnoresPunctuationAndCase(t *testing.T) {
	n := testNormalizer()

	a, _ := n.Normalize(domain.RawCandidate{
		Headline: "US Announces 25% Tariff on Copper Imports!",
		URL:      "https://example.com/tariff",
	})
	b, _ := n.Normalize(domain.RawCandidate{
		Headline: "us announces 25 tariff on copper imports",
		URL:      "https://example.com/tariff",
	})

	if a.ID != b.ID {
		t.Errorf("expected identical ids for punctuation/case variants, got %s and %s", a.ID, b.ID)
	}

	// A different URL is a different identity.
	c, _ := n.Normalize(domain.RawCandidate{
		Headline: "US Announces 25% Tariff on Copper Imports!",
		URL:      "https://example.com/other",
	})
	if a.ID == c.ID {
		t.Error("expected different ids for different URLs")
	}
}

func TestNormalize_EmptyHeadlineRejected(t *testing.T) {
	n := testNormalizer()

	for _, headline := range []string{"", "   ", "\t\n"} {
		_, err := n.Normalize(domain.RawCandidate{Headline: headline, URL: "https://example.com"})
		if !errors.Is(err, ErrMalformedCandidate) {
			t.Errorf("headline %q: expected ErrMalformedCandidate, got %v", headline, err)
		}
	}
}

func TestNormalize_MissingTimestampUsesClock(t *testing.T) {
	n := testNormalizer()

	e, err := n.Normalize(domain.RawCandidate{Headline: "Copper rally", URL: "https://example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !e.PublishedAt.Equal(fixedNow) {
		t.Errorf("expected injected clock time %v, got %v", fixedNow, e.PublishedAt)
	}

	// A real timestamp is kept untouched.
	given := fixedNow.Add(-2 * time.Hour)
	e, err = n.Normalize(domain.RawCandidate{Headline: "Copper rally", URL: "https://example.com", PublishedAt: given})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !e.PublishedAt.Equal(given) {
		t.Errorf("expected %v, got %v", given, e.PublishedAt)
	}
}

func TestNormalize_ScoringFieldsZeroed(t *testing.T) {
	e, err := testNormalizer().Normalize(domain.RawCandidate{
		Headline: "Copper rally",
		URL:      "https://example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.PriorityScore != 0 {
		t.Errorf("expected zero priority, got %f", e.PriorityScore)
	}
	if e.EventType != domain.EventTypeGeneral {
		t.Errorf("expected general event type, got %s", e.EventType)
	}
	if e.ImpactLevel != domain.ImpactLow {
		t.Errorf("expected low impact, got %s", e.ImpactLevel)
	}
	if e.Sentiment != domain.SentimentNeutral {
		t.Errorf("expected neutral sentiment, got %s", e.Sentiment)
	}
}

func TestNormalizeBatch_DropsMalformed(t *testing.T) {
	candidates := []domain.RawCandidate{
		{Headline: "Copper rally", URL: "https://example.com/1"},
		{Headline: "", URL: "https://example.com/2"},
		{Headline: "Gold slides", URL: "https://example.com/3"},
		{Headline: "   ", URL: "https://example.com/4"},
	}

	events, dropped := testNormalizer().NormalizeBatch(candidates)

	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if dropped != 2 {
		t.Errorf("expected 2 dropped, got %d", dropped)
	}
	if events[0].Headline != "Copper rally" || events[1].Headline != "Gold slides" {
		t.Errorf("expected input order preserved, got %q, %q", events[0].Headline, events[1].Headline)
	}
}

func TestNormalize_TrimsWhitespace(t *testing.T) {
	e, err := testNormalizer().Normalize(domain.RawCandidate{
		Headline: "  Copper rally  ",
		Summary:  "\tDemand outlook improves.\n",
		URL:      "https://example.com",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Headline != "Copper rally" {
		t.Errorf("expected trimmed headline, got %q", e.Headline)
	}
	if e.Summary != "Demand outlook improves." {
		t.Errorf("expected trimmed summary, got %q", e.Summary)
	}
}
