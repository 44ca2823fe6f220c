package domain

import "time"

// EventType classifies what kind of story an event is.
type EventType string

const (
	EventTypePolicy      EventType = "policy"
	EventTypeMarketMove  EventType = "market_move"
	EventTypeCorporate   EventType = "corporate"
	EventTypeRegulatory  EventType = "regulatory"
	EventTypeOperational EventType = "operational"
	EventTypeGeneral     EventType = "general"
)

// String returns the string representation of EventType.
func (t EventType) String() string {
	return string(t)
}

// IsValid checks if the event type is a known value.
func (t EventType) IsValid() bool {
	switch t {
	case EventTypePolicy, EventTypeMarketMove, EventTypeCorporate,
		EventTypeRegulatory, EventTypeOperational, EventTypeGeneral:
		return true
	}
	return false
}

// ImpactLevel is the coarse severity bucket derived from the priority score.
type ImpactLevel string

const (
	ImpactCritical ImpactLevel = "critical"
	ImpactHigh     ImpactLevel = "high"
	ImpactMedium   ImpactLevel = "medium"
	ImpactLow      ImpactLevel = "low"
)

// String returns the string representation of ImpactLevel.
func (l ImpactLevel) String() string {
	return string(l)
}

// Sentiment is the majority-vote tone of an event's text.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Event is a normalized, scored, classified candidate with a stable identity.
// Created by the normalizer; scoring fields filled by the classifier
// (single writer); never mutated after correlation analysis.
type Event struct {
	ID          string    `json:"id"` // deterministic, see idhash.ComputeEventID
	Headline    string    `json:"headline"`
	Summary     string    `json:"summary"`
	URL         string    `json:"url"`
	SourceID    string    `json:"source_id"`
	PublishedAt time.Time `json:"published_at"`

	PriorityScore     float64            `json:"priority_score"`     // 0..100
	EventType         EventType          `json:"event_type"`
	ImpactLevel       ImpactLevel        `json:"impact_level"`
	RegionalRelevance float64            `json:"regional_relevance"` // 0..100
	CommodityImpact   map[string]float64 `json:"commodity_impact"`   // commodity → 0..100
	Organizations     []string           `json:"organizations"`      // mentioned organization names, sorted
	Keywords          []string           `json:"keywords"`           // matched trigger keywords, sorted
	Sentiment         Sentiment          `json:"sentiment"`
}
