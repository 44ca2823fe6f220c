package domain

import "time"

// CorrelationStrength summarizes how confidently an event explains
// observed market movement.
type CorrelationStrength string

const (
	CorrelationStrong   CorrelationStrength = "strong"
	CorrelationModerate CorrelationStrength = "moderate"
	CorrelationWeak     CorrelationStrength = "weak"
	CorrelationNone     CorrelationStrength = "none"
)

// String returns the string representation of CorrelationStrength.
func (s CorrelationStrength) String() string {
	return string(s)
}

// InstrumentImpact measures one instrument's price/volume reaction to an
// event across the before/after correlation windows.
type InstrumentImpact struct {
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"` // issuer name, empty if unknown
	PriceBefore float64 `json:"price_before"`
	PriceAfter  float64 `json:"price_after"`
	ChangePct   float64 `json:"change_pct"`
	VolumeRatio float64 `json:"volume_ratio"` // after/before mean volume, 1.0 when before volume is 0
	ImpactScore float64 `json:"impact_score"`
	Confidence  float64 `json:"confidence"` // 0..1
}

// CommodityImpactResult measures one commodity's price reaction. Commodity
// series carry no usable volume, so there is no volume component.
type CommodityImpactResult struct {
	Commodity   string  `json:"commodity"`
	PriceBefore float64 `json:"price_before"`
	PriceAfter  float64 `json:"price_after"`
	ChangePct   float64 `json:"change_pct"`
	ImpactScore float64 `json:"impact_score"`
	Confidence  float64 `json:"confidence"` // 0..1
}

// CorrelationResult holds the market-impact assessment for one event.
// Created once per analyzed event; immutable after creation.
type CorrelationResult struct {
	EventID           string                  `json:"event_id"`
	AnalyzedAt        time.Time               `json:"analyzed_at"`
	InstrumentImpacts []InstrumentImpact      `json:"instrument_impacts"` // sorted by |ImpactScore| desc
	CommodityImpacts  []CommodityImpactResult `json:"commodity_impacts"`  // sorted by |ImpactScore| desc

	OverallImpactScore  float64             `json:"overall_impact_score"` // 0..100
	CorrelationStrength CorrelationStrength `json:"correlation_strength"`

	PrimaryImpact    string   `json:"primary_impact"`
	SecondaryEffects []string `json:"secondary_effects"`
	MarketNarrative  string   `json:"market_narrative"`
}
