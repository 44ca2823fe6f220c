package domain

// CategoryKind groups scoring categories into the event-type buckets used
// when deriving an event's dominant type.
type CategoryKind string

const (
	CategoryKindPolicy      CategoryKind = "policy"
	CategoryKindRegulatory  CategoryKind = "regulatory"
	CategoryKindMarketMove  CategoryKind = "market_move"
	CategoryKindCorporate   CategoryKind = "corporate"
	CategoryKindOperational CategoryKind = "operational"
)

// Category is one scoring category: trigger keywords plus the context
// keywords that must co-occur before the category contributes at all.
// Context gating keeps generic words ("ban") from firing policy-level
// scores outside the domain ("mining", "copper").
type Category struct {
	Name            string       `json:"name" toml:"name"`
	Kind            CategoryKind `json:"kind" toml:"kind"`
	TriggerKeywords []string     `json:"trigger_keywords" toml:"trigger_keywords"`
	ContextKeywords []string     `json:"context_keywords" toml:"context_keywords"`
	BaseScore       float64      `json:"base_score" toml:"base_score"`
}
