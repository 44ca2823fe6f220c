package scoring

import "mining-intel/internal/domain"

// Params holds the tunable thresholds and multipliers of the classifier.
// The values are empirically chosen defaults, not load-bearing constants;
// override them from configuration rather than editing this file.
type Params struct {
	RegionalTermIncrement float64 // added per regional-term hit
	OrganizationIncrement float64 // added per organization hit
	RegionalRelevanceCap  float64

	CommodityTermIncrement float64 // added per commodity-lexicon hit
	CommodityPriceBoost    float64 // multiplier when price context co-occurs
	CommodityImpactCap     float64 // per-commodity cap before event-type multipliers

	// EventTypeMultipliers scale the capped per-commodity score by how
	// market-moving the event class is; missing types default to 1.0.
	EventTypeMultipliers map[domain.EventType]float64

	CriticalThreshold float64 // priority >= → critical
	HighThreshold     float64 // priority >= → high
	MediumThreshold   float64 // priority >= → medium
}

// DefaultParams returns the default classifier parameters.
func DefaultParams() Params {
	return Params{
		RegionalTermIncrement:  10,
		OrganizationIncrement:  15,
		RegionalRelevanceCap:   100,
		CommodityTermIncrement: 35,
		CommodityPriceBoost:    1.5,
		CommodityImpactCap:     50,
		EventTypeMultipliers: map[domain.EventType]float64{
			domain.EventTypePolicy:      2.0,
			domain.EventTypeRegulatory:  1.8,
			domain.EventTypeMarketMove:  1.6,
			domain.EventTypeOperational: 1.4,
			domain.EventTypeCorporate:   1.2,
		},
		CriticalThreshold: 80,
		HighThreshold:     60,
		MediumThreshold:   40,
	}
}

// Tables is the immutable keyword configuration the classifier runs over.
// Scoring logic is generic over these tables; new categories need no code
// change.
type Tables struct {
	Categories []domain.Category

	// RegionalTerms and Organizations feed the regional-relevance score.
	RegionalTerms []string
	Organizations []string

	// CommodityLexicon maps a commodity name to the terms that imply it.
	CommodityLexicon map[string][]string

	// PriceContextTerms boost commodity impact when they co-occur.
	PriceContextTerms []string

	PositiveWords []string
	NegativeWords []string
}

// DefaultTables returns the default scoring tables for the Canadian mining
// and metals focus.
func DefaultTables() Tables {
	return Tables{
		Categories: []domain.Category{
			{
				Name:            "policy_critical",
				Kind:            domain.CategoryKindPolicy,
				TriggerKeywords: []string{"tariff", "trade war", "sanctions", "embargo", "ban", "restriction"},
				ContextKeywords: []string{"mining", "commodity", "metal", "copper", "gold", "silver"},
				BaseScore:       100,
			},
			{
				Name:            "regulatory_critical",
				Kind:            domain.CategoryKindRegulatory,
				TriggerKeywords: []string{"emergency", "national security", "government action", "federal", "policy change"},
				ContextKeywords: []string{"mining", "commodity", "resource"},
				BaseScore:       90,
			},
			{
				Name:            "price_critical",
				Kind:            domain.CategoryKindMarketMove,
				TriggerKeywords: []string{"plunge", "surge", "crash", "rally", "spike", "collapse"},
				ContextKeywords: []string{"copper", "gold", "silver", "platinum", "uranium", "mining"},
				BaseScore:       85,
			},
			{
				Name:            "volatility_high",
				Kind:            domain.CategoryKindMarketMove,
				TriggerKeywords: []string{"volatile", "dramatic", "historic", "record", "unprecedented"},
				ContextKeywords: []string{"price", "trading", "market"},
				BaseScore:       75,
			},
			{
				Name:            "ma_activity",
				Kind:            domain.CategoryKindCorporate,
				TriggerKeywords: []string{"acquisition", "merger", "takeover", "buyout", "deal"},
				ContextKeywords: []string{"mining", "canadian"},
				BaseScore:       70,
			},
			{
				Name:            "earnings_critical",
				Kind:            domain.CategoryKindCorporate,
				TriggerKeywords: []string{"earnings miss", "guidance cut", "surprise", "beat expectations"},
				ContextKeywords: []string{"mining", "canadian"},
				BaseScore:       65,
			},
			{
				Name:            "operational_significant",
				Kind:            domain.CategoryKindOperational,
				TriggerKeywords: []string{"production halt", "mine closure", "strike", "accident", "discovery"},
				ContextKeywords: []string{"mining", "canadian"},
				BaseScore:       60,
			},
		},

		RegionalTerms: []string{
			"canada", "canadian", "tsx", "tsxv", "ontario", "quebec", "british columbia",
		},

		Organizations: []string{
			"barrick gold", "agnico eagle", "kinross", "first quantum", "lundin mining",
			"hudbay minerals", "teck resources", "franco nevada", "eldorado gold",
			"centerra gold", "iamgold", "osisko", "yamana", "b2gold", "torex gold",
			"seabridge gold", "alamos gold", "kirkland lake", "detour gold",
			"magna mining", "calibre mining", "endeavour mining", "pretium resources",
		},

		CommodityLexicon: map[string][]string{
			"copper":      {"copper", "red metal", "industrial metal"},
			"gold":        {"gold", "yellow metal", "precious metal"},
			"silver":      {"silver", "white metal"},
			"platinum":    {"platinum", "pgm"},
			"uranium":     {"uranium", "u3o8", "nuclear"},
			"iron_ore":    {"iron ore", "steel"},
			"nickel":      {"nickel"},
			"zinc":        {"zinc"},
			"oil":         {"oil", "crude", "petroleum", "wti", "brent"},
			"natural_gas": {"natural gas", "lng"},
		},

		PriceContextTerms: []string{"price", "cost", "trading", "market"},

		PositiveWords: []string{
			"surge", "rally", "gain", "rise", "boost", "strong", "positive", "growth",
		},
		NegativeWords: []string{
			"plunge", "crash", "decline", "fall", "drop", "loss", "concern", "worry",
		},
	}
}
