// Package scoring classifies and scores normalized events. The classifier
// is a pure function over immutable keyword tables: identical input text
// always yields identical scores, and it never fails on malformed input —
// text with no matches degrades to priority 0 / general / low / neutral.
package scoring

import (
	"sort"
	"strings"

	"mining-intel/internal/domain"
	"mining-intel/internal/idhash"
)

// Classifier fills the scoring fields of events. Safe for concurrent use;
// it holds no mutable state.
type Classifier struct {
	tables Tables
	params Params
}

// NewClassifier creates a classifier over the given tables and parameters.
func NewClassifier(tables Tables, params Params) *Classifier {
	return &Classifier{tables: tables, params: params}
}

// NewDefaultClassifier creates a classifier with the default tables and
// parameters.
func NewDefaultClassifier() *Classifier {
	return NewClassifier(DefaultTables(), DefaultParams())
}

// Score returns a copy of the event with priority score, event type, impact
// level, regional relevance, commodity impacts, organization mentions,
// keywords and sentiment filled in. sourceWeight scales category base
// scores; pass 1.0 for unweighted sources.
func (c *Classifier) Score(e domain.Event, sourceWeight float64) domain.Event {
	if sourceWeight <= 0 {
		sourceWeight = 1.0
	}

	text := newMatchText(e.Headline + " " + e.Summary)

	var (
		priority  float64
		keywords  []string
		kindScore = make(map[domain.CategoryKind]float64)
	)

	for _, cat := range c.tables.Categories {
		var catScore float64
		var catKeywords []string
		for _, kw := range cat.TriggerKeywords {
			if text.contains(kw) {
				catScore += cat.BaseScore
				catKeywords = append(catKeywords, kw)
			}
		}
		if catScore == 0 {
			continue
		}

		// Context gate: at least one domain keyword must co-occur.
		contextHit := false
		for _, ctx := range cat.ContextKeywords {
			if text.contains(ctx) {
				contextHit = true
				break
			}
		}
		if !contextHit {
			continue
		}

		priority += catScore
		keywords = append(keywords, catKeywords...)
		kindScore[cat.Kind] += catScore
	}

	priority *= sourceWeight
	if priority > 100 {
		priority = 100
	}

	e.PriorityScore = priority
	e.EventType = dominantType(kindScore)
	e.ImpactLevel = c.impactLevel(priority)
	e.RegionalRelevance = c.regionalRelevance(text, &e)
	e.CommodityImpact = c.commodityImpacts(text, e.EventType)
	e.Keywords = c.keywordSet(keywords, text)
	e.Sentiment = c.sentiment(text)
	return e
}

// regionalRelevance accumulates fixed increments per regional-term and
// organization hit, capped. Matched organizations are recorded on the event.
func (c *Classifier) regionalRelevance(text matchText, e *domain.Event) float64 {
	var score float64
	for _, term := range c.tables.RegionalTerms {
		if text.contains(term) {
			score += c.params.RegionalTermIncrement
		}
	}

	var orgs []string
	for _, org := range c.tables.Organizations {
		if text.contains(org) {
			score += c.params.OrganizationIncrement
			orgs = append(orgs, org)
		}
	}
	sort.Strings(orgs)
	e.Organizations = orgs

	if score > c.params.RegionalRelevanceCap {
		score = c.params.RegionalRelevanceCap
	}
	return score
}

// commodityImpacts scores each commodity from its lexicon hits, boosted
// when price context co-occurs, capped per commodity, then scaled by the
// event-type multiplier and clamped to 100.
func (c *Classifier) commodityImpacts(text matchText, eventType domain.EventType) map[string]float64 {
	priceContext := false
	for _, term := range c.tables.PriceContextTerms {
		if text.contains(term) {
			priceContext = true
			break
		}
	}

	typeMult, ok := c.params.EventTypeMultipliers[eventType]
	if !ok || typeMult <= 0 {
		typeMult = 1.0
	}

	impacts := make(map[string]float64)
	for commodity, terms := range c.tables.CommodityLexicon {
		var score float64
		for _, term := range terms {
			if text.contains(term) {
				score += c.params.CommodityTermIncrement
			}
		}
		if score == 0 {
			continue
		}
		if priceContext {
			score *= c.params.CommodityPriceBoost
		}
		if score > c.params.CommodityImpactCap {
			score = c.params.CommodityImpactCap
		}
		score *= typeMult
		if score > 100 {
			score = 100
		}
		impacts[commodity] = score
	}
	return impacts
}

// keywordSet merges category trigger hits with matched commodity terms into
// a sorted, deduplicated keyword list.
func (c *Classifier) keywordSet(triggers []string, text matchText) []string {
	seen := make(map[string]struct{}, len(triggers))
	for _, kw := range triggers {
		seen[kw] = struct{}{}
	}
	for _, terms := range c.tables.CommodityLexicon {
		for _, term := range terms {
			if text.contains(term) {
				seen[term] = struct{}{}
			}
		}
	}

	if len(seen) == 0 {
		return nil
	}
	result := make([]string, 0, len(seen))
	for kw := range seen {
		result = append(result, kw)
	}
	sort.Strings(result)
	return result
}

// sentiment is a majority vote between fixed positive and negative word
// counts; ties are neutral.
func (c *Classifier) sentiment(text matchText) domain.Sentiment {
	var pos, neg int
	for _, w := range c.tables.PositiveWords {
		if text.contains(w) {
			pos++
		}
	}
	for _, w := range c.tables.NegativeWords {
		if text.contains(w) {
			neg++
		}
	}
	switch {
	case neg > pos:
		return domain.SentimentNegative
	case pos > neg:
		return domain.SentimentPositive
	default:
		return domain.SentimentNeutral
	}
}

func (c *Classifier) impactLevel(priority float64) domain.ImpactLevel {
	switch {
	case priority >= c.params.CriticalThreshold:
		return domain.ImpactCritical
	case priority >= c.params.HighThreshold:
		return domain.ImpactHigh
	case priority >= c.params.MediumThreshold:
		return domain.ImpactMedium
	default:
		return domain.ImpactLow
	}
}

// dominantType picks the event type from the category kind with the largest
// contribution. Policy and regulatory outrank market moves, which outrank
// corporate and operational; no contribution at all means general.
func dominantType(kindScore map[domain.CategoryKind]float64) domain.EventType {
	if len(kindScore) == 0 {
		return domain.EventTypeGeneral
	}

	// Precedence order breaks score ties.
	order := []struct {
		kind domain.CategoryKind
		typ  domain.EventType
	}{
		{domain.CategoryKindPolicy, domain.EventTypePolicy},
		{domain.CategoryKindRegulatory, domain.EventTypeRegulatory},
		{domain.CategoryKindMarketMove, domain.EventTypeMarketMove},
		{domain.CategoryKindCorporate, domain.EventTypeCorporate},
		{domain.CategoryKindOperational, domain.EventTypeOperational},
	}

	best := domain.EventTypeGeneral
	bestScore := 0.0
	for _, o := range order {
		if s := kindScore[o.kind]; s > bestScore {
			best = o.typ
			bestScore = s
		}
	}
	return best
}

// matchText is headline+summary text prepared for whole-word term matching.
// Terms match on word boundaries, so "ban" does not fire inside "urban";
// a trailing plural "s" on the text side is tolerated, so "price" matches
// "prices".
type matchText string

func newMatchText(raw string) matchText {
	return matchText(" " + idhash.NormalizeHeadline(raw) + " ")
}

func (t matchText) contains(term string) bool {
	norm := idhash.NormalizeHeadline(term)
	if norm == "" {
		return false
	}
	if strings.Contains(string(t), " "+norm+" ") {
		return true
	}
	return strings.Contains(string(t), " "+norm+"s ")
}
