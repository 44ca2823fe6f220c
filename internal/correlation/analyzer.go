// Package correlation measures an event's market impact by comparing price
// series in windows before and after the event's publication time.
package correlation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"mining-intel/internal/domain"
	"mining-intel/internal/pricedata"
)

// ErrBelowThreshold indicates an event's priority is too low to analyze.
var ErrBelowThreshold = errors.New("correlation: event priority below threshold")

const (
	// DefaultPriorityThreshold is the minimum priority score for analysis.
	DefaultPriorityThreshold = 60.0

	// DefaultBeforeWindow precedes publication.
	DefaultBeforeWindow = 2 * time.Hour

	// DefaultAfterWindow follows publication.
	DefaultAfterWindow = 24 * time.Hour

	// DefaultMaxLookups bounds concurrent price-history lookups.
	DefaultMaxLookups = 8

	// maxInstrumentImpacts caps how many instrument entries a result keeps.
	maxInstrumentImpacts = 20

	// topImpactCount is how many instrument impacts feed the overall score.
	topImpactCount = 10
)

// Options configures an Analyzer. Zero values take defaults.
type Options struct {
	PriorityThreshold float64
	BeforeWindow      time.Duration
	AfterWindow       time.Duration
	MaxLookups        int
	Universe          *Universe
	Logger            *log.Logger
	// Clock stamps AnalyzedAt; overridable for tests.
	Clock func() time.Time
}

// Analyzer correlates events with instrument and commodity price movement.
type Analyzer struct {
	provider  pricedata.Provider
	threshold float64
	before    time.Duration
	after     time.Duration
	lookups   int
	universe  *Universe
	logger    *log.Logger
	now       func() time.Time
}

// NewAnalyzer creates an analyzer over the given price-history provider.
func NewAnalyzer(provider pricedata.Provider, opts Options) *Analyzer {
	a := &Analyzer{
		provider:  provider,
		threshold: opts.PriorityThreshold,
		before:    opts.BeforeWindow,
		after:     opts.AfterWindow,
		lookups:   opts.MaxLookups,
		universe:  opts.Universe,
		logger:    opts.Logger,
		now:       opts.Clock,
	}
	if a.threshold <= 0 {
		a.threshold = DefaultPriorityThreshold
	}
	if a.before <= 0 {
		a.before = DefaultBeforeWindow
	}
	if a.after <= 0 {
		a.after = DefaultAfterWindow
	}
	if a.lookups <= 0 {
		a.lookups = DefaultMaxLookups
	}
	if a.universe == nil {
		a.universe = DefaultUniverse()
	}
	if a.logger == nil {
		a.logger = log.Default()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// windowStats summarizes one symbol's series across both windows.
type windowStats struct {
	priceBefore  float64
	priceAfter   float64
	changePct    float64
	volumeBefore float64
	volumeAfter  float64
	ok           bool
}

// Analyze measures the market impact of one event. Per-symbol provider
// failures are logged and skipped; an event with zero resolvable symbols
// yields empty impact lists and strength none, not an error.
func (a *Analyzer) Analyze(ctx context.Context, e *domain.Event) (*domain.CorrelationResult, error) {
	if e.PriorityScore < a.threshold {
		return nil, fmt.Errorf("%w: %.1f < %.1f", ErrBelowThreshold, e.PriorityScore, a.threshold)
	}

	beforeStart := e.PublishedAt.Add(-a.before)
	afterEnd := e.PublishedAt.Add(a.after)

	instruments := a.universe.selectInstruments(e)
	commodities := a.universe.selectCommodities(e)

	stats := a.collectStats(ctx, e, instruments, commodities, beforeStart, afterEnd)

	instrumentImpacts := a.scoreInstruments(e, instruments, stats)
	commodityImpacts := a.scoreCommodities(e, commodities, stats)

	overall := overallImpact(instrumentImpacts, commodityImpacts, e.PriorityScore)
	primary, secondary := impactHierarchy(instrumentImpacts, commodityImpacts, e)

	return &domain.CorrelationResult{
		EventID:             e.ID,
		AnalyzedAt:          a.now().UTC(),
		InstrumentImpacts:   instrumentImpacts,
		CommodityImpacts:    commodityImpacts,
		OverallImpactScore:  overall,
		CorrelationStrength: strengthFor(overall, e.PriorityScore),
		PrimaryImpact:       primary,
		SecondaryEffects:    secondary,
		MarketNarrative:     marketNarrative(e, instrumentImpacts, commodityImpacts),
	}, nil
}

// collectStats runs the per-symbol series lookups under a bounded pool.
// The returned map is keyed by proxy symbol; symbols with provider errors
// or an empty window are absent.
func (a *Analyzer) collectStats(ctx context.Context, e *domain.Event, instruments, commodities map[string]string, beforeStart, afterEnd time.Time) map[string]windowStats {
	symbols := make([]string, 0, len(instruments)+len(commodities))
	for symbol := range instruments {
		symbols = append(symbols, symbol)
	}
	for _, symbol := range commodities {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		sem   = make(chan struct{}, a.lookups)
		stats = make(map[string]windowStats, len(symbols))
		seen  = make(map[string]bool, len(symbols))
	)

	for _, symbol := range symbols {
		if seen[symbol] {
			continue
		}
		seen[symbol] = true

		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			ws, err := a.fetchWindows(ctx, symbol, e.PublishedAt, beforeStart, afterEnd)
			if err != nil {
				a.logger.Printf("[correlation] event %s: skipping %s: %v", e.ID, symbol, err)
				return
			}
			if !ws.ok {
				return
			}

			mu.Lock()
			stats[symbol] = ws
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	return stats
}

// fetchWindows loads the series around the event and computes window means.
// ok is false when either window has no data points.
func (a *Analyzer) fetchWindows(ctx context.Context, symbol string, publishedAt, beforeStart, afterEnd time.Time) (windowStats, error) {
	points, err := a.provider.GetSeries(ctx, symbol, beforeStart, afterEnd)
	if err != nil {
		return windowStats{}, err
	}

	var (
		beforeSum, beforeVol float64
		afterSum, afterVol   float64
		beforeN, afterN      int
	)
	for _, pt := range points {
		if pt.Timestamp.Before(publishedAt) {
			beforeSum += pt.Close
			beforeVol += pt.Volume
			beforeN++
		} else {
			afterSum += pt.Close
			afterVol += pt.Volume
			afterN++
		}
	}
	if beforeN == 0 || afterN == 0 {
		return windowStats{}, nil
	}

	priceBefore := beforeSum / float64(beforeN)
	priceAfter := afterSum / float64(afterN)
	if priceBefore == 0 {
		return windowStats{}, nil
	}

	return windowStats{
		priceBefore:  priceBefore,
		priceAfter:   priceAfter,
		changePct:    (priceAfter - priceBefore) / priceBefore * 100,
		volumeBefore: beforeVol / float64(beforeN),
		volumeAfter:  afterVol / float64(afterN),
		ok:           true,
	}, nil
}

func (a *Analyzer) scoreInstruments(e *domain.Event, instruments map[string]string, stats map[string]windowStats) []domain.InstrumentImpact {
	impacts := make([]domain.InstrumentImpact, 0, len(instruments))
	for symbol, name := range instruments {
		ws, ok := stats[symbol]
		if !ok || !ws.ok {
			continue
		}

		volumeRatio := 1.0
		if ws.volumeBefore > 0 {
			volumeRatio = ws.volumeAfter / ws.volumeBefore
		}

		impacts = append(impacts, domain.InstrumentImpact{
			Symbol:      symbol,
			Name:        name,
			PriceBefore: round2(ws.priceBefore),
			PriceAfter:  round2(ws.priceAfter),
			ChangePct:   round2(ws.changePct),
			VolumeRatio: round2(volumeRatio),
			ImpactScore: round1(instrumentImpactScore(ws.changePct, volumeRatio, e, name)),
			Confidence:  round2(instrumentConfidence(ws.changePct, volumeRatio, e)),
		})
	}

	sort.Slice(impacts, func(i, j int) bool {
		ai, aj := math.Abs(impacts[i].ImpactScore), math.Abs(impacts[j].ImpactScore)
		if ai != aj {
			return ai > aj
		}
		return impacts[i].Symbol < impacts[j].Symbol
	})
	if len(impacts) > maxInstrumentImpacts {
		impacts = impacts[:maxInstrumentImpacts]
	}
	return impacts
}

func (a *Analyzer) scoreCommodities(e *domain.Event, commodities map[string]string, stats map[string]windowStats) []domain.CommodityImpactResult {
	impacts := make([]domain.CommodityImpactResult, 0, len(commodities))
	for commodity, symbol := range commodities {
		ws, ok := stats[symbol]
		if !ok || !ws.ok {
			continue
		}

		impacts = append(impacts, domain.CommodityImpactResult{
			Commodity:   commodity,
			PriceBefore: round2(ws.priceBefore),
			PriceAfter:  round2(ws.priceAfter),
			ChangePct:   round2(ws.changePct),
			ImpactScore: round1(commodityImpactScore(ws.changePct, e, commodity)),
			Confidence:  round2(commodityConfidence(ws.changePct, e, commodity)),
		})
	}

	sort.Slice(impacts, func(i, j int) bool {
		ai, aj := math.Abs(impacts[i].ImpactScore), math.Abs(impacts[j].ImpactScore)
		if ai != aj {
			return ai > aj
		}
		return impacts[i].Commodity < impacts[j].Commodity
	})
	return impacts
}

// instrumentImpactScore weighs price movement by volume confirmation and
// event relevance.
func instrumentImpactScore(changePct, volumeRatio float64, e *domain.Event, issuerName string) float64 {
	score := math.Abs(changePct) * 10

	if volumeRatio >= 2.0 {
		score *= 1.6
	} else if volumeRatio >= 1.5 {
		score *= 1.3
	}

	relevance := 1.0
	headline := strings.ToLower(e.Headline)
	if e.EventType == domain.EventTypePolicy && strings.Contains(headline, "tariff") {
		relevance = 2.0
	} else if e.EventType == domain.EventTypeMarketMove {
		relevance = 1.5
	}

	lowerName := strings.ToLower(issuerName)
	for _, org := range e.Organizations {
		if strings.Contains(lowerName, strings.ToLower(org)) {
			relevance *= 1.8
			break
		}
	}

	return score * relevance
}

// commodityImpactScore weighs commodity price movement; commodities carry a
// higher base multiplier than instruments.
func commodityImpactScore(changePct float64, e *domain.Event, commodity string) float64 {
	score := math.Abs(changePct) * 15

	headline := strings.ToLower(e.Headline)
	switch e.EventType {
	case domain.EventTypePolicy:
		if strings.Contains(headline, "tariff") {
			score *= 2.5
		} else if strings.Contains(headline, "trade") {
			score *= 1.8
		}
	case domain.EventTypeMarketMove:
		score *= 1.3
	}

	if _, ok := e.CommodityImpact[commodity]; ok {
		score *= 2.0
	}

	return score
}

func instrumentConfidence(changePct, volumeRatio float64, e *domain.Event) float64 {
	confidence := 0.5

	abs := math.Abs(changePct)
	if abs > 5 {
		confidence += 0.3
	} else if abs > 2 {
		confidence += 0.2
	}

	if volumeRatio > 2.0 {
		confidence += 0.3
	} else if volumeRatio > 1.5 {
		confidence += 0.15
	}

	if e.PriorityScore > 80 {
		confidence += 0.2
	} else if e.PriorityScore > 60 {
		confidence += 0.1
	}

	return clamp(confidence, 0, 1)
}

func commodityConfidence(changePct float64, e *domain.Event, commodity string) float64 {
	confidence := 0.6

	abs := math.Abs(changePct)
	if abs > 3 {
		confidence += 0.3
	} else if abs > 1 {
		confidence += 0.15
	}

	name := strings.ReplaceAll(commodity, "_", " ")
	if strings.Contains(strings.ToLower(e.Headline), name) ||
		strings.Contains(strings.ToLower(e.Summary), name) {
		confidence += 0.3
	}

	if e.EventType == domain.EventTypePolicy && strings.Contains(strings.ToLower(e.Headline), "tariff") {
		confidence += 0.4
	}

	return clamp(confidence, 0, 1)
}

// overallImpact combines instrument and commodity scores, scaled by event
// priority, into a 0..100 verdict.
func overallImpact(instruments []domain.InstrumentImpact, commodities []domain.CommodityImpactResult, priority float64) float64 {
	var score float64

	if len(instruments) > 0 {
		n := len(instruments)
		if n > topImpactCount {
			n = topImpactCount
		}
		var sum float64
		for _, impact := range instruments[:n] {
			sum += math.Abs(impact.ImpactScore)
		}
		score += sum / float64(n)
	}

	if len(commodities) > 0 {
		var sum float64
		for _, impact := range commodities {
			sum += math.Abs(impact.ImpactScore)
		}
		score += sum / float64(len(commodities)) * 1.5
	}

	score *= priority / 100.0
	return clamp(score, 0, 100)
}

func strengthFor(overall, priority float64) domain.CorrelationStrength {
	switch {
	case overall >= 15 && priority >= 80:
		return domain.CorrelationStrong
	case overall >= 8 && priority >= 60:
		return domain.CorrelationModerate
	case overall >= 3:
		return domain.CorrelationWeak
	default:
		return domain.CorrelationNone
	}
}

// impactHierarchy names the dominant move and the secondary effects.
func impactHierarchy(instruments []domain.InstrumentImpact, commodities []domain.CommodityImpactResult, e *domain.Event) (string, []string) {
	primary := "Limited market response"
	var secondary []string

	if len(commodities) > 0 {
		top := commodities[0]
		if math.Abs(top.ChangePct) >= 3 {
			direction := "surge"
			if top.ChangePct < 0 {
				direction = "decline"
			}
			primary = fmt.Sprintf("%s %s of %.1f%%", displayCommodity(top.Commodity), direction, math.Abs(top.ChangePct))
		}
	}

	significant := 0
	for _, impact := range instruments {
		if math.Abs(impact.ChangePct) >= 2 {
			significant++
		}
	}
	if significant > 0 {
		secondary = append(secondary, fmt.Sprintf("Mining stock volatility (%d companies affected)", significant))
	}
	if e.EventType == domain.EventTypePolicy {
		secondary = append(secondary, "Policy uncertainty impact")
	}
	if len(commodities) > 1 {
		secondary = append(secondary, "Broader commodity market reaction")
	}

	return primary, secondary
}

// marketNarrative composes a deterministic one-paragraph explanation.
func marketNarrative(e *domain.Event, instruments []domain.InstrumentImpact, commodities []domain.CommodityImpactResult) string {
	parts := []string{fmt.Sprintf("Following %s", strings.ToLower(e.Headline))}

	if len(commodities) > 0 {
		top := commodities[0]
		if math.Abs(top.ChangePct) >= 2 {
			direction := "surged"
			if top.ChangePct < 0 {
				direction = "declined"
			}
			parts = append(parts, fmt.Sprintf("%s %s %.1f%%", displayCommodity(top.Commodity), direction, math.Abs(top.ChangePct)))
		}
	}

	var significant []domain.InstrumentImpact
	for _, impact := range instruments {
		if math.Abs(impact.ChangePct) >= 2 {
			significant = append(significant, impact)
		}
	}
	if len(significant) >= 3 {
		var sum float64
		for _, impact := range significant {
			sum += impact.ChangePct
		}
		direction := "gained"
		if sum < 0 {
			direction = "declined"
		}
		parts = append(parts, fmt.Sprintf("Canadian mining stocks broadly %s with %d companies showing significant moves", direction, len(significant)))
	} else {
		for _, impact := range significant {
			direction := "gained"
			if impact.ChangePct < 0 {
				direction = "declined"
			}
			parts = append(parts, fmt.Sprintf("%s %s %.1f%%", impact.Name, direction, math.Abs(impact.ChangePct)))
		}
	}

	switch e.EventType {
	case domain.EventTypePolicy:
		parts = append(parts, "reflecting policy impact on resource sector")
	case domain.EventTypeMarketMove:
		parts = append(parts, "amid broader market volatility")
	}

	return strings.Join(parts, ". ") + "."
}

// displayCommodity renders lexicon keys ("natural_gas") as display names.
func displayCommodity(commodity string) string {
	words := strings.Split(commodity, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
