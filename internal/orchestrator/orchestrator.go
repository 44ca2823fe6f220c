// Package orchestrator coordinates the full intelligence pipeline:
// fetch → normalize → dedup → score → persist → correlate → aggregate.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mining-intel/internal/aggregate"
	"mining-intel/internal/correlation"
	"mining-intel/internal/dedup"
	"mining-intel/internal/domain"
	"mining-intel/internal/fetch"
	"mining-intel/internal/normalize"
	"mining-intel/internal/scoring"
	"mining-intel/internal/storage"
)

const (
	// DefaultTopK is how many events the aggregation phase ranks.
	DefaultTopK = 10

	// DefaultDedupWindow is how far back the persistent dedup window reaches.
	DefaultDedupWindow = 48 * time.Hour
)

// Options for creating an Orchestrator.
type Options struct {
	Fetcher    *fetch.Orchestrator
	Normalizer *normalize.Normalizer
	Dedup      *dedup.Deduplicator
	Classifier *scoring.Classifier
	Analyzer   *correlation.Analyzer

	// Optional stores. When nil the pipeline runs in stateless batch mode:
	// no cross-batch dedup window, no retention, aggregation over the
	// current batch only.
	EventStore       storage.EventStore
	CorrelationStore storage.CorrelationStore

	TopK        int
	DedupWindow time.Duration
	Verbose     bool
	Logger      *log.Logger
}

// Orchestrator runs pipeline batches.
type Orchestrator struct {
	fetcher    *fetch.Orchestrator
	normalizer *normalize.Normalizer
	dedup      *dedup.Deduplicator
	classifier *scoring.Classifier
	analyzer   *correlation.Analyzer

	eventStore storage.EventStore
	corrStore  storage.CorrelationStore

	topK        int
	dedupWindow time.Duration
	verbose     bool
	logger      *log.Logger
}

// New creates an Orchestrator. Nil pipeline stages take defaults; nil
// stores select stateless mode.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		fetcher:     opts.Fetcher,
		normalizer:  opts.Normalizer,
		dedup:       opts.Dedup,
		classifier:  opts.Classifier,
		analyzer:    opts.Analyzer,
		eventStore:  opts.EventStore,
		corrStore:   opts.CorrelationStore,
		topK:        opts.TopK,
		dedupWindow: opts.DedupWindow,
		verbose:     opts.Verbose,
		logger:      opts.Logger,
	}
	if o.fetcher == nil {
		o.fetcher = fetch.NewOrchestrator(fetch.Options{})
	}
	if o.normalizer == nil {
		o.normalizer = normalize.New()
	}
	if o.dedup == nil {
		o.dedup = dedup.NewDefault()
	}
	if o.classifier == nil {
		o.classifier = scoring.NewDefaultClassifier()
	}
	if o.topK <= 0 {
		o.topK = DefaultTopK
	}
	if o.dedupWindow <= 0 {
		o.dedupWindow = DefaultDedupWindow
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	return o
}

// RunResult carries per-phase counts, aggregation output, and the non-fatal
// errors collected along the way. A batch always returns whatever succeeded.
type RunResult struct {
	Fetched        int                    `json:"fetched"`
	SourceFailures []domain.SourceFailure `json:"source_failures,omitempty"`
	Incomplete     bool                   `json:"incomplete"`

	Normalized int `json:"normalized"`
	Dropped    int `json:"dropped"`
	Collapsed  int `json:"collapsed"`
	KnownDupes int `json:"known_dupes"`

	Persisted  int `json:"persisted"`
	Correlated int `json:"correlated"`

	TopEvents []aggregate.Scored          `json:"top_events"`
	Rollups   []aggregate.CommodityRollup `json:"rollups"`

	Errors []string `json:"errors,omitempty"`
}

// Run executes one pipeline batch over the given source tasks.
func (o *Orchestrator) Run(ctx context.Context, tasks []fetch.Task) (*RunResult, error) {
	result := &RunResult{}

	// Phase 1: fetch
	o.log("Phase 1: Fetching %d sources...", len(tasks))
	batch, err := o.fetcher.FetchAll(ctx, tasks)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (fetch) failed: %w", err)
	}
	result.Fetched = len(batch.Candidates)
	result.SourceFailures = batch.Failures
	result.Incomplete = batch.Incomplete
	for _, f := range batch.Failures {
		result.Errors = append(result.Errors, fmt.Sprintf("fetch %s: %s", f.SourceID, f.Reason))
	}
	o.log("  Fetched %d candidates (%d source failures)", result.Fetched, len(batch.Failures))

	// Phase 2: normalize
	o.log("Phase 2: Normalizing...")
	events, dropped := o.normalizer.NormalizeBatch(batch.Candidates)
	result.Normalized = len(events)
	result.Dropped = dropped
	o.log("  Normalized %d events (%d dropped)", len(events), dropped)

	// Phase 3: score. Scoring runs before dedup so group representatives
	// are chosen by priority.
	o.log("Phase 3: Scoring...")
	weights := sourceWeights(tasks)
	for i := range events {
		w, ok := weights[events[i].SourceID]
		if !ok {
			w = 1.0
		}
		events[i] = o.classifier.Score(events[i], w)
	}

	// Phase 4: dedup within the batch, then against the stored window.
	o.log("Phase 4: Deduplicating...")
	deduped := o.dedup.Deduplicate(events)
	events = deduped.Events
	result.Collapsed = deduped.Collapsed

	if o.eventStore != nil {
		known, err := o.recentWindow(ctx)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("dedup window: %v", err))
		} else {
			events, result.KnownDupes = o.dedup.FilterKnown(events, known)
		}
	}
	o.log("  %d events after dedup (%d collapsed, %d already known)",
		len(events), result.Collapsed, result.KnownDupes)

	// Phase 5: persist events
	if o.eventStore != nil {
		o.log("Phase 5: Persisting events...")
		for i := range events {
			e := events[i]
			if err := o.eventStore.Insert(ctx, &e); err != nil {
				if errors.Is(err, storage.ErrDuplicateKey) {
					continue
				}
				result.Errors = append(result.Errors, fmt.Sprintf("persist event %s: %v", e.ID, err))
				continue
			}
			result.Persisted++
		}
		o.log("  Persisted %d events", result.Persisted)
	}

	// Phase 6: correlate high-priority events
	scored := make([]aggregate.Scored, 0, len(events))
	if o.analyzer != nil {
		o.log("Phase 6: Correlating...")
		for i := range events {
			e := events[i]
			corr, err := o.analyzer.Analyze(ctx, &e)
			if err != nil {
				if !errors.Is(err, correlation.ErrBelowThreshold) {
					result.Errors = append(result.Errors, fmt.Sprintf("correlate event %s: %v", e.ID, err))
				}
				scored = append(scored, aggregate.Scored{Event: &e})
				continue
			}
			result.Correlated++
			scored = append(scored, aggregate.Scored{Event: &e, Correlation: corr})

			if o.corrStore != nil {
				if err := o.corrStore.Insert(ctx, corr); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
					result.Errors = append(result.Errors, fmt.Sprintf("persist correlation %s: %v", e.ID, err))
				}
			}
		}
		o.log("  Correlated %d events", result.Correlated)
	} else {
		for i := range events {
			scored = append(scored, aggregate.Scored{Event: &events[i]})
		}
	}

	// Phase 7: aggregate
	o.log("Phase 7: Aggregating...")
	result.TopEvents = aggregate.TopEvents(scored, o.topK)
	result.Rollups = aggregate.CommodityRollups(scored)
	o.log("Batch completed: %d events, %d correlated, %d errors",
		len(events), result.Correlated, len(result.Errors))

	return result, nil
}

// recentWindow loads stored events inside the dedup window.
func (o *Orchestrator) recentWindow(ctx context.Context) ([]domain.Event, error) {
	end := time.Now()
	start := end.Add(-o.dedupWindow)
	stored, err := o.eventStore.GetByTimeRange(ctx, start, end, 0)
	if err != nil {
		return nil, err
	}
	known := make([]domain.Event, 0, len(stored))
	for _, e := range stored {
		known = append(known, *e)
	}
	return known, nil
}

// sourceWeights maps source id to its configured weight; unknown sources
// weigh 1.0.
func sourceWeights(tasks []fetch.Task) map[string]float64 {
	weights := make(map[string]float64, len(tasks))
	for _, t := range tasks {
		w := t.Descriptor.Weight
		if w <= 0 {
			w = 1.0
		}
		weights[t.Descriptor.ID] = w
	}
	return weights
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		o.logger.Printf("[orchestrator] "+format, args...)
	}
}
