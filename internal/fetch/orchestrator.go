// Package fetch runs concurrent, rate-limited candidate collection across
// many independent, unreliable sources. One source exhausting its retries
// never blocks or aborts the others; a batch always returns whatever
// succeeded plus a manifest of what failed and why.
package fetch

import (
	"context"
	"log"
	"sync"
	"time"

	"mining-intel/internal/domain"
)

// Default orchestrator settings.
const (
	DefaultMaxConcurrency = 10
	DefaultMaxRetries     = 3
	DefaultBackoffBase    = 500 * time.Millisecond
	DefaultMaxBackoff     = 10 * time.Second
	DefaultSourceTimeout  = 30 * time.Second
)

// Orchestrator schedules fetch tasks across sources under a bounded worker
// pool. Within one source requests are strictly sequential; across sources
// there is no ordering guarantee.
type Orchestrator struct {
	maxConcurrency int
	backoffBase    time.Duration
	maxBackoff     time.Duration
	gate           *rateGate
	logger         *log.Logger
}

// Options configures an Orchestrator.
type Options struct {
	MaxConcurrency int           // bounded worker pool size, default 10
	BackoffBase    time.Duration // retry delay is base×2^attempt, capped
	MaxBackoff     time.Duration
	Logger         *log.Logger
}

// NewOrchestrator creates an orchestrator. Rate-limit state lives on the
// instance, keyed by source id.
func NewOrchestrator(opts Options) *Orchestrator {
	maxConcurrency := opts.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	backoffBase := opts.BackoffBase
	if backoffBase <= 0 {
		backoffBase = DefaultBackoffBase
	}
	maxBackoff := opts.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = DefaultMaxBackoff
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Orchestrator{
		maxConcurrency: maxConcurrency,
		backoffBase:    backoffBase,
		maxBackoff:     maxBackoff,
		gate:           newRateGate(),
		logger:         logger,
	}
}

// sourceOutcome is one source's completed task.
type sourceOutcome struct {
	sourceID   string
	candidates []domain.RawCandidate
	failure    *domain.SourceFailure
}

// FetchAll runs one fetch task per source and joins the results. It returns
// when every task completes or ctx expires, whichever comes first; on
// timeout the partial result is labeled Incomplete and still-pending sources
// are recorded as failures. Only an empty task list is a caller error.
func (o *Orchestrator) FetchAll(ctx context.Context, tasks []Task) (*domain.BatchResult, error) {
	if len(tasks) == 0 {
		return nil, ErrNoSources
	}

	taskCh := make(chan Task)
	// Buffered so workers finishing after a global timeout never block on
	// a collector that already returned.
	outcomeCh := make(chan sourceOutcome, len(tasks))

	workers := o.maxConcurrency
	if workers > len(tasks) {
		workers = len(tasks)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				outcomeCh <- o.fetchSource(ctx, task)
			}
		}()
	}

	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomeCh)
	}()

	// Join: collect until every task reported or the deadline fires.
	completed := make(map[string]sourceOutcome, len(tasks))
	incomplete := false

collect:
	for len(completed) < len(tasks) {
		select {
		case outcome, ok := <-outcomeCh:
			if !ok {
				break collect
			}
			completed[outcome.sourceID] = outcome
		case <-ctx.Done():
			incomplete = true
			break collect
		}
	}

	result := &domain.BatchResult{Incomplete: incomplete}
	for _, task := range tasks {
		id := task.Descriptor.ID
		outcome, ok := completed[id]
		if !ok {
			// Never finished: label, don't drop.
			result.Failures = append(result.Failures, domain.SourceFailure{
				SourceID: id,
				Reason:   ErrGlobalTimeout.Error(),
			})
			continue
		}
		if outcome.failure != nil {
			result.Failures = append(result.Failures, *outcome.failure)
			continue
		}
		result.Candidates = append(result.Candidates, outcome.candidates...)
	}
	return result, nil
}

// fetchSource runs one source's strictly sequential attempt loop: rate gate,
// request with per-request timeout, exponential backoff between attempts.
func (o *Orchestrator) fetchSource(ctx context.Context, task Task) sourceOutcome {
	desc := task.Descriptor
	maxRetries := desc.MaxRetries
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	timeout := desc.Timeout
	if timeout <= 0 {
		timeout = DefaultSourceTimeout
	}

	var lastErr error
	attempts := 0

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if err := o.sleepBackoff(ctx, attempt); err != nil {
				break
			}
		}

		if err := o.gate.wait(ctx, desc.ID, desc.MinInterval); err != nil {
			lastErr = err
			break
		}

		attempts++
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		candidates, err := task.Source.Fetch(reqCtx)
		cancel()

		if err == nil {
			return sourceOutcome{sourceID: desc.ID, candidates: candidates}
		}
		lastErr = err
		o.logger.Printf("[fetch] source %s attempt %d/%d failed: %v", desc.ID, attempt+1, maxRetries+1, err)

		if ctx.Err() != nil {
			break
		}
	}

	reason := ErrSourceUnavailable.Error()
	if lastErr != nil {
		reason = reason + ": " + lastErr.Error()
	}
	return sourceOutcome{
		sourceID: desc.ID,
		failure: &domain.SourceFailure{
			SourceID: desc.ID,
			Reason:   reason,
			Attempts: attempts,
		},
	}
}

// sleepBackoff waits base×2^(attempt-1), capped at the configured maximum.
func (o *Orchestrator) sleepBackoff(ctx context.Context, attempt int) error {
	delay := o.maxBackoff
	if attempt-1 < 16 {
		if d := o.backoffBase << (attempt - 1); d < delay {
			delay = d
		}
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
