package fetch

import (
	"context"
	"sync"
	"time"
)

// rateGate enforces a minimum interval between consecutive requests to the
// same source. It is a last-request-timestamp gate, not a token bucket:
// requests can never run closer together than the interval, but there is no
// smoothing below it.
//
// State is an explicit map owned by the orchestrator instance — never a
// process-wide singleton. The read-modify-write of each timestamp happens
// under a per-key lock.
type rateGate struct {
	mu      sync.Mutex
	entries map[string]*gateEntry
}

type gateEntry struct {
	mu   sync.Mutex
	next time.Time // earliest allowed time for the next request
}

func newRateGate() *rateGate {
	return &rateGate{entries: make(map[string]*gateEntry)}
}

// wait blocks until a request to key is allowed, then reserves the slot.
// Returns early with the context error on cancellation.
func (g *rateGate) wait(ctx context.Context, key string, minInterval time.Duration) error {
	if minInterval <= 0 {
		return ctx.Err()
	}

	g.mu.Lock()
	entry, ok := g.entries[key]
	if !ok {
		entry = &gateEntry{}
		g.entries[key] = entry
	}
	g.mu.Unlock()

	// Reserve atomically, then sleep outside the lock.
	entry.mu.Lock()
	now := time.Now()
	target := entry.next
	if target.Before(now) {
		target = now
	}
	entry.next = target.Add(minInterval)
	entry.mu.Unlock()

	delay := time.Until(target)
	if delay <= 0 {
		return ctx.Err()
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
