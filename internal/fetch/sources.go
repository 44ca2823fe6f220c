package fetch

import (
	"context"

	"mining-intel/internal/domain"
)

// CandidateSource provides raw candidate items from one external source.
// Implementations must honor context cancellation; the orchestrator wraps
// each call in the descriptor's per-request timeout.
type CandidateSource interface {
	// Fetch returns the source's current items. Items may repeat across
	// calls; identity hashing downstream makes re-ingestion idempotent.
	Fetch(ctx context.Context) ([]domain.RawCandidate, error)
}

// Task pairs a source descriptor with its transport implementation.
type Task struct {
	Descriptor domain.SourceDescriptor
	Source     CandidateSource
}
