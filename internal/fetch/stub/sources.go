package stub

import (
	"context"
	"sync"
	"time"

	"mining-intel/internal/domain"
)

// CandidateSource returns fixed in-memory candidates for testing.
// Implements fetch.CandidateSource.
type CandidateSource struct {
	mu         sync.Mutex
	candidates []domain.RawCandidate
	err        error
	failures   int
	delay      time.Duration
	calls      int
}

// NewCandidateSource creates a stub that returns the given candidates.
func NewCandidateSource(candidates []domain.RawCandidate) *CandidateSource {
	return &CandidateSource{candidates: candidates}
}

// WithError makes every Fetch call return err.
func (s *CandidateSource) WithError(err error) *CandidateSource {
	s.err = err
	return s
}

// WithFailures makes the first n Fetch calls return err before succeeding.
func (s *CandidateSource) WithFailures(n int, err error) *CandidateSource {
	s.failures = n
	s.err = err
	return s
}

// WithDelay makes each Fetch call block for d or until the context ends.
func (s *CandidateSource) WithDelay(d time.Duration) *CandidateSource {
	s.delay = d
	return s
}

// Fetch returns copies of the configured candidates.
func (s *CandidateSource) Fetch(ctx context.Context) ([]domain.RawCandidate, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.err != nil {
		if s.failures <= 0 {
			return nil, s.err
		}
		if s.calls <= s.failures {
			return nil, s.err
		}
	}

	result := make([]domain.RawCandidate, len(s.candidates))
	copy(result, s.candidates)
	return result, nil
}

// Calls reports how many times Fetch has been invoked.
func (s *CandidateSource) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
