package domain

// SourceFailure records one source that could not be fetched. Failures are
// carried alongside successes so callers can tell "no data" from "error".
type SourceFailure struct {
	SourceID string `json:"source_id"`
	Reason   string `json:"reason"`
	Attempts int    `json:"attempts"`
}

// BatchResult is the outcome of one orchestrated fetch across all sources.
// It always contains whatever succeeded; Incomplete marks batches cut short
// by the global timeout.
type BatchResult struct {
	Candidates []RawCandidate  `json:"candidates"`
	Failures   []SourceFailure `json:"failures"`
	Incomplete bool            `json:"incomplete"`
}
