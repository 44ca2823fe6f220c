package domain

import "time"

// SourceKind identifies the transport a source descriptor uses.
type SourceKind string

const (
	SourceKindRSS  SourceKind = "rss"
	SourceKindWire SourceKind = "wire" // websocket newswire
	SourceKindStub SourceKind = "stub" // fixtures and tests
)

// String returns the string representation of SourceKind.
func (k SourceKind) String() string {
	return string(k)
}

// IsValid checks if the kind is a known value.
func (k SourceKind) IsValid() bool {
	return k == SourceKindRSS || k == SourceKindWire || k == SourceKindStub
}

// SourceDescriptor configures one fetchable source. Weight scales category
// base scores during classification, so the same headline from a lower-trust
// source produces a lower priority score.
type SourceDescriptor struct {
	ID          string        `json:"id" toml:"id"`
	Endpoint    string        `json:"endpoint" toml:"endpoint"`
	Kind        SourceKind    `json:"kind" toml:"kind"`
	Weight      float64       `json:"weight" toml:"weight"`             // 0..1, default 1.0
	MinInterval time.Duration `json:"min_interval" toml:"min_interval"` // gap between consecutive requests to this source
	MaxRetries  int           `json:"max_retries" toml:"max_retries"`
	Timeout     time.Duration `json:"timeout" toml:"timeout"` // per-request
}
