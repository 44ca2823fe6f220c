package domain

import "time"

// RawCandidate is an unscored item as it came off a source.
// Produced by the fetch orchestrator; immutable and short-lived.
type RawCandidate struct {
	SourceID    string    // descriptor id of the originating source
	Headline    string    // item title, may contain markup remnants
	Summary     string    // item description/summary, may be empty
	URL         string    // canonical link
	PublishedAt time.Time // zero value when the source gave no parsable date
}
