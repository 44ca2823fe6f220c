package fetch

import "errors"

// Fetch errors. Per-source failures are reported inside the batch result,
// never as the batch error.
var (
	// ErrSourceUnavailable marks a source whose retries are exhausted.
	// Recorded in the batch manifest; the batch continues.
	ErrSourceUnavailable = errors.New("source unavailable: retries exhausted")

	// ErrGlobalTimeout marks sources still running when the batch deadline
	// fired. Their partial absence is labeled, not silently dropped.
	ErrGlobalTimeout = errors.New("global timeout")

	// ErrNoSources is the one caller error: an empty source list is an
	// invalid configuration, not a fetch failure.
	ErrNoSources = errors.New("no sources configured")
)
