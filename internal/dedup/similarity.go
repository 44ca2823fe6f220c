package dedup

import (
	"strings"

	"mining-intel/internal/idhash"
)

// Similarity scores how alike two pieces of text are in [0,1]. Pluggable so
// the token-overlap default can be swapped for an approximate method if the
// window ever outgrows O(n²) comparison.
type Similarity interface {
	Score(a, b string) float64
}

// TokenOverlap measures Jaccard similarity over normalized word sets.
type TokenOverlap struct{}

// Score returns |tokens(a) ∩ tokens(b)| / |tokens(a) ∪ tokens(b)|.
// Two empty texts score 0, not 1: an absent summary should never make two
// events look identical.
func (TokenOverlap) Score(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var intersection int
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			intersection++
		}
	}
	union := len(ta) + len(tb) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(text string) map[string]struct{} {
	fields := strings.Fields(idhash.NormalizeHeadline(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Verify interface compliance at compile time.
var _ Similarity = TokenOverlap{}
