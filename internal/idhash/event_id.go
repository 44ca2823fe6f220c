// Package idhash computes deterministic event identities so re-ingesting
// the same story never creates a duplicate.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/mr-tron/base58"
)

// ComputeEventID computes a deterministic event id using SHA256.
// Formula: SHA256(normalizeHeadline(headline) + "|" + url)
// Returns hex-encoded hash (64 characters).
func ComputeEventID(headline, url string) string {
	data := NormalizeHeadline(headline) + "|" + url
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ShortID derives a compact display form of an event id for report and log
// lines: base58 of the first 8 bytes of the hex-decoded id. Returns the
// input unchanged if it is not valid hex.
func ShortID(eventID string) string {
	raw, err := hex.DecodeString(eventID)
	if err != nil || len(raw) < 8 {
		return eventID
	}
	return base58.Encode(raw[:8])
}

// NormalizeHeadline lowercases, strips everything but letters and digits,
// and collapses runs of whitespace to a single space. Two headlines that
// differ only in punctuation or casing normalize identically.
func NormalizeHeadline(headline string) string {
	var b strings.Builder
	b.Grow(len(headline))
	for _, r := range strings.ToLower(headline) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
