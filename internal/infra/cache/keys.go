package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Key kinds.
const (
	KindSelection = "selection"
	KindDigest    = "digest"
)

const dayLayout = "2006-01-02"

// Hash returns the first 16 hex characters of the SHA-256 of the
// normalized inputs. Inputs are trimmed and lowercased and joined with a
// separator that cannot appear in normalized text.
func Hash(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, p := range parts {
		normalized[i] = strings.ToLower(strings.Join(strings.Fields(p), " "))
	}
	sum := sha256.Sum256([]byte(strings.Join(normalized, "\x00")))
	return hex.EncodeToString(sum[:])[:16]
}

// Day formats t as the calendar day in its location.
func Day(t time.Time) string {
	return t.Format(dayLayout)
}

// SelectionKey keys the daily selection memo for an interest profile.
func SelectionKey(day time.Time, profile string) string {
	return KindSelection + ":" + Day(day) + ":" + Hash(profile)
}

// DigestKey keys the finished digest for an interest profile and options.
func DigestKey(day time.Time, profile string, options ...string) string {
	return KindDigest + ":" + Day(day) + ":" + Hash(append([]string{profile}, options...)...)
}
