// Package fuzzy provides the deterministic weighted token-similarity scorer
// shared by key-pattern flattening (searching for an implicit id path) and
// the relational engine (matching attribute/aggregate names to table
// names). Both callers need the exact same 0-100 ratio and the same
// threshold semantics, so the scorer lives in one place instead of being
// reimplemented per component.
package fuzzy

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the minimum Ratio score, on a 0-100 scale, at which
// two names are treated as referring to the same concept.
const DefaultThreshold = 75

// Ratio returns a deterministic 0-100 similarity score between a and b.
// It case-folds both strings and computes a Levenshtein-distance-based
// ratio. When the longer string is at least 1.5 times as long as the
// shorter one, the shorter string is also scored against every window of
// the longer one of its own length, and the best window score, weighted by
// 0.9, is used when it beats the whole-string ratio. This matches the scale
// and determinism requirements from the design notes (a pinned,
// reproducible algorithm, not a black-box NLP model).
func Ratio(a, b string) int {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == b {
		return 100
	}

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}

	if maxLen == 0 {
		return 100
	}

	dist := levenshtein.ComputeDistance(a, b)

	ratio := (1.0 - float64(dist)/float64(maxLen)) * 100
	if ratio < 0 {
		ratio = 0
	}

	short, long := a, b
	if len(short) > len(long) {
		short, long = long, short
	}

	if len(short) > 0 && float64(len(long)) >= 1.5*float64(len(short)) {
		for i := 0; i+len(short) <= len(long); i++ {
			d := levenshtein.ComputeDistance(short, long[i:i+len(short)])
			if partial := (1.0 - float64(d)/float64(len(short))) * 90; partial > ratio {
				ratio = partial
			}
		}
	}

	return int(ratio + 0.5)
}

// BestMatch scans candidates and returns the one with the highest [Ratio]
// score against name, tie-breaking by first match (the first candidate
// encountered keeps priority over any later candidate with an equal score).
// Returns a zero score and empty string if candidates is empty.
func BestMatch(name string, candidates []string) (score int, match string) {
	for _, candidate := range candidates {
		r := Ratio(name, candidate)
		if r > score {
			score = r
			match = candidate
		}
	}

	return score, match
}
