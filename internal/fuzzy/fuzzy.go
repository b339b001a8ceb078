// Package fuzzy provides approximate string similarity scoring on a 0-100
// scale. The scorer is an injected strategy so stages can be tested with
// deterministic fixtures.
package fuzzy

import (
	"strings"

	lev "github.com/agnivade/levenshtein"
)

// Scorer rates the similarity of two strings from 0 (unrelated) to 100
// (identical under the scorer's notion of equality).
type Scorer interface {
	Score(a, b string) int
}

// PartialRatio scores the best alignment of the shorter string against any
// equal-length window of the longer one. This tolerates OCR noise around a
// known substring, e.g. "PE KUWAIT" against the city "KUWAIT".
type PartialRatio struct{}

// NewPartialRatio returns the default levenshtein-backed scorer.
func NewPartialRatio() PartialRatio { return PartialRatio{} }

// Score implements Scorer. Comparison is case-insensitive; empty input on
// either side scores 0.
func (PartialRatio) Score(a, b string) int {
	a = strings.ToUpper(strings.TrimSpace(a))
	b = strings.ToUpper(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	best := 0
	for start := 0; start+len(shorter) <= len(longer); start++ {
		window := longer[start : start+len(shorter)]
		if s := ratio(string(shorter), string(window)); s > best {
			best = s
		}
		if best == 100 {
			break
		}
	}
	return best
}

// ratio converts edit distance to a 0-100 similarity for two strings.
func ratio(a, b string) int {
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 100
	}
	d := lev.ComputeDistance(a, b)
	if d >= longest {
		return 0
	}
	return int(float64(longest-d) / float64(longest) * 100.0)
}
