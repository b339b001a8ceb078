// Package probability converts raw extraction scores to the engine's
// 0.0-1.0 confidence scale and merges extraction confidence with
// validation confidence.
package probability

import (
	"strconv"
	"strings"
)

// Normalize maps a raw 0-100 confidence value to [0.0, 1.0].
// Missing or unparsable input yields 0.0; it never fails. Values outside
// 0-100 are passed through scaled, since upstream extraction owns the range.
func Normalize(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v / 100.0
}

// NormalizeInt maps a raw 0-100 integer confidence to [0.0, 1.0].
func NormalizeInt(raw int) float64 {
	return float64(raw) / 100.0
}

// Combine merges an extraction confidence with a validation confidence under
// a conservative policy: validation can only lower a score that extraction
// already established. When extraction produced no signal (original == 0),
// the validation confidence stands on its own.
func Combine(original, validation float64) float64 {
	if original > 0 {
		return min(original, validation)
	}
	return validation
}

// Boost raises a confidence by the given factor, capped at 1.0. Used by the
// birth-place pass when a cleaned value matches the known-place set.
func Boost(confidence, factor float64) float64 {
	return min(1.0, confidence*factor)
}
