// Package resolver selects one value per logical field from the competing
// MRZ and visual-zone observations, producing the universal record the
// normalization stages and country rules operate on.
package resolver

import (
	"github.com/veridoc-tech/veridoc/internal/document"
	"github.com/veridoc-tech/veridoc/internal/probability"
)

// preferredSource lists fields where one zone is canonically more reliable.
// The MRZ encodes number, birth date and expiry date with check digits; it
// never carries an issue date. Fields not listed default to the visual zone.
var preferredSource = map[string]document.Source{
	document.FieldNumber:     document.SourceMRZ,
	document.FieldBirthDate:  document.SourceMRZ,
	document.FieldExpiryDate: document.SourceMRZ,
	document.FieldIssueDate:  document.SourceVisual,
}

// PreferredSource returns the source preferred for field.
func PreferredSource(field string) document.Source {
	if s, ok := preferredSource[field]; ok {
		return s
	}
	return document.SourceVisual
}

// Resolve picks exactly one observation per field and returns the resulting
// record. An observation on the field's preferred source wins outright,
// regardless of the competing source's confidence. Without one, the highest
// normalized confidence wins, ties broken VISUAL over MRZ. Fields with no
// observation at all are omitted.
func Resolve(observations []document.Observation) *document.Record {
	byField := make(map[string][]document.Observation)
	for _, obs := range observations {
		if obs.Field == "" || !obs.Source.Valid() {
			continue
		}
		byField[obs.Field] = append(byField[obs.Field], obs)
	}

	record := document.NewRecord()
	for field, candidates := range byField {
		obs, ok := pick(field, candidates)
		if !ok {
			continue
		}
		record.Set(field, obs.Value, probability.NormalizeInt(obs.Confidence))
	}
	return record
}

// pick applies the selection policy to one field's candidates.
func pick(field string, candidates []document.Observation) (document.Observation, bool) {
	preferred := PreferredSource(field)

	if obs, ok := bestOfSource(candidates, preferred); ok {
		return obs, true
	}

	// No observation on the preferred source: rank remaining candidates by
	// confidence, VISUAL before MRZ on ties so the order is deterministic.
	var best document.Observation
	found := false
	for _, src := range []document.Source{document.SourceVisual, document.SourceMRZ} {
		obs, ok := bestOfSource(candidates, src)
		if !ok {
			continue
		}
		if !found || obs.Confidence > best.Confidence {
			best = obs
			found = true
		}
	}
	return best, found
}

// bestOfSource returns the highest-confidence candidate from one source.
func bestOfSource(candidates []document.Observation, src document.Source) (document.Observation, bool) {
	var best document.Observation
	found := false
	for _, obs := range candidates {
		if obs.Source != src {
			continue
		}
		if !found || obs.Confidence > best.Confidence {
			best = obs
			found = true
		}
	}
	return best, found
}
