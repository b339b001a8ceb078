package normalize

import (
	"strings"

	"github.com/veridoc-tech/veridoc/internal/document"
	"github.com/veridoc-tech/veridoc/internal/probability"
)

// cityMatchThreshold is the minimum fuzzy score for a place-of-issue text
// to be accepted as a known issuing city.
const cityMatchThreshold = 90

// birthPlaceBoost is applied when a cleaned birth place matches the known
// set exactly.
const birthPlaceBoost = 1.2

// MatchCity scores place against every known issuing city and returns the
// best city and its country when the score reaches cityMatchThreshold.
func (s *Stage) MatchCity(place string) (city, country string, ok bool) {
	place = strings.ToUpper(strings.TrimSpace(place))
	if place == "" {
		return "", "", false
	}

	best := 0
	for c, cc := range s.tables.CityCountries() {
		if score := s.scorer.Score(place, c); score > best {
			best = score
			city, country = c, cc
		}
	}
	if best < cityMatchThreshold {
		return "", "", false
	}
	return city, country, true
}

// deriveCountryOfIssue fills the country-of-issue field from the free-form
// place-of-issue text via fuzzy city matching. The derived country inherits
// the place-of-issue confidence verbatim; a below-threshold match leaves
// the field untouched. Ugandan documents additionally get the matched city
// as the place of issue, replacing the noisy free-form text.
func (s *Stage) deriveCountryOfIssue(record *document.Record) {
	place := record.Get(document.FieldPlaceOfIssue)
	if strings.TrimSpace(place) == "" {
		return
	}

	city, country, ok := s.MatchCity(place)
	if !ok {
		return
	}
	record.Set(document.FieldCountryOfIssue, country, record.Confidence(document.FieldPlaceOfIssue))
	if record.Get(document.FieldCountry) == "UGA" {
		record.SetValue(document.FieldPlaceOfIssue, city)
	}
}

// canonicalizeCountryOfIssue snaps a noisy country-of-issue value onto the
// closest known country display name at the fuzzy threshold. Confidence is
// kept; a below-threshold value stays as is.
func (s *Stage) canonicalizeCountryOfIssue(record *document.Record) {
	value := strings.ToUpper(strings.TrimSpace(record.Get(document.FieldCountryOfIssue)))
	if value == "" {
		return
	}

	best := 0
	canonical := ""
	for _, name := range s.tables.CountryNames() {
		upper := strings.ToUpper(name)
		if score := s.scorer.Score(value, upper); score > best {
			best = score
			canonical = upper
		}
	}
	if best < cityMatchThreshold {
		return
	}
	record.SetValue(document.FieldCountryOfIssue, canonical)
}

// cleanPlaceOfBirth strips a trailing country suffix (the resolved
// country's 3-letter code or display name) from the place of birth, then
// boosts confidence when the result is a known canonical birth place.
func (s *Stage) cleanPlaceOfBirth(record *document.Record) {
	place := strings.TrimSpace(record.Get(document.FieldPlaceOfBirth))
	if place == "" {
		return
	}

	country := strings.ToUpper(strings.TrimSpace(record.Get(document.FieldCountry)))
	if country != "" {
		place = s.stripCountrySuffix(place, country)
		record.SetValue(document.FieldPlaceOfBirth, place)
	}

	if s.tables.IsKnownBirthPlace(place) {
		record.Set(document.FieldPlaceOfBirth, place,
			probability.Boost(record.Confidence(document.FieldPlaceOfBirth), birthPlaceBoost))
	}
}

// stripCountrySuffix removes a trailing country code or country name from
// place. A bare 3-letter code as the whole value is expanded to the
// country's display name.
func (s *Stage) stripCountrySuffix(place, code string) string {
	if place == code {
		if name, ok := s.tables.NameForCode(code); ok {
			return strings.ToUpper(name)
		}
		return place
	}
	if strings.HasSuffix(place, " "+code) {
		return strings.TrimSpace(strings.TrimSuffix(place, " "+code))
	}
	if name, ok := s.tables.NameForCode(code); ok {
		upper := strings.ToUpper(name)
		if place != upper && strings.HasSuffix(place, " "+upper) {
			return strings.TrimSpace(strings.TrimSuffix(place, " "+upper))
		}
	}
	return place
}
