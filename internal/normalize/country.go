package normalize

import (
	"strings"

	"github.com/veridoc-tech/veridoc/internal/document"
)

// validateCountry accepts a known 3-letter code unchanged, maps a country
// display name onto its code, and otherwise keeps the value with its
// confidence halved. Empty input is a missing field, not a failure.
func (s *Stage) validateCountry(record *document.Record) {
	value := strings.TrimSpace(record.Get(document.FieldCountry))
	if value == "" {
		return
	}

	if s.tables.IsCode(value) {
		record.SetValue(document.FieldCountry, strings.ToUpper(value))
		return
	}

	if code, ok := s.tables.CodeForName(value); ok {
		record.SetValue(document.FieldCountry, code)
		return
	}

	record.Set(document.FieldCountry, value, record.Confidence(document.FieldCountry)*0.5)
}
