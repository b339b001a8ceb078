// Package normalize applies the generic (country-independent) cleanup
// passes to a resolved record: date standardization, country code
// validation, country-of-issue derivation and canonicalization,
// birth-place cleanup, and generic string cleaning. Each pass is
// independently guarded; a failure in one pass never aborts the others.
package normalize

import (
	"log/slog"
	"time"

	"github.com/veridoc-tech/veridoc/internal/document"
	"github.com/veridoc-tech/veridoc/internal/fuzzy"
	"github.com/veridoc-tech/veridoc/internal/refdata"
)

// Stage runs the normalization passes over one record at a time. A Stage is
// immutable after construction and safe for concurrent use.
type Stage struct {
	logger *slog.Logger
	tables *refdata.Tables
	scorer fuzzy.Scorer
	now    func() time.Time
}

// NewStage builds a normalization stage. A nil scorer falls back to the
// default partial-ratio scorer; a nil logger falls back to slog.Default().
func NewStage(tables *refdata.Tables, scorer fuzzy.Scorer, logger *slog.Logger) *Stage {
	if scorer == nil {
		scorer = fuzzy.NewPartialRatio()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Stage{
		logger: logger,
		tables: tables,
		scorer: scorer,
		now:    time.Now,
	}
}

// WithClock overrides the time source. Tests pin it to keep the century
// expansion deterministic.
func (s *Stage) WithClock(now func() time.Time) *Stage {
	s.now = now
	return s
}

// ValidateCountry runs only the country validation pass. The pipeline calls
// it first, before the MRZ cross-checks, because those need the resolved
// 3-letter code; Apply does not repeat it, so the unknown-country confidence
// penalty is applied exactly once.
func (s *Stage) ValidateCountry(record *document.Record, docID string) {
	s.runPass("country", docID, record, s.validateCountry)
}

// Apply runs the pre-rule passes over record in place. docID identifies the
// document in diagnostics. Failures degrade the affected field and are
// logged, never returned. Generic string cleaning deliberately waits until
// Finish: several country rules key on punctuation this pass would remove.
func (s *Stage) Apply(record *document.Record, docID string) {
	s.runPass("dates", docID, record, s.standardizeDates)
	s.runPass("country_of_issue", docID, record, s.deriveCountryOfIssue)
	s.runPass("place_of_birth", docID, record, s.cleanPlaceOfBirth)
	s.runPass("country_of_issue_canonical", docID, record, s.canonicalizeCountryOfIssue)
}

// Finish runs the string and birth-place passes. Country rules run after
// Apply and may rewrite text fields, so the pipeline calls Finish once the
// rules are done to clean whatever they produced.
func (s *Stage) Finish(record *document.Record, docID string) {
	s.runPass("strings", docID, record, s.cleanStrings)
	s.runPass("place_of_birth", docID, record, s.cleanPlaceOfBirth)
}

// runPass guards one pass so an internal failure leaves the record's prior
// state for that field and continues with the remaining passes.
func (s *Stage) runPass(name, docID string, record *document.Record, fn func(*document.Record)) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("normalization pass failed",
				"pass", name, "document_id", docID, "panic", r)
		}
	}()
	fn(record)
}

// standardizeDates canonicalizes the three date fields. A parse failure
// keeps the original value and halves its confidence.
func (s *Stage) standardizeDates(record *document.Record) {
	now := s.now()
	for _, field := range DateFields {
		raw := record.Get(field)
		if raw == "" {
			continue
		}
		if formatted, ok := StandardizeDate(raw, field, now); ok {
			record.SetValue(field, formatted)
		} else {
			record.Set(field, raw, record.Confidence(field)*0.5)
		}
	}
}

// cleanStrings applies the generic cleaning to every text field present.
// Confidence is never altered by this pass.
func (s *Stage) cleanStrings(record *document.Record) {
	for _, field := range StringFields {
		if !record.Has(field) {
			continue
		}
		record.SetValue(field, CleanString(record.Get(field)))
	}
}
