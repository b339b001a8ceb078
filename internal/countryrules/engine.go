// Package countryrules applies per-country validation and correction rules
// to a normalized record. Each issuing country with known document-format
// quirks gets one rule; records from any other country pass through
// unchanged.
package countryrules

import (
	"log/slog"
	"strings"

	"github.com/veridoc-tech/veridoc/internal/document"
	"github.com/veridoc-tech/veridoc/internal/fuzzy"
)

// Rule rewrites a record in place according to one country's document
// conventions.
type Rule func(e *Engine, r *document.Record)

// Engine dispatches records to country rules by ISO 3166-1 alpha-3 code.
// An Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	logger *slog.Logger
	scorer fuzzy.Scorer
	rules  map[string]Rule
}

// NewEngine builds the rule engine with the full country registry. A nil
// scorer falls back to the default partial-ratio scorer; a nil logger falls
// back to slog.Default().
func NewEngine(scorer fuzzy.Scorer, logger *slog.Logger) *Engine {
	if scorer == nil {
		scorer = fuzzy.NewPartialRatio()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger: logger,
		scorer: scorer,
		rules:  registry,
	}
}

// Supported reports whether a dedicated rule exists for the country code.
func Supported(country string) bool {
	_, ok := registry[strings.ToUpper(strings.TrimSpace(country))]
	return ok
}

// Supported reports whether this engine carries a rule for the country code.
func (e *Engine) Supported(country string) bool {
	_, ok := e.rules[strings.ToUpper(strings.TrimSpace(country))]
	return ok
}

// Apply runs the rule for country over record in place. Unknown countries
// are a no-op. A panicking rule is rolled back so the record is left exactly
// as it was before dispatch, and the failure is logged against docID.
func (e *Engine) Apply(record *document.Record, country, docID string) {
	if record == nil {
		return
	}
	code := strings.ToUpper(strings.TrimSpace(country))
	rule, ok := e.rules[code]
	if !ok {
		return
	}

	snapshot := record.Clone()
	defer func() {
		if r := recover(); r != nil {
			record.Fields = snapshot.Fields
			record.Confidences = snapshot.Confidences
			e.logger.Error("country rule failed",
				"country", code,
				"document_id", docID,
				"panic", r)
		}
	}()

	rule(e, record)
}
