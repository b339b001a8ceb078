package pipeline

import (
	"context"
	"errors"

	"github.com/veridoc-tech/veridoc/internal/common"
	"github.com/veridoc-tech/veridoc/internal/document"
	"github.com/veridoc-tech/veridoc/internal/mrz"
	"github.com/veridoc-tech/veridoc/internal/resolver"
)

// Process runs the full postprocessing chain for one document: resolve the
// observations into a record, apply the MRZ cross-checks, normalize, run
// the country rules, and clean up what the rules produced.
func (p *Pipeline) Process(doc Document) (*Result, error) {
	return p.ProcessContext(context.Background(), doc)
}

// ProcessContext is Process with context cancellation support. The chain is
// CPU-bound and short, so the context is checked between stages rather than
// inside them.
func (p *Pipeline) ProcessContext(ctx context.Context, doc Document) (*Result, error) {
	if p == nil || p.stage == nil || p.rules == nil {
		return nil, errors.New("pipeline not initialized")
	}
	if len(doc.Observations) == 0 {
		return nil, errors.New("no observations provided")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	total := common.NewTimer()

	resolveTimer := common.NewNamedTimer("resolve")
	record := resolver.Resolve(doc.Observations)
	resolveTimer.Stop()

	normalizeTimer := common.NewNamedTimer("normalize")
	p.stage.ValidateCountry(record, doc.ID)
	country := record.Get(document.FieldCountry)

	mrz.ReconcileNames(record, country)
	mrz.StripCountryPrefix(record, country)
	mrz.RecoverNumber(record)
	mrz.BackfillGender(record)
	p.stage.Apply(record, doc.ID)
	normalizeTimer.Stop()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rulesTimer := common.NewNamedTimer("rules")
	p.rules.Apply(record, record.Get(document.FieldCountry), doc.ID)
	p.stage.Finish(record, doc.ID)
	rulesTimer.Stop()

	result := &Result{
		ID:          doc.ID,
		Country:     record.Get(document.FieldCountry),
		Fields:      record.Fields,
		Confidences: record.Confidences,
	}
	result.Processing.ResolveNs = resolveTimer.Duration().Nanoseconds()
	result.Processing.NormalizeNs = normalizeTimer.Duration().Nanoseconds()
	result.Processing.RulesNs = rulesTimer.Duration().Nanoseconds()
	result.Processing.TotalNs = total.Stop().Nanoseconds()

	p.logger.Debug("document processed",
		"document_id", doc.ID,
		"country", result.Country,
		"fields", len(result.Fields),
		"total_ns", result.Processing.TotalNs)

	return result, nil
}
