package pipeline

import "github.com/veridoc-tech/veridoc/internal/document"

// Document is one passport's worth of raw extraction output: every candidate
// value the OCR engine produced, across both zones, before resolution.
type Document struct {
	ID           string                 `json:"id"`
	Observations []document.Observation `json:"observations"`
}

// Result is the postprocessed record for one document.
type Result struct {
	ID          string             `json:"id"`
	Country     string             `json:"country"`
	Fields      map[string]string  `json:"fields"`
	Confidences map[string]float64 `json:"confidences"`

	Processing struct {
		ResolveNs   int64 `json:"resolve_ns"`
		NormalizeNs int64 `json:"normalize_ns"`
		RulesNs     int64 `json:"rules_ns"`
		TotalNs     int64 `json:"total_ns"`
	} `json:"processing"`
}

// Field returns the value for a logical field, or "" when absent.
func (r *Result) Field(name string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

// Confidence returns the confidence for a logical field, or 0.0 when absent.
func (r *Result) Confidence(name string) float64 {
	if r == nil || r.Confidences == nil {
		return 0
	}
	return r.Confidences[name]
}
