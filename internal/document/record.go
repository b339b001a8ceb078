package document

import "strings"

// Source identifies which extraction zone an observation came from.
type Source string

const (
	// SourceMRZ is the machine-readable zone decoded from the passport's MRZ block.
	SourceMRZ Source = "MRZ"
	// SourceVisual is free-text OCR over the human-readable regions.
	SourceVisual Source = "VISUAL"
)

// Valid reports whether s is one of the known extraction sources.
func (s Source) Valid() bool {
	return s == SourceMRZ || s == SourceVisual
}

// ParseSource maps a raw source label to a Source, tolerating case.
// Unknown labels return an empty Source.
func ParseSource(raw string) Source {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(SourceMRZ):
		return SourceMRZ
	case string(SourceVisual):
		return SourceVisual
	default:
		return ""
	}
}

// Logical field names of the universal record. These are the keys used in
// Record.Fields and Record.Confidences throughout the engine.
const (
	FieldNumber         = "number"
	FieldCountry        = "country"
	FieldName           = "name"
	FieldSurname        = "surname"
	FieldMiddleName     = "middle name"
	FieldGender         = "gender"
	FieldPlaceOfBirth   = "place of birth"
	FieldBirthDate      = "birth date"
	FieldIssueDate      = "issue date"
	FieldExpiryDate     = "expiry date"
	FieldMotherName     = "mother name"
	FieldFatherName     = "father name"
	FieldSpouseName     = "spouse name"
	FieldPlaceOfIssue   = "place of issue"
	FieldCountryOfIssue = "country of issue"
	FieldMRZSurname     = "mrz_surname"
	FieldMRZName        = "mrz_name"
	FieldMRZGender      = "mrz_gender"
	FieldMRZLine1       = "mrzLine1"
	FieldMRZLine2       = "mrzLine2"
)

// Fields lists every logical field in output order.
var Fields = []string{
	FieldNumber,
	FieldCountry,
	FieldName,
	FieldSurname,
	FieldMiddleName,
	FieldGender,
	FieldPlaceOfBirth,
	FieldBirthDate,
	FieldIssueDate,
	FieldExpiryDate,
	FieldMotherName,
	FieldFatherName,
	FieldSpouseName,
	FieldPlaceOfIssue,
	FieldCountryOfIssue,
	FieldMRZLine1,
	FieldMRZLine2,
}

// Observation is one extracted candidate value for a logical field.
// Confidence is the raw engine score on a 0-100 integer scale.
type Observation struct {
	Field      string `json:"field"`
	Source     Source `json:"source"`
	Value      string `json:"value"`
	Confidence int    `json:"confidence"`
}

// Record is the universal passport record: one value and one confidence per
// logical field. A field absent from Fields reads as "" with confidence 0.0.
// Every field present in Fields has a matching Confidences entry.
type Record struct {
	Fields      map[string]string  `json:"fields"`
	Confidences map[string]float64 `json:"confidences"`
}

// NewRecord returns an empty record with initialized maps.
func NewRecord() *Record {
	return &Record{
		Fields:      make(map[string]string),
		Confidences: make(map[string]float64),
	}
}

// Get returns the value for field, or "" when the field is absent.
func (r *Record) Get(field string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	return r.Fields[field]
}

// Confidence returns the confidence for field, or 0.0 when absent.
func (r *Record) Confidence(field string) float64 {
	if r == nil || r.Confidences == nil {
		return 0
	}
	return r.Confidences[field]
}

// Set stores value and confidence for field, keeping the maps in sync.
func (r *Record) Set(field, value string, confidence float64) {
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	if r.Confidences == nil {
		r.Confidences = make(map[string]float64)
	}
	r.Fields[field] = value
	r.Confidences[field] = confidence
}

// SetValue rewrites the value for field while preserving its confidence.
// A field that had no confidence entry gets 0.0.
func (r *Record) SetValue(field, value string) {
	r.Set(field, value, r.Confidence(field))
}

// Has reports whether field was resolved at all.
func (r *Record) Has(field string) bool {
	if r == nil || r.Fields == nil {
		return false
	}
	_, ok := r.Fields[field]
	return ok
}

// Clone returns a deep copy of the record. Used by the rule engine to roll
// back after a failed rule.
func (r *Record) Clone() *Record {
	out := NewRecord()
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	for k, v := range r.Confidences {
		out.Confidences[k] = v
	}
	return out
}
