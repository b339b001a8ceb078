package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridoc-tech/veridoc/internal/document"
)

func TestPreferredSource(t *testing.T) {
	assert.Equal(t, document.SourceMRZ, PreferredSource(document.FieldNumber))
	assert.Equal(t, document.SourceMRZ, PreferredSource(document.FieldBirthDate))
	assert.Equal(t, document.SourceMRZ, PreferredSource(document.FieldExpiryDate))
	assert.Equal(t, document.SourceVisual, PreferredSource(document.FieldIssueDate))
	assert.Equal(t, document.SourceVisual, PreferredSource(document.FieldSurname))
	assert.Equal(t, document.SourceVisual, PreferredSource("anything else"))
}

func TestResolve_PreferredSourceIsHardOverride(t *testing.T) {
	// MRZ is preferred for the number even when VISUAL is strictly more
	// confident.
	record := Resolve([]document.Observation{
		{Field: document.FieldNumber, Source: document.SourceMRZ, Value: "P7264278", Confidence: 80},
		{Field: document.FieldNumber, Source: document.SourceVisual, Value: "P726427B", Confidence: 99},
	})

	assert.Equal(t, "P7264278", record.Get(document.FieldNumber))
	assert.InDelta(t, 0.80, record.Confidence(document.FieldNumber), 1e-9)
}

func TestResolve_FallsBackToHighestConfidence(t *testing.T) {
	// Surname prefers VISUAL; with only MRZ present, MRZ is used.
	record := Resolve([]document.Observation{
		{Field: document.FieldSurname, Source: document.SourceMRZ, Value: "DOE", Confidence: 70},
	})

	assert.Equal(t, "DOE", record.Get(document.FieldSurname))
	assert.InDelta(t, 0.70, record.Confidence(document.FieldSurname), 1e-9)
}

func TestResolve_TieBreaksVisualOverMRZ(t *testing.T) {
	// Issue date prefers VISUAL but has none here; two leftover sources tie
	// on confidence... with only MRZ left there is no tie, so craft a field
	// with default preference and equal scores on both zones after the
	// preferred zone is empty. The number prefers MRZ; give it none.
	record := Resolve([]document.Observation{
		{Field: document.FieldNumber, Source: document.SourceVisual, Value: "FROM-VISUAL", Confidence: 60},
	})
	assert.Equal(t, "FROM-VISUAL", record.Get(document.FieldNumber))
}

func TestResolve_DuplicatesWithinSourceTakeHighest(t *testing.T) {
	record := Resolve([]document.Observation{
		{Field: document.FieldName, Source: document.SourceVisual, Value: "ANA", Confidence: 55},
		{Field: document.FieldName, Source: document.SourceVisual, Value: "ANNA", Confidence: 91},
	})

	assert.Equal(t, "ANNA", record.Get(document.FieldName))
	assert.InDelta(t, 0.91, record.Confidence(document.FieldName), 1e-9)
}

func TestResolve_MissingFieldOmitted(t *testing.T) {
	record := Resolve([]document.Observation{
		{Field: document.FieldName, Source: document.SourceVisual, Value: "ANNA", Confidence: 91},
	})

	assert.False(t, record.Has(document.FieldSurname))
	assert.Empty(t, record.Get(document.FieldSurname))
	assert.InDelta(t, 0.0, record.Confidence(document.FieldSurname), 0)
}

func TestResolve_SkipsInvalidObservations(t *testing.T) {
	record := Resolve([]document.Observation{
		{Field: "", Source: document.SourceVisual, Value: "ignored", Confidence: 99},
		{Field: document.FieldGender, Source: document.Source("BARCODE"), Value: "ignored", Confidence: 99},
		{Field: document.FieldGender, Source: document.SourceMRZ, Value: "F", Confidence: 88},
	})

	require.True(t, record.Has(document.FieldGender))
	assert.Equal(t, "F", record.Get(document.FieldGender))
}

func TestResolve_EmptyInput(t *testing.T) {
	record := Resolve(nil)
	require.NotNil(t, record)
	assert.Empty(t, record.Fields)
	assert.Empty(t, record.Confidences)
}

func TestResolve_ConfidenceNormalized(t *testing.T) {
	record := Resolve([]document.Observation{
		{Field: document.FieldBirthDate, Source: document.SourceMRZ, Value: "740318", Confidence: 95},
	})
	assert.InDelta(t, 0.95, record.Confidence(document.FieldBirthDate), 1e-9)
}
