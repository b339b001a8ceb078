package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/veridoc-tech/veridoc/internal/document"
	"github.com/veridoc-tech/veridoc/internal/pipeline"
)

func sampleResult(id string) *pipeline.Result {
	return &pipeline.Result{
		ID:      id,
		Country: "KEN",
		Fields: map[string]string{
			document.FieldNumber:  "AK1234567",
			document.FieldSurname: "ODHIAMBO",
		},
		Confidences: map[string]float64{
			document.FieldNumber:  0.9,
			document.FieldSurname: 0.85,
		},
	}
}

func TestCSV_HeaderAndRows(t *testing.T) {
	w := NewWriter(nil)

	out, err := w.CSV([]*pipeline.Result{sampleResult("doc-1")})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	head := records[0]
	assert.Equal(t, "id", head[0])
	assert.Equal(t, "country", head[1])
	assert.Equal(t, "outputs."+document.FieldNumber, head[2])
	assert.Len(t, head, 2+2*len(document.Fields))

	body := records[1]
	assert.Equal(t, "doc-1", body[0])
	assert.Equal(t, "KEN", body[1])
	assert.Equal(t, "AK1234567", body[2])
}

func TestCSV_NilResultRendersFailedRow(t *testing.T) {
	w := NewWriter(nil)

	out, err := w.CSV([]*pipeline.Result{nil, sampleResult("doc-2")})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "failed-0", records[1][0])
	assert.Equal(t, "doc-2", records[2][0])
}

func TestXLSX_RoundTrips(t *testing.T) {
	w := NewWriter(nil)

	out, err := w.XLSX([]*pipeline.Result{sampleResult("doc-1")})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Documents")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 2)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "doc-1", rows[1][0])
	assert.Equal(t, "KEN", rows[1][1])
}
