package server

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridoc-tech/veridoc/internal/document"
	"github.com/veridoc-tech/veridoc/internal/pipeline"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(DefaultConfig(), nil)
	require.NoError(t, err)
	return s
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	newTestServer(t).SetupRoutes(mux)
	return mux
}

func sampleDocument(id string) pipeline.Document {
	return pipeline.Document{
		ID: id,
		Observations: []document.Observation{
			{Field: document.FieldNumber, Source: document.SourceVisual, Value: "P72642788", Confidence: 97},
			{Field: document.FieldCountry, Source: document.SourceMRZ, Value: "PHL", Confidence: 95},
			{Field: document.FieldSurname, Source: document.SourceVisual, Value: "SANTOS", Confidence: 90},
		},
	}
}

func TestHealthHandler(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.NotEmpty(t, resp.Time)
}

func TestHealthHandler_MethodNotAllowed(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPostprocessHandler(t *testing.T) {
	mux := newTestMux(t)

	body, err := json.Marshal(sampleDocument("doc-1"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/postprocess", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "doc-1", res.ID)
	assert.Equal(t, "PHL", res.Country)
	assert.Equal(t, "P7264278B", res.Fields[document.FieldNumber])
	assert.InDelta(t, 0.8, res.Confidences[document.FieldNumber], 1e-9)
}

func TestPostprocessHandler_CountryRuleHitMetric(t *testing.T) {
	mux := newTestMux(t)

	supportedBefore := promtestutil.ToFloat64(countryRuleHits.WithLabelValues("PHL"))
	unsupportedBefore := promtestutil.ToFloat64(countryRuleHits.WithLabelValues("FRA"))

	post := func(doc pipeline.Document) {
		body, err := json.Marshal(doc)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/v1/postprocess", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	post(sampleDocument("doc-1"))
	post(pipeline.Document{
		ID: "doc-2",
		Observations: []document.Observation{
			{Field: document.FieldCountry, Source: document.SourceMRZ, Value: "FRA", Confidence: 95},
			{Field: document.FieldSurname, Source: document.SourceVisual, Value: "DURAND", Confidence: 90},
		},
	})

	// Only countries with a dedicated rule count as rule hits.
	assert.InDelta(t, supportedBefore+1,
		promtestutil.ToFloat64(countryRuleHits.WithLabelValues("PHL")), 1e-9)
	assert.InDelta(t, unsupportedBefore,
		promtestutil.ToFloat64(countryRuleHits.WithLabelValues("FRA")), 1e-9)
}

func TestPostprocessHandler_InvalidBody(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/postprocess", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostprocessHandler_NoObservations(t *testing.T) {
	mux := newTestMux(t)

	body, err := json.Marshal(pipeline.Document{ID: "doc-empty"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/postprocess", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBatchHandler_JSON(t *testing.T) {
	mux := newTestMux(t)

	body, err := json.Marshal(BatchRequest{
		Documents: []pipeline.Document{sampleDocument("doc-1"), sampleDocument("doc-2")},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/postprocess/batch", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, 0, resp.Failed)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "doc-1", resp.Results[0].ID)
	assert.Equal(t, "doc-2", resp.Results[1].ID)
}

func TestBatchHandler_CSVFormat(t *testing.T) {
	mux := newTestMux(t)

	body, err := json.Marshal(BatchRequest{
		Documents: []pipeline.Document{sampleDocument("doc-1")},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/postprocess/batch?format=csv", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "doc-1", records[1][0])
}

func TestBatchHandler_EmptyBatch(t *testing.T) {
	mux := newTestMux(t)

	body, err := json.Marshal(BatchRequest{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/postprocess/batch", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodOptions, "/v1/postprocess", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
