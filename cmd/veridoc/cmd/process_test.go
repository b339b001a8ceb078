package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veridoc-tech/veridoc/internal/pipeline"
)

func writeDocumentsFile(t *testing.T, docs any) string {
	t.Helper()
	data, err := json.Marshal(docs)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "documents.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func sampleDocumentJSON(id string) map[string]any {
	return map[string]any{
		"id": id,
		"observations": []map[string]any{
			{"field": "number", "source": "MRZ", "value": "P72642788", "confidence": 97},
			{"field": "country", "source": "MRZ", "value": "PHL", "confidence": 95},
			{"field": "surname", "source": "VISUAL", "value": "DELA CRUZ", "confidence": 88},
		},
	}
}

func TestLoadDocuments_Array(t *testing.T) {
	path := writeDocumentsFile(t, []any{sampleDocumentJSON("doc-1"), sampleDocumentJSON("doc-2")})

	docs, err := loadDocuments([]string{path})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-1", docs[0].ID)
	assert.Len(t, docs[0].Observations, 3)
}

func TestLoadDocuments_SingleObject(t *testing.T) {
	path := writeDocumentsFile(t, sampleDocumentJSON("doc-1"))

	docs, err := loadDocuments([]string{path})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "doc-1", docs[0].ID)
}

func TestLoadDocuments_MissingFile(t *testing.T) {
	_, err := loadDocuments([]string{filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestLoadDocuments_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := loadDocuments([]string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestProcessCommand_JSONOutput(t *testing.T) {
	input := writeDocumentsFile(t, []any{sampleDocumentJSON("doc-1")})
	output := filepath.Join(t.TempDir(), "results.json")

	cmd := GetRootCommand()
	_, err := executeCommandAndCaptureOutput(t, cmd,
		[]string{"process", input, "--output", output, "--format", "json"})
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)

	var results []*pipeline.Result
	require.NoError(t, json.Unmarshal(data, &results))
	require.Len(t, results, 1)
	assert.Equal(t, "doc-1", results[0].ID)
	assert.Equal(t, "P7264278B", results[0].Field("number"))
	assert.InDelta(t, 0.8, results[0].Confidence("number"), 1e-9)
}

func TestProcessCommand_CSVOutput(t *testing.T) {
	input := writeDocumentsFile(t, []any{sampleDocumentJSON("doc-1")})
	output := filepath.Join(t.TempDir(), "results.csv")

	cmd := GetRootCommand()
	_, err := executeCommandAndCaptureOutput(t, cmd,
		[]string{"process", input, "--output", output, "--format", "csv"})
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "doc-1")
	assert.Contains(t, string(data), "outputs.number")
}

func TestProcessCommand_UnsupportedFormat(t *testing.T) {
	input := writeDocumentsFile(t, []any{sampleDocumentJSON("doc-1")})

	cmd := GetRootCommand()
	_, err := executeCommandAndCaptureOutput(t, cmd,
		[]string{"process", input, "--format", "yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestProcessCommand_NoArgs(t *testing.T) {
	cmd := GetRootCommand()
	_, err := executeCommandAndCaptureOutput(t, cmd, []string{"process"})
	require.Error(t, err)
}
