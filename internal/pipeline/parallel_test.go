package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridoc-tech/veridoc/internal/document"
)

// mockProgressCallback records callback invocations for assertions.
type mockProgressCallback struct {
	mu         sync.Mutex
	starts     []int
	progress   []struct{ current, total int }
	completes  int
	errIndexes []int
}

func (m *mockProgressCallback) OnStart(total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts = append(m.starts, total)
}

func (m *mockProgressCallback) OnProgress(current, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = append(m.progress, struct{ current, total int }{current, total})
}

func (m *mockProgressCallback) OnComplete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completes++
}

func (m *mockProgressCallback) OnError(current int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errIndexes = append(m.errIndexes, current)
}

func surnameDocument(id, surname string) Document {
	return Document{
		ID: id,
		Observations: []document.Observation{
			{Field: document.FieldSurname, Source: document.SourceVisual, Value: surname, Confidence: 90},
		},
	}
}

func TestDefaultParallelConfig(t *testing.T) {
	config := DefaultParallelConfig()

	assert.Positive(t, config.MaxWorkers, "MaxWorkers should be > 0")
	assert.Nil(t, config.ProgressCallback, "ProgressCallback should default to nil")
	assert.Nil(t, config.ErrorHandler, "ErrorHandler should default to nil")
}

func TestProcessBatch_EmptyInput(t *testing.T) {
	p := newTestPipeline(t)

	results, err := p.ProcessBatch(nil)
	require.Error(t, err)
	assert.Nil(t, results)
	assert.Contains(t, err.Error(), "no documents provided")
}

func TestProcessBatch_NotInitialized(t *testing.T) {
	p := &Pipeline{}

	results, err := p.ProcessBatch([]Document{surnameDocument("doc-0", "SMITH")})
	require.Error(t, err)
	assert.Nil(t, results)
	assert.Contains(t, err.Error(), "pipeline not initialized")
}

func TestProcessBatch_SingleWorkerKeepsOrder(t *testing.T) {
	p, err := NewBuilder().
		WithWorkers(1).
		WithClock(func() time.Time { return testNow }).
		Build()
	require.NoError(t, err)

	docs := []Document{
		surnameDocument("doc-0", "SMITH"),
		surnameDocument("doc-1", "GARCIA"),
		surnameDocument("doc-2", "KHAN"),
	}

	results, err := p.ProcessBatch(docs)
	require.NoError(t, err)
	require.Len(t, results, len(docs))
	for i, res := range results {
		require.NotNil(t, res)
		assert.Equal(t, docs[i].ID, res.ID)
	}
}

func TestProcessBatch_MultipleWorkersKeepOrder(t *testing.T) {
	p, err := NewBuilder().
		WithWorkers(4).
		WithClock(func() time.Time { return testNow }).
		Build()
	require.NoError(t, err)

	docs := make([]Document, 12)
	for i := range docs {
		docs[i] = surnameDocument(fmt.Sprintf("doc-%d", i), "SMITH")
	}

	results, err := p.ProcessBatch(docs)
	require.NoError(t, err)
	require.Len(t, results, len(docs))
	for i, res := range results {
		require.NotNil(t, res)
		assert.Equal(t, fmt.Sprintf("doc-%d", i), res.ID)
	}
}

func TestProcessBatch_ErrorIsolation(t *testing.T) {
	var handled []int
	p, err := NewBuilder().
		WithWorkers(2).
		WithClock(func() time.Time { return testNow }).
		WithErrorHandler(func(index int, _ Document, _ error) {
			handled = append(handled, index)
		}).
		Build()
	require.NoError(t, err)

	docs := []Document{
		surnameDocument("doc-0", "SMITH"),
		{ID: "doc-1"}, // no observations
		surnameDocument("doc-2", "GARCIA"),
	}

	results, err := p.ProcessBatch(docs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "document 1")

	// The failure leaves a nil slot; the neighbours still processed.
	require.Len(t, results, 3)
	assert.NotNil(t, results[0])
	assert.Nil(t, results[1])
	assert.NotNil(t, results[2])

	// The error ranking loop runs after the workers are done, so no lock
	// is needed to read the handler's record.
	assert.Equal(t, []int{1}, handled)
}

func TestProcessBatch_ProgressCallback(t *testing.T) {
	cb := &mockProgressCallback{}
	p, err := NewBuilder().
		WithWorkers(2).
		WithClock(func() time.Time { return testNow }).
		WithProgressCallback(cb).
		Build()
	require.NoError(t, err)

	docs := []Document{
		surnameDocument("doc-0", "SMITH"),
		surnameDocument("doc-1", "GARCIA"),
		surnameDocument("doc-2", "KHAN"),
	}

	_, err = p.ProcessBatch(docs)
	require.NoError(t, err)

	cb.mu.Lock()
	defer cb.mu.Unlock()
	assert.Equal(t, []int{3}, cb.starts)
	assert.Equal(t, 1, cb.completes)
	require.NotEmpty(t, cb.progress)
	final := cb.progress[len(cb.progress)-1]
	assert.Equal(t, 3, final.current)
	assert.Equal(t, 3, final.total)
	assert.Empty(t, cb.errIndexes)
}

func TestProcessBatchContext_Cancelled(t *testing.T) {
	p, err := NewBuilder().
		WithWorkers(2).
		WithClock(func() time.Time { return testNow }).
		Build()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	docs := []Document{
		surnameDocument("doc-0", "SMITH"),
		surnameDocument("doc-1", "GARCIA"),
	}

	results, err := p.ProcessBatchContext(ctx, docs)
	require.Error(t, err)
	assert.Nil(t, results)
}

func TestCalculateBatchStats(t *testing.T) {
	docs := []Document{
		surnameDocument("doc-0", "SMITH"),
		surnameDocument("doc-1", "GARCIA"),
		surnameDocument("doc-2", "KHAN"),
	}
	results := []*Result{{ID: "doc-0"}, nil, {ID: "doc-2"}}

	stats := CalculateBatchStats(docs, results, 2*time.Second, 4)

	assert.Equal(t, 3, stats.TotalDocuments)
	assert.Equal(t, 2, stats.ProcessedDocuments)
	assert.Equal(t, 1, stats.FailedDocuments)
	assert.Equal(t, 4, stats.WorkerCount)
	assert.Equal(t, 2*time.Second, stats.TotalDuration)
	assert.Equal(t, time.Second, stats.AveragePerDocument)
	assert.InDelta(t, 1.0, stats.ThroughputPerSec, 1e-9)
}

func TestCalculateBatchStats_AllFailed(t *testing.T) {
	docs := []Document{surnameDocument("doc-0", "SMITH")}

	stats := CalculateBatchStats(docs, []*Result{nil}, time.Second, 1)

	assert.Equal(t, 0, stats.ProcessedDocuments)
	assert.Equal(t, 1, stats.FailedDocuments)
	assert.Zero(t, stats.AveragePerDocument)
	assert.Zero(t, stats.ThroughputPerSec)
}
