package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// ParallelConfig holds configuration for batch processing.
type ParallelConfig struct {
	MaxWorkers       int                        // Number of parallel workers (0 = runtime.NumCPU())
	ProgressCallback ProgressCallback           // Optional progress reporting
	ErrorHandler     func(int, Document, error) // Optional per-document error handler
}

// DefaultParallelConfig returns sensible defaults for batch processing.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		MaxWorkers:       runtime.NumCPU(),
		ProgressCallback: nil,
		ErrorHandler:     nil,
	}
}

// docJob represents a single document processing job.
type docJob struct {
	index int
	doc   Document
}

// docResult represents the result of processing a single document.
type docResult struct {
	index  int
	result *Result
	err    error
}

// ProcessBatch processes multiple documents in parallel using a worker pool.
// Results come back in input order; a failed document leaves a nil slot and
// the first failure is returned alongside the others' results.
func (p *Pipeline) ProcessBatch(docs []Document) ([]*Result, error) {
	return p.ProcessBatchContext(context.Background(), docs)
}

// ProcessBatchContext processes documents in parallel with context
// cancellation support.
func (p *Pipeline) ProcessBatchContext(ctx context.Context, docs []Document) ([]*Result, error) {
	if len(docs) == 0 {
		return nil, errors.New("no documents provided")
	}
	if p == nil || p.stage == nil || p.rules == nil {
		return nil, errors.New("pipeline not initialized")
	}

	config := p.cfg.Parallel
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = runtime.NumCPU()
	}

	if config.ProgressCallback != nil {
		config.ProgressCallback.OnStart(len(docs))
		defer config.ProgressCallback.OnComplete()
	}

	// For a single document or worker, process sequentially
	if len(docs) == 1 || config.MaxWorkers == 1 {
		return p.processSequential(ctx, docs, config)
	}

	jobs := make(chan docJob, len(docs))
	results := make(chan docResult, len(docs))

	var wg sync.WaitGroup
	for i := 0; i < config.MaxWorkers; i++ {
		wg.Add(1)
		go p.worker(ctx, jobs, results, &wg)
	}

	go func() {
		defer close(jobs)
		for i, doc := range docs {
			select {
			case jobs <- docJob{index: i, doc: doc}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	resultMap := make(map[int]*Result)
	errorMap := make(map[int]error)
	processed := 0

	for res := range results {
		resultMap[res.index] = res.result
		errorMap[res.index] = res.err
		processed++

		if config.ProgressCallback != nil {
			config.ProgressCallback.OnProgress(processed, len(docs))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ordered := make([]*Result, len(docs))
	var firstError error

	for i := range docs {
		if err := errorMap[i]; err != nil {
			if firstError == nil {
				firstError = fmt.Errorf("document %d: %w", i, err)
			}
			if config.ErrorHandler != nil {
				config.ErrorHandler(i, docs[i], err)
			}
			if config.ProgressCallback != nil {
				config.ProgressCallback.OnError(i, err)
			}
		} else {
			ordered[i] = resultMap[i]
		}
	}

	return ordered, firstError
}

// processSequential handles the degenerate single-worker case in order.
func (p *Pipeline) processSequential(ctx context.Context, docs []Document, config ParallelConfig) ([]*Result, error) {
	ordered := make([]*Result, len(docs))
	var firstError error

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := p.ProcessContext(ctx, doc)
		if err != nil {
			if firstError == nil {
				firstError = fmt.Errorf("document %d: %w", i, err)
			}
			if config.ErrorHandler != nil {
				config.ErrorHandler(i, doc, err)
			}
			if config.ProgressCallback != nil {
				config.ProgressCallback.OnError(i, err)
			}
		} else {
			ordered[i] = res
		}
		if config.ProgressCallback != nil {
			config.ProgressCallback.OnProgress(i+1, len(docs))
		}
	}

	return ordered, firstError
}

// worker processes documents from the jobs channel.
func (p *Pipeline) worker(ctx context.Context, jobs <-chan docJob, results chan<- docResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}

			result, err := p.ProcessContext(ctx, job.doc)

			select {
			case results <- docResult{index: job.index, result: result, err: err}:
			case <-ctx.Done():
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// BatchStats holds statistics about a batch run.
type BatchStats struct {
	TotalDocuments     int           `json:"total_documents"`
	ProcessedDocuments int           `json:"processed_documents"`
	FailedDocuments    int           `json:"failed_documents"`
	WorkerCount        int           `json:"worker_count"`
	TotalDuration      time.Duration `json:"total_duration_ns"`
	AveragePerDocument time.Duration `json:"average_per_document_ns"`
	ThroughputPerSec   float64       `json:"throughput_per_sec"`
}

// CalculateBatchStats calculates performance statistics for a batch run.
func CalculateBatchStats(docs []Document, results []*Result, duration time.Duration, workerCount int) BatchStats {
	processed := 0
	failed := 0

	for _, result := range results {
		if result != nil {
			processed++
		} else {
			failed++
		}
	}

	var avgPerDoc time.Duration
	var throughput float64

	if processed > 0 {
		avgPerDoc = duration / time.Duration(processed)
		throughput = float64(processed) / duration.Seconds()
	}

	return BatchStats{
		TotalDocuments:     len(docs),
		ProcessedDocuments: processed,
		FailedDocuments:    failed,
		WorkerCount:        workerCount,
		TotalDuration:      duration,
		AveragePerDocument: avgPerDoc,
		ThroughputPerSec:   throughput,
	}
}
