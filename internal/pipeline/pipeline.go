// Package pipeline wires the postprocessing stages into a single engine:
// observation resolution, MRZ cross-checks, normalization, and country
// rules, plus batch execution over many documents.
package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/veridoc-tech/veridoc/internal/countryrules"
	"github.com/veridoc-tech/veridoc/internal/fuzzy"
	"github.com/veridoc-tech/veridoc/internal/normalize"
	"github.com/veridoc-tech/veridoc/internal/refdata"
)

// Config holds configuration for the postprocessing pipeline.
type Config struct {
	// RefDataDir overrides the embedded reference tables with YAML files
	// from this directory. Empty means embedded data only.
	RefDataDir string

	// Parallel processing configuration for batch runs.
	Parallel ParallelConfig
}

// DefaultConfig returns a default pipeline config.
func DefaultConfig() Config {
	return Config{
		RefDataDir: "",
		Parallel:   DefaultParallelConfig(),
	}
}

// Pipeline runs the full postprocessing chain over documents. It is
// immutable after Build and safe for concurrent use.
type Pipeline struct {
	cfg    Config
	logger *slog.Logger
	tables *refdata.Tables
	stage  *normalize.Stage
	rules  *countryrules.Engine
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg    Config
	logger *slog.Logger
	scorer fuzzy.Scorer
	now    func() time.Time
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithRefDataDir sets the reference data override directory.
func (b *Builder) WithRefDataDir(dir string) *Builder {
	if dir != "" {
		b.cfg.RefDataDir = dir
	}
	return b
}

// WithWorkers sets the worker count for batch processing (if >0).
func (b *Builder) WithWorkers(n int) *Builder {
	if n > 0 {
		b.cfg.Parallel.MaxWorkers = n
	}
	return b
}

// WithProgressCallback sets the progress reporter for batch runs.
func (b *Builder) WithProgressCallback(cb ProgressCallback) *Builder {
	b.cfg.Parallel.ProgressCallback = cb
	return b
}

// WithErrorHandler sets the per-document failure callback for batch runs.
func (b *Builder) WithErrorHandler(fn func(int, Document, error)) *Builder {
	b.cfg.Parallel.ErrorHandler = fn
	return b
}

// WithLogger sets the structured logger used by all stages.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithScorer overrides the fuzzy scorer. Tests inject deterministic ones.
func (b *Builder) WithScorer(scorer fuzzy.Scorer) *Builder {
	b.scorer = scorer
	return b
}

// WithClock overrides the time source used for date century expansion.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build loads reference data and assembles the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	var tables *refdata.Tables
	var err error
	if b.cfg.RefDataDir != "" {
		tables, err = refdata.LoadDir(b.cfg.RefDataDir)
	} else {
		tables, err = refdata.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("loading reference data: %w", err)
	}

	scorer := b.scorer
	if scorer == nil {
		scorer = fuzzy.NewPartialRatio()
	}

	stage := normalize.NewStage(tables, scorer, logger)
	if b.now != nil {
		stage = stage.WithClock(b.now)
	}

	return &Pipeline{
		cfg:    b.cfg,
		logger: logger,
		tables: tables,
		stage:  stage,
		rules:  countryrules.NewEngine(scorer, logger),
	}, nil
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() Config { return p.cfg }
