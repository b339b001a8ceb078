package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/veridoc-tech/veridoc/internal/config"
	"github.com/veridoc-tech/veridoc/internal/export"
	"github.com/veridoc-tech/veridoc/internal/pipeline"
)

// processCmd represents the process command for batch document postprocessing.
var processCmd = &cobra.Command{
	Use:   "process [files...]",
	Short: "Postprocess passport records from JSON input files",
	Long: `Postprocess OCR-extracted passport records. Each input file contains a
JSON document or an array of documents with field observations from the
MRZ and visual inspection zones. Records are resolved, normalized, and
validated with country-specific rules.

Examples:
  veridoc process documents.json
  veridoc process batch1.json batch2.json --workers 8
  veridoc process documents.json --format csv --output results.csv
  veridoc process documents.json --format xlsx --output results.xlsx --progress`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE:         runProcessCommand,
}

type processOptions struct {
	RefDataDir      string
	Format          string
	OutputFile      string
	Workers         int
	Progress        bool
	ContinueOnError bool
}

// configToProcessOptions maps centralized configuration to process options.
// CLI flags override config file values through Viper's precedence system.
func configToProcessOptions(cfg *config.Config, cmd *cobra.Command) processOptions {
	opts := processOptions{
		RefDataDir:      cfg.RefDataDir,
		Format:          cfg.Output.Format,
		OutputFile:      cfg.Output.File,
		Workers:         cfg.Batch.Workers,
		ContinueOnError: cfg.Batch.ContinueOnError,
	}

	if cmd.Flags().Changed("format") {
		opts.Format, _ = cmd.Flags().GetString("format")
	}
	if cmd.Flags().Changed("output") {
		opts.OutputFile, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers, _ = cmd.Flags().GetInt("workers")
	}
	if cmd.Flags().Changed("continue-on-error") {
		opts.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
	}
	opts.Progress, _ = cmd.Flags().GetBool("progress")

	return opts
}

func runProcessCommand(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	opts := configToProcessOptions(cfg, cmd)

	docs, err := loadDocuments(args)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents found in input files")
	}

	builder := pipeline.NewBuilder().
		WithRefDataDir(opts.RefDataDir).
		WithWorkers(opts.Workers).
		WithErrorHandler(func(index int, doc pipeline.Document, err error) {
			slog.Error("document failed", "index", index, "document_id", doc.ID, "error", err)
		})
	if opts.Progress {
		builder = builder.WithProgressCallback(
			pipeline.NewConsoleProgressCallback(cmd.ErrOrStderr(), "Processing"))
	}

	p, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	start := time.Now()
	results, err := p.ProcessBatch(docs)
	if results == nil && err != nil {
		return fmt.Errorf("batch processing failed: %w", err)
	}

	stats := pipeline.CalculateBatchStats(docs, results, time.Since(start), p.Config().Parallel.MaxWorkers)
	slog.Info("batch finished",
		"total", stats.TotalDocuments,
		"processed", stats.ProcessedDocuments,
		"failed", stats.FailedDocuments,
		"workers", stats.WorkerCount,
		"throughput_per_sec", fmt.Sprintf("%.1f", stats.ThroughputPerSec))

	if err != nil {
		if !opts.ContinueOnError {
			return fmt.Errorf("batch processing failed: %w", err)
		}
		slog.Warn("some documents failed", "error", err)
	}

	output, err := renderResults(results, opts.Format)
	if err != nil {
		return err
	}

	if opts.OutputFile != "" {
		if err := os.WriteFile(opts.OutputFile, output, 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		slog.Info("results written", "file", opts.OutputFile, "documents", len(results))
		return nil
	}

	_, err = cmd.OutOrStdout().Write(output)
	return err
}

// loadDocuments reads documents from the given JSON files. A file may hold
// either a single document object or an array of documents.
func loadDocuments(files []string) ([]pipeline.Document, error) {
	var docs []pipeline.Document
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}

		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var batch []pipeline.Document
			if err := json.Unmarshal(trimmed, &batch); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", file, err)
			}
			docs = append(docs, batch...)
			continue
		}

		var doc pipeline.Document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func renderResults(results []*pipeline.Result, format string) ([]byte, error) {
	switch format {
	case "json", "":
		out, err := pipeline.ToJSONBatch(results)
		if err != nil {
			return nil, fmt.Errorf("failed to encode results: %w", err)
		}
		return append([]byte(out), '\n'), nil
	case "csv":
		return export.NewWriter(slog.Default()).CSV(results)
	case "xlsx":
		return export.NewWriter(slog.Default()).XLSX(results)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringP("format", "f", "json", "output format (json, csv, xlsx)")
	processCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	processCmd.Flags().IntP("workers", "w", 0, "number of parallel workers (0 = number of CPUs)")
	processCmd.Flags().Bool("progress", false, "show a progress bar on stderr")
	processCmd.Flags().Bool("continue-on-error", true, "emit partial results when some documents fail")
}
