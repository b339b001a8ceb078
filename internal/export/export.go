// Package export renders batch results to CSV and XLSX for downstream
// review. Columns follow the outputs.<field> / probability.<field> naming
// that review tooling expects.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/veridoc-tech/veridoc/internal/document"
	"github.com/veridoc-tech/veridoc/internal/pipeline"
)

// Writer renders result batches. It is stateless apart from its logger.
type Writer struct {
	logger *slog.Logger
}

// NewWriter builds an export writer. A nil logger falls back to
// slog.Default().
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{logger: logger}
}

// header returns the CSV/XLSX column names: id, country, then one value and
// one probability column per universal field.
func header() []string {
	cols := make([]string, 0, 2+2*len(document.Fields))
	cols = append(cols, "id", "country")
	for _, field := range document.Fields {
		cols = append(cols, "outputs."+field)
	}
	for _, field := range document.Fields {
		cols = append(cols, "probability."+field)
	}
	return cols
}

// row flattens one result into the column order produced by header.
// A nil result (a failed document) renders as an empty row with its index
// as the id.
func row(res *pipeline.Result, index int) []string {
	cols := make([]string, 0, 2+2*len(document.Fields))
	if res == nil {
		cols = append(cols, fmt.Sprintf("failed-%d", index), "")
		for range document.Fields {
			cols = append(cols, "")
		}
		for range document.Fields {
			cols = append(cols, "")
		}
		return cols
	}

	cols = append(cols, res.ID, res.Country)
	for _, field := range document.Fields {
		cols = append(cols, res.Field(field))
	}
	for _, field := range document.Fields {
		cols = append(cols, fmt.Sprintf("%.3f", res.Confidence(field)))
	}
	return cols
}

// CSV renders the batch as CSV with a header row.
func (w *Writer) CSV(results []*pipeline.Result) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write(header()); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	for i, res := range results {
		if err := cw.Write(row(res, i)); err != nil {
			return nil, fmt.Errorf("csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("csv flush: %w", err)
	}

	w.logger.Info("export.csv.ok", "rows", len(results))
	return buf.Bytes(), nil
}

// XLSX renders the batch as an XLSX workbook.
func (w *Writer) XLSX(results []*pipeline.Result) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Documents"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range header() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, res := range results {
		for j, v := range row(res, i) {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	// Widen the id and value columns
	_ = f.SetColWidth(sheet, "A", "B", 16)
	lastValueCol, _ := excelize.ColumnNumberToName(2 + len(document.Fields))
	_ = f.SetColWidth(sheet, "C", lastValueCol, 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	w.logger.Info("export.xlsx.ok",
		"rows", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
