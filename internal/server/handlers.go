package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/veridoc-tech/veridoc/internal/countryrules"
	"github.com/veridoc-tech/veridoc/internal/pipeline"
	"github.com/veridoc-tech/veridoc/internal/version"
)

const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("encoding health response", "error", err)
	}
}

// postprocessHandler runs the pipeline for a single document.
func (s *Server) postprocessHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyMB*1024*1024)

	var doc pipeline.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		s.writeErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if s.pipeline == nil {
		s.writeErrorResponse(w, "Pipeline not initialized", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	res, err := s.pipeline.Process(doc)
	if err != nil {
		documentsTotal.WithLabelValues("single", "error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("Postprocessing failed: %v", err), http.StatusUnprocessableEntity)
		return
	}

	documentsTotal.WithLabelValues("single", "success").Inc()
	processingDuration.WithLabelValues("single").Observe(time.Since(start).Seconds())
	if countryrules.Supported(res.Country) {
		countryRuleHits.WithLabelValues(res.Country).Inc()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		s.logger.Error("encoding postprocess response", "error", err)
	}
}

// batchHandler runs the pipeline for many documents, with optional CSV or
// XLSX output selected by the format query parameter.
func (s *Server) batchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyMB*1024*1024)

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Documents) == 0 {
		s.writeErrorResponse(w, "No documents provided", http.StatusBadRequest)
		return
	}

	if s.pipeline == nil {
		s.writeErrorResponse(w, "Pipeline not initialized", http.StatusServiceUnavailable)
		return
	}

	batchSize.Observe(float64(len(req.Documents)))

	start := time.Now()
	results, err := s.pipeline.ProcessBatch(req.Documents)
	if results == nil && err != nil {
		documentsTotal.WithLabelValues("batch", "error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("Batch processing failed: %v", err), http.StatusUnprocessableEntity)
		return
	}
	processingDuration.WithLabelValues("batch").Observe(time.Since(start).Seconds())

	failed := 0
	for _, res := range results {
		if res == nil {
			failed++
			documentsTotal.WithLabelValues("batch", "error").Inc()
			continue
		}
		documentsTotal.WithLabelValues("batch", "success").Inc()
		if countryrules.Supported(res.Country) {
			countryRuleHits.WithLabelValues(res.Country).Inc()
		}
	}

	switch r.URL.Query().Get("format") {
	case formatCSV:
		out, err := s.exporter.CSV(results)
		if err != nil {
			s.writeErrorResponse(w, fmt.Sprintf("Export failed: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="results.csv"`)
		_, _ = w.Write(out)
	case formatXLSX:
		out, err := s.exporter.XLSX(results)
		if err != nil {
			s.writeErrorResponse(w, fmt.Sprintf("Export failed: %v", err), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="results.xlsx"`)
		_, _ = w.Write(out)
	default:
		response := BatchResponse{
			Results: results,
			Count:   len(results),
			Failed:  failed,
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			s.logger.Error("encoding batch response", "error", err)
		}
	}
}

// writeErrorResponse writes a JSON error payload with the given status.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message}); err != nil {
		s.logger.Error("encoding error response", "error", err)
	}
}
