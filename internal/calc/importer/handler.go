package importer

import (
	"bytes"
	"net/http"

	"Fastener/internal/calc/batch"
	"Fastener/internal/calc/joint"
	"Fastener/internal/httputil"
)

type Handler struct {
	Analyzer *joint.Analyzer
	Workers  int
}

type ImportResult struct {
	batch.Result
	Errors []RowError `json:"row_errors,omitempty"`
}

// Import analyses every joint of an uploaded workbook ("file" form field).
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	sheet, err := Read(file)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := batch.Analyze(r.Context(), h.Analyzer, sheet.Requests, batch.Options{Workers: h.Workers})
	if err != nil && len(sheet.Errors) == 0 {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ImportResult{Result: res, Errors: sheet.Errors})
}

// Export analyses the posted batch and returns the results workbook.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var input batch.Input
	if err := httputil.DecodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := batch.Analyze(r.Context(), h.Analyzer, input.Items, batch.Options{Workers: h.Workers})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := Write(&buf, res.Items); err != nil {
		http.Error(w, "Export error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"margins.xlsx\"")
	_, _ = buf.WriteTo(w)
}
