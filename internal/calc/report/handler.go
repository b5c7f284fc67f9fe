package report

import (
	"bytes"
	"net/http"

	"Fastener/internal/calc/batch"
	"Fastener/internal/calc/joint"
	"Fastener/internal/httputil"
)

type Input struct {
	Meta
	Items []joint.Request `json:"items"`
}

type Handler struct {
	Analyzer *joint.Analyzer
	Workers  int
}

// Generate analyses the posted joints and returns the PDF. Rejected joints
// are left out of the report.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
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
	if err := Render(&buf, input.Meta, res.Results()); err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"report.pdf\"")
	_, _ = buf.WriteTo(w)
}
