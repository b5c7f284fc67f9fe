package batch

import (
	"net/http"
	"time"

	"Fastener/internal/calc/joint"
	"Fastener/internal/httputil"
	"Fastener/internal/metrics"
)

type Handler struct {
	Analyzer *joint.Analyzer
	Workers  int
	Timeout  time.Duration
	Metrics  *metrics.Metrics
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := httputil.DecodeJSON(r, &input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Analyze(r.Context(), h.Analyzer, input.Items, Options{
		Workers: h.Workers,
		Timeout: h.Timeout,
		Metrics: h.Metrics,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}
