package joint

import (
	"context"
	"net/http"
	"strings"

	"Fastener/internal/calc/margin"
	"Fastener/internal/calc/material"
	"Fastener/internal/calc/thread"
	"Fastener/internal/httputil"
)

// Recorder persists an analysis and returns its record id.
type Recorder interface {
	Save(ctx context.Context, req Request, res margin.JointAnalysisResult) (string, error)
}

// Response is the analyze body: the result plus the stored record id when
// a Recorder is configured.
type Response struct {
	ID string `json:"id,omitempty"`
	margin.JointAnalysisResult
}

type Handler struct {
	Analyzer *Analyzer
	Store    Recorder
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := httputil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := h.Analyzer.Analyze(req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := Response{JointAnalysisResult: res}
	if h.Store != nil {
		id, err := h.Store.Save(r.Context(), req, res)
		if err != nil {
			h.Analyzer.logger.Error("store analysis", "joint_id", req.JointID, "error", err)
			httputil.WriteError(w, err)
			return
		}
		out.ID = id
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

type materialsBody struct {
	Version   string              `json:"version"`
	Materials []material.Material `json:"materials"`
}

func (h *Handler) Materials(w http.ResponseWriter, r *http.Request) {
	tbl := h.Analyzer.Materials()
	httputil.WriteJSON(w, http.StatusOK, materialsBody{Version: tbl.Version(), Materials: tbl.All()})
}

// Threads lists tabulated sizes; ?series= selects UN (default) or M.
func (h *Handler) Threads(w http.ResponseWriter, r *http.Request) {
	s := strings.TrimSpace(r.URL.Query().Get("series"))
	if s == "" {
		s = string(thread.SeriesUN)
	}
	series, err := thread.ParseSeries(s)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, thread.Sizes(series))
}
