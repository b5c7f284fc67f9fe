package repo

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"Fastener/internal/calc/calcerr"
	"Fastener/internal/httputil"
)

type Handler struct {
	Repo Repository
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.Repo.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

// List serves ?joint_id=&limit=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	jointID := q.Get("joint_id")
	if jointID == "" {
		httputil.WriteError(w, calcerr.New(calcerr.CodeMalformedLoadCase, "joint_id is required"))
		return
	}
	limit := 0
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	recs, err := h.Repo.ListByJoint(r.Context(), jointID, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, recs)
}
