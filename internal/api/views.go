package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// GetValuations handles GET /users/{user}/valuations
func (h *Handler) GetValuations(w http.ResponseWriter, r *http.Request) {
	report := h.reports.ForUser(r.Context(), mux.Vars(r)["user"])
	respondJSON(w, http.StatusOK, report.Holdings)
}

// GetNetWorth handles GET /users/{user}/networth
func (h *Handler) GetNetWorth(w http.ResponseWriter, r *http.Request) {
	report := h.reports.ForUser(r.Context(), mux.Vars(r)["user"])
	respondJSON(w, http.StatusOK, report.NetWorth)
}

// CreateSnapshot handles POST /users/{user}/snapshots
func (h *Handler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	report := h.reports.ForUser(r.Context(), mux.Vars(r)["user"])

	snapshot, err := h.snapshots.Record(r.Context(), report)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, snapshot)
}

// ListSnapshots handles GET /users/{user}/snapshots
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.snapshots.History(r.Context(), mux.Vars(r)["user"]))
}

// GetTrend handles GET /users/{user}/trend
func (h *Handler) GetTrend(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.snapshots.Trend(r.Context(), mux.Vars(r)["user"]))
}
