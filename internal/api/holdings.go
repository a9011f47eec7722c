package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/trogers1052/networth-tracker/internal/holdings"
	"github.com/trogers1052/networth-tracker/internal/logging"
	"github.com/trogers1052/networth-tracker/internal/models"
)

type updateResponse struct {
	Holding *models.Holding `json:"holding"`
	Changed bool            `json:"changed"`
}

// ListHoldings handles GET /users/{user}/holdings. A storage failure reads as no holdings.
func (h *Handler) ListHoldings(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["user"]

	list, err := h.holdings.List(r.Context(), userID)
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).WithField("user_id", userID).Error("Failed to list holdings")
		list = []models.Holding{}
	}
	respondJSON(w, http.StatusOK, list)
}

// CreateHolding handles POST /users/{user}/holdings
func (h *Handler) CreateHolding(w http.ResponseWriter, r *http.Request) {
	var in holdings.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.holdings.Create(r.Context(), mux.Vars(r)["user"], in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

// GetHolding handles GET /users/{user}/holdings/{id}
func (h *Handler) GetHolding(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	holding, err := h.holdings.Get(r.Context(), vars["user"], vars["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, holding)
}

// UpdateHolding handles PUT /users/{user}/holdings/{id}
func (h *Handler) UpdateHolding(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var in holdings.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, changed, err := h.holdings.Update(r.Context(), vars["user"], vars["id"], in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updateResponse{Holding: updated, Changed: changed})
}

// DeleteHolding handles DELETE /users/{user}/holdings/{id}
func (h *Handler) DeleteHolding(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.holdings.Delete(r.Context(), vars["user"], vars["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
