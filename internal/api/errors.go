package api

import (
	"errors"
	"net/http"

	"github.com/trogers1052/networth-tracker/internal/database"
	"github.com/trogers1052/networth-tracker/internal/holdings"
	"github.com/trogers1052/networth-tracker/internal/logging"
	"github.com/trogers1052/networth-tracker/internal/quotes"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorResponse{Success: false, Error: message})
}

// errorStatus maps domain errors to HTTP status codes
func errorStatus(err error) int {
	var holdingErr *holdings.ValidationError
	switch {
	case quotes.IsValidation(err), errors.As(err, &holdingErr):
		return http.StatusBadRequest
	case errors.Is(err, database.ErrNotFound), errors.Is(err, quotes.ErrUnavailable):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err with its mapped status. Internal errors are logged and not echoed.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		logging.FromContext(r.Context()).WithError(err).Error("Request failed")
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}
