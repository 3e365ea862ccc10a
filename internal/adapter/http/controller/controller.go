package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/api-sage/money-transfer-engine/internal/commons"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func statusForError(err error) int {
	switch {
	case commons.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, commons.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, commons.ErrRecordNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
