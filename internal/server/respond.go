package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/sthaarun/storefront/internal/domain"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if payload == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Code: code, Message: message})
}

// respondDomainError maps each error kind to a stable response code so
// clients can tell "retry safely" from "fix your input" from "nothing to
// do".
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.Is(err, domain.ErrNoActiveCart):
		respondError(w, http.StatusUnprocessableEntity, "no_active_cart", "no active cart to order from")
	case errors.Is(err, domain.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, "empty_cart", "cart has no items")
	case errors.Is(err, domain.ErrAmountMismatch):
		respondError(w, http.StatusUnprocessableEntity, "amount_mismatch", "amount does not match order total")
	case errors.Is(err, domain.ErrInvalidAddress):
		respondError(w, http.StatusUnprocessableEntity, "invalid_address", "shipping address not found")
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(w, http.StatusForbidden, "unauthorized", "not allowed")
	case errors.Is(err, domain.ErrInvalidState):
		respondError(w, http.StatusConflict, "invalid_state", "operation not allowed in current state")
	case errors.Is(err, domain.ErrInsufficientStock):
		respondError(w, http.StatusConflict, "insufficient_stock", "not enough stock available")
	case errors.Is(err, domain.ErrConflict):
		respondError(w, http.StatusConflict, "conflict", "conflicting concurrent write, retry")
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", "resource not found")
	case errors.Is(err, domain.ErrPartialWrite):
		log.Printf("partial write: %v", err)
		respondError(w, http.StatusInternalServerError, "partial_write", "order could not be placed")
	default:
		log.Printf("internal error: %v", err)
		respondError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
