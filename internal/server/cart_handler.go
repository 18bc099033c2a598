package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sthaarun/storefront/internal/service"
)

type CartHandler struct {
	carts service.CartService
}

func NewCartHandler(carts service.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

type addCartItemRequest struct {
	VariantID string `json:"variant_id"`
	Quantity  int32  `json:"quantity"`
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_input", "malformed request body")
		return
	}

	variantID, err := uuid.Parse(req.VariantID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_input", "variant_id is not a valid id")
		return
	}

	cart, err := h.carts.AddItem(r.Context(), customerID, variantID, req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toCartDTO(cart))
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	cart, err := h.carts.GetActiveCart(r.Context(), customerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toCartDTO(cart))
}

// DELETE /api/v1/cart/items/{itemID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_input", "item id is not a valid id")
		return
	}

	if err := h.carts.RemoveItem(r.Context(), customerID, itemID); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}
