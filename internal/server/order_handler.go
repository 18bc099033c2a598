package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sthaarun/storefront/internal/domain"
	"github.com/sthaarun/storefront/internal/service"
)

type OrderHandler struct {
	checkout service.CheckoutService
	orders   service.OrderService
}

func NewOrderHandler(checkout service.CheckoutService, orders service.OrderService) *OrderHandler {
	return &OrderHandler{checkout: checkout, orders: orders}
}

type placeOrderRequest struct {
	AddressID     string `json:"address_id"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
	TransactionID string `json:"transaction_id"`
}

// POST /api/v1/orders
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_input", "malformed request body")
		return
	}

	addressID, err := uuid.Parse(req.AddressID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_input", "address_id is not a valid id")
		return
	}

	order, err := h.checkout.PlaceOrder(r.Context(), service.PlaceOrderRequest{
		CustomerID:    customerID,
		AddressID:     addressID,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		TransactionID: req.TransactionID,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, toOrderDTO(order))
}

// GET /api/v1/orders/{publicID}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	order, err := h.orders.GetOrder(r.Context(), customerID, chi.URLParam(r, "publicID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderDTO(order))
}

// GET /api/v1/orders?status=paid&placed_after=...&placed_before=...
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	filter := domain.OrderFilter{
		CustomerIDs: []string{customerID},
	}

	if status := r.URL.Query().Get("status"); status != "" {
		parsed, err := domain.ToOrderStatus(status)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_input", "unknown order status")
			return
		}
		filter.Statuses = []domain.OrderStatus{parsed}
	}

	placedAt, ok := parseTimeRange(w, r)
	if !ok {
		return
	}
	filter.PlacedAt = placedAt

	orders, err := h.orders.SearchOrders(r.Context(), filter)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	dtos := make([]OrderDTO, 0, len(orders))
	for _, order := range orders {
		dtos = append(dtos, toOrderDTO(order))
	}

	respondJSON(w, http.StatusOK, dtos)
}

// POST /api/v1/orders/items/{publicID}/cancel
func (h *OrderHandler) CancelItem(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	order, err := h.orders.CancelItem(r.Context(), customerID, chi.URLParam(r, "publicID"))
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderDTO(order))
}

func parseTimeRange(w http.ResponseWriter, r *http.Request) (*domain.TimeRange, bool) {
	var timeRange domain.TimeRange

	if after := r.URL.Query().Get("placed_after"); after != "" {
		parsed, err := time.Parse(time.RFC3339, after)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_input", "placed_after is not RFC3339")
			return nil, false
		}
		timeRange.After = lo.ToPtr(parsed)
	}

	if before := r.URL.Query().Get("placed_before"); before != "" {
		parsed, err := time.Parse(time.RFC3339, before)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_input", "placed_before is not RFC3339")
			return nil, false
		}
		timeRange.Before = lo.ToPtr(parsed)
	}

	if timeRange.After == nil && timeRange.Before == nil {
		return nil, true
	}

	return &timeRange, true
}
