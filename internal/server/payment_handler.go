package server

import (
	"encoding/json"
	"net/http"

	"github.com/sthaarun/storefront/internal/service"
)

type PaymentHandler struct {
	payments service.PaymentService
}

func NewPaymentHandler(payments service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type signatureRequest struct {
	TransactionID string `json:"transaction_id"`
	TotalAmount   string `json:"total_amount"`
}

type signatureResponse struct {
	TotalAmount      string `json:"total_amount"`
	TransactionUUID  string `json:"transaction_uuid"`
	ProductCode      string `json:"product_code"`
	SignedFieldNames string `json:"signed_field_names"`
	Signature        string `json:"signature"`
}

// POST /api/v1/payment/signature
func (h *PaymentHandler) GenerateSignature(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	var req signatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_input", "malformed request body")
		return
	}

	form, err := h.payments.GenerateSignature(r.Context(), customerID, req.TransactionID, req.TotalAmount)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, signatureResponse{
		TotalAmount:      form.TotalAmount,
		TransactionUUID:  form.TransactionID,
		ProductCode:      form.ProductCode,
		SignedFieldNames: form.SignedFieldNames,
		Signature:        form.Signature,
	})
}

type callbackRequest struct {
	TransactionUUID string `json:"transaction_uuid"`
	TotalAmount     string `json:"total_amount"`
	Signature       string `json:"signature"`
}

// POST /api/v1/payment/callback
func (h *PaymentHandler) Callback(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	var req callbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_input", "malformed request body")
		return
	}

	// The signature proves the callback fields were issued by this
	// service, not forged by the client.
	if err := h.payments.VerifyCallback(req.TotalAmount, req.TransactionUUID, req.Signature); err != nil {
		respondDomainError(w, err)
		return
	}

	order, err := h.payments.ConfirmPayment(r.Context(), customerID, req.TransactionUUID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toOrderDTO(order))
}

type abortResponse struct {
	Deleted int `json:"deleted"`
}

// POST /api/v1/payment/abort
func (h *PaymentHandler) Abort(w http.ResponseWriter, r *http.Request) {
	customerID := customerIDFromContext(r.Context())

	deleted, err := h.payments.AbortPayment(r.Context(), customerID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, abortResponse{Deleted: deleted})
}
