package payment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handler serves the payment recording endpoints.
type Handler struct {
	Svc *Service
}

type recordRequest struct {
	MethodCode string            `json:"method_code"`
	Amount     decimal.Decimal   `json:"amount"`
	Metadata   map[string]string `json:"metadata"`
}

// Record appends a payment to the order and returns the settlement state.
func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return
	}
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	receipt, err := h.Svc.RecordPayment(r.Context(), orderID, req.MethodCode, req.Amount, req.Metadata)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidAmount):
			common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_AMOUNT", "payment amount must be positive", nil)
		case errors.Is(err, ErrOrderNotFound):
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
		case errors.Is(err, ErrMethodNotFound):
			common.JSONError(w, http.StatusUnprocessableEntity, "METHOD_NOT_FOUND", "payment method not found", nil)
		default:
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to record payment", nil)
		}
		return
	}
	common.JSON(w, http.StatusCreated, receipt)
}

// List returns the recorded payments for an order.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return
	}
	entries, err := h.Svc.ListForOrder(r.Context(), orderID)
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list payments", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": entries})
}
