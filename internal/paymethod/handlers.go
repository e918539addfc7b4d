package paymethod

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/backend-pos/internal/common"
)

// Handler exposes payment method catalog endpoints.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type createRequest struct {
	Code          string `json:"code" validate:"required"`
	Name          string `json:"name" validate:"required"`
	ProcessingFee string `json:"processingFee"`
	FeeType       string `json:"feeType" validate:"required,oneof=flat percentage"`
	IsDefault     bool   `json:"isDefault"`
}

// List returns every configured payment method.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "paymethod service not configured", nil)
		return
	}
	methods, err := h.Svc.List(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to list payment methods", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": methods})
}

// Create registers a new payment method.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "paymethod service not configured", nil)
		return
	}
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
	}
	fee := decimal.Zero
	if req.ProcessingFee != "" {
		parsed, err := decimal.NewFromString(req.ProcessingFee)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid processing fee", nil)
			return
		}
		fee = parsed
	}
	method, err := h.Svc.Create(r.Context(), Method{
		Code:          req.Code,
		Name:          req.Name,
		ProcessingFee: fee,
		FeeType:       FeeType(req.FeeType),
		IsDefault:     req.IsDefault,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payment method", nil)
		case errors.Is(err, ErrDuplicateCode):
			common.JSONError(w, http.StatusConflict, "DUPLICATE_CODE", "payment method code already exists", nil)
		default:
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to create payment method", nil)
		}
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": method})
}

// SetDefault promotes a method to the system-wide default.
func (h *Handler) SetDefault(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "paymethod service not configured", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid method id", nil)
		return
	}
	if err := h.Svc.SetDefault(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "payment method not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to set default", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes a method; the current default is protected.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "paymethod service not configured", nil)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid method id", nil)
		return
	}
	if err := h.Svc.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrCannotDeleteDefault):
			common.JSONError(w, http.StatusConflict, "CANNOT_DELETE_DEFAULT", "reassign the default before deleting this method", nil)
		case errors.Is(err, ErrNotFound):
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "payment method not found", nil)
		default:
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to delete payment method", nil)
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
