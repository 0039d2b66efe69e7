package adaptor

import (
	"encoding/json"
	"net/http"

	"tour-payouts/internal/dto/request"
	"tour-payouts/internal/usecase"
	"tour-payouts/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type PaymentMethodHandler struct {
	service usecase.PaymentMethodService
	log     *zap.Logger
}

func NewPaymentMethodHandler(service usecase.PaymentMethodService, log *zap.Logger) *PaymentMethodHandler {
	return &PaymentMethodHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment_method")),
	}
}

// AddPaymentMethod handles POST /api/operators/{operatorID}/payment-methods
func (h *PaymentMethodHandler) AddPaymentMethod(w http.ResponseWriter, r *http.Request) {
	operatorID := chi.URLParam(r, "operatorID")
	if operatorID == "" {
		utils.ResponseBadRequest(w, "Operator ID is required", nil)
		return
	}

	var req request.AddPaymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	method, err := h.service.AddPaymentMethod(r.Context(), operatorID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "add payment method")
		return
	}

	utils.ResponseCreated(w, "success", method)
}

// GetPaymentMethods handles GET /api/operators/{operatorID}/payment-methods
func (h *PaymentMethodHandler) GetPaymentMethods(w http.ResponseWriter, r *http.Request) {
	operatorID := chi.URLParam(r, "operatorID")
	if operatorID == "" {
		utils.ResponseBadRequest(w, "Operator ID is required", nil)
		return
	}

	methods, err := h.service.GetPaymentMethods(r.Context(), operatorID)
	if err != nil {
		handleServiceError(w, h.log, err, "get payment methods")
		return
	}

	utils.ResponseSuccess(w, "success", methods)
}

// GetPrimaryMethod handles GET /api/operators/{operatorID}/payment-methods/primary
func (h *PaymentMethodHandler) GetPrimaryMethod(w http.ResponseWriter, r *http.Request) {
	operatorID := chi.URLParam(r, "operatorID")
	if operatorID == "" {
		utils.ResponseBadRequest(w, "Operator ID is required", nil)
		return
	}

	method, err := h.service.GetPrimaryMethod(r.Context(), operatorID)
	if err != nil {
		handleServiceError(w, h.log, err, "get primary payment method")
		return
	}
	if method == nil {
		utils.ResponseNotFound(w, "No active primary payment method")
		return
	}

	utils.ResponseSuccess(w, "success", method)
}

// SetPrimaryMethod handles PUT /api/operators/{operatorID}/payment-methods/{id}/primary
func (h *PaymentMethodHandler) SetPrimaryMethod(w http.ResponseWriter, r *http.Request) {
	operatorID := chi.URLParam(r, "operatorID")
	methodID := chi.URLParam(r, "id")
	if operatorID == "" || methodID == "" {
		utils.ResponseBadRequest(w, "Operator ID and payment method ID are required", nil)
		return
	}

	if err := h.service.SetPrimaryMethod(r.Context(), operatorID, methodID); err != nil {
		handleServiceError(w, h.log, err, "set primary payment method")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// UpdateVerification handles PUT /api/payment-methods/{id}/verification.
// The verification provider's event has been validated upstream.
func (h *PaymentMethodHandler) UpdateVerification(w http.ResponseWriter, r *http.Request) {
	methodID := chi.URLParam(r, "id")
	if methodID == "" {
		utils.ResponseBadRequest(w, "Payment method ID is required", nil)
		return
	}

	var req request.UpdateVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	method, err := h.service.UpdateVerification(r.Context(), methodID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "update payment method verification")
		return
	}

	utils.ResponseSuccess(w, "success", method)
}

// RemovePaymentMethod handles DELETE /api/operators/{operatorID}/payment-methods/{id}
func (h *PaymentMethodHandler) RemovePaymentMethod(w http.ResponseWriter, r *http.Request) {
	operatorID := chi.URLParam(r, "operatorID")
	methodID := chi.URLParam(r, "id")
	if operatorID == "" || methodID == "" {
		utils.ResponseBadRequest(w, "Operator ID and payment method ID are required", nil)
		return
	}

	if err := h.service.RemovePaymentMethod(r.Context(), operatorID, methodID); err != nil {
		handleServiceError(w, h.log, err, "remove payment method")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
