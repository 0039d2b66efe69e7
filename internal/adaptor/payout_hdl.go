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

type PayoutHandler struct {
	service usecase.PayoutService
	log     *zap.Logger
}

func NewPayoutHandler(service usecase.PayoutService, log *zap.Logger) *PayoutHandler {
	return &PayoutHandler{
		service: service,
		log:     log.With(zap.String("handler", "payout")),
	}
}

// ProcessPayout handles POST /api/payouts
func (h *PayoutHandler) ProcessPayout(w http.ResponseWriter, r *http.Request) {
	var req request.ProcessPayoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	result, err := h.service.ProcessPayout(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "process payout")
		return
	}

	utils.ResponseCreated(w, "success", result)
}

// BatchProcessPayouts handles POST /api/payouts/batch
func (h *PayoutHandler) BatchProcessPayouts(w http.ResponseWriter, r *http.Request) {
	var req request.BatchProcessPayoutsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	results, err := h.service.BatchProcessPayouts(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "batch process payouts")
		return
	}

	utils.ResponseSuccess(w, "success", results)
}

// RetryPayout handles POST /api/payouts/{id}/retry
func (h *PayoutHandler) RetryPayout(w http.ResponseWriter, r *http.Request) {
	payoutID := chi.URLParam(r, "id")
	if payoutID == "" {
		utils.ResponseBadRequest(w, "Payout ID is required", nil)
		return
	}

	result, err := h.service.RetryPayout(r.Context(), payoutID)
	if err != nil {
		handleServiceError(w, h.log, err, "retry payout")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// CancelPayout handles POST /api/payouts/{id}/cancel
func (h *PayoutHandler) CancelPayout(w http.ResponseWriter, r *http.Request) {
	payoutID := chi.URLParam(r, "id")
	if payoutID == "" {
		utils.ResponseBadRequest(w, "Payout ID is required", nil)
		return
	}

	payout, err := h.service.CancelPayout(r.Context(), payoutID)
	if err != nil {
		handleServiceError(w, h.log, err, "cancel payout")
		return
	}

	utils.ResponseSuccess(w, "success", payout)
}

// GetOperatorPayouts handles GET /api/operators/{operatorID}/payouts
func (h *PayoutHandler) GetOperatorPayouts(w http.ResponseWriter, r *http.Request) {
	operatorID := chi.URLParam(r, "operatorID")
	if operatorID == "" {
		utils.ResponseBadRequest(w, "Operator ID is required", nil)
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	payouts, err := h.service.GetPayoutsByOperator(r.Context(), operatorID, req)
	if err != nil {
		handleServiceError(w, h.log, err, "get operator payouts")
		return
	}

	utils.ResponseSuccess(w, "success", payouts)
}

// GetPayoutsByStatus handles GET /api/payouts?status=
func (h *PayoutHandler) GetPayoutsByStatus(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	status := query.Get("status")
	if status == "" {
		utils.ResponseBadRequest(w, "status query parameter is required", nil)
		return
	}

	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	payouts, err := h.service.GetPayoutsByStatus(r.Context(), status, req)
	if err != nil {
		handleServiceError(w, h.log, err, "get payouts by status")
		return
	}

	utils.ResponseSuccess(w, "success", payouts)
}

// GetOperatorPayoutSummary handles GET /api/operators/{operatorID}/payouts/summary
func (h *PayoutHandler) GetOperatorPayoutSummary(w http.ResponseWriter, r *http.Request) {
	operatorID := chi.URLParam(r, "operatorID")
	if operatorID == "" {
		utils.ResponseBadRequest(w, "Operator ID is required", nil)
		return
	}

	totals, err := h.service.GetTotalPayouts(r.Context(), operatorID)
	if err != nil {
		handleServiceError(w, h.log, err, "get payout summary")
		return
	}

	utils.ResponseSuccess(w, "success", totals)
}

// ReconcileACHSettlement handles POST /api/settlements/ach/events. Upstream
// middleware has already verified the processor's signature.
func (h *PayoutHandler) ReconcileACHSettlement(w http.ResponseWriter, r *http.Request) {
	var req request.ACHSettlementEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	payout, err := h.service.ReconcileACHSettlement(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "reconcile ach settlement")
		return
	}

	utils.ResponseSuccess(w, "success", payout)
}
