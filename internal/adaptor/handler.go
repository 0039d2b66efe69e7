package adaptor

import (
	"errors"
	"net/http"

	"tour-payouts/internal/usecase"
	"tour-payouts/pkg/errs"
	"tour-payouts/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Payout        *PayoutHandler
	PaymentMethod *PaymentMethodHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Payout:        NewPayoutHandler(service.Payout, log),
		PaymentMethod: NewPaymentMethodHandler(service.PaymentMethod, log),
	}
}

// handleServiceError maps the error taxonomy to HTTP responses. Callers get
// a machine-readable code and message; internals never leak.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var validationErr *errs.ValidationError
	var notFoundErr *errs.NotFoundError
	var ineligibleErr *errs.IneligibleError
	var stateErr *errs.InvalidStateError
	var transitionErr *errs.InvalidTransitionError
	var providerErr *errs.ProviderError
	var retryLimitErr *errs.RetryLimitError

	switch {
	case errors.As(err, &validationErr):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, validationErr.Message, validationErr.Fields)

	case errors.As(err, &notFoundErr):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, notFoundErr.Error())

	case errors.As(err, &ineligibleErr):
		log.Warn(operation+" failed - ineligible", zap.Strings("reasons", ineligibleErr.Reasons))
		utils.ResponseUnprocessable(w, "Payout not eligible", map[string]any{"reasons": ineligibleErr.Reasons})

	case errors.As(err, &stateErr):
		log.Warn(operation+" failed - invalid state", zap.Error(err))
		utils.ResponseConflict(w, stateErr.Error())

	case errors.As(err, &transitionErr):
		log.Warn(operation+" failed - invalid transition", zap.Error(err))
		utils.ResponseConflict(w, transitionErr.Error())

	case errors.As(err, &retryLimitErr):
		log.Warn(operation+" failed - retry limit", zap.Error(err))
		utils.ResponseUnprocessable(w, retryLimitErr.Error(), map[string]any{
			"retry_count": retryLimitErr.Count,
			"retry_limit": retryLimitErr.Limit,
		})

	case errors.As(err, &providerErr):
		log.Warn(operation+" failed - provider error",
			zap.String("code", providerErr.Code),
			zap.Bool("retryable", providerErr.Retryable),
		)
		utils.ResponseBadGateway(w, "Settlement provider rejected the transfer", map[string]any{
			"code":      providerErr.Code,
			"message":   providerErr.Message,
			"retryable": providerErr.Retryable,
		})

	default:
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
