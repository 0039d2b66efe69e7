package wire

import (
	"tour-payouts/internal/adaptor"
	"tour-payouts/pkg/middleware"
	"tour-payouts/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePaymentMethod(
	r chi.Router,
	methodHandler *adaptor.PaymentMethodHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKey(config.API.AdminKey, log))

		// POST /api/operators/{operatorID}/payment-methods - register destination
		r.Post("/api/operators/{operatorID}/payment-methods", methodHandler.AddPaymentMethod)

		// GET /api/operators/{operatorID}/payment-methods - masked listing
		r.Get("/api/operators/{operatorID}/payment-methods", methodHandler.GetPaymentMethods)

		// GET /api/operators/{operatorID}/payment-methods/primary
		r.Get("/api/operators/{operatorID}/payment-methods/primary", methodHandler.GetPrimaryMethod)

		// PUT /api/operators/{operatorID}/payment-methods/{id}/primary
		r.Put("/api/operators/{operatorID}/payment-methods/{id}/primary", methodHandler.SetPrimaryMethod)

		// DELETE /api/operators/{operatorID}/payment-methods/{id}
		r.Delete("/api/operators/{operatorID}/payment-methods/{id}", methodHandler.RemovePaymentMethod)
	})

	// Verification provider callback; events are validated upstream.
	r.Put("/api/payment-methods/{id}/verification", methodHandler.UpdateVerification)
}
