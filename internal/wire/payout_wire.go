package wire

import (
	"tour-payouts/internal/adaptor"
	"tour-payouts/pkg/middleware"
	"tour-payouts/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayout(
	r chi.Router,
	payoutHandler *adaptor.PayoutHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// Admin surface: every payout mutation and query sits behind the
	// platform API key. Session auth lives in the gateway, not here.
	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKey(config.API.AdminKey, log))

		// POST /api/payouts - dispatch one payout
		r.Post("/api/payouts", payoutHandler.ProcessPayout)

		// POST /api/payouts/batch - fan-out-and-collect batch run
		r.Post("/api/payouts/batch", payoutHandler.BatchProcessPayouts)

		// GET /api/payouts?status= - list by ledger status
		r.Get("/api/payouts", payoutHandler.GetPayoutsByStatus)

		// POST /api/payouts/{id}/retry - re-dispatch a failed payout
		r.Post("/api/payouts/{id}/retry", payoutHandler.RetryPayout)

		// POST /api/payouts/{id}/cancel - cancel a still-pending payout
		r.Post("/api/payouts/{id}/cancel", payoutHandler.CancelPayout)

		// GET /api/operators/{operatorID}/payouts - operator history
		r.Get("/api/operators/{operatorID}/payouts", payoutHandler.GetOperatorPayouts)

		// GET /api/operators/{operatorID}/payouts/summary - totals breakdown
		r.Get("/api/operators/{operatorID}/payouts/summary", payoutHandler.GetOperatorPayoutSummary)
	})

	// ACH processor callback; the gateway has already verified the event
	// signature before it reaches this route.
	r.Post("/api/settlements/ach/events", payoutHandler.ReconcileACHSettlement)
}
