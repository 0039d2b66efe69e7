package repository

import (
	"tour-payouts/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	PaymentMethod PaymentMethodRepository
	Payout        PayoutRepository
	Booking       BookingRepository
	Operator      OperatorRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		PaymentMethod: NewPaymentMethodRepository(db, log),
		Payout:        NewPayoutRepository(db, log),
		Booking:       NewBookingRepository(db, log),
		Operator:      NewOperatorRepository(db, log),
	}
}
