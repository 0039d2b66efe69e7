package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCheckedIn BookingStatus = "checked_in"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is a read model over the booking collaborator. The payout core
// only consumes the eligibility signal and the gross amount; it never
// mutates a booking beyond flagging a completed payout.
type Booking struct {
	Base
	OrderID         string          `db:"order_id"`
	OperatorID      uuid.UUID       `db:"operator_id"`
	Amount          decimal.Decimal `db:"amount"`
	Status          BookingStatus   `db:"status"`
	PayoutCompleted bool            `db:"payout_completed"`
}

// Payable reports whether the booking has reached a state that releases
// escrowed funds to the operator.
func (b *Booking) Payable() bool {
	return b.Status == BookingStatusCheckedIn || b.Status == BookingStatusCompleted
}
