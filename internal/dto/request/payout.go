package request

type ProcessPayoutRequest struct {
	OperatorID      string `json:"operator_id" validate:"required,uuid"`
	BookingID       string `json:"booking_id" validate:"required,uuid"`
	PaymentMethodID string `json:"payment_method_id" validate:"omitempty,uuid"`
}

type BatchProcessPayoutsRequest struct {
	Requests []ProcessPayoutRequest `json:"requests" validate:"required,min=1,max=100,dive"`
}

// ACHSettlementEventRequest is the reconciliation callback consumed from the
// ACH processor once an asynchronous transfer settles or returns. Signature
// verification happens upstream; only validated events reach this core.
type ACHSettlementEventRequest struct {
	ACHTransactionID string `json:"ach_transaction_id" validate:"required"`
	Status           string `json:"status" validate:"required,oneof=completed failed returned"`
	ErrorCode        string `json:"error_code" validate:"omitempty,max=64"`
	ErrorMessage     string `json:"error_message" validate:"omitempty,max=500"`
}
