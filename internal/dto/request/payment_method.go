package request

import "encoding/json"

type AddPaymentMethodRequest struct {
	Kind    string          `json:"kind" validate:"required,oneof=ach wallet wire"`
	Details json.RawMessage `json:"details" validate:"required"`
}

type UpdateVerificationRequest struct {
	Outcome string `json:"outcome" validate:"required,oneof=pending verified failed manual_review"`
}
