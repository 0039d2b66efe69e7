package response

import (
	"time"

	"tour-payouts/internal/data/entity"
)

type PaymentMethodResponse struct {
	ID                 string                    `json:"id"`
	OperatorID         string                    `json:"operator_id"`
	Kind               entity.MethodKind         `json:"kind"`
	IsPrimary          bool                      `json:"is_primary"`
	Status             entity.MethodStatus       `json:"status"`
	VerificationStatus entity.VerificationStatus `json:"verification_status"`
	Details            entity.MethodDetails      `json:"details"`
	LastUsedAt         *time.Time                `json:"last_used_at,omitempty"`
	CreatedAt          time.Time                 `json:"created_at"`
}

// PaymentMethodToResponse builds the display view. Details are always
// masked here; the unmasked payload only flows to the settlement adapters.
func PaymentMethodToResponse(m *entity.PaymentMethod) PaymentMethodResponse {
	return PaymentMethodResponse{
		ID:                 m.ID.String(),
		OperatorID:         m.OperatorID.String(),
		Kind:               m.Kind,
		IsPrimary:          m.IsPrimary,
		Status:             m.Status,
		VerificationStatus: m.VerificationStatus,
		Details:            m.Details.Masked(),
		LastUsedAt:         m.LastUsedAt,
		CreatedAt:          m.CreatedAt,
	}
}
