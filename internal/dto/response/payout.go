package response

import (
	"time"

	"tour-payouts/internal/data/entity"
)

type PayoutResponse struct {
	ID              string              `json:"id"`
	OperatorID      string              `json:"operator_id"`
	BookingID       *string             `json:"booking_id,omitempty"`
	PaymentMethodID *string             `json:"payment_method_id,omitempty"`
	Kind            entity.MethodKind   `json:"kind"`
	AmountGross     string              `json:"amount_gross"`
	FeeAmount       string              `json:"fee_amount"`
	AmountNet       string              `json:"amount_net"`
	Status          entity.PayoutStatus `json:"status"`

	CoinbaseTransactionID *string `json:"coinbase_transaction_id,omitempty"`
	ACHTransactionID      *string `json:"ach_transaction_id,omitempty"`
	BlockchainTxHash      *string `json:"blockchain_tx_hash,omitempty"`
	ExternalReference     *string `json:"external_reference,omitempty"`

	InitiatedAt  time.Time  `json:"initiated_at"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	FailedAt     *time.Time `json:"failed_at,omitempty"`
	ErrorCode    *string    `json:"error_code,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	RetryCount   int        `json:"retry_count"`
}

func PayoutToResponse(p *entity.Payout) PayoutResponse {
	resp := PayoutResponse{
		ID:                    p.ID.String(),
		OperatorID:            p.OperatorID.String(),
		Kind:                  p.Kind,
		AmountGross:           p.AmountGross.String(),
		FeeAmount:             p.FeeAmount.String(),
		AmountNet:             p.AmountNet.String(),
		Status:                p.Status,
		CoinbaseTransactionID: p.CoinbaseTransactionID,
		ACHTransactionID:      p.ACHTransactionID,
		BlockchainTxHash:      p.BlockchainTxHash,
		ExternalReference:     p.ExternalReference,
		InitiatedAt:           p.InitiatedAt,
		ProcessedAt:           p.ProcessedAt,
		CompletedAt:           p.CompletedAt,
		FailedAt:              p.FailedAt,
		ErrorCode:             p.ErrorCode,
		ErrorMessage:          p.ErrorMessage,
		RetryCount:            p.RetryCount,
	}
	if p.BookingID != nil {
		id := p.BookingID.String()
		resp.BookingID = &id
	}
	if p.PaymentMethodID != nil {
		id := p.PaymentMethodID.String()
		resp.PaymentMethodID = &id
	}
	return resp
}

// PayoutResultResponse pairs the ledger entry with the provider outcome of
// the dispatch that produced it.
type PayoutResultResponse struct {
	Payout         PayoutResponse `json:"payout"`
	ProviderStatus string         `json:"provider_status"`
	RawReference   string         `json:"raw_reference,omitempty"`
}

// BatchPayoutItemResponse is one per-request slot of a batch run, in input
// order. Error is set when Success is false.
type BatchPayoutItemResponse struct {
	Success bool            `json:"success"`
	Payout  *PayoutResponse `json:"payout,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type PayoutTotalsResponse struct {
	Count    int64            `json:"count"`
	Gross    string           `json:"gross"`
	Fees     string           `json:"fees"`
	Net      string           `json:"net"`
	ByStatus map[string]int64 `json:"by_status"`
}

func TotalsToResponse(t *entity.PayoutTotals) *PayoutTotalsResponse {
	byStatus := make(map[string]int64, len(t.ByStatus))
	for status, count := range t.ByStatus {
		byStatus[string(status)] = count
	}
	return &PayoutTotalsResponse{
		Count:    t.Count,
		Gross:    t.Gross.String(),
		Fees:     t.Fees.String(),
		Net:      t.Net.String(),
		ByStatus: byStatus,
	}
}
