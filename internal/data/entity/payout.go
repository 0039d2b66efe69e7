package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayoutStatus string

const (
	PayoutStatusPending    PayoutStatus = "pending"
	PayoutStatusProcessing PayoutStatus = "processing"
	PayoutStatusCompleted  PayoutStatus = "completed"
	PayoutStatusFailed     PayoutStatus = "failed"
	PayoutStatusCancelled  PayoutStatus = "cancelled"
)

// payoutTransitions lists the legal state machine edges. completed and
// cancelled are terminal; failed can re-enter processing on retry.
var payoutTransitions = map[PayoutStatus][]PayoutStatus{
	PayoutStatusPending:    {PayoutStatusProcessing, PayoutStatusFailed, PayoutStatusCancelled},
	PayoutStatusProcessing: {PayoutStatusCompleted, PayoutStatusFailed},
	PayoutStatusFailed:     {PayoutStatusProcessing, PayoutStatusFailed},
}

// CanTransition reports whether moving a payout from one status to another
// is a legal state machine edge.
func CanTransition(from, to PayoutStatus) bool {
	for _, next := range payoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a payout status admits no further transitions.
func IsTerminal(status PayoutStatus) bool {
	return status == PayoutStatusCompleted || status == PayoutStatusCancelled
}

type Payout struct {
	BaseNoDelete
	OperatorID      uuid.UUID       `db:"operator_id"`
	BookingID       *uuid.UUID      `db:"booking_id"`
	PaymentMethodID *uuid.UUID      `db:"payment_method_id"`
	Kind            MethodKind      `db:"kind"`
	AmountGross     decimal.Decimal `db:"amount_gross"`
	FeeAmount       decimal.Decimal `db:"fee_amount"`
	AmountNet       decimal.Decimal `db:"amount_net"`
	Status          PayoutStatus    `db:"status"`

	// Provider reference columns. At most one rail fills each; callers must
	// tolerate all-but-one being null.
	CoinbaseTransactionID *string `db:"coinbase_transaction_id"`
	ACHTransactionID      *string `db:"ach_transaction_id"`
	BlockchainTxHash      *string `db:"blockchain_tx_hash"`
	ExternalReference     *string `db:"external_reference"`

	InitiatedAt  time.Time         `db:"initiated_at"`
	ProcessedAt  *time.Time        `db:"processed_at"`
	CompletedAt  *time.Time        `db:"completed_at"`
	FailedAt     *time.Time        `db:"failed_at"`
	ErrorCode    *string           `db:"error_code"`
	ErrorMessage *string           `db:"error_message"`
	RetryCount   int               `db:"retry_count"`
	Metadata     map[string]string `db:"metadata"`
}

// ProviderIDs carries whichever provider transaction references an adapter
// returned. Nil fields are skipped on write so a retry never clears a
// reference left by an earlier attempt.
type ProviderIDs struct {
	CoinbaseTransactionID *string
	ACHTransactionID      *string
	BlockchainTxHash      *string
	ExternalReference     *string
}

// PayoutTotals is the aggregate view of an operator's payout history.
type PayoutTotals struct {
	Count    int64                  `json:"count"`
	Gross    decimal.Decimal        `json:"gross"`
	Fees     decimal.Decimal        `json:"fees"`
	Net      decimal.Decimal        `json:"net"`
	ByStatus map[PayoutStatus]int64 `json:"by_status"`
}
