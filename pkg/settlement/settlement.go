package settlement

import (
	"context"

	"github.com/shopspring/decimal"

	"tour-payouts/internal/data/entity"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Destination carries the kind-specific fields an adapter needs to move
// funds. Only the fields for the matching kind are populated; they are never
// masked here since this is the internal transfer path.
type Destination struct {
	Kind entity.MethodKind

	// ACH / wire
	RoutingNumber string
	AccountNumber string
	AccountType   string
	BankName      string
	SwiftCode     string
	IBAN          string

	// Wallet
	WalletAddress string
	Network       string
}

// Result is the uniform outcome of a transfer attempt. Provider reference
// fields are filled per rail; the rest stay nil.
type Result struct {
	Status                Status
	CoinbaseTransactionID *string
	ACHTransactionID      *string
	BlockchainTxHash      *string
	ExternalReference     *string
	RawReference          string
}

// Adapter wraps one external settlement channel behind a uniform transfer
// contract. Failures are reported as *errs.ProviderError carrying a
// retryable flag; a timed-out call is retryable, never assumed successful.
type Adapter interface {
	Transfer(ctx context.Context, dest Destination, amount decimal.Decimal, description string) (*Result, error)
}
