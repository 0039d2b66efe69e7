package bankwire

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tour-payouts/pkg/errs"
	"tour-payouts/pkg/settlement"
)

// Adapter is the wire-transfer stub. The wire desk has no API integration
// yet, so every transfer fails non-retryably and stays failed until the
// desk integration lands.
type Adapter struct {
	log *zap.Logger
}

func NewAdapter(log *zap.Logger) *Adapter {
	return &Adapter{log: log.With(zap.String("adapter", "wire"))}
}

func (a *Adapter) Transfer(ctx context.Context, dest settlement.Destination, amount decimal.Decimal, description string) (*settlement.Result, error) {
	a.log.Warn("wire transfer requested but not implemented",
		zap.String("swift_code", dest.SwiftCode),
		zap.String("amount", amount.StringFixed(2)),
	)
	return nil, &errs.ProviderError{
		Code:      "wire_not_implemented",
		Message:   "wire transfers are not yet supported",
		Retryable: false,
	}
}
