package usecase

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tour-payouts/internal/data/entity"
	"tour-payouts/pkg/utils"
)

// FeeCalculator estimates the platform fee for a payout. Estimation is
// advisory and must never block a payout: an unrecognized kind yields a
// zero fee with a warning instead of an error.
type FeeCalculator struct {
	walletPercent     decimal.Decimal
	walletNetworkCost decimal.Decimal
	wireFlatFee       decimal.Decimal
	log               *zap.Logger
}

func NewFeeCalculator(cfg utils.FeesConfig, log *zap.Logger) *FeeCalculator {
	return &FeeCalculator{
		walletPercent:     decimal.NewFromFloat(cfg.WalletPercent),
		walletNetworkCost: decimal.NewFromFloat(cfg.WalletNetworkCost),
		wireFlatFee:       decimal.NewFromFloat(cfg.WireFlatFee),
		log:               log.With(zap.String("service", "fee_calculator")),
	}
}

// EstimateFee maps (method kind, gross amount) to the fee withheld from the
// operator. Standard ACH is free; wallet transfers pay a percentage plus a
// flat network cost at 6-decimal precision; wires pay a flat desk fee.
func (c *FeeCalculator) EstimateFee(kind entity.MethodKind, amount decimal.Decimal) decimal.Decimal {
	switch kind {
	case entity.MethodKindACH:
		return decimal.Zero
	case entity.MethodKindWallet:
		return amount.Mul(c.walletPercent).Add(c.walletNetworkCost).Round(6)
	case entity.MethodKindWire:
		return c.wireFlatFee.Round(2)
	default:
		c.log.Warn("Fee estimate requested for unknown method kind, defaulting to zero",
			zap.String("kind", string(kind)),
			zap.String("amount", amount.String()),
		)
		return decimal.Zero
	}
}
