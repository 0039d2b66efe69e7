package usecase

import (
	"tour-payouts/internal/data/repository"
	"tour-payouts/pkg/settlement"
	"tour-payouts/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	PaymentMethod PaymentMethodService
	Payout        PayoutService
}

func NewService(repo *repository.Repository, router *settlement.Router, config *utils.Config, log *zap.Logger) *Service {
	fees := NewFeeCalculator(config.Fees, log)

	return &Service{
		PaymentMethod: NewPaymentMethodService(repo, log),
		Payout:        NewPayoutService(repo, router, fees, config.Payout, log),
	}
}
