package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"tour-payouts/internal/data/entity"
	"tour-payouts/pkg/errs"
	"tour-payouts/pkg/settlement"
)

// Decimals is the smallest-unit precision for crypto-denominated amounts.
const Decimals = 6

type Config struct {
	RPCURL       string
	HotWalletKey string
	Timeout      time.Duration
}

// Adapter performs direct on-chain transfers from the platform hot wallet.
// Settlement is effectively synchronous: the node answers completed or
// failed within seconds.
type Adapter struct {
	client  *resty.Client
	timeout time.Duration
	log     *zap.Logger
}

func NewAdapter(cfg Config, log *zap.Logger) *Adapter {
	client := resty.New().
		SetBaseURL(cfg.RPCURL).
		SetHeader("X-Api-Key", cfg.HotWalletKey).
		SetHeader("Content-Type", "application/json")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Adapter{
		client:  client,
		timeout: timeout,
		log:     log.With(zap.String("adapter", "wallet")),
	}
}

// ToSmallestUnit converts a decimal amount to the integer smallest-unit
// representation at 6-decimal precision. Amounts with more precision than
// the chain supports are rejected rather than silently truncated.
func ToSmallestUnit(amount decimal.Decimal) (int64, error) {
	shifted := amount.Shift(Decimals)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %s exceeds %d decimal places", amount.String(), Decimals)
	}
	if !shifted.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount %s overflows smallest-unit range", amount.String())
	}
	return shifted.IntPart(), nil
}

type sendRequest struct {
	ToAddress   string `json:"to_address"`
	Network     string `json:"network"`
	AmountMicro int64  `json:"amount_micro"`
	Description string `json:"description"`
}

type sendResponse struct {
	TxHash    string `json:"tx_hash"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Error     struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *Adapter) Transfer(ctx context.Context, dest settlement.Destination, amount decimal.Decimal, description string) (*settlement.Result, error) {
	if dest.Kind != entity.MethodKindWallet {
		return nil, &errs.ProviderError{Code: "wallet_wrong_destination", Message: fmt.Sprintf("destination kind %s is not wallet", dest.Kind), Retryable: false}
	}

	micro, err := ToSmallestUnit(amount)
	if err != nil {
		return nil, &errs.ProviderError{Code: "wallet_bad_amount", Message: err.Error(), Retryable: false}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	var parsed sendResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(sendRequest{
			ToAddress:   dest.WalletAddress,
			Network:     dest.Network,
			AmountMicro: micro,
			Description: description,
		}).
		SetResult(&parsed).
		SetError(&parsed).
		ForceContentType("application/json").
		Post("/v1/send")

	if err != nil {
		a.log.Warn("wallet transfer request failed", zap.Error(err))
		return nil, &errs.ProviderError{
			Code:      "wallet_unreachable",
			Message:   err.Error(),
			Retryable: true,
		}
	}

	if resp.IsError() || parsed.Status == "failed" {
		code := parsed.Error.Code
		if code == "" {
			code = fmt.Sprintf("wallet_http_%d", resp.StatusCode())
		}
		message := parsed.Error.Message
		if message == "" {
			message = resp.Status()
		}
		a.log.Warn("wallet transfer failed",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("code", code),
			zap.String("network", dest.Network),
		)
		return nil, &errs.ProviderError{
			Code:      code,
			Message:   message,
			Retryable: resp.StatusCode() >= 500 || resp.StatusCode() == 429,
		}
	}

	if parsed.TxHash == "" {
		return nil, &errs.ProviderError{
			Code:      "wallet_missing_tx_hash",
			Message:   "node reported success without a transaction hash",
			Retryable: true,
		}
	}

	a.log.Info("wallet transfer completed",
		zap.String("tx_hash", parsed.TxHash),
		zap.String("network", dest.Network),
		zap.Int64("amount_micro", micro),
	)

	txHash := parsed.TxHash
	result := &settlement.Result{
		Status:           settlement.StatusCompleted,
		BlockchainTxHash: &txHash,
		RawReference:     txHash,
	}
	if parsed.Reference != "" {
		ref := parsed.Reference
		result.ExternalReference = &ref
	}
	return result, nil
}
