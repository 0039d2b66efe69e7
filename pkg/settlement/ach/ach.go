package ach

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

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Adapter submits fiat settlement requests to the ACH processor. ACH is an
// asynchronous rail: a accepted transfer comes back as processing and is
// reconciled later through the processor's status callback.
type Adapter struct {
	client  *resty.Client
	timeout time.Duration
	log     *zap.Logger
}

func NewAdapter(cfg Config, log *zap.Logger) *Adapter {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Authorization", "Bearer "+cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Adapter{
		client:  client,
		timeout: timeout,
		log:     log.With(zap.String("adapter", "ach")),
	}
}

type transferRequest struct {
	RoutingNumber string `json:"routing_number"`
	AccountNumber string `json:"account_number"`
	AccountType   string `json:"account_type"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Description   string `json:"description"`
}

type transferResponse struct {
	TransferID string `json:"transfer_id"`
	Status     string `json:"status"`
	Error      struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (a *Adapter) Transfer(ctx context.Context, dest settlement.Destination, amount decimal.Decimal, description string) (*settlement.Result, error) {
	if dest.Kind != entity.MethodKindACH {
		return nil, &errs.ProviderError{Code: "ach_wrong_destination", Message: fmt.Sprintf("destination kind %s is not ach", dest.Kind), Retryable: false}
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	body := transferRequest{
		RoutingNumber: dest.RoutingNumber,
		AccountNumber: dest.AccountNumber,
		AccountType:   dest.AccountType,
		Amount:        amount.StringFixed(2),
		Currency:      "USD",
		Description:   description,
	}

	// ForceContentType keeps the body parse alive when the processor omits
	// or mislabels its Content-Type header.
	var parsed transferResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&parsed).
		SetError(&parsed).
		ForceContentType("application/json").
		Post("/v1/transfers")

	if err != nil {
		// An ambiguous outcome (timeout included) is retryable; success is
		// never assumed from it.
		a.log.Warn("ACH transfer request failed", zap.Error(err))
		return nil, &errs.ProviderError{
			Code:      "ach_unreachable",
			Message:   err.Error(),
			Retryable: true,
		}
	}

	if resp.IsError() {
		code := parsed.Error.Code
		if code == "" {
			code = fmt.Sprintf("ach_http_%d", resp.StatusCode())
		}
		message := parsed.Error.Message
		if message == "" {
			message = resp.Status()
		}
		a.log.Warn("ACH transfer rejected",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("code", code),
		)
		return nil, &errs.ProviderError{
			Code:      code,
			Message:   message,
			Retryable: resp.StatusCode() >= 500 || resp.StatusCode() == 429,
		}
	}

	if parsed.TransferID == "" {
		return nil, &errs.ProviderError{
			Code:      "ach_missing_transfer_id",
			Message:   "processor accepted the transfer but returned no transfer id",
			Retryable: true,
		}
	}

	a.log.Info("ACH transfer accepted",
		zap.String("transfer_id", parsed.TransferID),
		zap.String("amount", body.Amount),
	)

	transferID := parsed.TransferID
	return &settlement.Result{
		Status:           settlement.StatusProcessing,
		ACHTransactionID: &transferID,
		RawReference:     transferID,
	}, nil
}
