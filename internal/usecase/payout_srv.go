package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tour-payouts/internal/data/entity"
	"tour-payouts/internal/data/repository"
	"tour-payouts/internal/dto/request"
	"tour-payouts/internal/dto/response"
	"tour-payouts/pkg/errs"
	"tour-payouts/pkg/settlement"
	"tour-payouts/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type PayoutService interface {
	ProcessPayout(ctx context.Context, req *request.ProcessPayoutRequest) (*response.PayoutResultResponse, error)
	BatchProcessPayouts(ctx context.Context, req *request.BatchProcessPayoutsRequest) ([]response.BatchPayoutItemResponse, error)
	RetryPayout(ctx context.Context, payoutID string) (*response.PayoutResultResponse, error)
	CancelPayout(ctx context.Context, payoutID string) (*response.PayoutResponse, error)
	GetPayoutsByOperator(ctx context.Context, operatorID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PayoutResponse], error)
	GetPayoutsByStatus(ctx context.Context, status string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PayoutResponse], error)
	GetTotalPayouts(ctx context.Context, operatorID string) (*response.PayoutTotalsResponse, error)
	ReconcileACHSettlement(ctx context.Context, req *request.ACHSettlementEventRequest) (*response.PayoutResponse, error)
}

type payoutService struct {
	repo   *repository.Repository
	router *settlement.Router
	fees   *FeeCalculator
	cfg    utils.PayoutConfig
	log    *zap.Logger
}

func NewPayoutService(repo *repository.Repository, router *settlement.Router, fees *FeeCalculator, cfg utils.PayoutConfig, log *zap.Logger) PayoutService {
	if cfg.RetryLimit <= 0 {
		cfg.RetryLimit = 3
	}
	if cfg.BatchWorkers <= 0 {
		cfg.BatchWorkers = 5
	}
	return &payoutService{
		repo:   repo,
		router: router,
		fees:   fees,
		cfg:    cfg,
		log:    log.With(zap.String("service", "payout")),
	}
}

func (s *payoutService) ProcessPayout(ctx context.Context, req *request.ProcessPayoutRequest) (*response.PayoutResultResponse, error) {
	if errors := utils.ValidateStruct(req); len(errors) > 0 {
		return nil, &errs.ValidationError{Message: "validation failed", Fields: errors}
	}

	operatorID, err := uuid.Parse(req.OperatorID)
	if err != nil {
		return nil, &errs.ValidationError{Message: fmt.Sprintf("invalid operator ID format %s", req.OperatorID)}
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, &errs.ValidationError{Message: fmt.Sprintf("invalid booking ID format %s", req.BookingID)}
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking %s: %w", req.BookingID, err)
	}
	if booking == nil {
		return nil, &errs.NotFoundError{Entity: "booking", ID: req.BookingID}
	}

	// Eligibility collects every failing reason before rejecting, so the
	// caller sees the full picture in one pass. No ledger row exists yet.
	var reasons []string
	if !booking.Payable() {
		reasons = append(reasons, "Booking must be checked-in or completed before payout")
	}
	if booking.OperatorID != operatorID {
		reasons = append(reasons, "Booking does not belong to this operator")
	}
	if booking.PayoutCompleted {
		reasons = append(reasons, "Booking has already been paid out")
	}

	operatorStatus, err := s.repo.Operator.GetStatus(ctx, operatorID)
	if err != nil {
		return nil, fmt.Errorf("load operator %s: %w", req.OperatorID, err)
	}
	if operatorStatus == "" {
		return nil, &errs.NotFoundError{Entity: "operator", ID: req.OperatorID}
	}
	if operatorStatus != entity.OperatorStatusApproved {
		reasons = append(reasons, fmt.Sprintf("Operator must be approved before payout (currently %s)", operatorStatus))
	}

	outstanding, err := s.repo.Payout.FindOutstandingByBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("check outstanding payouts for booking %s: %w", req.BookingID, err)
	}
	if outstanding != nil {
		reasons = append(reasons, fmt.Sprintf("Booking already has an outstanding payout (%s)", outstanding.ID.String()))
	}

	if len(reasons) > 0 {
		s.log.Warn("Payout rejected as ineligible",
			zap.String("booking_id", req.BookingID),
			zap.Strings("reasons", reasons),
		)
		return nil, &errs.IneligibleError{Reasons: reasons}
	}

	method, err := s.resolvePaymentMethod(ctx, operatorID, req.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	fee := s.fees.EstimateFee(method.Kind, booking.Amount)
	amountNet := booking.Amount.Sub(fee)

	// amount_net is fixed now; later fee schedule changes never touch it.
	now := time.Now()
	payout := &entity.Payout{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OperatorID:      operatorID,
		BookingID:       &bookingID,
		PaymentMethodID: &method.ID,
		Kind:            method.Kind,
		AmountGross:     booking.Amount,
		FeeAmount:       fee,
		AmountNet:       amountNet,
		Status:          entity.PayoutStatusPending,
		InitiatedAt:     now,
		Metadata: map[string]string{
			"order_id":  booking.OrderID,
			"reference": utils.GeneratePayoutReference(),
		},
	}

	if err := s.repo.Payout.Create(ctx, payout); err != nil {
		return nil, fmt.Errorf("create payout: %w", err)
	}

	s.log.Info("Payout created",
		zap.String("payout_id", payout.ID.String()),
		zap.String("booking_id", req.BookingID),
		zap.String("kind", string(method.Kind)),
		zap.String("amount_gross", payout.AmountGross.String()),
		zap.String("amount_net", payout.AmountNet.String()),
	)

	return s.dispatch(ctx, payout, method)
}

func (s *payoutService) BatchProcessPayouts(ctx context.Context, req *request.BatchProcessPayoutsRequest) ([]response.BatchPayoutItemResponse, error) {
	if errors := utils.ValidateStruct(req); len(errors) > 0 {
		return nil, &errs.ValidationError{Message: "validation failed", Fields: errors}
	}

	// Fan out, collect in input order. A failed request only fails its own
	// slot; the group never aborts.
	results := make([]response.BatchPayoutItemResponse, len(req.Requests))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.cfg.BatchWorkers)

	for i := range req.Requests {
		i := i
		item := req.Requests[i]
		group.Go(func() error {
			result, err := s.ProcessPayout(groupCtx, &item)
			if err != nil {
				results[i] = response.BatchPayoutItemResponse{Success: false, Error: err.Error()}
				return nil
			}
			results[i] = response.BatchPayoutItemResponse{Success: true, Payout: &result.Payout}
			return nil
		})
	}

	// Workers always return nil; failures live in their result slot.
	_ = group.Wait()

	succeeded := 0
	for _, r := range results {
		if r.Success {
			succeeded++
		}
	}
	s.log.Info("Batch payout run finished",
		zap.Int("requested", len(req.Requests)),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", len(req.Requests)-succeeded),
	)

	return results, nil
}

func (s *payoutService) RetryPayout(ctx context.Context, payoutID string) (*response.PayoutResultResponse, error) {
	payoutUUID, err := uuid.Parse(payoutID)
	if err != nil {
		return nil, &errs.ValidationError{Message: fmt.Sprintf("invalid payout ID format %s", payoutID)}
	}

	payout, err := s.repo.Payout.FindByID(ctx, payoutUUID)
	if err != nil {
		return nil, fmt.Errorf("load payout %s: %w", payoutID, err)
	}
	if payout == nil {
		return nil, &errs.NotFoundError{Entity: "payout", ID: payoutID}
	}

	if payout.Status != entity.PayoutStatusFailed {
		return nil, &errs.InvalidStateError{
			Entity:   "payout",
			Current:  string(payout.Status),
			Expected: string(entity.PayoutStatusFailed),
		}
	}

	// The retry bound is policy, checked here before any counter bump or
	// provider dispatch. Non-retryable provider failures still pass; the
	// limit is the only gate.
	if payout.RetryCount >= s.cfg.RetryLimit {
		return nil, &errs.RetryLimitError{Limit: s.cfg.RetryLimit, Count: payout.RetryCount}
	}

	if payout.PaymentMethodID == nil {
		return nil, &errs.NotFoundError{Entity: "payment method", ID: "(none on payout)"}
	}

	method, err := s.repo.PaymentMethod.FindByID(ctx, *payout.PaymentMethodID)
	if err != nil {
		return nil, fmt.Errorf("load payment method %s: %w", payout.PaymentMethodID.String(), err)
	}
	if method == nil {
		return nil, &errs.NotFoundError{Entity: "payment method", ID: payout.PaymentMethodID.String()}
	}

	// The method may have been deactivated or rejected since the original
	// attempt; a retry gets the same eligibility gate as a fresh dispatch.
	if method.Status != entity.MethodStatusActive {
		return nil, &errs.IneligibleError{Reasons: []string{fmt.Sprintf("Payment method is %s, not active", method.Status)}}
	}

	payout, err = s.repo.Payout.IncrementRetry(ctx, payoutUUID)
	if err != nil {
		return nil, fmt.Errorf("increment retry: %w", err)
	}

	s.log.Info("Retrying payout",
		zap.String("payout_id", payoutID),
		zap.Int("retry_count", payout.RetryCount),
	)

	return s.dispatch(ctx, payout, method)
}

func (s *payoutService) CancelPayout(ctx context.Context, payoutID string) (*response.PayoutResponse, error) {
	payoutUUID, err := uuid.Parse(payoutID)
	if err != nil {
		return nil, &errs.ValidationError{Message: fmt.Sprintf("invalid payout ID format %s", payoutID)}
	}

	payout, err := s.repo.Payout.Cancel(ctx, payoutUUID)
	if err != nil {
		return nil, err
	}

	s.log.Info("Payout cancelled", zap.String("payout_id", payoutID))

	resp := response.PayoutToResponse(payout)
	return &resp, nil
}

func (s *payoutService) GetPayoutsByOperator(ctx context.Context, operatorID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PayoutResponse], error) {
	operatorUUID, err := uuid.Parse(operatorID)
	if err != nil {
		return nil, &errs.ValidationError{Message: fmt.Sprintf("invalid operator ID format %s", operatorID)}
	}

	payouts, err := s.repo.Payout.FindByOperator(ctx, operatorUUID, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get payouts by operator: %w", err)
	}

	total, err := s.repo.Payout.CountByOperator(ctx, operatorUUID)
	if err != nil {
		return nil, fmt.Errorf("count payouts by operator: %w", err)
	}

	return response.NewPaginatedResponse(payoutsToResponses(payouts), req.Page, req.PerPage, total), nil
}

func (s *payoutService) GetPayoutsByStatus(ctx context.Context, status string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.PayoutResponse], error) {
	payoutStatus := entity.PayoutStatus(status)
	switch payoutStatus {
	case entity.PayoutStatusPending, entity.PayoutStatusProcessing, entity.PayoutStatusCompleted,
		entity.PayoutStatusFailed, entity.PayoutStatusCancelled:
	default:
		return nil, &errs.ValidationError{Message: fmt.Sprintf("invalid payout status %q", status)}
	}

	payouts, err := s.repo.Payout.FindByStatus(ctx, payoutStatus, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get payouts by status: %w", err)
	}

	total, err := s.repo.Payout.CountByStatus(ctx, payoutStatus)
	if err != nil {
		return nil, fmt.Errorf("count payouts by status: %w", err)
	}

	return response.NewPaginatedResponse(payoutsToResponses(payouts), req.Page, req.PerPage, total), nil
}

func (s *payoutService) GetTotalPayouts(ctx context.Context, operatorID string) (*response.PayoutTotalsResponse, error) {
	operatorUUID, err := uuid.Parse(operatorID)
	if err != nil {
		return nil, &errs.ValidationError{Message: fmt.Sprintf("invalid operator ID format %s", operatorID)}
	}

	totals, err := s.repo.Payout.TotalsByOperator(ctx, operatorUUID)
	if err != nil {
		return nil, fmt.Errorf("total payouts: %w", err)
	}

	return response.TotalsToResponse(totals), nil
}

// ReconcileACHSettlement consumes a validated status event from the ACH
// processor for a transfer previously accepted as processing.
func (s *payoutService) ReconcileACHSettlement(ctx context.Context, req *request.ACHSettlementEventRequest) (*response.PayoutResponse, error) {
	if errors := utils.ValidateStruct(req); len(errors) > 0 {
		return nil, &errs.ValidationError{Message: "validation failed", Fields: errors}
	}

	payout, err := s.repo.Payout.FindByACHTransactionID(ctx, req.ACHTransactionID)
	if err != nil {
		return nil, fmt.Errorf("load payout by ACH transaction: %w", err)
	}
	if payout == nil {
		return nil, &errs.NotFoundError{Entity: "payout", ID: "ach:" + req.ACHTransactionID}
	}

	var updated *entity.Payout
	switch req.Status {
	case "completed":
		updated, err = s.repo.Payout.MarkCompleted(ctx, payout.ID, entity.ProviderIDs{})
		if err == nil && payout.BookingID != nil {
			if markErr := s.repo.Booking.MarkPaidOut(ctx, *payout.BookingID); markErr != nil {
				s.log.Error("Failed to flag booking after ACH settlement",
					zap.Error(markErr),
					zap.String("booking_id", payout.BookingID.String()),
				)
			}
		}
	default:
		errorCode := req.ErrorCode
		if errorCode == "" {
			errorCode = "ach_" + req.Status
		}
		errorMessage := req.ErrorMessage
		if errorMessage == "" {
			errorMessage = fmt.Sprintf("ACH transfer %s reported %s", req.ACHTransactionID, req.Status)
		}
		updated, err = s.repo.Payout.MarkFailed(ctx, payout.ID, errorCode, errorMessage)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("ACH settlement reconciled",
		zap.String("payout_id", payout.ID.String()),
		zap.String("ach_transaction_id", req.ACHTransactionID),
		zap.String("status", req.Status),
	)

	resp := response.PayoutToResponse(updated)
	return &resp, nil
}

// resolvePaymentMethod loads the explicitly requested method, or falls back
// to the operator's active primary.
func (s *payoutService) resolvePaymentMethod(ctx context.Context, operatorID uuid.UUID, methodID string) (*entity.PaymentMethod, error) {
	if methodID == "" {
		method, err := s.repo.PaymentMethod.FindPrimary(ctx, operatorID)
		if err != nil {
			return nil, fmt.Errorf("load primary payment method: %w", err)
		}
		if method == nil {
			return nil, &errs.NotFoundError{Entity: "primary payment method for operator", ID: operatorID.String()}
		}
		return method, nil
	}

	methodUUID, err := uuid.Parse(methodID)
	if err != nil {
		return nil, &errs.ValidationError{Message: fmt.Sprintf("invalid payment method ID format %s", methodID)}
	}

	method, err := s.repo.PaymentMethod.FindByID(ctx, methodUUID)
	if err != nil {
		return nil, fmt.Errorf("load payment method %s: %w", methodID, err)
	}
	if method == nil || method.OperatorID != operatorID {
		return nil, &errs.NotFoundError{Entity: "payment method", ID: methodID}
	}
	if method.Status != entity.MethodStatusActive {
		return nil, &errs.IneligibleError{Reasons: []string{fmt.Sprintf("Payment method is %s, not active", method.Status)}}
	}
	return method, nil
}

// dispatch routes the payout to the adapter for its kind and folds the
// outcome back into the ledger. A provider failure leaves a persisted
// failed entry and propagates; it is never swallowed.
func (s *payoutService) dispatch(ctx context.Context, payout *entity.Payout, method *entity.PaymentMethod) (*response.PayoutResultResponse, error) {
	adapter, err := s.router.For(method.Kind)
	if err != nil {
		if _, markErr := s.repo.Payout.MarkFailed(ctx, payout.ID, "no_adapter", err.Error()); markErr != nil {
			s.log.Error("Failed to record missing-adapter failure", zap.Error(markErr))
		}
		return nil, fmt.Errorf("route payout %s: %w", payout.ID.String(), err)
	}

	description := fmt.Sprintf("Tour operator payout %s", payout.ID.String())
	result, err := adapter.Transfer(ctx, destinationFor(method), payout.AmountNet, description)
	if err != nil {
		code, message := "provider_error", err.Error()
		var providerErr *errs.ProviderError
		if errors.As(err, &providerErr) {
			code, message = providerErr.Code, providerErr.Message
		}
		if _, markErr := s.repo.Payout.MarkFailed(ctx, payout.ID, code, message); markErr != nil {
			s.log.Error("Failed to record provider failure on ledger",
				zap.Error(markErr),
				zap.String("payout_id", payout.ID.String()),
			)
		}
		s.log.Warn("Payout dispatch failed",
			zap.String("payout_id", payout.ID.String()),
			zap.String("kind", string(method.Kind)),
			zap.String("error_code", code),
		)
		return nil, err
	}

	ids := entity.ProviderIDs{
		CoinbaseTransactionID: result.CoinbaseTransactionID,
		ACHTransactionID:      result.ACHTransactionID,
		BlockchainTxHash:      result.BlockchainTxHash,
		ExternalReference:     result.ExternalReference,
	}

	updated, err := s.repo.Payout.MarkProcessing(ctx, payout.ID, ids)
	if err != nil {
		return nil, fmt.Errorf("mark payout %s processing: %w", payout.ID.String(), err)
	}

	if err := s.repo.PaymentMethod.TouchLastUsed(ctx, method.ID); err != nil {
		s.log.Warn("Failed to update payment method last_used_at", zap.Error(err))
	}

	// Synchronous rails (wallet) settle immediately; asynchronous ones stay
	// processing until reconciliation.
	if result.Status == settlement.StatusCompleted {
		updated, err = s.repo.Payout.MarkCompleted(ctx, payout.ID, ids)
		if err != nil {
			return nil, fmt.Errorf("mark payout %s completed: %w", payout.ID.String(), err)
		}
		if payout.BookingID != nil {
			if err := s.repo.Booking.MarkPaidOut(ctx, *payout.BookingID); err != nil {
				s.log.Error("Failed to flag booking as paid out",
					zap.Error(err),
					zap.String("booking_id", payout.BookingID.String()),
				)
			}
		}
	}

	s.log.Info("Payout dispatched",
		zap.String("payout_id", payout.ID.String()),
		zap.String("kind", string(method.Kind)),
		zap.String("status", string(updated.Status)),
		zap.String("raw_reference", result.RawReference),
	)

	return &response.PayoutResultResponse{
		Payout:         response.PayoutToResponse(updated),
		ProviderStatus: string(result.Status),
		RawReference:   result.RawReference,
	}, nil
}

func destinationFor(method *entity.PaymentMethod) settlement.Destination {
	dest := settlement.Destination{Kind: method.Kind}
	switch details := method.Details.(type) {
	case entity.ACHDetails:
		dest.RoutingNumber = details.RoutingNumber
		dest.AccountNumber = details.AccountNumber
		dest.AccountType = details.AccountType
		dest.BankName = details.BankName
	case entity.WalletDetails:
		dest.WalletAddress = details.WalletAddress
		dest.Network = details.Network
	case entity.WireDetails:
		dest.SwiftCode = details.SwiftCode
		dest.IBAN = details.IBAN
		dest.AccountNumber = details.AccountNumber
		dest.RoutingNumber = details.RoutingNumber
	}
	return dest
}

func payoutsToResponses(payouts []*entity.Payout) []response.PayoutResponse {
	responses := make([]response.PayoutResponse, len(payouts))
	for i, payout := range payouts {
		responses[i] = response.PayoutToResponse(payout)
	}
	return responses
}
