package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tour-payouts/internal/data/entity"
	"tour-payouts/internal/data/repository"
	"tour-payouts/internal/dto/request"
	"tour-payouts/pkg/errs"
	"tour-payouts/pkg/settlement"
	"tour-payouts/pkg/utils"
)

type payoutEnv struct {
	payouts   *fakePayoutRepo
	methods   *fakePaymentMethodRepo
	bookings  *fakeBookingRepo
	operators *fakeOperatorRepo
	router    *settlement.Router
	svc       PayoutService
}

func newPayoutEnv() *payoutEnv {
	env := &payoutEnv{
		payouts:   newFakePayoutRepo(),
		methods:   newFakePaymentMethodRepo(),
		bookings:  newFakeBookingRepo(),
		operators: newFakeOperatorRepo(),
		router:    settlement.NewRouter(),
	}
	repo := &repository.Repository{
		PaymentMethod: env.methods,
		Payout:        env.payouts,
		Booking:       env.bookings,
		Operator:      env.operators,
	}
	env.svc = NewPayoutService(repo, env.router, testFeeCalculator(),
		utils.PayoutConfig{RetryLimit: 3, BatchWorkers: 2}, zap.NewNop())
	return env
}

func (e *payoutEnv) seedOperator(status entity.OperatorStatus) uuid.UUID {
	id := uuid.New()
	e.operators.statuses[id] = status
	return id
}

func (e *payoutEnv) seedBooking(operatorID uuid.UUID, status entity.BookingStatus, amount string) *entity.Booking {
	booking := &entity.Booking{
		Base:       entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		OrderID:    "ORD-" + uuid.NewString()[:8],
		OperatorID: operatorID,
		Amount:     decimal.RequireFromString(amount),
		Status:     status,
	}
	e.bookings.bookings[booking.ID] = booking
	return booking
}

func (e *payoutEnv) seedMethod(operatorID uuid.UUID, details entity.MethodDetails, primary bool) *entity.PaymentMethod {
	method := &entity.PaymentMethod{
		Base:               entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		OperatorID:         operatorID,
		Kind:               details.Kind(),
		IsPrimary:          primary,
		Status:             entity.MethodStatusActive,
		VerificationStatus: entity.VerificationVerified,
		Details:            details,
	}
	e.methods.methods[method.ID] = method
	return method
}

func (e *payoutEnv) seedPayout(operatorID uuid.UUID, methodID uuid.UUID, kind entity.MethodKind, status entity.PayoutStatus, retryCount int) *entity.Payout {
	bookingID := uuid.New()
	payout := &entity.Payout{
		BaseNoDelete:    entity.BaseNoDelete{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		OperatorID:      operatorID,
		BookingID:       &bookingID,
		PaymentMethodID: &methodID,
		Kind:            kind,
		AmountGross:     decimal.RequireFromString("100"),
		FeeAmount:       decimal.Zero,
		AmountNet:       decimal.RequireFromString("100"),
		Status:          status,
		InitiatedAt:     time.Now(),
		RetryCount:      retryCount,
	}
	e.payouts.payouts[payout.ID] = payout
	return payout
}

func achDetails() entity.ACHDetails {
	return entity.ACHDetails{
		RoutingNumber: "021000021",
		AccountNumber: "123456789",
		AccountType:   "checking",
		BankName:      "First Harbor Bank",
	}
}

func walletDetails() entity.WalletDetails {
	return entity.WalletDetails{
		WalletAddress: "0x1234567890abcdef1234567890abcdef12345678",
		Network:       "ethereum",
	}
}

func strPtr(s string) *string { return &s }

func TestProcessPayoutACHEntersProcessing(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusApproved)
	booking := env.seedBooking(operatorID, entity.BookingStatusCheckedIn, "500.00")
	env.seedMethod(operatorID, achDetails(), true)

	adapter := &fakeAdapter{result: &settlement.Result{
		Status:           settlement.StatusProcessing,
		ACHTransactionID: strPtr("ach_tx_001"),
		RawReference:     "ach_tx_001",
	}}
	env.router.Register(entity.MethodKindACH, adapter)

	result, err := env.svc.ProcessPayout(context.Background(), &request.ProcessPayoutRequest{
		OperatorID: operatorID.String(),
		BookingID:  booking.ID.String(),
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, entity.PayoutStatusProcessing, result.Payout.Status)
	require.NotNil(t, result.Payout.ACHTransactionID)
	assert.Equal(t, "ach_tx_001", *result.Payout.ACHTransactionID)
	assert.Equal(t, "0", result.Payout.FeeAmount)
	assert.Equal(t, "500", result.Payout.AmountNet)
	assert.Equal(t, 1, adapter.callCount())

	// ACH settles asynchronously; the booking stays unflagged until
	// reconciliation says so.
	stored, _ := env.bookings.FindByID(context.Background(), booking.ID)
	assert.False(t, stored.PayoutCompleted)
}

func TestProcessPayoutIneligibleBookingLeavesNoLedgerEntry(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusApproved)
	booking := env.seedBooking(operatorID, entity.BookingStatusPending, "200.00")
	env.seedMethod(operatorID, achDetails(), true)

	adapter := &fakeAdapter{result: &settlement.Result{Status: settlement.StatusProcessing}}
	env.router.Register(entity.MethodKindACH, adapter)

	_, err := env.svc.ProcessPayout(context.Background(), &request.ProcessPayoutRequest{
		OperatorID: operatorID.String(),
		BookingID:  booking.ID.String(),
	})

	var ineligible *errs.IneligibleError
	require.ErrorAs(t, err, &ineligible)
	assert.Contains(t, ineligible.Reasons, "Booking must be checked-in or completed before payout")
	assert.Empty(t, env.payouts.payouts)
	assert.Zero(t, adapter.callCount())
}

func TestProcessPayoutCollectsAllIneligibilityReasons(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusSuspended)
	otherOperator := env.seedOperator(entity.OperatorStatusApproved)
	booking := env.seedBooking(otherOperator, entity.BookingStatusPending, "200.00")
	booking.PayoutCompleted = true

	_, err := env.svc.ProcessPayout(context.Background(), &request.ProcessPayoutRequest{
		OperatorID: operatorID.String(),
		BookingID:  booking.ID.String(),
	})

	var ineligible *errs.IneligibleError
	require.ErrorAs(t, err, &ineligible)
	assert.Len(t, ineligible.Reasons, 4)
}

func TestProcessPayoutWalletSettlesSynchronously(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusApproved)
	booking := env.seedBooking(operatorID, entity.BookingStatusCompleted, "100.00")
	method := env.seedMethod(operatorID, walletDetails(), true)

	adapter := &fakeAdapter{result: &settlement.Result{
		Status:           settlement.StatusCompleted,
		BlockchainTxHash: strPtr("0xdeadbeef"),
		RawReference:     "0xdeadbeef",
	}}
	env.router.Register(entity.MethodKindWallet, adapter)

	result, err := env.svc.ProcessPayout(context.Background(), &request.ProcessPayoutRequest{
		OperatorID: operatorID.String(),
		BookingID:  booking.ID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, entity.PayoutStatusCompleted, result.Payout.Status)
	require.NotNil(t, result.Payout.BlockchainTxHash)
	assert.Equal(t, "0xdeadbeef", *result.Payout.BlockchainTxHash)
	// 1% of 100 plus the flat network cost.
	assert.Equal(t, "1.5", result.Payout.FeeAmount)
	assert.Equal(t, "98.5", result.Payout.AmountNet)

	stored, _ := env.bookings.FindByID(context.Background(), booking.ID)
	assert.True(t, stored.PayoutCompleted)

	updated, _ := env.methods.FindByID(context.Background(), method.ID)
	assert.NotNil(t, updated.LastUsedAt)
}

func TestProcessPayoutProviderFailurePersistsFailedEntry(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusApproved)
	booking := env.seedBooking(operatorID, entity.BookingStatusCheckedIn, "300.00")
	env.seedMethod(operatorID, achDetails(), true)

	env.router.Register(entity.MethodKindACH, &fakeAdapter{
		err: &errs.ProviderError{Code: "ach_unreachable", Message: "connection refused", Retryable: true},
	})

	_, err := env.svc.ProcessPayout(context.Background(), &request.ProcessPayoutRequest{
		OperatorID: operatorID.String(),
		BookingID:  booking.ID.String(),
	})

	var providerErr *errs.ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.True(t, providerErr.Retryable)

	require.Len(t, env.payouts.payouts, 1)
	for _, payout := range env.payouts.payouts {
		assert.Equal(t, entity.PayoutStatusFailed, payout.Status)
		require.NotNil(t, payout.ErrorCode)
		assert.Equal(t, "ach_unreachable", *payout.ErrorCode)
		assert.NotNil(t, payout.FailedAt)
		// The net amount written at creation survives the failure.
		assert.True(t, payout.AmountNet.Equal(decimal.RequireFromString("300")))
	}
}

func TestProcessPayoutRequiresPrimaryWhenMethodOmitted(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusApproved)
	booking := env.seedBooking(operatorID, entity.BookingStatusCheckedIn, "50.00")

	_, err := env.svc.ProcessPayout(context.Background(), &request.ProcessPayoutRequest{
		OperatorID: operatorID.String(),
		BookingID:  booking.ID.String(),
	})

	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "primary payment method for operator", notFound.Entity)
}

func TestProcessPayoutRejectsInactiveExplicitMethod(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusApproved)
	booking := env.seedBooking(operatorID, entity.BookingStatusCheckedIn, "50.00")
	method := env.seedMethod(operatorID, achDetails(), false)
	env.methods.methods[method.ID].Status = entity.MethodStatusPendingVerification

	_, err := env.svc.ProcessPayout(context.Background(), &request.ProcessPayoutRequest{
		OperatorID:      operatorID.String(),
		BookingID:       booking.ID.String(),
		PaymentMethodID: method.ID.String(),
	})

	var ineligible *errs.IneligibleError
	require.ErrorAs(t, err, &ineligible)
	assert.Empty(t, env.payouts.payouts)
}

func TestBatchProcessPayoutsKeepsInputOrder(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusApproved)
	bareOperator := env.seedOperator(entity.OperatorStatusApproved)
	env.seedMethod(operatorID, achDetails(), true)

	first := env.seedBooking(operatorID, entity.BookingStatusCheckedIn, "100.00")
	second := env.seedBooking(bareOperator, entity.BookingStatusCheckedIn, "200.00")
	third := env.seedBooking(operatorID, entity.BookingStatusCompleted, "300.00")

	env.router.Register(entity.MethodKindACH, &fakeAdapter{result: &settlement.Result{
		Status:           settlement.StatusProcessing,
		ACHTransactionID: strPtr("ach_batch"),
	}})

	results, err := env.svc.BatchProcessPayouts(context.Background(), &request.BatchProcessPayoutsRequest{
		Requests: []request.ProcessPayoutRequest{
			{OperatorID: operatorID.String(), BookingID: first.ID.String()},
			{OperatorID: bareOperator.String(), BookingID: second.ID.String()},
			{OperatorID: operatorID.String(), BookingID: third.ID.String()},
		},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Success)
	require.NotNil(t, results[0].Payout)
	assert.Equal(t, "100", results[0].Payout.AmountGross)

	assert.False(t, results[1].Success)
	assert.Nil(t, results[1].Payout)
	assert.NotEmpty(t, results[1].Error)

	assert.True(t, results[2].Success)
	require.NotNil(t, results[2].Payout)
	assert.Equal(t, "300", results[2].Payout.AmountGross)
}

func TestRetryPayoutStopsAtLimitBeforeDispatch(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusApproved)
	method := env.seedMethod(operatorID, achDetails(), true)
	payout := env.seedPayout(operatorID, method.ID, entity.MethodKindACH, entity.PayoutStatusFailed, 3)

	adapter := &fakeAdapter{result: &settlement.Result{Status: settlement.StatusProcessing}}
	env.router.Register(entity.MethodKindACH, adapter)

	_, err := env.svc.RetryPayout(context.Background(), payout.ID.String())

	var limitErr *errs.RetryLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 3, limitErr.Limit)
	assert.Equal(t, 3, limitErr.Count)
	assert.Zero(t, adapter.callCount())

	stored, _ := env.payouts.FindByID(context.Background(), payout.ID)
	assert.Equal(t, 3, stored.RetryCount)
}

func TestRetryPayoutRejectsNonFailedStatus(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusApproved)
	method := env.seedMethod(operatorID, achDetails(), true)
	payout := env.seedPayout(operatorID, method.ID, entity.MethodKindACH, entity.PayoutStatusProcessing, 0)

	_, err := env.svc.RetryPayout(context.Background(), payout.ID.String())

	var stateErr *errs.InvalidStateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, string(entity.PayoutStatusProcessing), stateErr.Current)
	assert.Equal(t, string(entity.PayoutStatusFailed), stateErr.Expected)
}

func TestRetryPayoutIncrementsCounterAndRedispatches(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusApproved)
	method := env.seedMethod(operatorID, achDetails(), true)
	payout := env.seedPayout(operatorID, method.ID, entity.MethodKindACH, entity.PayoutStatusFailed, 1)

	adapter := &fakeAdapter{result: &settlement.Result{
		Status:           settlement.StatusProcessing,
		ACHTransactionID: strPtr("ach_retry_ok"),
	}}
	env.router.Register(entity.MethodKindACH, adapter)

	result, err := env.svc.RetryPayout(context.Background(), payout.ID.String())
	require.NoError(t, err)

	assert.Equal(t, entity.PayoutStatusProcessing, result.Payout.Status)
	assert.Equal(t, 2, result.Payout.RetryCount)
	assert.Equal(t, 1, adapter.callCount())
}

func TestRetryPayoutRejectsDeactivatedMethod(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusApproved)
	method := env.seedMethod(operatorID, achDetails(), true)
	payout := env.seedPayout(operatorID, method.ID, entity.MethodKindACH, entity.PayoutStatusFailed, 1)

	adapter := &fakeAdapter{result: &settlement.Result{Status: settlement.StatusProcessing}}
	env.router.Register(entity.MethodKindACH, adapter)

	env.methods.methods[method.ID].Status = entity.MethodStatusInactive

	_, err := env.svc.RetryPayout(context.Background(), payout.ID.String())

	var ineligible *errs.IneligibleError
	require.ErrorAs(t, err, &ineligible)
	assert.Zero(t, adapter.callCount())

	stored, _ := env.payouts.FindByID(context.Background(), payout.ID)
	assert.Equal(t, 1, stored.RetryCount)
	assert.Equal(t, entity.PayoutStatusFailed, stored.Status)
}

func TestCancelPayout(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusApproved)
	method := env.seedMethod(operatorID, achDetails(), true)

	pending := env.seedPayout(operatorID, method.ID, entity.MethodKindACH, entity.PayoutStatusPending, 0)
	result, err := env.svc.CancelPayout(context.Background(), pending.ID.String())
	require.NoError(t, err)
	assert.Equal(t, entity.PayoutStatusCancelled, result.Status)

	processing := env.seedPayout(operatorID, method.ID, entity.MethodKindACH, entity.PayoutStatusProcessing, 0)
	_, err = env.svc.CancelPayout(context.Background(), processing.ID.String())

	var transitionErr *errs.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, string(entity.PayoutStatusProcessing), transitionErr.From)
}

func TestReconcileACHSettlement(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusApproved)
	method := env.seedMethod(operatorID, achDetails(), true)

	completed := env.seedPayout(operatorID, method.ID, entity.MethodKindACH, entity.PayoutStatusProcessing, 0)
	completed.ACHTransactionID = strPtr("ach_done")
	env.bookings.bookings[*completed.BookingID] = &entity.Booking{
		Base:       entity.Base{ID: *completed.BookingID},
		OperatorID: operatorID,
		Status:     entity.BookingStatusCompleted,
	}

	result, err := env.svc.ReconcileACHSettlement(context.Background(), &request.ACHSettlementEventRequest{
		ACHTransactionID: "ach_done",
		Status:           "completed",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PayoutStatusCompleted, result.Status)
	assert.NotNil(t, result.CompletedAt)

	booking, _ := env.bookings.FindByID(context.Background(), *completed.BookingID)
	assert.True(t, booking.PayoutCompleted)

	returned := env.seedPayout(operatorID, method.ID, entity.MethodKindACH, entity.PayoutStatusProcessing, 0)
	returned.ACHTransactionID = strPtr("ach_bounced")

	result, err = env.svc.ReconcileACHSettlement(context.Background(), &request.ACHSettlementEventRequest{
		ACHTransactionID: "ach_bounced",
		Status:           "returned",
		ErrorCode:        "R01",
		ErrorMessage:     "Insufficient funds",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.PayoutStatusFailed, result.Status)
	require.NotNil(t, result.ErrorCode)
	assert.Equal(t, "R01", *result.ErrorCode)
}

func TestReconcileACHSettlementUnknownTransaction(t *testing.T) {
	env := newPayoutEnv()

	_, err := env.svc.ReconcileACHSettlement(context.Background(), &request.ACHSettlementEventRequest{
		ACHTransactionID: "ach_missing",
		Status:           "completed",
	})

	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGetPayoutsByStatusRejectsUnknownStatus(t *testing.T) {
	env := newPayoutEnv()

	_, err := env.svc.GetPayoutsByStatus(context.Background(), "exploded", &request.PaginatedRequest{Page: 1, PerPage: 10})

	var validationErr *errs.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestGetPayoutsByStatusPaginates(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusApproved)
	method := env.seedMethod(operatorID, achDetails(), true)

	base := time.Now()
	for i := 0; i < 25; i++ {
		payout := env.seedPayout(operatorID, method.ID, entity.MethodKindACH, entity.PayoutStatusFailed, 0)
		payout.InitiatedAt = base.Add(time.Duration(i) * time.Second)
	}

	page1, err := env.svc.GetPayoutsByStatus(context.Background(), "failed", &request.PaginatedRequest{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, page1.Data, 10)
	assert.Equal(t, int64(25), page1.Pagination.Total)
	assert.Equal(t, 3, page1.Pagination.TotalPages)

	page3, err := env.svc.GetPayoutsByStatus(context.Background(), "failed", &request.PaginatedRequest{Page: 3, PerPage: 10})
	require.NoError(t, err)
	assert.Len(t, page3.Data, 5)
	assert.Equal(t, int64(25), page3.Pagination.Total)

	// Newest first; the last page holds the oldest entries and no page
	// overlaps another.
	seen := make(map[string]bool)
	for _, p := range append(page1.Data, page3.Data...) {
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
	}
}

func TestGetOperatorPayoutsPaginates(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusApproved)
	method := env.seedMethod(operatorID, achDetails(), true)

	base := time.Now()
	for i := 0; i < 12; i++ {
		payout := env.seedPayout(operatorID, method.ID, entity.MethodKindACH, entity.PayoutStatusCompleted, 0)
		payout.InitiatedAt = base.Add(time.Duration(i) * time.Second)
	}

	page2, err := env.svc.GetPayoutsByOperator(context.Background(), operatorID.String(), &request.PaginatedRequest{Page: 2, PerPage: 5})
	require.NoError(t, err)
	assert.Len(t, page2.Data, 5)
	assert.Equal(t, int64(12), page2.Pagination.Total)
	assert.Equal(t, 3, page2.Pagination.TotalPages)
}

func TestGetTotalPayouts(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusApproved)
	method := env.seedMethod(operatorID, achDetails(), true)

	for i, status := range []entity.PayoutStatus{
		entity.PayoutStatusCompleted,
		entity.PayoutStatusCompleted,
		entity.PayoutStatusFailed,
	} {
		payout := env.seedPayout(operatorID, method.ID, entity.MethodKindACH, status, 0)
		payout.AmountGross = decimal.NewFromInt(int64(100 * (i + 1)))
		payout.AmountNet = payout.AmountGross
	}

	totals, err := env.svc.GetTotalPayouts(context.Background(), operatorID.String())
	require.NoError(t, err)

	assert.Equal(t, int64(3), totals.Count)
	assert.Equal(t, "600", totals.Gross)
	assert.Equal(t, int64(2), totals.ByStatus[string(entity.PayoutStatusCompleted)])
	assert.Equal(t, int64(1), totals.ByStatus[string(entity.PayoutStatusFailed)])
}

func TestProcessPayoutUnknownBooking(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusApproved)

	_, err := env.svc.ProcessPayout(context.Background(), &request.ProcessPayoutRequest{
		OperatorID: operatorID.String(),
		BookingID:  uuid.NewString(),
	})

	var notFound *errs.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "booking", notFound.Entity)
}

func TestProcessPayoutOutstandingPayoutBlocksSecondAttempt(t *testing.T) {
	env := newPayoutEnv()
	operatorID := env.seedOperator(entity.OperatorStatusApproved)
	booking := env.seedBooking(operatorID, entity.BookingStatusCheckedIn, "400.00")
	env.seedMethod(operatorID, achDetails(), true)

	env.router.Register(entity.MethodKindACH, &fakeAdapter{result: &settlement.Result{
		Status:           settlement.StatusProcessing,
		ACHTransactionID: strPtr("ach_first"),
	}})

	req := &request.ProcessPayoutRequest{
		OperatorID: operatorID.String(),
		BookingID:  booking.ID.String(),
	}

	_, err := env.svc.ProcessPayout(context.Background(), req)
	require.NoError(t, err)

	_, err = env.svc.ProcessPayout(context.Background(), req)
	var ineligible *errs.IneligibleError
	require.ErrorAs(t, err, &ineligible)
	require.Len(t, ineligible.Reasons, 1)
	assert.Contains(t, ineligible.Reasons[0], "outstanding payout")
	assert.Len(t, env.payouts.payouts, 1)
}
