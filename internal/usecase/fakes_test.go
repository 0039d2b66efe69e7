package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tour-payouts/internal/data/entity"
	"tour-payouts/pkg/errs"
	"tour-payouts/pkg/settlement"
)

// fakePayoutRepo mirrors the ledger semantics in memory: transitions are
// validated against the state machine and timestamps are never cleared once
// set.
type fakePayoutRepo struct {
	mu      sync.Mutex
	payouts map[uuid.UUID]*entity.Payout
}

func newFakePayoutRepo() *fakePayoutRepo {
	return &fakePayoutRepo{payouts: make(map[uuid.UUID]*entity.Payout)}
}

func (r *fakePayoutRepo) Create(ctx context.Context, payout *entity.Payout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *payout
	r.payouts[payout.ID] = &clone
	return nil
}

func (r *fakePayoutRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payout, ok := r.payouts[id]
	if !ok {
		return nil, nil
	}
	clone := *payout
	return &clone, nil
}

func (r *fakePayoutRepo) FindByOperator(ctx context.Context, operatorID uuid.UUID, limit, offset int) ([]*entity.Payout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var payouts []*entity.Payout
	for _, payout := range r.payouts {
		if payout.OperatorID == operatorID {
			clone := *payout
			payouts = append(payouts, &clone)
		}
	}
	return pagePayouts(payouts, limit, offset), nil
}

func (r *fakePayoutRepo) CountByOperator(ctx context.Context, operatorID uuid.UUID) (int64, error) {
	payouts, _ := r.FindByOperator(ctx, operatorID, 0, 0)
	return int64(len(payouts)), nil
}

func (r *fakePayoutRepo) FindByStatus(ctx context.Context, status entity.PayoutStatus, limit, offset int) ([]*entity.Payout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var payouts []*entity.Payout
	for _, payout := range r.payouts {
		if payout.Status == status {
			clone := *payout
			payouts = append(payouts, &clone)
		}
	}
	return pagePayouts(payouts, limit, offset), nil
}

func (r *fakePayoutRepo) CountByStatus(ctx context.Context, status entity.PayoutStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, payout := range r.payouts {
		if payout.Status == status {
			count++
		}
	}
	return count, nil
}

// pagePayouts applies the same ordering and window as the SQL queries:
// newest initiated first, then LIMIT/OFFSET.
func pagePayouts(payouts []*entity.Payout, limit, offset int) []*entity.Payout {
	sort.Slice(payouts, func(i, j int) bool {
		return payouts[i].InitiatedAt.After(payouts[j].InitiatedAt)
	})
	if offset >= len(payouts) {
		return nil
	}
	payouts = payouts[offset:]
	if limit > 0 && limit < len(payouts) {
		payouts = payouts[:limit]
	}
	return payouts
}

func (r *fakePayoutRepo) FindByACHTransactionID(ctx context.Context, achTransactionID string) (*entity.Payout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, payout := range r.payouts {
		if payout.ACHTransactionID != nil && *payout.ACHTransactionID == achTransactionID {
			clone := *payout
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakePayoutRepo) FindOutstandingByBooking(ctx context.Context, bookingID uuid.UUID) (*entity.Payout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, payout := range r.payouts {
		if payout.BookingID != nil && *payout.BookingID == bookingID && !entity.IsTerminal(payout.Status) {
			clone := *payout
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakePayoutRepo) TotalsByOperator(ctx context.Context, operatorID uuid.UUID) (*entity.PayoutTotals, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := &entity.PayoutTotals{
		Gross:    decimal.Zero,
		Fees:     decimal.Zero,
		Net:      decimal.Zero,
		ByStatus: make(map[entity.PayoutStatus]int64),
	}
	for _, payout := range r.payouts {
		if payout.OperatorID != operatorID {
			continue
		}
		totals.Count++
		totals.Gross = totals.Gross.Add(payout.AmountGross)
		totals.Fees = totals.Fees.Add(payout.FeeAmount)
		totals.Net = totals.Net.Add(payout.AmountNet)
		totals.ByStatus[payout.Status]++
	}
	return totals, nil
}

func (r *fakePayoutRepo) transition(id uuid.UUID, to entity.PayoutStatus, apply func(p *entity.Payout, now time.Time)) (*entity.Payout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payout, ok := r.payouts[id]
	if !ok {
		return nil, &errs.NotFoundError{Entity: "payout", ID: id.String()}
	}
	if !entity.CanTransition(payout.Status, to) {
		return nil, &errs.InvalidTransitionError{From: string(payout.Status), To: string(to)}
	}
	now := time.Now()
	payout.Status = to
	payout.UpdatedAt = now
	apply(payout, now)
	clone := *payout
	return &clone, nil
}

func mergeProviderIDs(p *entity.Payout, ids entity.ProviderIDs) {
	if ids.CoinbaseTransactionID != nil {
		p.CoinbaseTransactionID = ids.CoinbaseTransactionID
	}
	if ids.ACHTransactionID != nil {
		p.ACHTransactionID = ids.ACHTransactionID
	}
	if ids.BlockchainTxHash != nil {
		p.BlockchainTxHash = ids.BlockchainTxHash
	}
	if ids.ExternalReference != nil {
		p.ExternalReference = ids.ExternalReference
	}
}

func (r *fakePayoutRepo) MarkProcessing(ctx context.Context, id uuid.UUID, ids entity.ProviderIDs) (*entity.Payout, error) {
	return r.transition(id, entity.PayoutStatusProcessing, func(p *entity.Payout, now time.Time) {
		if p.ProcessedAt == nil {
			p.ProcessedAt = &now
		}
		mergeProviderIDs(p, ids)
	})
}

func (r *fakePayoutRepo) MarkCompleted(ctx context.Context, id uuid.UUID, ids entity.ProviderIDs) (*entity.Payout, error) {
	return r.transition(id, entity.PayoutStatusCompleted, func(p *entity.Payout, now time.Time) {
		if p.CompletedAt == nil {
			p.CompletedAt = &now
		}
		mergeProviderIDs(p, ids)
	})
}

func (r *fakePayoutRepo) MarkFailed(ctx context.Context, id uuid.UUID, errorCode, errorMessage string) (*entity.Payout, error) {
	return r.transition(id, entity.PayoutStatusFailed, func(p *entity.Payout, now time.Time) {
		if p.FailedAt == nil {
			p.FailedAt = &now
		}
		p.ErrorCode = &errorCode
		p.ErrorMessage = &errorMessage
	})
}

func (r *fakePayoutRepo) IncrementRetry(ctx context.Context, id uuid.UUID) (*entity.Payout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payout, ok := r.payouts[id]
	if !ok {
		return nil, &errs.NotFoundError{Entity: "payout", ID: id.String()}
	}
	if payout.Status != entity.PayoutStatusFailed {
		return nil, &errs.InvalidStateError{Entity: "payout", Current: string(payout.Status), Expected: string(entity.PayoutStatusFailed)}
	}
	payout.RetryCount++
	clone := *payout
	return &clone, nil
}

func (r *fakePayoutRepo) Cancel(ctx context.Context, id uuid.UUID) (*entity.Payout, error) {
	return r.transition(id, entity.PayoutStatusCancelled, func(p *entity.Payout, now time.Time) {})
}

type fakePaymentMethodRepo struct {
	mu      sync.Mutex
	methods map[uuid.UUID]*entity.PaymentMethod
}

func newFakePaymentMethodRepo() *fakePaymentMethodRepo {
	return &fakePaymentMethodRepo{methods: make(map[uuid.UUID]*entity.PaymentMethod)}
}

func (r *fakePaymentMethodRepo) Create(ctx context.Context, method *entity.PaymentMethod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *method
	r.methods[method.ID] = &clone
	return nil
}

func (r *fakePaymentMethodRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentMethod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	method, ok := r.methods[id]
	if !ok || method.DeletedAt != nil {
		return nil, nil
	}
	clone := *method
	return &clone, nil
}

func (r *fakePaymentMethodRepo) FindByOperator(ctx context.Context, operatorID uuid.UUID) ([]*entity.PaymentMethod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var methods []*entity.PaymentMethod
	for _, method := range r.methods {
		if method.OperatorID == operatorID && method.DeletedAt == nil {
			clone := *method
			methods = append(methods, &clone)
		}
	}
	return methods, nil
}

func (r *fakePaymentMethodRepo) FindPrimary(ctx context.Context, operatorID uuid.UUID) (*entity.PaymentMethod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, method := range r.methods {
		if method.OperatorID == operatorID && method.IsPrimary &&
			method.Status == entity.MethodStatusActive && method.DeletedAt == nil {
			clone := *method
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentMethodRepo) SetPrimary(ctx context.Context, methodID, operatorID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.methods[methodID]
	if !ok || target.OperatorID != operatorID || target.DeletedAt != nil {
		return &errs.NotFoundError{Entity: "payment method", ID: methodID.String()}
	}
	for _, method := range r.methods {
		if method.OperatorID == operatorID {
			method.IsPrimary = false
		}
	}
	target.IsPrimary = true
	return nil
}

func (r *fakePaymentMethodRepo) UpdateVerification(ctx context.Context, methodID uuid.UUID, verification entity.VerificationStatus, status entity.MethodStatus) (*entity.PaymentMethod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	method, ok := r.methods[methodID]
	if !ok || method.DeletedAt != nil {
		return nil, &errs.NotFoundError{Entity: "payment method", ID: methodID.String()}
	}
	method.VerificationStatus = verification
	method.Status = status
	clone := *method
	return &clone, nil
}

func (r *fakePaymentMethodRepo) TouchLastUsed(ctx context.Context, methodID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if method, ok := r.methods[methodID]; ok {
		now := time.Now()
		method.LastUsedAt = &now
	}
	return nil
}

func (r *fakePaymentMethodRepo) Deactivate(ctx context.Context, methodID, operatorID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	method, ok := r.methods[methodID]
	if !ok || method.OperatorID != operatorID || method.DeletedAt != nil {
		return &errs.NotFoundError{Entity: "payment method", ID: methodID.String()}
	}
	now := time.Now()
	method.Status = entity.MethodStatusInactive
	method.IsPrimary = false
	method.DeletedAt = &now
	return nil
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*entity.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*entity.Booking)}
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	clone := *booking
	return &clone, nil
}

func (r *fakeBookingRepo) MarkPaidOut(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok {
		return &errs.NotFoundError{Entity: "booking", ID: id.String()}
	}
	booking.PayoutCompleted = true
	return nil
}

type fakeOperatorRepo struct {
	statuses map[uuid.UUID]entity.OperatorStatus
}

func newFakeOperatorRepo() *fakeOperatorRepo {
	return &fakeOperatorRepo{statuses: make(map[uuid.UUID]entity.OperatorStatus)}
}

func (r *fakeOperatorRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Operator, error) {
	status, ok := r.statuses[id]
	if !ok {
		return nil, nil
	}
	return &entity.Operator{Base: entity.Base{ID: id}, Status: status}, nil
}

func (r *fakeOperatorRepo) GetStatus(ctx context.Context, id uuid.UUID) (entity.OperatorStatus, error) {
	return r.statuses[id], nil
}

// fakeAdapter scripts one transfer outcome and records every call.
type fakeAdapter struct {
	mu     sync.Mutex
	calls  int
	result *settlement.Result
	err    error
}

func (a *fakeAdapter) Transfer(ctx context.Context, dest settlement.Destination, amount decimal.Decimal, description string) (*settlement.Result, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	return a.result, nil
}

func (a *fakeAdapter) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}
