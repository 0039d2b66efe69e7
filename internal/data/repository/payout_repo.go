package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tour-payouts/internal/data/entity"
	"tour-payouts/pkg/database"
	"tour-payouts/pkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type PayoutRepository interface {
	Create(ctx context.Context, payout *entity.Payout) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Payout, error)
	FindByOperator(ctx context.Context, operatorID uuid.UUID, limit, offset int) ([]*entity.Payout, error)
	CountByOperator(ctx context.Context, operatorID uuid.UUID) (int64, error)
	FindByStatus(ctx context.Context, status entity.PayoutStatus, limit, offset int) ([]*entity.Payout, error)
	CountByStatus(ctx context.Context, status entity.PayoutStatus) (int64, error)
	FindByACHTransactionID(ctx context.Context, achTransactionID string) (*entity.Payout, error)
	FindOutstandingByBooking(ctx context.Context, bookingID uuid.UUID) (*entity.Payout, error)
	TotalsByOperator(ctx context.Context, operatorID uuid.UUID) (*entity.PayoutTotals, error)

	// State transitions. Each runs inside its own transaction with the row
	// locked, so concurrent transitions on one payout serialize.
	MarkProcessing(ctx context.Context, id uuid.UUID, ids entity.ProviderIDs) (*entity.Payout, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, ids entity.ProviderIDs) (*entity.Payout, error)
	MarkFailed(ctx context.Context, id uuid.UUID, errorCode, errorMessage string) (*entity.Payout, error)
	IncrementRetry(ctx context.Context, id uuid.UUID) (*entity.Payout, error)
	Cancel(ctx context.Context, id uuid.UUID) (*entity.Payout, error)
}

type payoutRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPayoutRepository(db database.PgxIface, log *zap.Logger) PayoutRepository {
	return &payoutRepository{
		db:  db,
		log: log.With(zap.String("repository", "payout")),
	}
}

const payoutColumns = `
	id, operator_id, booking_id, payment_method_id, kind,
	amount_gross, fee_amount, amount_net, status,
	coinbase_transaction_id, ach_transaction_id, blockchain_tx_hash, external_reference,
	initiated_at, processed_at, completed_at, failed_at,
	error_code, error_message, retry_count, metadata, created_at, updated_at
`

type payoutRow interface {
	Scan(dest ...any) error
}

func scanPayout(row payoutRow) (*entity.Payout, error) {
	var p entity.Payout
	var metadata []byte
	err := row.Scan(
		&p.ID,
		&p.OperatorID,
		&p.BookingID,
		&p.PaymentMethodID,
		&p.Kind,
		&p.AmountGross,
		&p.FeeAmount,
		&p.AmountNet,
		&p.Status,
		&p.CoinbaseTransactionID,
		&p.ACHTransactionID,
		&p.BlockchainTxHash,
		&p.ExternalReference,
		&p.InitiatedAt,
		&p.ProcessedAt,
		&p.CompletedAt,
		&p.FailedAt,
		&p.ErrorCode,
		&p.ErrorMessage,
		&p.RetryCount,
		&metadata,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
			return nil, fmt.Errorf("decode payout metadata: %w", err)
		}
	}

	return &p, nil
}

func (r *payoutRepository) Create(ctx context.Context, payout *entity.Payout) error {
	metadata, err := json.Marshal(payout.Metadata)
	if err != nil {
		return fmt.Errorf("encode payout metadata: %w", err)
	}

	query := `
		INSERT INTO payouts (
			id, operator_id, booking_id, payment_method_id, kind,
			amount_gross, fee_amount, amount_net, status,
			initiated_at, retry_count, metadata, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err = r.db.Exec(ctx, query,
		payout.ID,
		payout.OperatorID,
		payout.BookingID,
		payout.PaymentMethodID,
		payout.Kind,
		payout.AmountGross,
		payout.FeeAmount,
		payout.AmountNet,
		payout.Status,
		payout.InitiatedAt,
		payout.RetryCount,
		metadata,
		payout.CreatedAt,
		payout.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payout",
			zap.Error(err),
			zap.String("operator_id", payout.OperatorID.String()),
		)
		return fmt.Errorf("create payout for operator %s: %w", payout.OperatorID.String(), err)
	}

	return nil
}

func (r *payoutRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE id = $1`

	payout, err := scanPayout(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payout by ID",
			zap.Error(err),
			zap.String("payout_id", id.String()),
		)
		return nil, fmt.Errorf("find payout by ID %s: %w", id.String(), err)
	}

	return payout, nil
}

func (r *payoutRepository) FindByOperator(ctx context.Context, operatorID uuid.UUID, limit, offset int) ([]*entity.Payout, error) {
	query := `
		SELECT ` + payoutColumns + `
		FROM payouts
		WHERE operator_id = $1
		ORDER BY initiated_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, operatorID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find payouts by operator",
			zap.Error(err),
			zap.String("operator_id", operatorID.String()),
		)
		return nil, fmt.Errorf("find payouts by operator %s: %w", operatorID.String(), err)
	}
	defer rows.Close()

	return collectPayouts(rows)
}

func (r *payoutRepository) CountByOperator(ctx context.Context, operatorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payouts WHERE operator_id = $1`, operatorID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count payouts by operator", zap.Error(err))
		return 0, fmt.Errorf("count payouts by operator %s: %w", operatorID.String(), err)
	}
	return count, nil
}

func (r *payoutRepository) FindByStatus(ctx context.Context, status entity.PayoutStatus, limit, offset int) ([]*entity.Payout, error) {
	query := `
		SELECT ` + payoutColumns + `
		FROM payouts
		WHERE status = $1
		ORDER BY initiated_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		r.log.Error("Failed to find payouts by status",
			zap.Error(err),
			zap.String("status", string(status)),
		)
		return nil, fmt.Errorf("find payouts by status %s: %w", status, err)
	}
	defer rows.Close()

	return collectPayouts(rows)
}

func (r *payoutRepository) CountByStatus(ctx context.Context, status entity.PayoutStatus) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM payouts WHERE status = $1`, status).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count payouts by status", zap.Error(err))
		return 0, fmt.Errorf("count payouts by status %s: %w", status, err)
	}
	return count, nil
}

func (r *payoutRepository) FindByACHTransactionID(ctx context.Context, achTransactionID string) (*entity.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE ach_transaction_id = $1`

	payout, err := scanPayout(r.db.QueryRow(ctx, query, achTransactionID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payout by ACH transaction ID",
			zap.Error(err),
			zap.String("ach_transaction_id", achTransactionID),
		)
		return nil, fmt.Errorf("find payout by ACH transaction ID %s: %w", achTransactionID, err)
	}

	return payout, nil
}

func (r *payoutRepository) FindOutstandingByBooking(ctx context.Context, bookingID uuid.UUID) (*entity.Payout, error) {
	query := `
		SELECT ` + payoutColumns + `
		FROM payouts
		WHERE booking_id = $1 AND status NOT IN ('completed', 'cancelled')
		ORDER BY initiated_at DESC
		LIMIT 1
	`

	payout, err := scanPayout(r.db.QueryRow(ctx, query, bookingID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find outstanding payout by booking",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, fmt.Errorf("find outstanding payout for booking %s: %w", bookingID.String(), err)
	}

	return payout, nil
}

func (r *payoutRepository) TotalsByOperator(ctx context.Context, operatorID uuid.UUID) (*entity.PayoutTotals, error) {
	totals := &entity.PayoutTotals{
		Gross:    decimal.Zero,
		Fees:     decimal.Zero,
		Net:      decimal.Zero,
		ByStatus: make(map[entity.PayoutStatus]int64),
	}

	query := `
		SELECT status, COUNT(*), COALESCE(SUM(amount_gross), 0), COALESCE(SUM(fee_amount), 0), COALESCE(SUM(amount_net), 0)
		FROM payouts
		WHERE operator_id = $1
		GROUP BY status
	`

	rows, err := r.db.Query(ctx, query, operatorID)
	if err != nil {
		r.log.Error("Failed to total payouts by operator",
			zap.Error(err),
			zap.String("operator_id", operatorID.String()),
		)
		return nil, fmt.Errorf("total payouts by operator %s: %w", operatorID.String(), err)
	}
	defer rows.Close()

	for rows.Next() {
		var status entity.PayoutStatus
		var count int64
		var gross, fees, net decimal.Decimal
		if err := rows.Scan(&status, &count, &gross, &fees, &net); err != nil {
			return nil, fmt.Errorf("scan payout totals row: %w", err)
		}
		totals.Count += count
		totals.Gross = totals.Gross.Add(gross)
		totals.Fees = totals.Fees.Add(fees)
		totals.Net = totals.Net.Add(net)
		totals.ByStatus[status] = count
	}

	return totals, nil
}

func (r *payoutRepository) MarkProcessing(ctx context.Context, id uuid.UUID, ids entity.ProviderIDs) (*entity.Payout, error) {
	return r.transition(ctx, id, entity.PayoutStatusProcessing, func(tx pgx.Tx, payout *entity.Payout, now time.Time) error {
		query := `
			UPDATE payouts
			SET status = $2,
				processed_at = COALESCE(processed_at, $3),
				coinbase_transaction_id = COALESCE($4, coinbase_transaction_id),
				ach_transaction_id = COALESCE($5, ach_transaction_id),
				blockchain_tx_hash = COALESCE($6, blockchain_tx_hash),
				external_reference = COALESCE($7, external_reference),
				updated_at = $3
			WHERE id = $1
		`
		_, err := tx.Exec(ctx, query, id, entity.PayoutStatusProcessing, now,
			ids.CoinbaseTransactionID, ids.ACHTransactionID, ids.BlockchainTxHash, ids.ExternalReference)
		return err
	})
}

func (r *payoutRepository) MarkCompleted(ctx context.Context, id uuid.UUID, ids entity.ProviderIDs) (*entity.Payout, error) {
	return r.transition(ctx, id, entity.PayoutStatusCompleted, func(tx pgx.Tx, payout *entity.Payout, now time.Time) error {
		query := `
			UPDATE payouts
			SET status = $2,
				completed_at = COALESCE(completed_at, $3),
				coinbase_transaction_id = COALESCE($4, coinbase_transaction_id),
				ach_transaction_id = COALESCE($5, ach_transaction_id),
				blockchain_tx_hash = COALESCE($6, blockchain_tx_hash),
				external_reference = COALESCE($7, external_reference),
				updated_at = $3
			WHERE id = $1
		`
		_, err := tx.Exec(ctx, query, id, entity.PayoutStatusCompleted, now,
			ids.CoinbaseTransactionID, ids.ACHTransactionID, ids.BlockchainTxHash, ids.ExternalReference)
		return err
	})
}

func (r *payoutRepository) MarkFailed(ctx context.Context, id uuid.UUID, errorCode, errorMessage string) (*entity.Payout, error) {
	return r.transition(ctx, id, entity.PayoutStatusFailed, func(tx pgx.Tx, payout *entity.Payout, now time.Time) error {
		query := `
			UPDATE payouts
			SET status = $2,
				failed_at = COALESCE(failed_at, $3),
				error_code = $4,
				error_message = $5,
				updated_at = $3
			WHERE id = $1
		`
		_, err := tx.Exec(ctx, query, id, entity.PayoutStatusFailed, now, errorCode, errorMessage)
		return err
	})
}

// IncrementRetry bumps the retry counter on a failed payout. The retry
// limit itself is checked by the orchestrator; this is bookkeeping only.
func (r *payoutRepository) IncrementRetry(ctx context.Context, id uuid.UUID) (*entity.Payout, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin increment retry tx: %w", err)
	}
	defer tx.Rollback(ctx)

	payout, err := lockPayout(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if payout == nil {
		return nil, &errs.NotFoundError{Entity: "payout", ID: id.String()}
	}
	if payout.Status != entity.PayoutStatusFailed {
		return nil, &errs.InvalidStateError{Entity: "payout", Current: string(payout.Status), Expected: string(entity.PayoutStatusFailed)}
	}

	now := time.Now()
	_, err = tx.Exec(ctx, `UPDATE payouts SET retry_count = retry_count + 1, updated_at = $2 WHERE id = $1`, id, now)
	if err != nil {
		r.log.Error("Failed to increment payout retry count",
			zap.Error(err),
			zap.String("payout_id", id.String()),
		)
		return nil, fmt.Errorf("increment retry for payout %s: %w", id.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit increment retry tx: %w", err)
	}

	payout.RetryCount++
	payout.UpdatedAt = now
	return payout, nil
}

func (r *payoutRepository) Cancel(ctx context.Context, id uuid.UUID) (*entity.Payout, error) {
	return r.transition(ctx, id, entity.PayoutStatusCancelled, func(tx pgx.Tx, payout *entity.Payout, now time.Time) error {
		// cancel is only legal from pending; CanTransition already enforced it.
		_, err := tx.Exec(ctx,
			`UPDATE payouts SET status = $2, updated_at = $3 WHERE id = $1`,
			id, entity.PayoutStatusCancelled, now)
		return err
	})
}

// transition locks the payout row, validates the state machine edge, applies
// the update, and returns the fresh row. Timestamp fields use COALESCE so a
// re-entered state never clears an already-set timestamp.
func (r *payoutRepository) transition(ctx context.Context, id uuid.UUID, to entity.PayoutStatus, apply func(tx pgx.Tx, payout *entity.Payout, now time.Time) error) (*entity.Payout, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin payout transition tx: %w", err)
	}
	defer tx.Rollback(ctx)

	payout, err := lockPayout(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if payout == nil {
		return nil, &errs.NotFoundError{Entity: "payout", ID: id.String()}
	}

	if !entity.CanTransition(payout.Status, to) {
		r.log.Warn("Illegal payout transition rejected",
			zap.String("payout_id", id.String()),
			zap.String("from", string(payout.Status)),
			zap.String("to", string(to)),
		)
		return nil, &errs.InvalidTransitionError{From: string(payout.Status), To: string(to)}
	}

	now := time.Now()
	if err := apply(tx, payout, now); err != nil {
		r.log.Error("Failed to apply payout transition",
			zap.Error(err),
			zap.String("payout_id", id.String()),
			zap.String("to", string(to)),
		)
		return nil, fmt.Errorf("transition payout %s to %s: %w", id.String(), to, err)
	}

	updated, err := scanPayout(tx.QueryRow(ctx, `SELECT `+payoutColumns+` FROM payouts WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("reload payout %s after transition: %w", id.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit payout transition tx: %w", err)
	}

	return updated, nil
}

func lockPayout(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*entity.Payout, error) {
	query := `SELECT ` + payoutColumns + ` FROM payouts WHERE id = $1 FOR UPDATE`

	payout, err := scanPayout(tx.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lock payout %s: %w", id.String(), err)
	}
	return payout, nil
}

func collectPayouts(rows pgx.Rows) ([]*entity.Payout, error) {
	var payouts []*entity.Payout
	for rows.Next() {
		payout, err := scanPayout(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payout row: %w", err)
		}
		payouts = append(payouts, payout)
	}
	return payouts, nil
}
