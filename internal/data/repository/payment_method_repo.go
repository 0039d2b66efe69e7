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
	"go.uber.org/zap"
)

type PaymentMethodRepository interface {
	Create(ctx context.Context, method *entity.PaymentMethod) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentMethod, error)
	FindByOperator(ctx context.Context, operatorID uuid.UUID) ([]*entity.PaymentMethod, error)
	FindPrimary(ctx context.Context, operatorID uuid.UUID) (*entity.PaymentMethod, error)
	SetPrimary(ctx context.Context, methodID, operatorID uuid.UUID) error
	UpdateVerification(ctx context.Context, methodID uuid.UUID, verification entity.VerificationStatus, status entity.MethodStatus) (*entity.PaymentMethod, error)
	TouchLastUsed(ctx context.Context, methodID uuid.UUID) error
	Deactivate(ctx context.Context, methodID, operatorID uuid.UUID) error
}

type paymentMethodRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewPaymentMethodRepository(db database.PgxIface, log *zap.Logger) PaymentMethodRepository {
	return &paymentMethodRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment_method")),
	}
}

const paymentMethodColumns = `
	id, operator_id, kind, is_primary, status, verification_status,
	details, last_used_at, created_at, updated_at, deleted_at
`

func scanPaymentMethod(row payoutRow) (*entity.PaymentMethod, error) {
	var m entity.PaymentMethod
	var details []byte
	err := row.Scan(
		&m.ID,
		&m.OperatorID,
		&m.Kind,
		&m.IsPrimary,
		&m.Status,
		&m.VerificationStatus,
		&details,
		&m.LastUsedAt,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	decoded, err := entity.DecodeDetails(m.Kind, details)
	if err != nil {
		return nil, err
	}
	m.Details = decoded

	return &m, nil
}

func (r *paymentMethodRepository) Create(ctx context.Context, method *entity.PaymentMethod) error {
	details, err := json.Marshal(method.Details)
	if err != nil {
		return fmt.Errorf("encode payment method details: %w", err)
	}

	query := `
		INSERT INTO payment_methods (
			id, operator_id, kind, is_primary, status, verification_status,
			details, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = r.db.Exec(ctx, query,
		method.ID,
		method.OperatorID,
		method.Kind,
		method.IsPrimary,
		method.Status,
		method.VerificationStatus,
		details,
		method.CreatedAt,
		method.UpdatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create payment method",
			zap.Error(err),
			zap.String("operator_id", method.OperatorID.String()),
			zap.String("kind", string(method.Kind)),
		)
		return fmt.Errorf("create %s payment method for operator %s: %w", method.Kind, method.OperatorID.String(), err)
	}

	return nil
}

func (r *paymentMethodRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.PaymentMethod, error) {
	query := `
		SELECT ` + paymentMethodColumns + `
		FROM payment_methods
		WHERE id = $1 AND deleted_at IS NULL
	`

	method, err := scanPaymentMethod(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find payment method by ID",
			zap.Error(err),
			zap.String("payment_method_id", id.String()),
		)
		return nil, fmt.Errorf("find payment method by ID %s: %w", id.String(), err)
	}

	return method, nil
}

func (r *paymentMethodRepository) FindByOperator(ctx context.Context, operatorID uuid.UUID) ([]*entity.PaymentMethod, error) {
	query := `
		SELECT ` + paymentMethodColumns + `
		FROM payment_methods
		WHERE operator_id = $1 AND deleted_at IS NULL
		ORDER BY is_primary DESC, created_at DESC
	`

	rows, err := r.db.Query(ctx, query, operatorID)
	if err != nil {
		r.log.Error("Failed to find payment methods by operator",
			zap.Error(err),
			zap.String("operator_id", operatorID.String()),
		)
		return nil, fmt.Errorf("find payment methods for operator %s: %w", operatorID.String(), err)
	}
	defer rows.Close()

	var methods []*entity.PaymentMethod
	for rows.Next() {
		method, err := scanPaymentMethod(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment method row: %w", err)
		}
		methods = append(methods, method)
	}

	return methods, nil
}

func (r *paymentMethodRepository) FindPrimary(ctx context.Context, operatorID uuid.UUID) (*entity.PaymentMethod, error) {
	query := `
		SELECT ` + paymentMethodColumns + `
		FROM payment_methods
		WHERE operator_id = $1 AND is_primary = true AND status = 'active' AND deleted_at IS NULL
	`

	method, err := scanPaymentMethod(r.db.QueryRow(ctx, query, operatorID))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find primary payment method",
			zap.Error(err),
			zap.String("operator_id", operatorID.String()),
		)
		return nil, fmt.Errorf("find primary payment method for operator %s: %w", operatorID.String(), err)
	}

	return method, nil
}

// SetPrimary clears the primary flag on all of the operator's methods and
// sets it on the target inside one transaction. The operator's rows are
// locked first so concurrent calls cannot leave two primaries.
func (r *paymentMethodRepository) SetPrimary(ctx context.Context, methodID, operatorID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin set primary tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx,
		`SELECT id FROM payment_methods WHERE operator_id = $1 AND deleted_at IS NULL FOR UPDATE`,
		operatorID)
	if err != nil {
		return fmt.Errorf("lock payment methods for operator %s: %w", operatorID.String(), err)
	}

	owned := false
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan locked payment method id: %w", err)
		}
		if id == methodID {
			owned = true
		}
	}
	rows.Close()

	if !owned {
		return &errs.NotFoundError{Entity: "payment method", ID: methodID.String()}
	}

	now := time.Now()
	_, err = tx.Exec(ctx,
		`UPDATE payment_methods SET is_primary = false, updated_at = $2 WHERE operator_id = $1 AND is_primary = true`,
		operatorID, now)
	if err != nil {
		return fmt.Errorf("clear primary payment methods for operator %s: %w", operatorID.String(), err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE payment_methods SET is_primary = true, updated_at = $2 WHERE id = $1`,
		methodID, now)
	if err != nil {
		return fmt.Errorf("set primary payment method %s: %w", methodID.String(), err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit set primary tx: %w", err)
	}

	r.log.Info("Primary payment method updated",
		zap.String("operator_id", operatorID.String()),
		zap.String("payment_method_id", methodID.String()),
	)
	return nil
}

func (r *paymentMethodRepository) UpdateVerification(ctx context.Context, methodID uuid.UUID, verification entity.VerificationStatus, status entity.MethodStatus) (*entity.PaymentMethod, error) {
	query := `
		UPDATE payment_methods
		SET verification_status = $2, status = $3, updated_at = $4
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, methodID, verification, status, time.Now())
	if err != nil {
		r.log.Error("Failed to update payment method verification",
			zap.Error(err),
			zap.String("payment_method_id", methodID.String()),
		)
		return nil, fmt.Errorf("update verification for payment method %s: %w", methodID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return nil, &errs.NotFoundError{Entity: "payment method", ID: methodID.String()}
	}

	return r.FindByID(ctx, methodID)
}

func (r *paymentMethodRepository) TouchLastUsed(ctx context.Context, methodID uuid.UUID) error {
	now := time.Now()
	_, err := r.db.Exec(ctx,
		`UPDATE payment_methods SET last_used_at = $2, updated_at = $2 WHERE id = $1`,
		methodID, now)
	if err != nil {
		r.log.Error("Failed to touch payment method last_used_at",
			zap.Error(err),
			zap.String("payment_method_id", methodID.String()),
		)
		return fmt.Errorf("touch last used for payment method %s: %w", methodID.String(), err)
	}
	return nil
}

func (r *paymentMethodRepository) Deactivate(ctx context.Context, methodID, operatorID uuid.UUID) error {
	query := `
		UPDATE payment_methods
		SET status = 'inactive', is_primary = false, updated_at = $3, deleted_at = $3
		WHERE id = $1 AND operator_id = $2 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, methodID, operatorID, time.Now())
	if err != nil {
		r.log.Error("Failed to deactivate payment method",
			zap.Error(err),
			zap.String("payment_method_id", methodID.String()),
		)
		return fmt.Errorf("deactivate payment method %s: %w", methodID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return &errs.NotFoundError{Entity: "payment method", ID: methodID.String()}
	}

	r.log.Info("Payment method deactivated", zap.String("payment_method_id", methodID.String()))
	return nil
}
