package repository

import (
	"context"
	"fmt"

	"tour-payouts/internal/data/entity"
	"tour-payouts/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// OperatorRepository is the read-side collaborator contract; only the
// approval status feeds payout eligibility.
type OperatorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Operator, error)
	GetStatus(ctx context.Context, id uuid.UUID) (entity.OperatorStatus, error)
}

type operatorRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewOperatorRepository(db database.PgxIface, log *zap.Logger) OperatorRepository {
	return &operatorRepository{
		db:  db,
		log: log.With(zap.String("repository", "operator")),
	}
}

func (r *operatorRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Operator, error) {
	query := `
		SELECT id, name, status, created_at, updated_at, deleted_at
		FROM operators
		WHERE id = $1 AND deleted_at IS NULL
	`

	var operator entity.Operator
	err := r.db.QueryRow(ctx, query, id).Scan(
		&operator.ID,
		&operator.Name,
		&operator.Status,
		&operator.CreatedAt,
		&operator.UpdatedAt,
		&operator.DeletedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find operator by ID",
			zap.Error(err),
			zap.String("operator_id", id.String()),
		)
		return nil, fmt.Errorf("find operator by ID %s: %w", id.String(), err)
	}

	return &operator, nil
}

func (r *operatorRepository) GetStatus(ctx context.Context, id uuid.UUID) (entity.OperatorStatus, error) {
	var status entity.OperatorStatus
	err := r.db.QueryRow(ctx, `SELECT status FROM operators WHERE id = $1 AND deleted_at IS NULL`, id).Scan(&status)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		r.log.Error("Failed to get operator status",
			zap.Error(err),
			zap.String("operator_id", id.String()),
		)
		return "", fmt.Errorf("get status for operator %s: %w", id.String(), err)
	}
	return status, nil
}
