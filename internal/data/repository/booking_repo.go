package repository

import (
	"context"
	"fmt"
	"time"

	"tour-payouts/internal/data/entity"
	"tour-payouts/pkg/database"
	"tour-payouts/pkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// BookingRepository is the read-side collaborator contract. The payout core
// only reads eligibility data and flags a booking once its payout completes.
type BookingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	MarkPaidOut(ctx context.Context, id uuid.UUID) error
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `
		SELECT id, order_id, operator_id, amount, status, payout_completed, created_at, updated_at, deleted_at
		FROM bookings
		WHERE id = $1 AND deleted_at IS NULL
	`

	var booking entity.Booking
	err := r.db.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.OrderID,
		&booking.OperatorID,
		&booking.Amount,
		&booking.Status,
		&booking.PayoutCompleted,
		&booking.CreatedAt,
		&booking.UpdatedAt,
		&booking.DeletedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return &booking, nil
}

func (r *bookingRepository) MarkPaidOut(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE bookings SET payout_completed = true, updated_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.Exec(ctx, query, id, time.Now())
	if err != nil {
		r.log.Error("Failed to mark booking paid out",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return fmt.Errorf("mark booking %s paid out: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return &errs.NotFoundError{Entity: "booking", ID: id.String()}
	}

	return nil
}
