package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var (
	ErrSlotNotFound     = errors.New("time slot not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrCapacityExceeded = errors.New("time slot is full")
	ErrDuplicateBooking = errors.New("customer already has an active booking for this slot")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// AdmitBooking serialises concurrent attempts on the same slot with a
// row-level lock, re-checks the duplicate guard and the capacity invariant
// under that lock, and inserts the booking in the same transaction. Two
// callers racing for the last spot cannot both observe spare capacity: the
// second blocks on the lock and sees the first one's insert.
func (r *repository) AdmitBooking(ctx context.Context, customerID, workshopID, timeSlotID int) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var capacity int
	err = tx.QueryRowxContext(ctx, `
		SELECT ts.capacity
		FROM time_slots ts
		JOIN workshops w ON ts.workshop_id = w.id
		WHERE ts.id = $1 AND ts.workshop_id = $2
		  AND ts.is_deleted = FALSE AND w.is_deleted = FALSE
		FOR UPDATE OF ts`,
		timeSlotID, workshopID,
	).Scan(&capacity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("lock time slot: %w", err)
	}

	var hasActive bool
	err = tx.QueryRowxContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE customer_id = $1 AND time_slot_id = $2
			  AND status IN ('pending', 'confirmed')
		)`,
		customerID, timeSlotID,
	).Scan(&hasActive)
	if err != nil {
		return nil, fmt.Errorf("check duplicate booking: %w", err)
	}
	if hasActive {
		return nil, ErrDuplicateBooking
	}

	var activeCount int
	err = tx.QueryRowxContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE time_slot_id = $1 AND status IN ('pending', 'confirmed')`,
		timeSlotID,
	).Scan(&activeCount)
	if err != nil {
		return nil, fmt.Errorf("count active bookings: %w", err)
	}
	if activeCount >= capacity {
		return nil, ErrCapacityExceeded
	}

	var booking Booking
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO bookings (customer_id, workshop_id, time_slot_id, status)
		VALUES ($1, $2, $3, 'confirmed')
		RETURNING id, customer_id, workshop_id, time_slot_id, status, is_deleted, created_at, updated_at`,
		customerID, workshopID, timeSlotID,
	).StructScan(&booking)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &booking, nil
}

func (r *repository) GetBookingByID(ctx context.Context, id int) (*Booking, error) {
	query := `
		SELECT id, customer_id, workshop_id, time_slot_id, status, is_deleted, created_at, updated_at
		FROM bookings
		WHERE id = $1 AND is_deleted = FALSE
	`

	var booking Booking
	err := r.db.GetContext(ctx, &booking, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	return &booking, nil
}

func (r *repository) CancelBooking(ctx context.Context, id int) error {
	query := `
		UPDATE bookings
		SET status = 'cancelled', updated_at = NOW()
		WHERE id = $1 AND status <> 'cancelled' AND is_deleted = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int, newStatus Status) (*Booking, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current Status
	err = tx.QueryRowxContext(ctx,
		`SELECT status FROM bookings WHERE id = $1 AND is_deleted = FALSE FOR UPDATE`,
		id,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("lock booking: %w", err)
	}

	if !current.CanTransitionTo(newStatus) {
		return nil, ErrInvalidTransition
	}

	var booking Booking
	err = tx.QueryRowxContext(ctx, `
		UPDATE bookings
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, customer_id, workshop_id, time_slot_id, status, is_deleted, created_at, updated_at`,
		id, newStatus,
	).StructScan(&booking)
	if err != nil {
		return nil, fmt.Errorf("update booking status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &booking, nil
}

func (r *repository) CountActiveForSlot(ctx context.Context, timeSlotID int) (int, error) {
	query := `
		SELECT COUNT(*) FROM bookings
		WHERE time_slot_id = $1 AND status IN ('pending', 'confirmed')
	`

	var count int
	err := r.db.GetContext(ctx, &count, query, timeSlotID)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *repository) GetCustomerBookings(ctx context.Context, customerID int) ([]BookingWithDetails, error) {
	query := `
		SELECT
			b.id,
			b.customer_id,
			b.workshop_id,
			b.time_slot_id,
			b.status,
			b.is_deleted,
			b.created_at,
			b.updated_at,
			w.title AS workshop_title,
			ts.start_time AS slot_start,
			ts.end_time AS slot_end,
			u.name AS customer_name,
			u.email AS customer_email
		FROM bookings b
		JOIN workshops w ON b.workshop_id = w.id
		JOIN time_slots ts ON b.time_slot_id = ts.id
		JOIN users u ON b.customer_id = u.id
		WHERE b.customer_id = $1 AND b.is_deleted = FALSE
		ORDER BY b.created_at DESC
	`

	var bookings []BookingWithDetails
	err := r.db.SelectContext(ctx, &bookings, query, customerID)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *repository) ListBookings(ctx context.Context, filter ListFilter) ([]BookingWithDetails, error) {
	query := `
		SELECT
			b.id,
			b.customer_id,
			b.workshop_id,
			b.time_slot_id,
			b.status,
			b.is_deleted,
			b.created_at,
			b.updated_at,
			w.title AS workshop_title,
			ts.start_time AS slot_start,
			ts.end_time AS slot_end,
			u.name AS customer_name,
			u.email AS customer_email
		FROM bookings b
		JOIN workshops w ON b.workshop_id = w.id
		JOIN time_slots ts ON b.time_slot_id = ts.id
		JOIN users u ON b.customer_id = u.id
		WHERE b.is_deleted = FALSE
	`
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND b.status = $%d", len(args))
	}
	if filter.WorkshopID != 0 {
		args = append(args, filter.WorkshopID)
		query += fmt.Sprintf(" AND b.workshop_id = $%d", len(args))
	}

	query += " ORDER BY b.created_at DESC"

	var bookings []BookingWithDetails
	err := r.db.SelectContext(ctx, &bookings, query, args...)
	if err != nil {
		return nil, err
	}

	return bookings, nil
}
