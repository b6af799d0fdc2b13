package workshop

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateWorkshop(ctx context.Context, w *Workshop, slots []TimeSlot) (*Workshop, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO workshops (title, description, instructor, category, date, max_capacity)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, title, description, instructor, category, date, max_capacity, is_deleted, created_at
	`

	var created Workshop
	err = tx.QueryRowxContext(ctx, query,
		w.Title, w.Description, w.Instructor, w.Category, w.Date, w.MaxCapacity,
	).StructScan(&created)
	if err != nil {
		return nil, fmt.Errorf("insert workshop: %w", err)
	}

	slotQuery := `
		INSERT INTO time_slots (workshop_id, start_time, end_time, capacity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, workshop_id, start_time, end_time, capacity, is_deleted, created_at
	`

	for i := range slots {
		err = tx.QueryRowxContext(ctx, slotQuery,
			created.ID, slots[i].StartTime, slots[i].EndTime, slots[i].Capacity,
		).StructScan(&slots[i])
		if err != nil {
			return nil, fmt.Errorf("insert time slot: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &created, nil
}

func (r *repository) GetWorkshopByID(ctx context.Context, id int) (*Workshop, error) {
	query := `
		SELECT id, title, description, instructor, category, date, max_capacity, is_deleted, created_at
		FROM workshops
		WHERE id = $1 AND is_deleted = FALSE
	`

	var w Workshop
	err := r.db.GetContext(ctx, &w, query, id)
	if err != nil {
		return nil, err
	}

	return &w, nil
}

func (r *repository) ListWorkshops(ctx context.Context, filter ListFilter) ([]Workshop, error) {
	query := `
		SELECT id, title, description, instructor, category, date, max_capacity, is_deleted, created_at
		FROM workshops
		WHERE is_deleted = FALSE
	`
	args := []interface{}{}

	if filter.From != nil {
		args = append(args, *filter.From)
		query += " AND date >= $" + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += " AND date <= $" + strconv.Itoa(len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += " AND category = $" + strconv.Itoa(len(args))
	}

	query += " ORDER BY date ASC, id ASC"

	var workshops []Workshop
	err := r.db.SelectContext(ctx, &workshops, query, args...)
	if err != nil {
		return nil, err
	}

	return workshops, nil
}

func (r *repository) SoftDeleteWorkshop(ctx context.Context, id int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE workshops SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrWorkshopNotFound
	}

	// Cascading soft-delete: slots share the workshop's lifecycle.
	_, err = tx.ExecContext(ctx,
		`UPDATE time_slots SET is_deleted = TRUE WHERE workshop_id = $1`, id)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) CreateTimeSlot(ctx context.Context, workshopID int, startTime, endTime time.Time, capacity int) (*TimeSlot, error) {
	query := `
		INSERT INTO time_slots (workshop_id, start_time, end_time, capacity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, workshop_id, start_time, end_time, capacity, is_deleted, created_at
	`

	var slot TimeSlot
	err := r.db.GetContext(ctx, &slot, query, workshopID, startTime, endTime, capacity)
	if err != nil {
		return nil, err
	}

	return &slot, nil
}

func (r *repository) GetTimeSlotByID(ctx context.Context, id int) (*TimeSlot, error) {
	query := `
		SELECT ts.id, ts.workshop_id, ts.start_time, ts.end_time, ts.capacity, ts.is_deleted, ts.created_at
		FROM time_slots ts
		JOIN workshops w ON ts.workshop_id = w.id
		WHERE ts.id = $1 AND ts.is_deleted = FALSE AND w.is_deleted = FALSE
	`

	var slot TimeSlot
	err := r.db.GetContext(ctx, &slot, query, id)
	if err != nil {
		return nil, err
	}

	return &slot, nil
}

func (r *repository) GetTimeSlotsWithAvailability(ctx context.Context, workshopID int) ([]TimeSlotWithAvailability, error) {
	query := `
		SELECT
			ts.id,
			ts.workshop_id,
			ts.start_time,
			ts.end_time,
			ts.capacity,
			ts.is_deleted,
			ts.created_at,
			COUNT(b.id) FILTER (WHERE b.status IN ('pending', 'confirmed')) AS booked_count
		FROM time_slots ts
		LEFT JOIN bookings b ON b.time_slot_id = ts.id
		WHERE ts.workshop_id = $1 AND ts.is_deleted = FALSE
		GROUP BY ts.id
		ORDER BY ts.start_time ASC
	`

	var slots []TimeSlotWithAvailability
	err := r.db.SelectContext(ctx, &slots, query, workshopID)
	if err != nil {
		return nil, err
	}

	for i := range slots {
		available := slots[i].Capacity - slots[i].BookedCount
		if available < 0 {
			available = 0
		}
		slots[i].AvailableSpots = available
		slots[i].IsFull = available == 0
	}

	return slots, nil
}

func (r *repository) SlotCapacityRemaining(ctx context.Context, workshopID, slotID int) (int, error) {
	query := `
		SELECT ts.capacity - COUNT(b.id) FILTER (WHERE b.status IN ('pending', 'confirmed'))
		FROM time_slots ts
		LEFT JOIN bookings b ON b.time_slot_id = ts.id
		WHERE ts.id = $1 AND ts.workshop_id = $2 AND ts.is_deleted = FALSE
		GROUP BY ts.id
	`

	var remaining int
	err := r.db.GetContext(ctx, &remaining, query, slotID, workshopID)
	if err != nil {
		return 0, err
	}

	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}
