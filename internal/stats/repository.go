package stats

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetStatusCounts(ctx context.Context) (*StatusCounts, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending')   AS pending,
			COUNT(*) FILTER (WHERE status = 'confirmed') AS confirmed,
			COUNT(*) FILTER (WHERE status = 'cancelled') AS cancelled,
			COUNT(*)                                     AS total
		FROM bookings
		WHERE is_deleted = FALSE
	`

	var counts StatusCounts
	err := r.db.GetContext(ctx, &counts, query)
	if err != nil {
		return nil, err
	}

	return &counts, nil
}

func (r *Repository) CountCustomersWithBookings(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(DISTINCT customer_id)
		FROM bookings
		WHERE is_deleted = FALSE AND status IN ('pending', 'confirmed')
	`

	var count int
	err := r.db.GetContext(ctx, &count, query)
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (r *Repository) GetWorkshopOccupancy(ctx context.Context) ([]WorkshopOccupancy, error) {
	query := `
		SELECT
			w.id AS workshop_id,
			w.title,
			COALESCE(SUM(ts.capacity), 0) AS total_capacity,
			COUNT(b.id) FILTER (WHERE b.status IN ('pending', 'confirmed')) AS booked_count
		FROM workshops w
		LEFT JOIN time_slots ts ON ts.workshop_id = w.id AND ts.is_deleted = FALSE
		LEFT JOIN bookings b ON b.time_slot_id = ts.id
		WHERE w.is_deleted = FALSE
		GROUP BY w.id, w.title
		ORDER BY w.date ASC, w.id ASC
	`

	var occupancy []WorkshopOccupancy
	err := r.db.SelectContext(ctx, &occupancy, query)
	if err != nil {
		return nil, err
	}

	return occupancy, nil
}
