package workshop

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		sqlxDB.Close()
	}

	return repo, mock, closer
}

func workshopRow(id int, title string, date time.Time, maxCapacity int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "instructor", "category", "date", "max_capacity", "is_deleted", "created_at"}).
		AddRow(id, title, "desc", "Jamie", "pottery", date, maxCapacity, false, time.Now())
}

func TestCreateWorkshopWithSlots(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	date := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	start := date.Add(10 * time.Hour)
	end := date.Add(12 * time.Hour)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO workshops (title, description, instructor, category, date, max_capacity) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, title, description, instructor, category, date, max_capacity, is_deleted, created_at")).
		WithArgs("Pottery Basics", "desc", "Jamie", "pottery", date, 10).
		WillReturnRows(workshopRow(1, "Pottery Basics", date, 10))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO time_slots (workshop_id, start_time, end_time, capacity) VALUES ($1, $2, $3, $4) RETURNING id, workshop_id, start_time, end_time, capacity, is_deleted, created_at")).
		WithArgs(1, start, end, 5).
		WillReturnRows(sqlmock.NewRows([]string{"id", "workshop_id", "start_time", "end_time", "capacity", "is_deleted", "created_at"}).
			AddRow(1, 1, start, end, 5, false, time.Now()))
	mock.ExpectCommit()

	w := &Workshop{Title: "Pottery Basics", Description: "desc", Instructor: "Jamie", Category: "pottery", Date: date, MaxCapacity: 10}
	slots := []TimeSlot{{StartTime: start, EndTime: end, Capacity: 5}}

	created, err := repo.CreateWorkshop(context.Background(), w, slots)
	require.NoError(t, err)
	require.Equal(t, 1, created.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListWorkshopsFilter(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .+ FROM workshops WHERE is_deleted = FALSE AND date >= .+ AND date <= .+ AND category = .+ ORDER BY date ASC, id ASC").
		WithArgs(from, to, "pottery").
		WillReturnRows(workshopRow(1, "Pottery Basics", from.Add(24*time.Hour), 10))

	list, err := repo.ListWorkshops(context.Background(), ListFilter{From: &from, To: &to, Category: "pottery"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "Pottery Basics", list[0].Title)
}

func TestSoftDeleteWorkshopCascades(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE workshops SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE time_slots SET is_deleted = TRUE WHERE workshop_id = $1")).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	err := repo.SoftDeleteWorkshop(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteWorkshopNotFound(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE workshops SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE")).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.SoftDeleteWorkshop(context.Background(), 99)
	require.ErrorIs(t, err, ErrWorkshopNotFound)
}

func TestGetTimeSlotsWithAvailability(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "workshop_id", "start_time", "end_time", "capacity", "is_deleted", "created_at", "booked_count"}).
		AddRow(1, 1, now, now.Add(time.Hour), 5, false, now, 3).
		AddRow(2, 1, now.Add(2*time.Hour), now.Add(3*time.Hour), 2, false, now, 2)

	mock.ExpectQuery("SELECT .+ COUNT\\(b.id\\) FILTER .+ FROM time_slots ts LEFT JOIN bookings b .+").
		WithArgs(1).
		WillReturnRows(rows)

	slots, err := repo.GetTimeSlotsWithAvailability(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, slots, 2)

	require.Equal(t, 2, slots[0].AvailableSpots)
	require.False(t, slots[0].IsFull)

	require.Equal(t, 0, slots[1].AvailableSpots)
	require.True(t, slots[1].IsFull)
}

func TestSlotCapacityRemainingClampsAtZero(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery("SELECT ts.capacity - COUNT\\(b.id\\) FILTER .+").
		WithArgs(3, 1).
		WillReturnRows(sqlmock.NewRows([]string{"remaining"}).AddRow(-1))

	remaining, err := repo.SlotCapacityRemaining(context.Background(), 1, 3)
	require.NoError(t, err)
	require.Equal(t, 0, remaining)
}
