package booking

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// CanTransitionTo implements the booking lifecycle: pending may confirm or
// cancel, confirmed may only cancel, cancelled is terminal.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled
	default:
		return false
	}
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether the booking counts against slot capacity.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

type Booking struct {
	ID         int       `db:"id" json:"id"`
	CustomerID int       `db:"customer_id" json:"customer_id"`
	WorkshopID int       `db:"workshop_id" json:"workshop_id"`
	TimeSlotID int       `db:"time_slot_id" json:"time_slot_id"`
	Status     Status    `db:"status" json:"status"`
	IsDeleted  bool      `db:"is_deleted" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

type BookingWithDetails struct {
	Booking
	WorkshopTitle string    `db:"workshop_title" json:"workshop_title"`
	SlotStart     time.Time `db:"slot_start" json:"slot_start"`
	SlotEnd       time.Time `db:"slot_end" json:"slot_end"`
	CustomerName  string    `db:"customer_name" json:"customer_name"`
	CustomerEmail string    `db:"customer_email" json:"customer_email"`
}

type CreateBookingRequest struct {
	WorkshopID int `json:"workshop_id" binding:"required"`
	TimeSlotID int `json:"time_slot_id" binding:"required"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

// ListFilter narrows the admin booking listing. Zero values mean no filter.
type ListFilter struct {
	Status     Status
	WorkshopID int
}
