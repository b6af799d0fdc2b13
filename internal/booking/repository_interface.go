package booking

import "context"

type Repository interface {
	// AdmitBooking runs the atomic capacity check-and-insert for a slot.
	AdmitBooking(ctx context.Context, customerID, workshopID, timeSlotID int) (*Booking, error)
	GetBookingByID(ctx context.Context, id int) (*Booking, error)
	CancelBooking(ctx context.Context, id int) error
	UpdateStatus(ctx context.Context, id int, newStatus Status) (*Booking, error)
	CountActiveForSlot(ctx context.Context, timeSlotID int) (int, error)
	GetCustomerBookings(ctx context.Context, customerID int) ([]BookingWithDetails, error)
	ListBookings(ctx context.Context, filter ListFilter) ([]BookingWithDetails, error)
}
