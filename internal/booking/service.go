package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"workslot/internal/auth"
	"workslot/internal/cache"
	"workslot/internal/logger"
	"workslot/internal/metrics"
)

var (
	ErrForbidden         = errors.New("not allowed to modify this booking")
	ErrInvalidTransition = errors.New("illegal booking status transition")
	ErrInvalidStatus     = errors.New("unknown booking status")
)

const (
	workshopsNamespace = "workshops"

	admitMaxAttempts = 3
	admitRetryDelay  = 50 * time.Millisecond
)

type Service interface {
	CreateBooking(ctx context.Context, customerID, workshopID, timeSlotID int) (*Booking, error)
	CancelBooking(ctx context.Context, bookingID, requestingUserID int, requestingRole string) (*Booking, error)
	UpdateBookingStatus(ctx context.Context, bookingID int, newStatus Status) (*Booking, error)
	GetCustomerBookings(ctx context.Context, customerID int) ([]BookingWithDetails, error)
	ListBookings(ctx context.Context, filter ListFilter) ([]BookingWithDetails, error)
}

type service struct {
	repo  Repository
	cache *cache.Cache
}

func NewService(repo Repository, c *cache.Cache) Service {
	return &service{
		repo:  repo,
		cache: c,
	}
}

func customerNamespace(customerID int) string {
	return fmt.Sprintf("bookings:%d", customerID)
}

// CreateBooking admits a booking through the transactional capacity check.
// Lock contention (lock wait timeout, deadlock, serialization failure) is
// retried a bounded number of times and stays invisible to the caller;
// CapacityExceeded and duplicate conflicts are terminal outcomes reflecting
// true state and are never retried.
func (s *service) CreateBooking(ctx context.Context, customerID, workshopID, timeSlotID int) (*Booking, error) {
	var booking *Booking
	var err error

	for attempt := 1; attempt <= admitMaxAttempts; attempt++ {
		booking, err = s.repo.AdmitBooking(ctx, customerID, workshopID, timeSlotID)
		if err == nil || !isRetryableTxError(err) {
			break
		}

		metrics.RecordAdmissionRetry()
		logger.Warn("Admission transaction contended, retrying",
			"time_slot_id", timeSlotID,
			"attempt", attempt,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(admitRetryDelay):
		}
	}

	if err != nil {
		switch {
		case errors.Is(err, ErrCapacityExceeded):
			metrics.RecordAdmissionRejected("capacity_exceeded")
		case errors.Is(err, ErrDuplicateBooking):
			metrics.RecordAdmissionRejected("duplicate")
		case errors.Is(err, ErrSlotNotFound):
			metrics.RecordAdmissionRejected("not_found")
		}
		return nil, err
	}

	metrics.RecordAdmission(string(booking.Status))

	s.cache.Invalidate(ctx, workshopsNamespace)
	s.cache.Invalidate(ctx, customerNamespace(customerID))

	return booking, nil
}

func (s *service) CancelBooking(ctx context.Context, bookingID, requestingUserID int, requestingRole string) (*Booking, error) {
	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	// A cancelled booking is gone as far as cancellation is concerned;
	// reporting NotFound keeps the operation from double-freeing capacity.
	if booking.Status == StatusCancelled {
		return nil, ErrBookingNotFound
	}

	if booking.CustomerID != requestingUserID && requestingRole != auth.RoleAdmin {
		return nil, ErrForbidden
	}

	if err := s.repo.CancelBooking(ctx, bookingID); err != nil {
		return nil, err
	}

	metrics.RecordBookingCancellation()

	s.cache.Invalidate(ctx, workshopsNamespace)
	s.cache.Invalidate(ctx, customerNamespace(booking.CustomerID))

	return s.repo.GetBookingByID(ctx, bookingID)
}

func (s *service) UpdateBookingStatus(ctx context.Context, bookingID int, newStatus Status) (*Booking, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	booking, err := s.repo.UpdateStatus(ctx, bookingID, newStatus)
	if err != nil {
		return nil, err
	}

	if newStatus == StatusCancelled {
		metrics.RecordBookingCancellation()
	}

	s.cache.Invalidate(ctx, workshopsNamespace)
	s.cache.Invalidate(ctx, customerNamespace(booking.CustomerID))

	return booking, nil
}

func (s *service) GetCustomerBookings(ctx context.Context, customerID int) ([]BookingWithDetails, error) {
	ns := customerNamespace(customerID)

	var cached []BookingWithDetails
	if s.cache.GetJSON(ctx, ns, "list", &cached) {
		return cached, nil
	}

	bookings, err := s.repo.GetCustomerBookings(ctx, customerID)
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, ns, "list", bookings)

	return bookings, nil
}

func (s *service) ListBookings(ctx context.Context, filter ListFilter) ([]BookingWithDetails, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.ListBookings(ctx, filter)
}

// Postgres codes for transient contention: serialization_failure,
// deadlock_detected, lock_not_available.
func isRetryableTxError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	switch pqErr.Code {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}
