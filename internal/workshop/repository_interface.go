package workshop

import (
	"context"
	"time"
)

type Repository interface {
	CreateWorkshop(ctx context.Context, w *Workshop, slots []TimeSlot) (*Workshop, error)
	GetWorkshopByID(ctx context.Context, id int) (*Workshop, error)
	ListWorkshops(ctx context.Context, filter ListFilter) ([]Workshop, error)
	SoftDeleteWorkshop(ctx context.Context, id int) error
	CreateTimeSlot(ctx context.Context, workshopID int, startTime, endTime time.Time, capacity int) (*TimeSlot, error)
	GetTimeSlotByID(ctx context.Context, id int) (*TimeSlot, error)
	GetTimeSlotsWithAvailability(ctx context.Context, workshopID int) ([]TimeSlotWithAvailability, error)
	SlotCapacityRemaining(ctx context.Context, workshopID, slotID int) (int, error)
}
