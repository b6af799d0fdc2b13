package workshop

import "time"

type Workshop struct {
	ID          int       `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Instructor  string    `db:"instructor" json:"instructor"`
	Category    string    `db:"category" json:"category"`
	Date        time.Time `db:"date" json:"date"`
	MaxCapacity int       `db:"max_capacity" json:"max_capacity"`
	IsDeleted   bool      `db:"is_deleted" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

type TimeSlot struct {
	ID         int       `db:"id" json:"id"`
	WorkshopID int       `db:"workshop_id" json:"workshop_id"`
	StartTime  time.Time `db:"start_time" json:"start_time"`
	EndTime    time.Time `db:"end_time" json:"end_time"`
	Capacity   int       `db:"capacity" json:"capacity"`
	IsDeleted  bool      `db:"is_deleted" json:"-"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// TimeSlotWithAvailability carries the advisory spot count shown to
// clients. The authoritative capacity check happens inside the admission
// transaction, not here.
type TimeSlotWithAvailability struct {
	TimeSlot
	BookedCount    int  `db:"booked_count" json:"booked_count"`
	AvailableSpots int  `db:"available_spots" json:"available_spots"`
	IsFull         bool `json:"is_full"`
}

type WorkshopWithSlots struct {
	Workshop
	TimeSlots []TimeSlotWithAvailability `json:"time_slots"`
}

type CreateWorkshopRequest struct {
	Title       string                  `json:"title" binding:"required"`
	Description string                  `json:"description"`
	Instructor  string                  `json:"instructor"`
	Category    string                  `json:"category"`
	Date        string                  `json:"date" binding:"required"`
	MaxCapacity int                     `json:"max_capacity" binding:"required,min=1"`
	TimeSlots   []CreateTimeSlotRequest `json:"time_slots"`
}

type CreateTimeSlotRequest struct {
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Capacity  int    `json:"capacity" binding:"required,min=1"`
}

// ListFilter narrows ListWorkshops. Zero values mean no filtering.
type ListFilter struct {
	From     *time.Time
	To       *time.Time
	Category string
}
