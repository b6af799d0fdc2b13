package stats

// Overview aggregates the ledger for the admin dashboard. Purely derived
// from bookings and workshops; holds no invariants of its own.
type Overview struct {
	Bookings  StatusCounts        `json:"bookings"`
	Customers int                 `json:"customers"`
	Workshops []WorkshopOccupancy `json:"workshops"`
}

type StatusCounts struct {
	Pending   int `db:"pending" json:"pending"`
	Confirmed int `db:"confirmed" json:"confirmed"`
	Cancelled int `db:"cancelled" json:"cancelled"`
	Total     int `db:"total" json:"total"`
}

type WorkshopOccupancy struct {
	WorkshopID    int    `db:"workshop_id" json:"workshop_id"`
	Title         string `db:"title" json:"title"`
	TotalCapacity int    `db:"total_capacity" json:"total_capacity"`
	BookedCount   int    `db:"booked_count" json:"booked_count"`
}
