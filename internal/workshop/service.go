package workshop

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"workslot/internal/cache"
	"workslot/internal/metrics"
)

var (
	ErrWorkshopNotFound = errors.New("workshop not found")
	ErrSlotNotFound     = errors.New("time slot not found")
	ErrInvalidWorkshop  = errors.New("invalid workshop definition")
	ErrInvalidTimeSlot  = errors.New("invalid time slot")
)

const cacheNamespace = "workshops"

type Service interface {
	CreateWorkshop(ctx context.Context, req CreateWorkshopRequest) (*WorkshopWithSlots, error)
	GetWorkshop(ctx context.Context, id int) (*WorkshopWithSlots, error)
	ListWorkshops(ctx context.Context, filter ListFilter) ([]WorkshopWithSlots, error)
	DeleteWorkshop(ctx context.Context, id int) error
	AddTimeSlot(ctx context.Context, workshopID int, req CreateTimeSlotRequest) (*TimeSlot, error)
	SlotCapacityRemaining(ctx context.Context, workshopID, slotID int) (int, error)
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

func (s *service) CreateWorkshop(ctx context.Context, req CreateWorkshopRequest) (*WorkshopWithSlots, error) {
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		// Date-only input is accepted for workshops scheduled by day.
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, ErrInvalidWorkshop
		}
	}

	slots := make([]TimeSlot, 0, len(req.TimeSlots))
	totalSlotCapacity := 0
	for _, sr := range req.TimeSlots {
		slot, err := parseSlot(sr, date)
		if err != nil {
			return nil, err
		}
		totalSlotCapacity += slot.Capacity
		slots = append(slots, *slot)
	}

	// Per-slot capacity is authoritative; the workshop-wide maximum bounds
	// the aggregate so the display number can never promise more seats than
	// the slots hold.
	if totalSlotCapacity > req.MaxCapacity {
		return nil, ErrInvalidWorkshop
	}

	w := &Workshop{
		Title:       req.Title,
		Description: req.Description,
		Instructor:  req.Instructor,
		Category:    req.Category,
		Date:        date,
		MaxCapacity: req.MaxCapacity,
	}

	created, err := s.repo.CreateWorkshop(ctx, w, slots)
	if err != nil {
		return nil, err
	}

	metrics.RecordWorkshopCreated()
	s.cache.Invalidate(ctx, cacheNamespace)

	return s.GetWorkshop(ctx, created.ID)
}

func (s *service) GetWorkshop(ctx context.Context, id int) (*WorkshopWithSlots, error) {
	key := fmt.Sprintf("detail:%d", id)

	var cached WorkshopWithSlots
	if s.cache.GetJSON(ctx, cacheNamespace, key, &cached) {
		return &cached, nil
	}

	w, err := s.repo.GetWorkshopByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWorkshopNotFound
		}
		return nil, err
	}

	slots, err := s.repo.GetTimeSlotsWithAvailability(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &WorkshopWithSlots{Workshop: *w, TimeSlots: slots}
	s.cache.SetJSON(ctx, cacheNamespace, key, result)

	return result, nil
}

func (s *service) ListWorkshops(ctx context.Context, filter ListFilter) ([]WorkshopWithSlots, error) {
	key := listCacheKey(filter)

	var cached []WorkshopWithSlots
	if s.cache.GetJSON(ctx, cacheNamespace, key, &cached) {
		return cached, nil
	}

	workshops, err := s.repo.ListWorkshops(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := make([]WorkshopWithSlots, 0, len(workshops))
	for _, w := range workshops {
		slots, err := s.repo.GetTimeSlotsWithAvailability(ctx, w.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, WorkshopWithSlots{Workshop: w, TimeSlots: slots})
	}

	s.cache.SetJSON(ctx, cacheNamespace, key, result)

	return result, nil
}

func (s *service) DeleteWorkshop(ctx context.Context, id int) error {
	if err := s.repo.SoftDeleteWorkshop(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cacheNamespace)
	return nil
}

func (s *service) AddTimeSlot(ctx context.Context, workshopID int, req CreateTimeSlotRequest) (*TimeSlot, error) {
	w, err := s.repo.GetWorkshopByID(ctx, workshopID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrWorkshopNotFound
		}
		return nil, err
	}

	slot, err := parseSlot(req, w.Date)
	if err != nil {
		return nil, err
	}

	// The same aggregate bound CreateWorkshop enforces: existing slots plus
	// the new one must stay within the workshop's advertised maximum.
	existing, err := s.repo.GetTimeSlotsWithAvailability(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	totalSlotCapacity := slot.Capacity
	for _, es := range existing {
		totalSlotCapacity += es.Capacity
	}
	if totalSlotCapacity > w.MaxCapacity {
		return nil, ErrInvalidWorkshop
	}

	created, err := s.repo.CreateTimeSlot(ctx, workshopID, slot.StartTime, slot.EndTime, slot.Capacity)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cacheNamespace)
	return created, nil
}

func (s *service) SlotCapacityRemaining(ctx context.Context, workshopID, slotID int) (int, error) {
	remaining, err := s.repo.SlotCapacityRemaining(ctx, workshopID, slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrSlotNotFound
		}
		return 0, err
	}
	return remaining, nil
}

func parseSlot(req CreateTimeSlotRequest, workshopDate time.Time) (*TimeSlot, error) {
	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return nil, ErrInvalidTimeSlot
	}

	endTime, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return nil, ErrInvalidTimeSlot
	}

	if !endTime.After(startTime) {
		return nil, ErrInvalidTimeSlot
	}

	if req.Capacity <= 0 {
		return nil, ErrInvalidTimeSlot
	}

	// Slots belong to the workshop's day.
	y, m, d := workshopDate.Date()
	sy, sm, sd := startTime.Date()
	if y != sy || m != sm || d != sd {
		return nil, ErrInvalidTimeSlot
	}

	return &TimeSlot{
		StartTime: startTime,
		EndTime:   endTime,
		Capacity:  req.Capacity,
	}, nil
}

func listCacheKey(filter ListFilter) string {
	from, to := "", ""
	if filter.From != nil {
		from = filter.From.Format("2006-01-02")
	}
	if filter.To != nil {
		to = filter.To.Format("2006-01-02")
	}
	return fmt.Sprintf("list:%s:%s:%s", from, to, filter.Category)
}
