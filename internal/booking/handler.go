package booking

import (
	"errors"
	"net/http"
	"strconv"

	"workslot/internal/api"
	"workslot/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{
		service: service,
	}
}

// @Summary      Create booking
// @Description  Books a spot on a workshop time slot for the authenticated customer.
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body booking.CreateBookingRequest true "Booking payload"
// @Success      201 {object} booking.Booking
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	booking, err := h.service.CreateBooking(c.Request.Context(), userID, req.WorkshopID, req.TimeSlotID)
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Time slot not found"})
		case errors.Is(err, ErrCapacityExceeded):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "Time slot is full"})
		case errors.Is(err, ErrDuplicateBooking):
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "You already have a booking for this slot"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create booking"})
		}
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// @Summary      Cancel booking
// @Description  Cancels a booking owned by the caller; admins may cancel any booking.
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} booking.Booking
// @Failure      400 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [patch]
func (h *Handler) CancelBooking(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	role, _ := auth.GetUserRole(c)

	booking, err := h.service.CancelBooking(c.Request.Context(), bookingID, userID, role)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
		case errors.Is(err, ErrForbidden):
			c.JSON(http.StatusForbidden, api.ErrorResponse{Error: "You can only cancel your own bookings"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to cancel booking"})
		}
		return
	}

	c.JSON(http.StatusOK, booking)
}

// @Summary      List my bookings
// @Description  Returns bookings of the authenticated customer with workshop details.
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} booking.BookingWithDetails
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /bookings/my [get]
func (h *Handler) ListMyBookings(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "User not authenticated"})
		return
	}

	bookings, err := h.service.GetCustomerBookings(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// @Summary      List bookings
// @Description  Admin-only: lists all bookings, optionally filtered by status or workshop.
// @Tags         admin,bookings
// @Produce      json
// @Security     BearerAuth
// @Param        status       query string false "Status filter (pending, confirmed, cancelled)"
// @Param        workshop_id  query int    false "Workshop filter"
// @Success      200 {array} booking.BookingWithDetails
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/bookings [get]
func (h *Handler) ListBookings(c *gin.Context) {
	var filter ListFilter

	filter.Status = Status(c.Query("status"))

	if workshopIDStr := c.Query("workshop_id"); workshopIDStr != "" {
		workshopID, err := strconv.Atoi(workshopIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid workshop_id"})
			return
		}
		filter.WorkshopID = workshopID
	}

	bookings, err := h.service.ListBookings(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Unknown status filter"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// @Summary      Update booking status
// @Description  Admin-only: applies a booking status transition. Cancelled bookings are terminal.
// @Tags         admin,bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Param        request body booking.UpdateStatusRequest true "New status"
// @Success      200 {object} booking.Booking
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/bookings/{bookingID} [patch]
func (h *Handler) UpdateBookingStatus(c *gin.Context) {
	bookingID, err := strconv.Atoi(c.Param("bookingID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	booking, err := h.service.UpdateBookingStatus(c.Request.Context(), bookingID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrBookingNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
		case errors.Is(err, ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Unknown booking status"})
		case errors.Is(err, ErrInvalidTransition):
			c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: "Illegal status transition"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update booking"})
		}
		return
	}

	c.JSON(http.StatusOK, booking)
}
