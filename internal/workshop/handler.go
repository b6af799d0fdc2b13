package workshop

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"workslot/internal/api"

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

// @Summary      List workshops
// @Description  Returns non-deleted workshops with their time slots and available spots.
// @Tags         workshops
// @Produce      json
// @Param        from      query  string  false  "Earliest workshop date (YYYY-MM-DD)"
// @Param        to        query  string  false  "Latest workshop date (YYYY-MM-DD)"
// @Param        category  query  string  false  "Category filter"
// @Success      200 {array} workshop.WorkshopWithSlots
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /workshops [get]
func (h *Handler) ListWorkshops(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	workshops, err := h.service.ListWorkshops(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch workshops"})
		return
	}

	c.JSON(http.StatusOK, workshops)
}

// @Summary      Get workshop
// @Description  Returns a single workshop with slot availability.
// @Tags         workshops
// @Produce      json
// @Param        workshopID path int true "Workshop ID"
// @Success      200 {object} workshop.WorkshopWithSlots
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Router       /workshops/{workshopID} [get]
func (h *Handler) GetWorkshop(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("workshopID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid workshop ID"})
		return
	}

	w, err := h.service.GetWorkshop(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrWorkshopNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Workshop not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch workshop"})
		return
	}

	c.JSON(http.StatusOK, w)
}

// @Summary      Create workshop
// @Description  Admin-only: create a workshop with optional time slots.
// @Tags         admin,workshops
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body workshop.CreateWorkshopRequest true "Workshop payload"
// @Success      201 {object} workshop.WorkshopWithSlots
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/workshops [post]
func (h *Handler) CreateWorkshop(c *gin.Context) {
	var req CreateWorkshopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	w, err := h.service.CreateWorkshop(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidWorkshop) || errors.Is(err, ErrInvalidTimeSlot) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create workshop"})
		return
	}

	c.JSON(http.StatusCreated, w)
}

// @Summary      Delete workshop
// @Description  Admin-only: soft-deletes a workshop and its time slots.
// @Tags         admin,workshops
// @Produce      json
// @Security     BearerAuth
// @Param        workshopID path int true "Workshop ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/workshops/{workshopID} [delete]
func (h *Handler) DeleteWorkshop(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("workshopID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid workshop ID"})
		return
	}

	if err := h.service.DeleteWorkshop(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrWorkshopNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Workshop not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to delete workshop"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Workshop deleted"})
}

// @Summary      Add time slot
// @Description  Admin-only: adds a time slot to an existing workshop.
// @Tags         admin,workshops
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        workshopID path int true "Workshop ID"
// @Param        request body workshop.CreateTimeSlotRequest true "Time slot payload"
// @Success      201 {object} workshop.TimeSlot
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/workshops/{workshopID}/slots [post]
func (h *Handler) AddTimeSlot(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("workshopID"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid workshop ID"})
		return
	}

	var req CreateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		return
	}

	slot, err := h.service.AddTimeSlot(c.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrWorkshopNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Workshop not found"})
		case errors.Is(err, ErrInvalidTimeSlot), errors.Is(err, ErrInvalidWorkshop):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create time slot"})
		}
		return
	}

	c.JSON(http.StatusCreated, slot)
}

func parseListFilter(c *gin.Context) (ListFilter, error) {
	var filter ListFilter

	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return filter, errors.New("invalid from date, use YYYY-MM-DD")
		}
		filter.From = &t
	}

	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return filter, errors.New("invalid to date, use YYYY-MM-DD")
		}
		filter.To = &t
	}

	filter.Category = c.Query("category")

	return filter, nil
}
