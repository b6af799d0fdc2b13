package stats

import (
	"net/http"

	"workslot/internal/api"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// @Summary      Booking statistics
// @Description  Admin-only: booking counts by status, distinct active customers and per-workshop occupancy.
// @Tags         admin,stats
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} stats.Overview
// @Failure      401 {object} api.ErrorResponse
// @Failure      403 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /admin/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	ctx := c.Request.Context()

	counts, err := h.repo.GetStatusCounts(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch stats"})
		return
	}

	customers, err := h.repo.CountCustomersWithBookings(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch stats"})
		return
	}

	occupancy, err := h.repo.GetWorkshopOccupancy(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, Overview{
		Bookings:  *counts,
		Customers: customers,
		Workshops: occupancy,
	})
}
