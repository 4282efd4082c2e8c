package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse-backend/internal/store"
)

// GetRevenue returns committed amounts bucketed by weekday, Sun through Sat.
func (h *Handler) GetRevenue(c *gin.Context) {
	c.JSON(http.StatusOK, store.WeekdayRevenue(h.store.Reservations()))
}

// GetOccupancy returns venue load derived from checked-in reservations.
func (h *Handler) GetOccupancy(c *gin.Context) {
	occ := store.ComputeOccupancy(h.store.Reservations(), h.venue.Capacity, h.venue.AlertThreshold)
	c.JSON(http.StatusOK, occ)
}

// GetAllocation returns committed amounts totaled per zone.
func (h *Handler) GetAllocation(c *gin.Context) {
	c.JSON(http.StatusOK, store.ZoneAllocation(h.store.Reservations()))
}

// GetStats returns the fleet-level command summary.
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, store.GlobalStats(h.store.Reservations(), h.store.Tenants()))
}
