package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse-backend/internal/model"
	"pulse-backend/internal/store"
)

// ListStaff returns the staff roster, optionally filtered by the q and
// sector query parameters.
func (h *Handler) ListStaff(c *gin.Context) {
	staff := h.store.Staff()
	q := c.Query("q")
	sector := c.Query("sector")
	if q != "" || sector != "" {
		staff = store.FilterStaff(staff, q, sector)
	}
	c.JSON(http.StatusOK, staff)
}

type addStaffRequest struct {
	Name   string `json:"name" binding:"required"`
	Role   string `json:"role" binding:"required"`
	Sector string `json:"sector" binding:"required"`
}

// AddStaff registers a new operator on the roster.
func (h *Handler) AddStaff(c *gin.Context) {
	var req addStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member := model.StaffMember{
		Name:   req.Name,
		Role:   req.Role,
		Sector: req.Sector,
		Status: model.StaffActive,
	}
	saved, err := h.store.AddStaff(c.Request.Context(), member)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	h.bustCache()
	c.JSON(http.StatusCreated, saved)
}

// PatchStaff applies a partial update using client field names.
func (h *Handler) PatchStaff(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty patch"})
		return
	}

	if err := h.store.UpdateStaff(c.Request.Context(), c.Param("id"), fields); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	h.bustCache()
	c.Status(http.StatusNoContent)
}
