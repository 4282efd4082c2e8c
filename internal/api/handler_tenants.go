package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListTenants returns the franchise node mirror, oldest first.
func (h *Handler) ListTenants(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Tenants())
}

// PatchTenant applies a partial update using client field names.
func (h *Handler) PatchTenant(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty patch"})
		return
	}

	if err := h.store.UpdateTenant(c.Request.Context(), c.Param("id"), fields); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	h.bustCache()
	c.Status(http.StatusNoContent)
}

// DeleteTenant decommissions a franchise node and records the action.
func (h *Handler) DeleteTenant(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeleteTenant(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	h.bustCache()

	err := h.store.AppendAudit(c.Request.Context(), "NODE_DECOMMISSIONED", h.actor(),
		fmt.Sprintf("Tenant node %s removed from the network", id))
	if err != nil {
		c.Error(err)
	}
	c.Status(http.StatusNoContent)
}
