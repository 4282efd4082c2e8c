package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListAudit returns the audit trail, newest first, capped at the retention
// limit.
func (h *Handler) ListAudit(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Audit())
}

// DeleteAudit removes a single audit entry.
func (h *Handler) DeleteAudit(c *gin.Context) {
	if err := h.store.DeleteAudit(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearAudit wipes the audit trail, then records that the wipe happened. The
// wipe entry is the first row of the fresh trail.
func (h *Handler) ClearAudit(c *gin.Context) {
	if err := h.store.ClearAudit(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	err := h.store.AppendAudit(c.Request.Context(), "AUDIT_TRAIL_WIPED", h.actor(),
		"All prior audit entries purged by operator request")
	if err != nil {
		c.Error(err)
	}
	c.Status(http.StatusNoContent)
}
