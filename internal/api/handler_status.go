package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse-backend/internal/backend"
)

// GetStatus reports whether the store is serving normally or running degraded
// because the schema is missing. In the degraded state the repair DDL is
// included so an operator can provision the tables by hand.
func (h *Handler) GetStatus(c *gin.Context) {
	if h.store.Degraded() {
		c.JSON(http.StatusOK, gin.H{
			"degraded":  true,
			"setup_sql": backend.SetupSQL,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"degraded": false})
}

// Refresh forces a full snapshot reload of every mirrored collection.
func (h *Handler) Refresh(c *gin.Context) {
	if err := h.store.LoadAll(c.Request.Context()); err != nil {
		if errors.Is(err, backend.ErrSchemaMissing) {
			c.JSON(http.StatusOK, gin.H{
				"degraded":  true,
				"setup_sql": backend.SetupSQL,
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	h.bustCache()
	c.JSON(http.StatusOK, gin.H{"degraded": false})
}

// GetLastReservation returns the most recent reservation persisted for
// session continuity.
func (h *Handler) GetLastReservation(c *gin.Context) {
	if h.session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session continuity is not configured"})
		return
	}
	last, ok, err := h.session.LoadLast()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no reservation on record"})
		return
	}
	c.JSON(http.StatusOK, last)
}
