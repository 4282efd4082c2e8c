package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse-backend/internal/auth"
)

type loginRequest struct {
	Role     auth.ViewRole `json:"role" binding:"required"`
	Username string        `json:"username" binding:"required"`
	Password string        `json:"password" binding:"required"`
}

// Login authenticates a gated role. Success completes any pending view
// transition for that role and records the uplink.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.gate.Login(req.Role, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrRejected) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	auditErr := h.store.AppendAudit(c.Request.Context(), "CORE_AUTH_UPLINK", user.Username,
		fmt.Sprintf("Operator uplink established with %s clearance", user.Role))
	if auditErr != nil {
		c.Error(auditErr)
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
		"view": h.gate.View(),
	})
}

// Logout drops the identity and returns the portal to the customer view.
func (h *Handler) Logout(c *gin.Context) {
	h.gate.Logout()
	c.JSON(http.StatusOK, gin.H{"view": h.gate.View()})
}

// GetView reports the visible view, any pending gated target, and the
// current identity.
func (h *Handler) GetView(c *gin.Context) {
	resp := gin.H{"view": h.gate.View()}
	if pending := h.gate.Pending(); pending != "" {
		resp["pending"] = pending
	}
	if u := h.gate.Current(); u != nil {
		resp["user"] = u
	}
	c.JSON(http.StatusOK, resp)
}

type viewRequest struct {
	View auth.ViewRole `json:"view" binding:"required"`
}

// RequestView attempts a view transition. Gated views without a matching
// identity are deferred rather than granted.
func (h *Handler) RequestView(c *gin.Context) {
	var req viewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visible, err := h.gate.RequestView(req.View)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"view": visible}
	if pending := h.gate.Pending(); pending != "" {
		resp["pending"] = pending
	}
	c.JSON(http.StatusOK, resp)
}

// CancelPendingView drops a deferred gated transition.
func (h *Handler) CancelPendingView(c *gin.Context) {
	h.gate.CancelPending()
	c.Status(http.StatusNoContent)
}
