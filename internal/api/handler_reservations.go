package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pulse-backend/internal/booking"
	"pulse-backend/internal/model"
	"pulse-backend/internal/notification"
	"pulse-backend/internal/store"
	"pulse-backend/internal/ticket"
)

// ListReservations returns the reservation mirror, newest first, optionally
// filtered by the q query parameter.
func (h *Handler) ListReservations(c *gin.Context) {
	reservations := h.store.Reservations()
	if q := c.Query("q"); q != "" {
		reservations = store.FilterReservations(reservations, q)
	}
	c.JSON(http.StatusOK, reservations)
}

type ticketResponse struct {
	Key string `json:"key"`
	QR  string `json:"qr"`
}

type createReservationResponse struct {
	Reservation model.Reservation `json:"reservation"`
	Ticket      ticketResponse    `json:"ticket"`
}

// CreateReservation runs the booking wizard: validate, price, assign a table,
// write through the store, and issue the access pass.
func (h *Handler) CreateReservation(c *gin.Context) {
	var req booking.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	saved, err := h.store.CreateReservation(c.Request.Context(), req.Build(h.venue))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	h.bustCache()

	if h.session != nil {
		if err := h.session.SaveLast(saved); err != nil {
			// Session continuity is best effort; the booking already stands.
			c.Error(err)
		}
	}

	key := ticket.VerificationKey(saved.ID, saved.Email, saved.Date)
	c.JSON(http.StatusCreated, createReservationResponse{
		Reservation: saved,
		Ticket: ticketResponse{
			Key: key,
			QR:  ticket.QRPayload(saved.ID, key),
		},
	})
}

// PatchReservation applies a partial update using client field names.
func (h *Handler) PatchReservation(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty patch"})
		return
	}

	if err := h.store.UpdateReservation(c.Request.Context(), c.Param("id"), fields); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	h.bustCache()
	c.Status(http.StatusNoContent)
}

type statusRequest struct {
	Status model.ReservationStatus `json:"status" binding:"required"`
}

// SetReservationStatus transitions a booking's lifecycle state. A check-in
// that pushes occupancy past the alert threshold dispatches a capacity alert.
func (h *Handler) SetReservationStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !model.ValidStatus(req.Status) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "unknown status"})
		return
	}

	err := h.store.UpdateReservation(c.Request.Context(), c.Param("id"),
		map[string]any{"status": string(req.Status)})
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	h.bustCache()

	if req.Status == model.StatusCheckedIn && h.alerts != nil {
		occ := store.ComputeOccupancy(h.store.Reservations(), h.venue.Capacity, h.venue.AlertThreshold)
		if occ.Critical {
			h.alerts.Dispatch(notification.Alert{
				Percent:   occ.Percent,
				CheckedIn: occ.CheckedIn,
			})
		}
	}
	c.Status(http.StatusNoContent)
}

// DeleteReservation removes a booking.
func (h *Handler) DeleteReservation(c *gin.Context) {
	if err := h.store.DeleteReservation(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	h.bustCache()
	c.Status(http.StatusNoContent)
}

// GetTicket recomputes the access pass for an existing reservation.
func (h *Handler) GetTicket(c *gin.Context) {
	id := c.Param("id")
	for _, r := range h.store.Reservations() {
		if r.ID == id {
			key := ticket.VerificationKey(r.ID, r.Email, r.Date)
			c.JSON(http.StatusOK, ticketResponse{Key: key, QR: ticket.QRPayload(r.ID, key)})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "reservation not found"})
}
