package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"pulse-backend/config"
	"pulse-backend/internal/auth"
	"pulse-backend/internal/booking"
	"pulse-backend/internal/mw"
	"pulse-backend/internal/notification"
	"pulse-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   *store.Store
	gate    *auth.Gate
	venue   config.VenueConfig
	db      *gorm.DB
	webpush *webpush.Options
	session *booking.SessionFile
	alerts  *notification.WorkerPool
	cache   *cache.Cache
}

// NewHandler creates a new API handler.
func NewHandler(
	s *store.Store,
	gate *auth.Gate,
	venue config.VenueConfig,
	db *gorm.DB,
	webpushOptions *webpush.Options,
	session *booking.SessionFile,
	alerts *notification.WorkerPool,
	cacheStore *cache.Cache,
) *Handler {
	return &Handler{
		store:   s,
		gate:    gate,
		venue:   venue,
		db:      db,
		webpush: webpushOptions,
		session: session,
		alerts:  alerts,
		cache:   cacheStore,
	}
}

// bustCache drops cached analytics after any mutation.
func (h *Handler) bustCache() {
	if h.cache != nil {
		mw.Bust(h.cache)
	}
}

// actor names the audit principal: the logged-in identity, or SYSTEM for
// actions taken before any uplink.
func (h *Handler) actor() string {
	if u := h.gate.Current(); u != nil {
		return u.Username
	}
	return "SYSTEM"
}
