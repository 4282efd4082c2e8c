package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"pulse-backend/config"
	"pulse-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, server config.ServerConfig) *gin.Engine {
	r := gin.Default()

	// Initialize middleware
	rateLimiter := mw.RateLimiter(rate.Limit(server.RateLimitPerSec), server.RateLimitBurst)
	ttl := time.Duration(server.CacheTTLSeconds) * time.Second
	caching := mw.Cache(h.cache, ttl)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/reservations", h.ListReservations)
		api.POST("/reservations", h.CreateReservation)
		api.PATCH("/reservations/:id", h.PatchReservation)
		api.PUT("/reservations/:id/status", h.SetReservationStatus)
		api.DELETE("/reservations/:id", h.DeleteReservation)
		api.GET("/reservations/:id/ticket", h.GetTicket)

		api.GET("/staff", h.ListStaff)
		api.POST("/staff", h.AddStaff)
		api.PATCH("/staff/:id", h.PatchStaff)

		api.GET("/tenants", h.ListTenants)
		api.PATCH("/tenants/:id", h.PatchTenant)
		api.DELETE("/tenants/:id", h.DeleteTenant)

		api.GET("/audit", h.ListAudit)
		api.DELETE("/audit/:id", h.DeleteAudit)
		api.DELETE("/audit", h.ClearAudit)

		// Analytics derive from collection snapshots and are cached briefly;
		// every mutation handler busts the cache.
		dashboard := api.Group("/dashboard")
		dashboard.Use(caching)
		{
			dashboard.GET("/revenue", h.GetRevenue)
			dashboard.GET("/occupancy", h.GetOccupancy)
			dashboard.GET("/allocation", h.GetAllocation)
			dashboard.GET("/stats", h.GetStats)
		}

		api.POST("/auth/login", h.Login)
		api.POST("/auth/logout", h.Logout)
		api.GET("/view", h.GetView)
		api.POST("/view", h.RequestView)
		api.DELETE("/view/pending", h.CancelPendingView)

		api.GET("/session/last", h.GetLastReservation)
		api.GET("/status", h.GetStatus)
		api.POST("/refresh", h.Refresh)

		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}

// NewCache builds the shared response cache for the router.
func NewCache(server config.ServerConfig) *cache.Cache {
	ttl := time.Duration(server.CacheTTLSeconds) * time.Second
	return cache.New(ttl, 2*ttl)
}
