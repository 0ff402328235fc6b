package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"equipment-tracker-backend/config"
	"equipment-tracker-backend/internal/mw"
)

// NewRouter creates and configures the Gin router. Everything except login
// and the VAPID key sits behind bearer auth; equipment reads are cached.
func NewRouter(cfg *config.Config, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(mw.RequestLog(h.logger), gin.Recovery())

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/auth/login", h.Login)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

		authed := api.Group("")
		authed.Use(mw.BearerAuth(h.tokens, h.logger))
		{
			authed.GET("/equipment", caching, h.ListEquipment)
			authed.POST("/equipment", h.CreateEquipment)
			authed.GET("/equipment/:id", caching, h.GetEquipment)
			authed.PUT("/equipment/:id", h.UpdateEquipment)
			authed.DELETE("/equipment/:id", h.DeleteEquipment)

			authed.GET("/equipment/:id/assignments", h.ListAssignments)
			authed.POST("/equipment/:id/assignments", h.CreateAssignment)
			authed.POST("/assignments/:id/return", h.ReturnAssignment)

			authed.GET("/equipment/:id/maintenance", h.ListMaintenance)
			authed.POST("/equipment/:id/maintenance", h.RecordMaintenance)
			authed.POST("/equipment/:id/maintenance/complete", h.CompleteMaintenance)

			authed.GET("/audit", h.ListAudit)

			authed.GET("/subscriptions", h.GetSubscription)
			authed.PUT("/subscriptions", h.PutSubscription)
			authed.DELETE("/subscriptions", h.DeleteSubscription)
		}
	}

	return r
}
