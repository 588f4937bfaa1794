// Package router registers the HTTP routes of the booking API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"roomdesk/internal/config"
	"roomdesk/internal/handler"
	"roomdesk/internal/metrics"
	"roomdesk/internal/middleware"
)

// RegisterRoutes registers the operational endpoints: health check and
// Prometheus metrics.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", metrics.Handler())
}

// RegisterBookings registers the booking surface under /v1. Creation is rate
// limited per client IP; everything else is unrestricted.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1/bookings")
	g.POST("", b.Create, middleware.NewTokenBucket(rlCfg, rdb))
	g.GET("", b.List)
	g.GET("/:id", b.Get)
	g.DELETE("/:id", b.Cancel)
}

// RegisterBrowse registers the unauthenticated read endpoints. Listings go
// through the Redis response cache when one is configured.
func RegisterBrowse(e *echo.Echo, r *handler.RoomHandler, bd *handler.BuildingHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	cache := middleware.NewRedisCache(cacheCfg, rdb)

	e.GET("/v1/rooms", r.List, cache)
	e.GET("/v1/rooms/:id", r.Get, cache)
	e.GET("/v1/rooms/:id/deletable", r.Deletable)
	e.POST("/v1/rooms/available", r.Available)

	e.GET("/v1/buildings", bd.List, cache)
	e.GET("/v1/buildings/:id", bd.Get, cache)
}

// RegisterAdmin registers the mutating administration endpoints. They sit
// behind the admin service-token guard.
func RegisterAdmin(e *echo.Echo, r *handler.RoomHandler, bd *handler.BuildingHandler, secret string) {
	admin := e.Group("/v1", middleware.AdminAuth(secret))

	admin.POST("/rooms", r.Create)
	admin.PUT("/rooms/:id", r.Update)
	admin.PUT("/rooms/:id/children", r.AssignChildren)
	admin.DELETE("/rooms/:id", r.Delete)

	admin.POST("/buildings", bd.Create)
	admin.PUT("/buildings/:id", bd.Update)
	admin.DELETE("/buildings/:id", bd.Delete)
}
