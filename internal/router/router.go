// Package router wires the HTTP routes to their handlers and
// middleware. Unauthenticated surface: health, metrics and auth.
// Everything else sits behind JWT auth and the rate limiter.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/skyhigh/airline-checkin/internal/config"
	"github.com/skyhigh/airline-checkin/internal/handler"
	"github.com/skyhigh/airline-checkin/internal/middleware"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Flights      *handler.FlightHandler
	Seats        *handler.SeatHandler
	CheckIns     *handler.CheckInHandler
	BoardingPass *handler.BoardingPassHandler
}

// Register mounts all routes on the Echo instance.
func Register(e *echo.Echo, h Handlers, db *sql.DB, rdb *redis.Client, jwtSecret string, rateCfg config.RateLimitConfig) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Readiness(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth())

	// Login and refresh are the only API routes reachable without a
	// token; they still pass through the rate limiter.
	limiter := middleware.NewTokenBucket(rateCfg, rdb)
	auth := e.Group("/v1/auth", limiter)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)

	v1 := e.Group("/v1", middleware.JWTAuth(jwtSecret), limiter)

	v1.GET("/flights/:id", h.Flights.Get)
	v1.GET("/flights/:id/seats", h.Flights.SeatMap)

	v1.POST("/checkin/start", h.CheckIns.Start)
	v1.GET("/checkin/:id", h.CheckIns.Get)
	v1.POST("/checkin/:id/baggage", h.CheckIns.AddBaggage)
	v1.POST("/checkin/:id/payment", h.CheckIns.Pay)
	v1.POST("/checkin/:id/confirm", h.CheckIns.Complete)
	v1.DELETE("/checkin/:id", h.CheckIns.Cancel)

	v1.POST("/seats/:id/hold", h.Seats.Hold)
	v1.DELETE("/seats/:id/hold", h.Seats.Release)
	v1.POST("/seats/:id/confirm", h.Seats.Confirm)

	v1.GET("/boarding-pass/:checkInId", h.BoardingPass.Get)
}
