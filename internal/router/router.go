// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/dvornik/appointment-booking/internal/config"
	"github.com/dvornik/appointment-booking/internal/handler"
	"github.com/dvornik/appointment-booking/internal/middleware"
)

// Handlers collects every handler the route table needs.
type Handlers struct {
	Auth         *handler.AuthHandler
	Slots        *handler.SlotHandler
	Payments     *handler.PaymentHandler
	Booking      *handler.BookingHandler
	Appointments *handler.AppointmentHandler
	Admin        *handler.AdminHandler
}

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints under /v1/auth.
// Register, login and refresh all operate without an existing session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
}

// RegisterAPI registers the protected API surface.  All routes under
// /v1 require a valid access token; the admin subtree additionally
// requires the ADMIN role.  The redis-backed rate limiter covers the
// payment and booking endpoints, where each request can reach the
// payment provider.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	// Payment config is public: clients need the fee and publishable key
	// before they have an account.
	e.GET("/v1/payments/config", h.Payments.Config)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("USER", "ADMIN"))

	auth.GET("/slots", h.Slots.List)

	limited := auth.Group("")
	limited.Use(middleware.NewTokenBucket(rlCfg, rdb))
	limited.POST("/payments", h.Payments.Create)
	limited.POST("/payments/:id/confirm", h.Payments.Confirm)
	limited.POST("/appointments", h.Booking.Create)

	auth.GET("/appointments", h.Appointments.ListMine)
	auth.GET("/appointments/:id", h.Appointments.Get)
	auth.DELETE("/appointments/:id", h.Appointments.Cancel)

	admin := auth.Group("/admin")
	admin.Use(middleware.RequireRole("ADMIN"))
	admin.GET("/appointments", h.Admin.ListAppointments)
	admin.DELETE("/appointments/:id", h.Admin.RemoveAppointment)
	admin.GET("/users", h.Admin.ListUsers)
	admin.DELETE("/users/:id", h.Admin.DeleteUser)
}
