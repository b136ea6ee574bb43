package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dvornik/appointment-booking/internal/booking"
	"github.com/dvornik/appointment-booking/internal/model"
	"github.com/dvornik/appointment-booking/internal/repository"
)

// AdminHandler groups the admin-only management endpoints.
type AdminHandler struct {
	Store       booking.Store
	Coordinator *booking.Coordinator
	Users       *repository.UserRepo
	Tokens      *repository.TokenRepo
}

func NewAdminHandler(store booking.Store, coord *booking.Coordinator, users *repository.UserRepo, tokens *repository.TokenRepo) *AdminHandler {
	return &AdminHandler{Store: store, Coordinator: coord, Users: users, Tokens: tokens}
}

// ListAppointments handles GET /v1/admin/appointments: every
// appointment across all users, newest first.
func (h *AdminHandler) ListAppointments(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	appts, err := h.Store.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list appointments failed"})
	}
	return c.JSON(http.StatusOK, appts)
}

// RemoveAppointment handles DELETE /v1/admin/appointments/:id.  Unpaid
// rows are deleted; paid bookings are forced to CANCELLED so the payment
// reference remains auditable.
func (h *AdminHandler) RemoveAppointment(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	deleted, err := h.Coordinator.Remove(ctx, id)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "remove failed"})
	}
	if deleted {
		return c.JSON(http.StatusOK, echo.Map{"deleted": true})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": false, "status": model.StatusCancelled})
}

// adminUser is the user shape returned to admins; it never carries the
// password hash.
type adminUser struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ListUsers handles GET /v1/admin/users.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list users failed"})
	}
	out := make([]adminUser, 0, len(users))
	for _, u := range users {
		out = append(out, adminUser{
			ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName,
			Role: u.Role, IsActive: u.IsActive, CreatedAt: u.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// DeleteUser handles DELETE /v1/admin/users/:id.  A user holding
// SCHEDULED appointments cannot be removed; cancel or complete them
// first.  Active refresh tokens are revoked before the row goes.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	n, err := h.Store.CountScheduledByUser(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check user bookings failed"})
	}
	if n > 0 {
		return c.JSON(http.StatusConflict, echo.Map{"error": repository.ErrUserHasBookings.Error()})
	}
	if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke tokens failed"})
	}
	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete user failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": true})
}
