package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dvornik/appointment-booking/internal/booking"
)

// AppointmentHandler serves reads and cancellation of a user's own
// appointments.  Admin-wide listing and removal live in AdminHandler.
type AppointmentHandler struct {
	Store       booking.Store
	Coordinator *booking.Coordinator
}

func NewAppointmentHandler(store booking.Store, coord *booking.Coordinator) *AppointmentHandler {
	return &AppointmentHandler{Store: store, Coordinator: coord}
}

// ListMine handles GET /v1/appointments, newest first.
func (h *AppointmentHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	appts, err := h.Store.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list appointments failed"})
	}
	return c.JSON(http.StatusOK, appts)
}

// Get handles GET /v1/appointments/:id.  Only the owner or an admin may
// read an appointment.
func (h *AppointmentHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	appt, err := h.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load appointment failed"})
	}
	if appt.UserID != userID && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, appt)
}

// Cancel handles DELETE /v1/appointments/:id: the owner cancels their
// own SCHEDULED appointment, freeing the slot for others.
func (h *AppointmentHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid appointment id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	appt, err := h.Coordinator.Cancel(ctx, id, userID, isAdmin(c))
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "appointment not found"})
		case errors.Is(err, booking.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, booking.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, echo.Map{"error": "appointment is not cancellable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.JSON(http.StatusOK, appt)
}
