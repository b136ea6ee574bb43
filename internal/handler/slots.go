package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dvornik/appointment-booking/internal/booking"
)

// SlotHandler serves the per-day availability grid.
type SlotHandler struct {
	Calendar *booking.Calendar
}

func NewSlotHandler(cal *booking.Calendar) *SlotHandler { return &SlotHandler{Calendar: cal} }

// List handles GET /v1/slots?date=YYYY-MM-DD.  The grid is recomputed
// from current appointment state on every call; nothing is cached.
func (h *SlotHandler) List(c echo.Context) error {
	raw := c.QueryParam("date")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date query param required (YYYY-MM-DD)"})
	}
	day, err := booking.ParseDay(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	slots, err := h.Calendar.Slots(ctx, day)
	if err != nil {
		if errors.Is(err, booking.ErrInvalidDate) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load slots failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"date": raw, "slots": slots})
}
