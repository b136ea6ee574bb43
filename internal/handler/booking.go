package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dvornik/appointment-booking/internal/booking"
	"github.com/dvornik/appointment-booking/internal/model"
	"github.com/dvornik/appointment-booking/internal/payment"
)

// BookingHandler runs the payment-gated booking flow.  Publish, when
// set, emits the confirmation event after a successful booking; event
// failures never affect the HTTP response.
type BookingHandler struct {
	Orchestrator *booking.Orchestrator
	Publish      func(appt model.Appointment, feeCents int64)
}

func NewBookingHandler(orc *booking.Orchestrator) *BookingHandler {
	return &BookingHandler{Orchestrator: orc}
}

type bookReq struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"` // optional; derived from start when omitted
	AuthorizationID string    `json:"authorization_id"`
}

// Create handles POST /v1/appointments: verify the authorization,
// claim the slot, capture the fee and persist the reference.  Every
// failure path leaves the caller with no charge and no appointment.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	// Appointments are fixed-length; a supplied end_time is validated
	// against the slot duration, an omitted one is derived.
	end := req.EndTime
	if end.IsZero() {
		end = req.StartTime.Add(model.SlotDuration)
	}
	appt, err := h.Orchestrator.Book(ctx, booking.BookingRequest{
		UserID:          userID,
		Title:           req.Title,
		Description:     req.Description,
		StartTime:       req.StartTime,
		EndTime:         end,
		AuthorizationID: req.AuthorizationID,
	})
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrValidation), errors.Is(err, booking.ErrInvalidDate):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		case errors.Is(err, booking.ErrPaymentNotAuthorized):
			return c.JSON(http.StatusPaymentRequired, echo.Map{"error": "payment not authorized"})
		case errors.Is(err, booking.ErrSlotConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "slot already booked, please select another"})
		case errors.Is(err, booking.ErrCaptureFailed), errors.Is(err, payment.ErrUnavailable):
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "booking failed, no charge was made"})
		}
		log.Printf("handler: booking for user %d failed: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	if h.Publish != nil {
		h.Publish(appt, h.Orchestrator.FeeCents())
	}
	return c.JSON(http.StatusCreated, appt)
}
