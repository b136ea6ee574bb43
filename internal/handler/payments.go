package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dvornik/appointment-booking/internal/booking"
	"github.com/dvornik/appointment-booking/internal/payment"
)

// PaymentHandler exposes the pre-booking payment steps: create an
// authorization for the fixed fee and confirm it.  The booking itself is
// a separate request against the appointments endpoint.
type PaymentHandler struct {
	Orchestrator   *booking.Orchestrator
	Currency       string
	PublishableKey string
}

func NewPaymentHandler(orc *booking.Orchestrator, currency, publishableKey string) *PaymentHandler {
	return &PaymentHandler{Orchestrator: orc, Currency: currency, PublishableKey: publishableKey}
}

// Config handles GET /v1/payments/config.  Public: clients need the fee
// and the publishable key before they authenticate card details.
func (h *PaymentHandler) Config(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"fee_cents":       h.Orchestrator.FeeCents(),
		"currency":        h.Currency,
		"publishable_key": h.PublishableKey,
	})
}

// Create handles POST /v1/payments.  The amount is fixed server-side;
// the request body is intentionally empty.
func (h *PaymentHandler) Create(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	auth, err := h.Orchestrator.CreateAuthorization(ctx)
	if err != nil {
		if errors.Is(err, payment.ErrUnavailable) {
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment provider unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create authorization failed"})
	}
	return c.JSON(http.StatusCreated, auth)
}

// Confirm handles POST /v1/payments/:id/confirm and reports the
// resulting authorization status.
func (h *PaymentHandler) Confirm(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "authorization id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	status, err := h.Orchestrator.ConfirmAuthorization(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "authorization not found"})
		case errors.Is(err, payment.ErrTerminalConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "authorization is in a terminal state"})
		case errors.Is(err, payment.ErrUnavailable):
			return c.JSON(http.StatusBadGateway, echo.Map{"error": "payment provider unavailable"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "confirm failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"authorization_id": id, "status": status})
}
