// Package payment abstracts the external payment provider.  The booking
// core only ever talks to the Gateway interface; the money itself lives on
// the provider's side and this package holds nothing but references to it.
package payment

import (
	"context"
	"errors"
)

// Authorization statuses as seen by the booking core.  CAPTURED and VOIDED
// are mutually exclusive terminal states: an authorization is captured at
// most once and voided at most once, never both.
const (
	StatusCreated    = "CREATED"
	StatusAuthorized = "AUTHORIZED"
	StatusCaptured   = "CAPTURED"
	StatusVoided     = "VOIDED"
)

// ErrUnavailable signals a transient provider failure (network error, 5xx).
// Callers retry these with backoff; every other error is permanent.
var ErrUnavailable = errors.New("payment gateway unavailable")

// ErrNotFound is returned when the referenced authorization does not exist
// on the provider side.
var ErrNotFound = errors.New("authorization not found")

// ErrNotAuthorized is returned by Capture when the authorization has not
// been confirmed yet (still CREATED) and therefore holds no funds.
var ErrNotAuthorized = errors.New("authorization not confirmed")

// ErrTerminalConflict is returned when an operation contradicts a terminal
// state, e.g. capturing a voided authorization or voiding a captured one.
var ErrTerminalConflict = errors.New("authorization already in opposite terminal state")

// Authorization is a reference to a payment hold on the provider side.
// ClientToken is handed to the client device so it can complete the
// confirmation step (card entry, 3DS) directly with the provider.
type Authorization struct {
	ID          string `json:"authorization_id"`
	ClientToken string `json:"client_token"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
}

// Gateway is the payment provider abstraction consumed by the booking
// orchestrator.  All operations may fail with ErrUnavailable; Capture and
// Void are idempotent, so repeating them after a timeout never moves funds
// twice or releases a hold twice.
type Gateway interface {
	// Authorize begins a hold for the given amount.  No funds move.
	Authorize(ctx context.Context, amountCents int64, currency string) (Authorization, error)
	// Confirm reports the status after the client-side confirmation step.
	// Providers that confirm out of band simply return the current status.
	Confirm(ctx context.Context, id string) (string, error)
	// Status returns the current status of an authorization.
	Status(ctx context.Context, id string) (string, error)
	// Capture moves the held funds.  Calling it on an already captured
	// authorization is a no-op success.
	Capture(ctx context.Context, id string) error
	// Void releases an authorized-but-not-captured hold.  Calling it on an
	// already voided authorization is a no-op success.
	Void(ctx context.Context, id string) error
}
