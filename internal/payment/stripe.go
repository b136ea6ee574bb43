package payment

import (
	"context"
	"errors"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// StripeGateway implements Gateway on top of Stripe PaymentIntents created
// with manual capture.  The intent's client secret is the confirmation
// token: the client device confirms the intent directly with Stripe, after
// which the intent sits in requires_capture holding the funds until the
// booking core captures or cancels it.
type StripeGateway struct{}

// NewStripeGateway configures the global Stripe client with the secret key
// and returns a gateway bound to it.
func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

// Authorize creates a manual-capture PaymentIntent for the amount.  The
// intent starts unconfirmed (CREATED); no funds are held until the client
// confirms it with the returned client secret.
func (g *StripeGateway) Authorize(ctx context.Context, amountCents int64, currency string) (Authorization, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(currency),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
	}
	params.Context = ctx
	pi, err := paymentintent.New(params)
	if err != nil {
		return Authorization{}, mapStripeErr(err)
	}
	return Authorization{
		ID:          pi.ID,
		ClientToken: pi.ClientSecret,
		AmountCents: pi.Amount,
		Currency:    string(pi.Currency),
		Status:      StatusCreated,
	}, nil
}

// Confirm reports the post-confirmation status.  The confirmation itself is
// performed by the client device against Stripe, so this is a status read.
func (g *StripeGateway) Confirm(ctx context.Context, id string) (string, error) {
	return g.Status(ctx, id)
}

// Status retrieves the intent and maps its state onto the authorization
// lifecycle.
func (g *StripeGateway) Status(ctx context.Context, id string) (string, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return "", mapStripeErr(err)
	}
	return mapIntentStatus(pi.Status), nil
}

// Capture moves the held funds.  Stripe rejects a second capture with
// payment_intent_unexpected_state; when the intent turns out to be already
// captured that rejection is treated as success, which makes retries after
// lost responses safe.
func (g *StripeGateway) Capture(ctx context.Context, id string) error {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	_, err := paymentintent.Capture(id, params)
	if err == nil {
		return nil
	}
	var se *stripe.Error
	if errors.As(err, &se) && se.Code == "payment_intent_unexpected_state" {
		switch status, serr := g.Status(ctx, id); {
		case serr != nil:
			return serr
		case status == StatusCaptured:
			return nil
		case status == StatusVoided:
			return ErrTerminalConflict
		case status == StatusCreated:
			return ErrNotAuthorized
		}
	}
	return mapStripeErr(err)
}

// Void cancels the intent, releasing any held funds.  A repeat void is a
// success; voiding a captured intent reports ErrTerminalConflict.
func (g *StripeGateway) Void(ctx context.Context, id string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	_, err := paymentintent.Cancel(id, params)
	if err == nil {
		return nil
	}
	var se *stripe.Error
	if errors.As(err, &se) && se.Code == "payment_intent_unexpected_state" {
		switch status, serr := g.Status(ctx, id); {
		case serr != nil:
			return serr
		case status == StatusVoided:
			return nil
		case status == StatusCaptured:
			return ErrTerminalConflict
		}
	}
	return mapStripeErr(err)
}

// mapIntentStatus converts a Stripe PaymentIntent status into the gateway
// lifecycle.  Anything before requires_capture still counts as CREATED:
// the hold does not exist until Stripe reports the funds as capturable.
func mapIntentStatus(s stripe.PaymentIntentStatus) string {
	switch s {
	case stripe.PaymentIntentStatusRequiresCapture:
		return StatusAuthorized
	case stripe.PaymentIntentStatusSucceeded:
		return StatusCaptured
	case stripe.PaymentIntentStatusCanceled:
		return StatusVoided
	default:
		return StatusCreated
	}
}

// mapStripeErr classifies SDK errors.  Server-side and transport failures
// become ErrUnavailable so the caller's retry policy kicks in; 4xx API
// errors are permanent and pass through (missing intents as ErrNotFound).
func mapStripeErr(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		if se.HTTPStatusCode == 404 {
			return ErrNotFound
		}
		if se.HTTPStatusCode >= 500 || se.Type == stripe.ErrorTypeAPI {
			return fmt.Errorf("stripe %s: %w", se.Code, ErrUnavailable)
		}
		return err
	}
	// No structured error means the request never got a response.
	return fmt.Errorf("stripe: %v: %w", err, ErrUnavailable)
}
