package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dvornik/appointment-booking/internal/model"
	"github.com/dvornik/appointment-booking/internal/payment"
)

// Orchestrator drives the two-phase booking flow: verify the payment
// authorization, re-validate slot freshness by claiming it, capture the
// funds, and attach the payment reference.  Any failure after the claim
// triggers the compensating pair (delete claim, void authorization), so a
// captured payment exists if and only if a SCHEDULED appointment carries
// its reference.
type Orchestrator struct {
	coord    *Coordinator
	gateway  payment.Gateway
	retry    RetryPolicy
	feeCents int64
	currency string
}

// NewOrchestrator wires the coordinator and gateway together.  feeCents is
// the fixed booking fee in currency minor units.
func NewOrchestrator(coord *Coordinator, gateway payment.Gateway, retry RetryPolicy, feeCents int64, currency string) *Orchestrator {
	if coord == nil || gateway == nil {
		panic("nil dependency passed to NewOrchestrator")
	}
	return &Orchestrator{coord: coord, gateway: gateway, retry: retry, feeCents: feeCents, currency: currency}
}

// FeeCents returns the fixed booking fee.
func (o *Orchestrator) FeeCents() int64 { return o.feeCents }

// attachAttempts bounds how often the post-capture payment-ref write is
// retried before the row is left for gateway-side reconciliation.
const attachAttempts = 3

// BookingRequest carries everything needed for one booking attempt.  The
// authorization must already be confirmed (AUTHORIZED) by the client
// before Book is called.
type BookingRequest struct {
	UserID          uint64
	Title           string
	Description     string
	StartTime       time.Time
	EndTime         time.Time
	AuthorizationID string
}

func (r BookingRequest) validate() error {
	if r.UserID == 0 {
		return fmt.Errorf("%w: user is required", ErrValidation)
	}
	if len(r.Title) == 0 || len(r.Title) > 200 {
		return fmt.Errorf("%w: title must be 1-200 characters", ErrValidation)
	}
	if r.AuthorizationID == "" {
		return fmt.Errorf("%w: authorization_id is required", ErrValidation)
	}
	start := r.StartTime.UTC()
	if start.IsZero() {
		return fmt.Errorf("%w: start_time is required", ErrValidation)
	}
	if !start.Truncate(model.SlotDuration).Equal(start) {
		return fmt.Errorf("%w: start_time must be aligned to the hour", ErrValidation)
	}
	if !r.EndTime.UTC().Equal(start.Add(model.SlotDuration)) {
		return fmt.Errorf("%w: end_time must be start_time plus one hour", ErrValidation)
	}
	return nil
}

// CreateAuthorization begins a payment hold for the fixed booking fee and
// returns the reference plus the client confirmation token.  Transient
// gateway failures are retried before the error is surfaced.
func (o *Orchestrator) CreateAuthorization(ctx context.Context) (payment.Authorization, error) {
	var auth payment.Authorization
	err := o.retry.Do(ctx, func() error {
		a, err := o.gateway.Authorize(ctx, o.feeCents, o.currency)
		if err == nil {
			auth = a
		}
		return err
	})
	return auth, err
}

// ConfirmAuthorization reports the authorization status after the client
// performed its confirmation step with the provider.
func (o *Orchestrator) ConfirmAuthorization(ctx context.Context, id string) (string, error) {
	var status string
	err := o.retry.Do(ctx, func() error {
		s, err := o.gateway.Confirm(ctx, id)
		if err == nil {
			status = s
		}
		return err
	})
	return status, err
}

// Book executes one booking attempt:
//
//	verify authorization -> claim slot -> capture -> attach payment ref
//
// The claim is the freshness re-validation: time passes during the payment
// confirmation round trip and another caller may have taken the slot, so
// the overlap check happens again inside the atomic claim, not as a
// separate read.  On conflict the authorization is voided and
// ErrSlotConflict returned; on capture failure the claim is deleted, the
// authorization voided, and ErrCaptureFailed returned — in both cases the
// caller ends with no charge and no appointment.
func (o *Orchestrator) Book(ctx context.Context, req BookingRequest) (model.Appointment, error) {
	// Normalize before validating, so a whitespace-only title cannot slip
	// past the length check and end up stored as "".
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if err := req.validate(); err != nil {
		return model.Appointment{}, err
	}

	var status string
	err := o.retry.Do(ctx, func() error {
		s, err := o.gateway.Status(ctx, req.AuthorizationID)
		if err == nil {
			status = s
		}
		return err
	})
	if err != nil {
		if errors.Is(err, payment.ErrNotFound) {
			return model.Appointment{}, fmt.Errorf("%w: unknown authorization", ErrPaymentNotAuthorized)
		}
		return model.Appointment{}, fmt.Errorf("authorization status: %w", err)
	}
	if status != payment.StatusAuthorized {
		return model.Appointment{}, fmt.Errorf("%w: authorization is %s", ErrPaymentNotAuthorized, status)
	}

	appt, claim, err := o.coord.ClaimSlot(ctx, req.UserID, req.Title, req.Description, req.StartTime, req.EndTime)
	if err != nil {
		if errors.Is(err, ErrSlotConflict) {
			o.voidAuthorization(ctx, req.AuthorizationID)
			return model.Appointment{}, ErrSlotConflict
		}
		return model.Appointment{}, err
	}

	if err := o.retry.Do(ctx, func() error { return o.gateway.Capture(ctx, req.AuthorizationID) }); err != nil {
		if rbErr := claim.Rollback(ctx); rbErr != nil {
			log.Printf("booking: rollback of appointment %d failed: %v", appt.ID, rbErr)
		}
		o.voidAuthorization(ctx, req.AuthorizationID)
		return model.Appointment{}, fmt.Errorf("%w: %v", ErrCaptureFailed, err)
	}

	// Funds have moved, so the claim must not be rolled back whatever
	// happens here.  The attach is retried a few times; if it still fails
	// the row stays SCHEDULED and the missing reference is reconciled from
	// the gateway side.
	var attachErr error
	for attempt := 1; attempt <= attachAttempts; attempt++ {
		if attachErr = claim.AttachPaymentRef(ctx, req.AuthorizationID); attachErr == nil {
			break
		}
	}
	if attachErr != nil {
		log.Printf("booking: attach payment ref %s to appointment %d failed: %v", req.AuthorizationID, appt.ID, attachErr)
		return model.Appointment{}, attachErr
	}
	ref := req.AuthorizationID
	appt.PaymentRef = &ref
	return appt, nil
}

// voidAuthorization releases the hold after a failed attempt.  Errors are
// logged, not returned: the booking outcome is already decided and a
// dangling hold simply expires on the provider side.
func (o *Orchestrator) voidAuthorization(ctx context.Context, id string) {
	if err := o.retry.Do(ctx, func() error { return o.gateway.Void(ctx, id) }); err != nil {
		log.Printf("booking: void of authorization %s failed: %v", id, err)
	}
}
