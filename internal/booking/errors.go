// Package booking contains the slot calendar, the reservation coordinator
// and the payment-gated booking orchestrator.  It owns the storage and
// gateway interfaces so the whole flow can be driven against in-memory
// implementations in tests.
package booking

import "errors"

// ErrInvalidDate is returned when a slot query names a date that is not a
// valid calendar day.  Handlers translate this into an HTTP 400 response.
var ErrInvalidDate = errors.New("invalid date")

// ErrValidation is returned for malformed booking input (empty title,
// misaligned times, missing authorization).  Always wrapped with a reason.
var ErrValidation = errors.New("validation failed")

// ErrSlotConflict is returned when the requested window overlaps an
// existing SCHEDULED appointment.  It is an expected outcome, not a system
// fault: the client reselects a slot.  Handlers map it to HTTP 409.
var ErrSlotConflict = errors.New("slot already booked")

// ErrNotFound is returned when the referenced appointment does not exist.
var ErrNotFound = errors.New("appointment not found")

// ErrForbidden is returned when the requesting user does not own the
// appointment and is not an admin.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidTransition is returned by status updates that are not one of
// SCHEDULED->CANCELLED or SCHEDULED->COMPLETED.  It indicates a usage
// error and is never retried.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrPaidRow is returned when a delete targets an appointment that already
// carries a payment reference.  Paid bookings are cancelled via status
// change, never removed.
var ErrPaidRow = errors.New("appointment has a captured payment")

// ErrPaymentNotAuthorized is returned when a booking names an
// authorization that has not reached AUTHORIZED.
var ErrPaymentNotAuthorized = errors.New("payment not authorized")

// ErrCaptureFailed is returned after a capture could not be completed and
// the claimed slot has been rolled back.  By the time the caller sees this
// error no charge has been made.
var ErrCaptureFailed = errors.New("payment capture failed")
