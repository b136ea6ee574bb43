package booking

import (
	"context"
	"time"

	"github.com/dvornik/appointment-booking/internal/model"
)

// Store is the durable record of appointments and the source of truth for
// slot occupancy.  The SQL repository implements it in production; an
// in-memory implementation backs the tests.
//
// CreateOverlapFree is the one operation with an atomicity requirement:
// the overlap check and the insert must be a single unit, so that two
// concurrent claims for intersecting intervals can never both succeed.
// The coordinator additionally serializes claims per day, but the store
// must not rely on that alone.
type Store interface {
	// CreateOverlapFree inserts the appointment unless a SCHEDULED
	// appointment overlaps [appt.StartTime, appt.EndTime); in that case it
	// returns ErrSlotConflict and writes nothing.  On success the generated
	// ID and timestamps are populated on appt.
	CreateOverlapFree(ctx context.Context, appt *model.Appointment) error

	// Get returns the appointment or ErrNotFound.
	Get(ctx context.Context, id uint64) (model.Appointment, error)

	// ListByUser returns the user's appointments, newest first.
	ListByUser(ctx context.Context, userID uint64) ([]model.Appointment, error)

	// ListAll returns every appointment, newest first.
	ListAll(ctx context.Context) ([]model.Appointment, error)

	// ListScheduledBetween returns SCHEDULED appointments overlapping the
	// half-open interval [start, end), ordered by start time.
	ListScheduledBetween(ctx context.Context, start, end time.Time) ([]model.Appointment, error)

	// CountScheduledByUser returns how many SCHEDULED appointments the user
	// currently holds.
	CountScheduledByUser(ctx context.Context, userID uint64) (int, error)

	// UpdateStatus applies a status change, enforcing the transition rules
	// (ErrInvalidTransition otherwise, ErrNotFound for unknown ids).
	UpdateStatus(ctx context.Context, id uint64, to string) error

	// AttachPaymentRef records the captured payment reference on the
	// appointment.
	AttachPaymentRef(ctx context.Context, id uint64, ref string) error

	// DeleteUnpaid removes an appointment that has no payment reference;
	// it returns ErrPaidRow when one is present.  Used only to roll back a
	// claim whose capture failed.
	DeleteUnpaid(ctx context.Context, id uint64) error
}
