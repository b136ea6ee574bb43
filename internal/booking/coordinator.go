package booking

import (
	"context"
	"strings"
	"time"

	"github.com/dvornik/appointment-booking/internal/model"
)

// Coordinator enforces at-most-one-writer-per-slot.  Every mutation of a
// day's occupancy (claim, cancel, rollback, payment attach, admin removal)
// runs under that day's lock, so a cancellation and a concurrent claim for
// the freed window can never interleave into a double-claim or double-free.
// The lock guards only the store critical section; payment round trips
// happen outside it.
type Coordinator struct {
	store Store
	locks *DayLocks
}

// NewCoordinator returns a Coordinator over the given store.
func NewCoordinator(store Store, locks *DayLocks) *Coordinator {
	if store == nil || locks == nil {
		panic("nil dependency passed to NewCoordinator")
	}
	return &Coordinator{store: store, locks: locks}
}

// Claim is the handle returned by a successful slot claim.  The caller
// either attaches a captured payment reference, finalizing the booking, or
// rolls the claim back when capture fails.  Exactly one of the two should
// happen for every claim.
type Claim struct {
	Appointment model.Appointment
	co          *Coordinator
}

// ClaimSlot atomically reserves [start, end) for the user: under the day
// lock it checks for overlapping SCHEDULED appointments and inserts the new
// row in a single store operation.  On overlap it fails with
// ErrSlotConflict and the client must reselect; there is no automatic
// reassignment.  The returned appointment is SCHEDULED with no payment
// reference yet.
func (co *Coordinator) ClaimSlot(ctx context.Context, userID uint64, title, description string, start, end time.Time) (model.Appointment, *Claim, error) {
	appt := model.Appointment{
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		StartTime:   start.UTC(),
		EndTime:     end.UTC(),
		Status:      model.StatusScheduled,
	}
	unlock := co.locks.Lock(appt.StartTime)
	defer unlock()
	if err := co.store.CreateOverlapFree(ctx, &appt); err != nil {
		return model.Appointment{}, nil, err
	}
	return appt, &Claim{Appointment: appt, co: co}, nil
}

// AttachPaymentRef records the captured payment on the claimed appointment.
func (cl *Claim) AttachPaymentRef(ctx context.Context, ref string) error {
	unlock := cl.co.locks.Lock(cl.Appointment.StartTime)
	defer unlock()
	return cl.co.store.AttachPaymentRef(ctx, cl.Appointment.ID, ref)
}

// Rollback deletes the claimed appointment after a failed capture, freeing
// the slot.  It refuses to touch a row that already carries a payment
// reference.
func (cl *Claim) Rollback(ctx context.Context) error {
	unlock := cl.co.locks.Lock(cl.Appointment.StartTime)
	defer unlock()
	return cl.co.store.DeleteUnpaid(ctx, cl.Appointment.ID)
}

// Cancel marks a SCHEDULED appointment CANCELLED on behalf of its owner or
// an admin.  It runs under the appointment's day lock, so the freed window
// becomes claimable the instant Cancel returns and never races a
// concurrent claim.  Returns ErrNotFound, ErrForbidden or
// ErrInvalidTransition accordingly.
func (co *Coordinator) Cancel(ctx context.Context, id, requesterID uint64, admin bool) (model.Appointment, error) {
	appt, err := co.store.Get(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	if !admin && appt.UserID != requesterID {
		return model.Appointment{}, ErrForbidden
	}
	unlock := co.locks.Lock(appt.StartTime)
	defer unlock()
	// Re-read under the lock; the status may have moved since the first get.
	appt, err = co.store.Get(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	if err := co.store.UpdateStatus(ctx, id, model.StatusCancelled); err != nil {
		return model.Appointment{}, err
	}
	appt.Status = model.StatusCancelled
	return appt, nil
}

// Remove is the admin override for deleting an appointment.  A paid
// booking is never removed as a row: it is forced to CANCELLED so the
// payment reference stays auditable.  Only an unpaid row (a stray claim)
// is actually deleted.  The returned flag reports whether the row was
// deleted (true) or cancelled in place (false).
func (co *Coordinator) Remove(ctx context.Context, id uint64) (bool, error) {
	appt, err := co.store.Get(ctx, id)
	if err != nil {
		return false, err
	}
	unlock := co.locks.Lock(appt.StartTime)
	defer unlock()
	appt, err = co.store.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if appt.PaymentRef == nil {
		if err := co.store.DeleteUnpaid(ctx, id); err != nil {
			return false, err
		}
		return true, nil
	}
	if appt.Status != model.StatusScheduled {
		// Already terminal; nothing to change.
		return false, nil
	}
	if err := co.store.UpdateStatus(ctx, id, model.StatusCancelled); err != nil {
		return false, err
	}
	return false, nil
}
