package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dvornik/appointment-booking/internal/model"
)

func newCoordinator() (*Coordinator, *MemStore) {
	store := NewMemStore()
	return NewCoordinator(store, NewDayLocks()), store
}

func TestClaimSlotConflict(t *testing.T) {
	co, _ := newCoordinator()
	ten := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	if _, _, err := co.ClaimSlot(context.Background(), 1, "first", "", ten, ten.Add(time.Hour)); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	_, _, err := co.ClaimSlot(context.Background(), 2, "second", "", ten, ten.Add(time.Hour))
	if !errors.Is(err, ErrSlotConflict) {
		t.Fatalf("second claim = %v, want ErrSlotConflict", err)
	}
}

func TestConcurrentClaimsSingleWinner(t *testing.T) {
	co, store := newCoordinator()
	ten := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	const claimers = 16
	var wg sync.WaitGroup
	errs := make([]error, claimers)
	for i := 0; i < claimers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = co.ClaimSlot(context.Background(), uint64(i+1), "race", "", ten, ten.Add(time.Hour))
		}(i)
	}
	wg.Wait()

	winners := 0
	for i, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrSlotConflict):
		default:
			t.Fatalf("claimer %d: unexpected error %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	appts, err := store.ListScheduledBetween(context.Background(), ten, ten.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListScheduledBetween: %v", err)
	}
	if len(appts) != 1 {
		t.Fatalf("stored appointments = %d, want 1", len(appts))
	}
}

func TestCancelOwnership(t *testing.T) {
	co, _ := newCoordinator()
	ten := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	appt, _, err := co.ClaimSlot(context.Background(), 1, "mine", "", ten, ten.Add(time.Hour))
	if err != nil {
		t.Fatalf("claim: %v", err)
	}

	if _, err := co.Cancel(context.Background(), appt.ID, 2, false); !errors.Is(err, ErrForbidden) {
		t.Fatalf("cancel by stranger = %v, want ErrForbidden", err)
	}
	// Admin may cancel someone else's appointment.
	got, err := co.Cancel(context.Background(), appt.ID, 2, true)
	if err != nil {
		t.Fatalf("cancel by admin: %v", err)
	}
	if got.Status != model.StatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", got.Status)
	}
}

func TestCancelTwice(t *testing.T) {
	co, _ := newCoordinator()
	ten := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	appt, _, err := co.ClaimSlot(context.Background(), 1, "once", "", ten, ten.Add(time.Hour))
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := co.Cancel(context.Background(), appt.ID, 1, false); err != nil {
		t.Fatalf("first cancel: %v", err)
	}
	if _, err := co.Cancel(context.Background(), appt.ID, 1, false); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second cancel = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelFreesSlotForNewClaim(t *testing.T) {
	co, _ := newCoordinator()
	ten := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	appt, _, err := co.ClaimSlot(context.Background(), 1, "first", "", ten, ten.Add(time.Hour))
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := co.Cancel(context.Background(), appt.ID, 1, false); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, _, err := co.ClaimSlot(context.Background(), 2, "second", "", ten, ten.Add(time.Hour)); err != nil {
		t.Fatalf("re-claim of freed slot: %v", err)
	}
}

func TestClaimRollback(t *testing.T) {
	co, store := newCoordinator()
	ten := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	appt, claim, err := co.ClaimSlot(context.Background(), 1, "doomed", "", ten, ten.Add(time.Hour))
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := claim.Rollback(context.Background()); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if _, err := store.Get(context.Background(), appt.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after rollback = %v, want ErrNotFound", err)
	}
}

func TestRollbackRefusesPaidRow(t *testing.T) {
	co, _ := newCoordinator()
	ten := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	_, claim, err := co.ClaimSlot(context.Background(), 1, "paid", "", ten, ten.Add(time.Hour))
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := claim.AttachPaymentRef(context.Background(), "auth_000001"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if err := claim.Rollback(context.Background()); !errors.Is(err, ErrPaidRow) {
		t.Fatalf("rollback of paid row = %v, want ErrPaidRow", err)
	}
}

func TestRemove(t *testing.T) {
	co, store := newCoordinator()
	ten := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	// Unpaid claim: removed as a row.
	unpaid, _, err := co.ClaimSlot(context.Background(), 1, "stray", "", ten, ten.Add(time.Hour))
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	deleted, err := co.Remove(context.Background(), unpaid.ID)
	if err != nil || !deleted {
		t.Fatalf("Remove(unpaid) = (%v, %v), want (true, nil)", deleted, err)
	}

	// Paid booking: forced to CANCELLED, row kept.
	noon := ten.Add(2 * time.Hour)
	paid, claim, err := co.ClaimSlot(context.Background(), 1, "paid", "", noon, noon.Add(time.Hour))
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := claim.AttachPaymentRef(context.Background(), "auth_000002"); err != nil {
		t.Fatalf("attach: %v", err)
	}
	deleted, err = co.Remove(context.Background(), paid.ID)
	if err != nil || deleted {
		t.Fatalf("Remove(paid) = (%v, %v), want (false, nil)", deleted, err)
	}
	got, err := store.Get(context.Background(), paid.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.StatusCancelled {
		t.Fatalf("status after Remove(paid) = %s, want CANCELLED", got.Status)
	}
	if got.PaymentRef == nil {
		t.Fatal("payment ref must survive the forced cancellation")
	}
}
