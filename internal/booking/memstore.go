package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dvornik/appointment-booking/internal/model"
)

// MemStore is an in-memory Store used in tests and when the service runs
// without a database.  A single mutex guards the map, which makes
// CreateOverlapFree atomic on its own; the production SQL store gets the
// same property from a transaction.
type MemStore struct {
	mu    sync.Mutex
	seq   uint64
	appts map[uint64]*model.Appointment
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{appts: make(map[uint64]*model.Appointment)}
}

// CreateOverlapFree checks for overlapping SCHEDULED appointments and
// inserts in one locked section.
func (s *MemStore) CreateOverlapFree(ctx context.Context, appt *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.appts {
		if a.Status == model.StatusScheduled && a.Overlaps(appt.StartTime, appt.EndTime) {
			return ErrSlotConflict
		}
	}
	s.seq++
	appt.ID = s.seq
	now := time.Now().UTC()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	cp := *appt
	s.appts[appt.ID] = &cp
	return nil
}

// Get returns a copy of the appointment or ErrNotFound.
func (s *MemStore) Get(ctx context.Context, id uint64) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appts[id]
	if !ok {
		return model.Appointment{}, ErrNotFound
	}
	return *a, nil
}

// ListByUser returns the user's appointments, newest first.
func (s *MemStore) ListByUser(ctx context.Context, userID uint64) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Appointment, 0)
	for _, a := range s.appts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// ListAll returns every appointment, newest first.
func (s *MemStore) ListAll(ctx context.Context) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Appointment, 0, len(s.appts))
	for _, a := range s.appts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// ListScheduledBetween returns SCHEDULED appointments overlapping
// [start, end), ordered by start time.
func (s *MemStore) ListScheduledBetween(ctx context.Context, start, end time.Time) ([]model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Appointment, 0)
	for _, a := range s.appts {
		if a.Status == model.StatusScheduled && a.Overlaps(start, end) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

// CountScheduledByUser returns the user's live appointment count.
func (s *MemStore) CountScheduledByUser(ctx context.Context, userID uint64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.appts {
		if a.UserID == userID && a.Status == model.StatusScheduled {
			n++
		}
	}
	return n, nil
}

// UpdateStatus applies a transition-checked status change.
func (s *MemStore) UpdateStatus(ctx context.Context, id uint64, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appts[id]
	if !ok {
		return ErrNotFound
	}
	if !model.CanTransition(a.Status, to) {
		return ErrInvalidTransition
	}
	a.Status = to
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// AttachPaymentRef records the captured payment reference.
func (s *MemStore) AttachPaymentRef(ctx context.Context, id uint64, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appts[id]
	if !ok {
		return ErrNotFound
	}
	a.PaymentRef = &ref
	a.UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteUnpaid removes an appointment only while it has no payment
// reference.
func (s *MemStore) DeleteUnpaid(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appts[id]
	if !ok {
		return ErrNotFound
	}
	if a.PaymentRef != nil {
		return ErrPaidRow
	}
	delete(s.appts, id)
	return nil
}
