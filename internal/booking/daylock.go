package booking

import (
	"sync"
	"time"
)

// DayLocks provides one mutex per calendar day.  Claims, cancellations and
// rollbacks for the same day serialize on that day's lock while bookings
// for unrelated days proceed in parallel.  The lock is held only around
// the short store critical sections, never across a payment round trip.
type DayLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewDayLocks returns an empty lock set.
func NewDayLocks() *DayLocks {
	return &DayLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for the day containing t (UTC) and returns the
// unlock function.  Lock entries are created on first use and kept for the
// life of the process; the set of distinct days touched by a running
// instance stays small.
func (d *DayLocks) Lock(t time.Time) func() {
	key := t.UTC().Format("2006-01-02")
	d.mu.Lock()
	m, ok := d.locks[key]
	if !ok {
		m = &sync.Mutex{}
		d.locks[key] = m
	}
	d.mu.Unlock()
	m.Lock()
	return m.Unlock
}
