package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/dvornik/appointment-booking/internal/model"
)

// Calendar derives the per-day slot grid from appointment store state.  It
// has no state of its own and no side effects; every call recomputes the
// grid from the store so the availability it reports is never stale.
type Calendar struct {
	store Store
}

// NewCalendar returns a Calendar reading occupancy from the given store.
func NewCalendar(store Store) *Calendar {
	if store == nil {
		panic("nil store passed to NewCalendar")
	}
	return &Calendar{store: store}
}

// ParseDay parses a YYYY-MM-DD date string into the UTC midnight starting
// that day.  Calendar-invalid input (including real non-dates like
// 2024-02-30) fails with ErrInvalidDate.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t.UTC(), nil
}

// Slots returns the day's grid: exactly 24 one-hour slots ordered by start
// time, covering [day 00:00, day+1 00:00) with no gaps.  A slot is
// unavailable when any SCHEDULED appointment overlaps its window
// (half-open comparison); the occupying appointment's title and status are
// included for display.  Safe for concurrent use.
func (cal *Calendar) Slots(ctx context.Context, day time.Time) ([]model.TimeSlot, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(model.SlotsPerDay * model.SlotDuration)

	booked, err := cal.store.ListScheduledBetween(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	slots := make([]model.TimeSlot, 0, model.SlotsPerDay)
	for h := 0; h < model.SlotsPerDay; h++ {
		winStart := dayStart.Add(time.Duration(h) * model.SlotDuration)
		winEnd := winStart.Add(model.SlotDuration)
		slot := model.TimeSlot{StartTime: winStart, EndTime: winEnd, Available: true}
		for i := range booked {
			if booked[i].Overlaps(winStart, winEnd) {
				title := booked[i].Title
				status := booked[i].Status
				slot.Available = false
				slot.Title = &title
				slot.Status = &status
				break
			}
		}
		slots = append(slots, slot)
	}
	return slots, nil
}
