package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvornik/appointment-booking/internal/model"
)

func mustParseDay(t *testing.T, s string) time.Time {
	t.Helper()
	day, err := ParseDay(s)
	if err != nil {
		t.Fatalf("ParseDay(%q): %v", s, err)
	}
	return day
}

func TestParseDayRejectsInvalid(t *testing.T) {
	cases := []string{
		"",
		"2024-13-01",
		"2024-02-30", // calendar-invalid, parses nowhere
		"01-06-2024",
		"2024-06-01T10:00:00Z",
		"yesterday",
	}
	for _, s := range cases {
		t.Run(s, func(t *testing.T) {
			if _, err := ParseDay(s); !errors.Is(err, ErrInvalidDate) {
				t.Fatalf("ParseDay(%q) = %v, want ErrInvalidDate", s, err)
			}
		})
	}
}

func TestSlotsEmptyDay(t *testing.T) {
	cal := NewCalendar(NewMemStore())
	day := mustParseDay(t, "2024-06-01")

	slots, err := cal.Slots(context.Background(), day)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	if len(slots) != model.SlotsPerDay {
		t.Fatalf("len(slots) = %d, want %d", len(slots), model.SlotsPerDay)
	}

	first := slots[0]
	if !first.StartTime.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("first slot starts at %v, want midnight", first.StartTime)
	}
	last := slots[len(slots)-1]
	if !last.EndTime.Equal(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("last slot ends at %v, want next midnight", last.EndTime)
	}

	for i, s := range slots {
		if !s.Available {
			t.Fatalf("slot %d unavailable on an empty day", i)
		}
		if !s.EndTime.Equal(s.StartTime.Add(model.SlotDuration)) {
			t.Fatalf("slot %d is not one hour long: [%v, %v)", i, s.StartTime, s.EndTime)
		}
		if i > 0 && !s.StartTime.Equal(slots[i-1].EndTime) {
			t.Fatalf("gap between slot %d and %d", i-1, i)
		}
	}
}

func TestSlotsMarkBookedWindows(t *testing.T) {
	store := NewMemStore()
	cal := NewCalendar(store)
	day := mustParseDay(t, "2024-06-01")

	ten := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	appt := model.Appointment{
		UserID:    1,
		Title:     "Dental checkup",
		StartTime: ten,
		EndTime:   ten.Add(time.Hour),
		Status:    model.StatusScheduled,
	}
	if err := store.CreateOverlapFree(context.Background(), &appt); err != nil {
		t.Fatalf("CreateOverlapFree: %v", err)
	}

	slots, err := cal.Slots(context.Background(), day)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}

	for i, s := range slots {
		if i == 10 {
			if s.Available {
				t.Fatal("10:00 slot should be unavailable")
			}
			if s.Title == nil || *s.Title != "Dental checkup" {
				t.Fatalf("occupied slot title = %v, want Dental checkup", s.Title)
			}
			if s.Status == nil || *s.Status != model.StatusScheduled {
				t.Fatalf("occupied slot status = %v, want SCHEDULED", s.Status)
			}
			continue
		}
		if !s.Available {
			t.Fatalf("slot %d should be available", i)
		}
	}
}

func TestCancelledAppointmentFreesSlot(t *testing.T) {
	store := NewMemStore()
	cal := NewCalendar(store)
	day := mustParseDay(t, "2024-06-01")

	ten := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	appt := model.Appointment{
		UserID: 1, Title: "x", StartTime: ten, EndTime: ten.Add(time.Hour),
		Status: model.StatusScheduled,
	}
	if err := store.CreateOverlapFree(context.Background(), &appt); err != nil {
		t.Fatalf("CreateOverlapFree: %v", err)
	}
	if err := store.UpdateStatus(context.Background(), appt.ID, model.StatusCancelled); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	slots, err := cal.Slots(context.Background(), day)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	if !slots[10].Available {
		t.Fatal("slot of a cancelled appointment should be available again")
	}
}

func TestSlotsIgnoreOtherDays(t *testing.T) {
	store := NewMemStore()
	cal := NewCalendar(store)

	prev := time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC)
	appt := model.Appointment{
		UserID: 1, Title: "late", StartTime: prev, EndTime: prev.Add(time.Hour),
		Status: model.StatusScheduled,
	}
	if err := store.CreateOverlapFree(context.Background(), &appt); err != nil {
		t.Fatalf("CreateOverlapFree: %v", err)
	}

	slots, err := cal.Slots(context.Background(), mustParseDay(t, "2024-06-01"))
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	for i, s := range slots {
		if !s.Available {
			t.Fatalf("slot %d marked unavailable by previous-day booking", i)
		}
	}
}
