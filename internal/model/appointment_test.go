package model

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{"scheduled to cancelled", StatusScheduled, StatusCancelled, true},
		{"scheduled to completed", StatusScheduled, StatusCompleted, true},
		{"scheduled to scheduled", StatusScheduled, StatusScheduled, false},
		{"cancelled to scheduled", StatusCancelled, StatusScheduled, false},
		{"cancelled to completed", StatusCancelled, StatusCompleted, false},
		{"completed to cancelled", StatusCompleted, StatusCancelled, false},
		{"unknown from", "PENDING", StatusCancelled, false},
		{"unknown to", StatusScheduled, "PENDING", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransition(tc.from, tc.to); got != tc.want {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	appt := Appointment{StartTime: base, EndTime: base.Add(SlotDuration)}

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  bool
	}{
		{"same window", base, base.Add(time.Hour), true},
		{"window before", base.Add(-time.Hour), base, false},
		{"window after", base.Add(time.Hour), base.Add(2 * time.Hour), false},
		{"partial left", base.Add(-30 * time.Minute), base.Add(30 * time.Minute), true},
		{"partial right", base.Add(30 * time.Minute), base.Add(90 * time.Minute), true},
		{"contains", base.Add(-time.Hour), base.Add(2 * time.Hour), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := appt.Overlaps(tc.start, tc.end); got != tc.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
		})
	}
}
