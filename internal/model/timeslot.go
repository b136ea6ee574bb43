package model

import "time"

// SlotsPerDay is the number of one-hour windows a calendar day is divided
// into.  Slots always cover the full day from midnight to midnight UTC.
const SlotsPerDay = 24

// TimeSlot is a derived view of one bookable window for a given day.  It is
// never stored; the calendar recomputes slots from the appointment table on
// every query so the occupancy shown to clients is never stale.
//
// Fields:
//  StartTime – window start, aligned to the hour (UTC).
//  EndTime   – window end, StartTime + SlotDuration.
//  Available – true when no SCHEDULED appointment overlaps the window.
//  Title     – title of the occupying appointment; nil when available.
//  Status    – status of the occupying appointment; nil when available.
type TimeSlot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Available bool      `json:"available"`
	Title     *string   `json:"title,omitempty"`
	Status    *string   `json:"status,omitempty"`
}
