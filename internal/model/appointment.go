package model

import "time"

// SlotDuration is the fixed length of every bookable appointment.  The
// calendar is divided into one-hour windows and an appointment always
// occupies exactly one of them, so StartTime and EndTime of a valid
// appointment are one SlotDuration apart.
const SlotDuration = time.Hour

// Appointment statuses.  SCHEDULED is the only live state; COMPLETED and
// CANCELLED are terminal and no transition leaves them.
const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Appointment represents a confirmed (or cancelled/completed) booking as
// stored in the `appointments` table.  All timestamps are UTC.
//
// Fields:
//  ID          – primary key identifier.
//  UserID      – user who owns the appointment (not owned by this record).
//  Title       – non-empty short description entered by the user.
//  Description – optional free text.
//  StartTime   – slot start, aligned to the hour.
//  EndTime     – always StartTime + SlotDuration.
//  Status      – SCHEDULED, COMPLETED or CANCELLED.
//  PaymentRef  – identifier of the captured payment authorization; nil
//                only for the brief window between slot claim and capture.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Appointment struct {
	ID          uint64    `json:"id"`
	UserID      uint64    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Status      string    `json:"status"`
	PaymentRef  *string   `json:"payment_ref,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Overlaps reports whether the appointment's interval intersects the
// half-open window [start, end).
func (a Appointment) Overlaps(start, end time.Time) bool {
	return a.StartTime.Before(end) && a.EndTime.After(start)
}

// CanTransition reports whether a status change from `from` to `to` is
// permitted.  Only SCHEDULED appointments may move, and only to one of the
// two terminal states.
func CanTransition(from, to string) bool {
	if from != StatusScheduled {
		return false
	}
	return to == StatusCancelled || to == StatusCompleted
}
