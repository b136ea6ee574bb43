// Package queue defines message payloads exchanged over the message broker.
package queue

// AppointmentConfirmedEvent is published after a booking captures its
// payment. It carries enough for downstream consumers to log or notify
// without querying the primary database.
type AppointmentConfirmedEvent struct {
	AppointmentID uint64 `json:"appointment_id"`
	UserID        uint64 `json:"user_id"`
	Title         string `json:"title"`
	StartsAt      string `json:"starts_at"`
	EndsAt        string `json:"ends_at"`
	FeeCents      int64  `json:"fee_cents"`
	PaymentRef    string `json:"payment_ref"`
	ConfirmedAt   string `json:"confirmed_at"`
}
