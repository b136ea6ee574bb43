package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dvornik/appointment-booking/internal/booking"
	"github.com/dvornik/appointment-booking/internal/model"
)

// AppointmentRepo provides data access to the appointments table and is
// the production implementation of booking.Store.  All timestamp columns
// are stored in UTC as DATETIME and compared with half-open interval
// semantics.  The overlap-check-plus-insert runs inside a single
// transaction so two concurrent claims for intersecting windows can never
// both commit, independently of the coordinator's day lock.
type AppointmentRepo struct {
	db *sql.DB
}

// NewAppointmentRepo returns a repository bound to the given database.
func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{db: db} }

// DB exposes the underlying handle for callers that need to open their own
// transactions.
func (r *AppointmentRepo) DB() *sql.DB { return r.db }

const apptColumns = `id, user_id, title, description, start_time, end_time, status, payment_ref, created_at, updated_at`

func scanAppointment(row interface{ Scan(...any) error }) (model.Appointment, error) {
	var a model.Appointment
	var desc sql.NullString
	var payRef sql.NullString
	err := row.Scan(&a.ID, &a.UserID, &a.Title, &desc, &a.StartTime, &a.EndTime, &a.Status, &payRef, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Appointment{}, err
	}
	if desc.Valid {
		a.Description = desc.String
	}
	if payRef.Valid {
		ref := payRef.String
		a.PaymentRef = &ref
	}
	return a, nil
}

// CreateOverlapFree inserts the appointment unless a SCHEDULED appointment
// overlaps its window.  Check and insert share one transaction; the SELECT
// takes a locking read so a concurrent claim for the same window blocks
// until this one commits.
func (r *AppointmentRepo) CreateOverlapFree(ctx context.Context, appt *model.Appointment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const overlapQ = `SELECT COUNT(*) FROM appointments
	                  WHERE status = ? AND start_time < ? AND end_time > ?
	                  FOR UPDATE`
	var n int
	if err := tx.QueryRowContext(ctx, overlapQ, model.StatusScheduled,
		fmtTime(appt.EndTime), fmtTime(appt.StartTime)).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return booking.ErrSlotConflict
	}

	const insQ = `INSERT INTO appointments (user_id, title, description, start_time, end_time, status)
	              VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, insQ, appt.UserID, appt.Title, nullIfEmpty(appt.Description),
		fmtTime(appt.StartTime), fmtTime(appt.EndTime), appt.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	appt.ID = uint64(id)

	// Query back the full row to populate timestamps and defaults.
	const selQ = `SELECT ` + apptColumns + ` FROM appointments WHERE id = ?`
	created, err := scanAppointment(tx.QueryRowContext(ctx, selQ, appt.ID))
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	*appt = created
	return nil
}

// Get returns the appointment or booking.ErrNotFound.
func (r *AppointmentRepo) Get(ctx context.Context, id uint64) (model.Appointment, error) {
	const q = `SELECT ` + apptColumns + ` FROM appointments WHERE id = ?`
	a, err := scanAppointment(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Appointment{}, booking.ErrNotFound
	}
	return a, err
}

// ListByUser returns the user's appointments, newest first.
func (r *AppointmentRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Appointment, error) {
	const q = `SELECT ` + apptColumns + ` FROM appointments WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q, userID)
}

// ListAll returns every appointment, newest first.
func (r *AppointmentRepo) ListAll(ctx context.Context) ([]model.Appointment, error) {
	const q = `SELECT ` + apptColumns + ` FROM appointments ORDER BY created_at DESC, id DESC`
	return r.list(ctx, q)
}

// ListScheduledBetween returns SCHEDULED appointments overlapping the
// half-open interval [start, end), ordered by start time.
func (r *AppointmentRepo) ListScheduledBetween(ctx context.Context, start, end time.Time) ([]model.Appointment, error) {
	const q = `SELECT ` + apptColumns + ` FROM appointments
	           WHERE status = ? AND start_time < ? AND end_time > ?
	           ORDER BY start_time ASC`
	return r.list(ctx, q, model.StatusScheduled, fmtTime(end), fmtTime(start))
}

// CountScheduledByUser returns how many SCHEDULED appointments the user
// currently holds.
func (r *AppointmentRepo) CountScheduledByUser(ctx context.Context, userID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM appointments WHERE user_id = ? AND status = ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, userID, model.StatusScheduled).Scan(&n)
	return n, err
}

// UpdateStatus applies a status change after validating the transition
// against the current row under a locking read.
func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id uint64, to string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM appointments WHERE id = ? FOR UPDATE`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.ErrNotFound
	}
	if err != nil {
		return err
	}
	if !model.CanTransition(current, to) {
		return booking.ErrInvalidTransition
	}
	if _, err := tx.ExecContext(ctx, `UPDATE appointments SET status = ? WHERE id = ?`, to, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// AttachPaymentRef records the captured payment reference on the row.
func (r *AppointmentRepo) AttachPaymentRef(ctx context.Context, id uint64, ref string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE appointments SET payment_ref = ? WHERE id = ?`, ref, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return booking.ErrNotFound
	}
	return nil
}

// DeleteUnpaid removes the row only while payment_ref is NULL, so a paid
// booking can never disappear through the rollback path.
func (r *AppointmentRepo) DeleteUnpaid(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = ? AND payment_ref IS NULL`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the row is gone or it carries a payment; distinguish.
		var ref sql.NullString
		err := r.db.QueryRowContext(ctx, `SELECT payment_ref FROM appointments WHERE id = ?`, id).Scan(&ref)
		if errors.Is(err, sql.ErrNoRows) {
			return booking.ErrNotFound
		}
		if err != nil {
			return err
		}
		return booking.ErrPaidRow
	}
	return nil
}

func (r *AppointmentRepo) list(ctx context.Context, q string, args ...any) ([]model.Appointment, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// fmtTime renders t in the DATETIME format the schema uses, always UTC.
func fmtTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// nullIfEmpty maps "" to NULL for optional text columns.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
