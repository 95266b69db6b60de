package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/skyhigh/airline-checkin/internal/model"
)

// CheckInRepo provides methods to work with check-in sessions in the
// database. Like seats, sessions carry an optimistic version column and
// every update is guarded by it.
type CheckInRepo struct {
	db *sql.DB
}

// NewCheckInRepo constructs a CheckInRepo with the given DB handle.
func NewCheckInRepo(db *sql.DB) *CheckInRepo {
	return &CheckInRepo{db: db}
}

const checkInColumns = `id, booking_id, status, seat_id, baggage_weight_kg,
	excess_baggage_fee, payment_status, payment_reference,
	started_at, last_activity_at, expires_at, completed_at,
	version, created_at, updated_at`

func scanCheckIn(scan func(dest ...any) error) (*model.CheckInSession, error) {
	var c model.CheckInSession
	err := scan(
		&c.ID, &c.BookingID, &c.Status, &c.SeatID, &c.BaggageWeightKg,
		&c.ExcessBaggageFee, &c.PaymentStatus, &c.PaymentReference,
		&c.StartedAt, &c.LastActivityAt, &c.ExpiresAt, &c.CompletedAt,
		&c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCheckInNotFound
		}
		return nil, err
	}
	return &c, nil
}

// GetByID retrieves a check-in session by its id.
func (r *CheckInRepo) GetByID(ctx context.Context, id string) (*model.CheckInSession, error) {
	const q = `SELECT ` + checkInColumns + ` FROM check_ins WHERE id = ?`
	return scanCheckIn(r.db.QueryRowContext(ctx, q, id).Scan)
}

// GetActiveByBooking retrieves the booking's session that is still in
// flight, i.e. IN_PROGRESS or WAITING_PAYMENT. At most one such session
// exists per booking at a time.
func (r *CheckInRepo) GetActiveByBooking(ctx context.Context, bookingID string) (*model.CheckInSession, error) {
	const q = `SELECT ` + checkInColumns + ` FROM check_ins
	           WHERE booking_id = ? AND status IN ('IN_PROGRESS', 'WAITING_PAYMENT')
	           ORDER BY started_at DESC LIMIT 1`
	return scanCheckIn(r.db.QueryRowContext(ctx, q, bookingID).Scan)
}

// GetCompletedByBooking retrieves the booking's completed session, if any.
func (r *CheckInRepo) GetCompletedByBooking(ctx context.Context, bookingID string) (*model.CheckInSession, error) {
	const q = `SELECT ` + checkInColumns + ` FROM check_ins
	           WHERE booking_id = ? AND status = 'COMPLETED'
	           LIMIT 1`
	return scanCheckIn(r.db.QueryRowContext(ctx, q, bookingID).Scan)
}

// Create inserts a new session record.
func (r *CheckInRepo) Create(ctx context.Context, c *model.CheckInSession) error {
	const q = `INSERT INTO check_ins
	           (id, booking_id, status, seat_id, baggage_weight_kg, excess_baggage_fee,
	            payment_status, payment_reference, started_at, last_activity_at, expires_at,
	            completed_at, version)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.BookingID, c.Status, c.SeatID, c.BaggageWeightKg, c.ExcessBaggageFee,
		c.PaymentStatus, c.PaymentReference, c.StartedAt, c.LastActivityAt, c.ExpiresAt,
		c.CompletedAt, c.Version)
	return err
}

// UpdateVersioned writes the session's mutable fields guarded by the
// version it was read at. On success the session's Version field is
// bumped to match the stored row.
func (r *CheckInRepo) UpdateVersioned(ctx context.Context, c *model.CheckInSession) error {
	const q = `UPDATE check_ins
	           SET status = ?, seat_id = ?, baggage_weight_kg = ?, excess_baggage_fee = ?,
	               payment_status = ?, payment_reference = ?, last_activity_at = ?,
	               expires_at = ?, completed_at = ?, version = version + 1,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, q,
		c.Status, c.SeatID, c.BaggageWeightKg, c.ExcessBaggageFee,
		c.PaymentStatus, c.PaymentReference, c.LastActivityAt,
		c.ExpiresAt, c.CompletedAt, c.ID, c.Version)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVersionConflict
	}
	c.Version++
	return nil
}

// FindExpired returns in-flight sessions whose expiry deadline has passed.
// Used by the background sweep that expires abandoned sessions.
func (r *CheckInRepo) FindExpired(ctx context.Context, now time.Time, limit int) ([]model.CheckInSession, error) {
	const q = `SELECT ` + checkInColumns + ` FROM check_ins
	           WHERE status IN ('IN_PROGRESS', 'WAITING_PAYMENT') AND expires_at <= ?
	           ORDER BY expires_at ASC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.CheckInSession
	for rows.Next() {
		c, err := scanCheckIn(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
