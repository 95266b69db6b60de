package repository

import (
	"context"
	"database/sql"

	"github.com/skyhigh/airline-checkin/internal/model"
)

// SeatAuditRepo appends to the seat transition audit trail. The log is
// insert-only; rows are never updated or deleted.
type SeatAuditRepo struct {
	db *sql.DB
}

// NewSeatAuditRepo constructs a SeatAuditRepo with the given DB handle.
func NewSeatAuditRepo(db *sql.DB) *SeatAuditRepo {
	return &SeatAuditRepo{db: db}
}

// Append records one seat state transition. ChangedByPassengerID is nil
// for system-initiated transitions such as hold expiry sweeps.
func (r *SeatAuditRepo) Append(ctx context.Context, e *model.SeatAuditLog) error {
	const q = `INSERT INTO seat_audit_log
	           (id, seat_id, flight_id, seat_number, previous_status, new_status, changed_by_passenger_id, change_reason)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		e.ID, e.SeatID, e.FlightID, e.SeatNumber,
		e.PreviousStatus, e.NewStatus, e.ChangedByPassengerID, e.ChangeReason)
	return err
}

// ListBySeat returns the transition history of a seat, oldest first.
func (r *SeatAuditRepo) ListBySeat(ctx context.Context, seatID string) ([]model.SeatAuditLog, error) {
	const q = `SELECT id, seat_id, flight_id, seat_number, previous_status, new_status, changed_by_passenger_id, change_reason, created_at
	           FROM seat_audit_log
	           WHERE seat_id = ?
	           ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, seatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.SeatAuditLog
	for rows.Next() {
		var e model.SeatAuditLog
		if err := rows.Scan(
			&e.ID, &e.SeatID, &e.FlightID, &e.SeatNumber,
			&e.PreviousStatus, &e.NewStatus, &e.ChangedByPassengerID,
			&e.ChangeReason, &e.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
