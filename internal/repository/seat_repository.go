package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/skyhigh/airline-checkin/internal/model"
)

// SeatRepo provides methods to work with seats in the database. All
// state-changing writes go through UpdateVersioned so that every seat
// transition is serialized by the optimistic version column.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

const seatColumns = `id, flight_id, seat_number, seat_class, status,
	held_by_passenger_id, held_until, confirmed_by_passenger_id,
	version, created_at, updated_at`

func scanSeat(scan func(dest ...any) error) (*model.Seat, error) {
	var s model.Seat
	err := scan(
		&s.ID, &s.FlightID, &s.SeatNumber, &s.SeatClass, &s.Status,
		&s.HeldByPassengerID, &s.HeldUntil, &s.ConfirmedByPassengerID,
		&s.Version, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetByID retrieves a seat by its id.
func (r *SeatRepo) GetByID(ctx context.Context, id string) (*model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats WHERE id = ?`
	return scanSeat(r.db.QueryRowContext(ctx, q, id).Scan)
}

// GetByFlightAndNumber retrieves a seat by flight id and seat number,
// e.g. ("...", "14C").
func (r *SeatRepo) GetByFlightAndNumber(ctx context.Context, flightID, seatNumber string) (*model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats WHERE flight_id = ? AND seat_number = ?`
	return scanSeat(r.db.QueryRowContext(ctx, q, flightID, seatNumber).Scan)
}

// GetByFlight retrieves all seats of a flight ordered by seat number.
func (r *SeatRepo) GetByFlight(ctx context.Context, flightID string) ([]model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats
	           WHERE flight_id = ?
	           ORDER BY LENGTH(seat_number), seat_number`
	rows, err := r.db.QueryContext(ctx, q, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Seat
	for rows.Next() {
		s, err := scanSeat(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// CreateBulk inserts multiple seats in a single statement.
func (r *SeatRepo) CreateBulk(ctx context.Context, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (id, flight_id, seat_number, seat_class, status) VALUES `
	args := make([]interface{}, 0, len(seats)*5)
	for i, seat := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, seat.ID, seat.FlightID, seat.SeatNumber, seat.SeatClass, seat.Status)
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// UpdateVersioned writes the seat's mutable fields guarded by the version
// it was read at. On success the seat's Version field is bumped to match
// the stored row. ErrVersionConflict means another writer got there first
// and none of the fields were written.
func (r *SeatRepo) UpdateVersioned(ctx context.Context, s *model.Seat) error {
	const q = `UPDATE seats
	           SET status = ?, held_by_passenger_id = ?, held_until = ?,
	               confirmed_by_passenger_id = ?, version = version + 1,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND version = ?`
	res, err := r.db.ExecContext(ctx, q,
		s.Status, s.HeldByPassengerID, s.HeldUntil,
		s.ConfirmedByPassengerID, s.ID, s.Version)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVersionConflict
	}
	s.Version++
	return nil
}

// FindExpiredHolds returns seats still marked HELD whose hold deadline has
// passed. Used by the background sweep that demotes stale holds.
func (r *SeatRepo) FindExpiredHolds(ctx context.Context, now time.Time, limit int) ([]model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats
	           WHERE status = 'HELD' AND held_until IS NOT NULL AND held_until <= ?
	           ORDER BY held_until ASC
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Seat
	for rows.Next() {
		s, err := scanSeat(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
