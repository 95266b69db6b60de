package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/skyhigh/airline-checkin/internal/model"
)

// BookingRepo provides methods to work with bookings in the database.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

const bookingColumns = `id, booking_reference, passenger_id, flight_id, status, created_at, updated_at`

func scanBooking(row *sql.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.BookingReference, &b.PassengerID, &b.FlightID, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// GetByID retrieves a booking by its id.
func (r *BookingRepo) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ?`
	return scanBooking(r.db.QueryRowContext(ctx, q, id))
}

// GetByReferenceAndDetails looks up a booking by its reference while
// verifying the passenger's last name and email. The reference is
// case-insensitive on input; names and emails compare case-insensitively
// as well since they come straight from login forms.
func (r *BookingRepo) GetByReferenceAndDetails(ctx context.Context, reference, lastName, email string) (*model.Booking, error) {
	const q = `SELECT b.id, b.booking_reference, b.passenger_id, b.flight_id, b.status, b.created_at, b.updated_at
	           FROM bookings b
	           JOIN passengers p ON p.id = b.passenger_id
	           WHERE b.booking_reference = ?
	             AND LOWER(p.last_name) = LOWER(?)
	             AND LOWER(p.email) = LOWER(?)`
	var b model.Booking
	err := r.db.QueryRowContext(ctx, q, strings.ToUpper(reference), lastName, email).
		Scan(&b.ID, &b.BookingReference, &b.PassengerID, &b.FlightID, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

// GetByPassengerAndFlight retrieves the passenger's booking on the given
// flight regardless of status. The unique key guarantees at most one.
func (r *BookingRepo) GetByPassengerAndFlight(ctx context.Context, passengerID, flightID string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
	           WHERE passenger_id = ? AND flight_id = ?`
	return scanBooking(r.db.QueryRowContext(ctx, q, passengerID, flightID))
}

// GetActiveByPassengerAndFlight retrieves the passenger's active booking
// on the given flight.
func (r *BookingRepo) GetActiveByPassengerAndFlight(ctx context.Context, passengerID, flightID string) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings
	           WHERE passenger_id = ? AND flight_id = ? AND status = 'ACTIVE'`
	return scanBooking(r.db.QueryRowContext(ctx, q, passengerID, flightID))
}

// ListActiveByPassenger retrieves all active bookings for a passenger,
// soonest departure first.
func (r *BookingRepo) ListActiveByPassenger(ctx context.Context, passengerID string) ([]model.Booking, error) {
	const q = `SELECT b.id, b.booking_reference, b.passenger_id, b.flight_id, b.status, b.created_at, b.updated_at
	           FROM bookings b
	           JOIN flights f ON f.id = b.flight_id
	           WHERE b.passenger_id = ? AND b.status = 'ACTIVE'
	           ORDER BY f.departure_time ASC`
	rows, err := r.db.QueryContext(ctx, q, passengerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Booking
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.BookingReference, &b.PassengerID, &b.FlightID, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus sets the booking status, e.g. COMPLETED once check-in finishes.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id, status string) error {
	const q = `UPDATE bookings SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookingNotFound
	}
	return nil
}
