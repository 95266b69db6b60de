package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/skyhigh/airline-checkin/internal/model"
)

// FlightRepo provides methods to work with flights in the database.
type FlightRepo struct {
	db *sql.DB
}

// NewFlightRepo constructs a FlightRepo with the given DB handle.
func NewFlightRepo(db *sql.DB) *FlightRepo {
	return &FlightRepo{db: db}
}

const flightColumns = `id, flight_number, origin, destination, departure_time, arrival_time, aircraft_type, status, total_seats, gate, created_at, updated_at`

func scanFlight(row *sql.Row) (*model.Flight, error) {
	var f model.Flight
	err := row.Scan(
		&f.ID, &f.FlightNumber, &f.Origin, &f.Destination,
		&f.DepartureTime, &f.ArrivalTime, &f.AircraftType,
		&f.Status, &f.TotalSeats, &f.Gate,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFlightNotFound
		}
		return nil, err
	}
	return &f, nil
}

// GetByID retrieves a flight by its id.
func (r *FlightRepo) GetByID(ctx context.Context, id string) (*model.Flight, error) {
	const q = `SELECT ` + flightColumns + ` FROM flights WHERE id = ?`
	return scanFlight(r.db.QueryRowContext(ctx, q, id))
}

// GetByNumber retrieves a flight by its flight number, picking the next
// departure when the same number flies on multiple days.
func (r *FlightRepo) GetByNumber(ctx context.Context, number string) (*model.Flight, error) {
	const q = `SELECT ` + flightColumns + ` FROM flights
	           WHERE flight_number = ?
	           ORDER BY departure_time ASC LIMIT 1`
	return scanFlight(r.db.QueryRowContext(ctx, q, number))
}

// Create inserts a flight record.
func (r *FlightRepo) Create(ctx context.Context, f *model.Flight) error {
	const q = `INSERT INTO flights (id, flight_number, origin, destination, departure_time, arrival_time, aircraft_type, status, total_seats, gate)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		f.ID, f.FlightNumber, f.Origin, f.Destination,
		f.DepartureTime, f.ArrivalTime, f.AircraftType,
		f.Status, f.TotalSeats, f.Gate)
	return err
}
