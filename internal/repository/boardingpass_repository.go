package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/skyhigh/airline-checkin/internal/model"
)

// BoardingPassRepo provides methods to work with boarding passes in the
// database. Each completed check-in owns at most one pass, enforced by
// a unique key on check_in_id.
type BoardingPassRepo struct {
	db *sql.DB
}

// NewBoardingPassRepo constructs a BoardingPassRepo with the given DB handle.
func NewBoardingPassRepo(db *sql.DB) *BoardingPassRepo {
	return &BoardingPassRepo{db: db}
}

const boardingPassColumns = `id, check_in_id, passenger_name, flight_number, seat_number, seat_class,
	origin, destination, departure_time, gate, boarding_time,
	barcode_data, qr_code_data, generated_at`

// GetByCheckIn retrieves the pass generated for a check-in session.
func (r *BoardingPassRepo) GetByCheckIn(ctx context.Context, checkInID string) (*model.BoardingPass, error) {
	const q = `SELECT ` + boardingPassColumns + ` FROM boarding_passes WHERE check_in_id = ?`
	var bp model.BoardingPass
	err := r.db.QueryRowContext(ctx, q, checkInID).Scan(
		&bp.ID, &bp.CheckInID, &bp.PassengerName, &bp.FlightNumber, &bp.SeatNumber, &bp.SeatClass,
		&bp.Origin, &bp.Destination, &bp.DepartureTime, &bp.Gate, &bp.BoardingTime,
		&bp.BarcodeData, &bp.QRCodeData, &bp.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBoardingPassNotFound
		}
		return nil, err
	}
	return &bp, nil
}

// Create inserts a boarding pass. The unique key on check_in_id makes a
// duplicate insert fail, which callers treat as "already generated" and
// resolve by re-reading.
func (r *BoardingPassRepo) Create(ctx context.Context, bp *model.BoardingPass) error {
	const q = `INSERT INTO boarding_passes (` + boardingPassColumns + `)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		bp.ID, bp.CheckInID, bp.PassengerName, bp.FlightNumber, bp.SeatNumber, bp.SeatClass,
		bp.Origin, bp.Destination, bp.DepartureTime, bp.Gate, bp.BoardingTime,
		bp.BarcodeData, bp.QRCodeData, bp.GeneratedAt)
	return err
}
