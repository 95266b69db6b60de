package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SeedDemoData inserts a pair of demo flights with seats, passengers and
// bookings so a fresh environment can run check-in immediately. It is a
// no-op when the flights table already has rows.
func SeedDemoData(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM flights`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC().Truncate(time.Minute)

	type flightSpec struct {
		number    string
		origin    string
		dest      string
		departsIn time.Duration
		duration  time.Duration
	}
	flights := []flightSpec{
		// Departs in 6h: inside the default 24h..1h check-in window.
		{number: "SH101", origin: "AMS", dest: "LIS", departsIn: 6 * time.Hour, duration: 3 * time.Hour},
		// Departs in 3 days: check-in not open yet, useful for window tests.
		{number: "SH205", origin: "AMS", dest: "JFK", departsIn: 72 * time.Hour, duration: 8 * time.Hour},
	}

	flightIDs := make([]string, 0, len(flights))
	for _, f := range flights {
		id := uuid.NewString()
		dep := now.Add(f.departsIn)
		// 12 business + 96 economy seats, see seedSeats below.
		_, err := db.ExecContext(ctx,
			`INSERT INTO flights (id, flight_number, origin, destination, departure_time, arrival_time, aircraft_type, status, total_seats, gate)
			 VALUES (?, ?, ?, ?, ?, ?, ?, 'SCHEDULED', 108, ?)`,
			id, f.number, f.origin, f.dest, dep, dep.Add(f.duration), "A320", "D7",
		)
		if err != nil {
			return err
		}
		if err := seedSeats(ctx, db, id); err != nil {
			return err
		}
		flightIDs = append(flightIDs, id)
	}

	type passengerSpec struct {
		first, last, email, reference string
	}
	passengers := []passengerSpec{
		{"Alice", "Janssen", "alice.janssen@example.com", "ABC123"},
		{"Bruno", "Costa", "bruno.costa@example.com", "DEF456"},
		{"Chidi", "Okafor", "chidi.okafor@example.com", "GHI789"},
	}
	for i, p := range passengers {
		pid := uuid.NewString()
		_, err := db.ExecContext(ctx,
			`INSERT INTO passengers (id, first_name, last_name, email) VALUES (?, ?, ?, ?)`,
			pid, p.first, p.last, p.email,
		)
		if err != nil {
			return err
		}
		// All demo passengers fly SH101; the last one also holds a booking on SH205.
		_, err = db.ExecContext(ctx,
			`INSERT INTO bookings (id, booking_reference, passenger_id, flight_id, status) VALUES (?, ?, ?, ?, 'ACTIVE')`,
			uuid.NewString(), p.reference, pid, flightIDs[0],
		)
		if err != nil {
			return err
		}
		if i == len(passengers)-1 {
			_, err = db.ExecContext(ctx,
				`INSERT INTO bookings (id, booking_reference, passenger_id, flight_id, status) VALUES (?, ?, ?, ?, 'ACTIVE')`,
				uuid.NewString(), "JKL012", pid, flightIDs[1],
			)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// seedSeats lays out a small A320 style cabin: rows 1-3 business (A/C/D/F),
// rows 10-25 economy (A-F).
func seedSeats(ctx context.Context, db *sql.DB, flightID string) error {
	stmt, err := db.PrepareContext(ctx,
		`INSERT INTO seats (id, flight_id, seat_number, seat_class, status) VALUES (?, ?, ?, ?, 'AVAILABLE')`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for row := 1; row <= 3; row++ {
		for _, letter := range []string{"A", "C", "D", "F"} {
			if _, err := stmt.ExecContext(ctx, uuid.NewString(), flightID, fmt.Sprintf("%d%s", row, letter), "BUSINESS"); err != nil {
				return err
			}
		}
	}
	for row := 10; row <= 25; row++ {
		for _, letter := range []string{"A", "B", "C", "D", "E", "F"} {
			if _, err := stmt.ExecContext(ctx, uuid.NewString(), flightID, fmt.Sprintf("%d%s", row, letter), "ECONOMY"); err != nil {
				return err
			}
		}
	}
	return nil
}
