package service

import (
	"context"
	"time"

	"github.com/skyhigh/airline-checkin/internal/model"
)

// The store interfaces below are what the services need from the
// persistence layer. The repository package satisfies them with MySQL;
// tests substitute in-memory fakes.

// FlightStore reads flights.
type FlightStore interface {
	GetByID(ctx context.Context, id string) (*model.Flight, error)
}

// PassengerStore reads passengers.
type PassengerStore interface {
	GetByID(ctx context.Context, id string) (*model.Passenger, error)
}

// BookingStore reads and updates bookings.
type BookingStore interface {
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetByReferenceAndDetails(ctx context.Context, reference, lastName, email string) (*model.Booking, error)
	GetActiveByPassengerAndFlight(ctx context.Context, passengerID, flightID string) (*model.Booking, error)
	GetByPassengerAndFlight(ctx context.Context, passengerID, flightID string) (*model.Booking, error)
	ListActiveByPassenger(ctx context.Context, passengerID string) ([]model.Booking, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

// SeatStore reads seats and performs version-guarded writes.
type SeatStore interface {
	GetByID(ctx context.Context, id string) (*model.Seat, error)
	GetByFlight(ctx context.Context, flightID string) ([]model.Seat, error)
	UpdateVersioned(ctx context.Context, s *model.Seat) error
	FindExpiredHolds(ctx context.Context, now time.Time, limit int) ([]model.Seat, error)
}

// CheckInStore reads check-in sessions and performs version-guarded writes.
type CheckInStore interface {
	GetByID(ctx context.Context, id string) (*model.CheckInSession, error)
	GetActiveByBooking(ctx context.Context, bookingID string) (*model.CheckInSession, error)
	GetCompletedByBooking(ctx context.Context, bookingID string) (*model.CheckInSession, error)
	Create(ctx context.Context, c *model.CheckInSession) error
	UpdateVersioned(ctx context.Context, c *model.CheckInSession) error
	FindExpired(ctx context.Context, now time.Time, limit int) ([]model.CheckInSession, error)
}

// AuditStore appends seat transition records.
type AuditStore interface {
	Append(ctx context.Context, e *model.SeatAuditLog) error
}

// BoardingPassStore reads and creates boarding passes.
type BoardingPassStore interface {
	GetByCheckIn(ctx context.Context, checkInID string) (*model.BoardingPass, error)
	Create(ctx context.Context, bp *model.BoardingPass) error
}

// SeatMapCacher is the read cache for rendered seat maps. All methods
// are best effort; implementations must degrade to misses, not errors.
type SeatMapCacher interface {
	Get(ctx context.Context, flightID string) ([]byte, bool)
	Set(ctx context.Context, flightID string, data []byte)
	Invalidate(ctx context.Context, flightID string)
}
