package model

import "time"

// SeatStatus enumerates the lifecycle states of a seat.  AVAILABLE
// seats can be held, HELD seats carry a holder and an expiry, and
// CONFIRMED is terminal: no transition ever leaves it.
type SeatStatus string

const (
    SeatAvailable SeatStatus = "AVAILABLE"
    SeatHeld      SeatStatus = "HELD"
    SeatConfirmed SeatStatus = "CONFIRMED"
)

// Seat describes a single seat on a flight.  Seats are uniquely
// identified by their flight and seat number (e.g. "12A").  The
// Version column implements the optimistic guard: every persisted
// mutation bumps it, and a write against a stale version is rejected
// by the repository.
//
// Fields:
//  ID                     – primary key (UUID).
//  FlightID               – flight to which this seat belongs.
//  SeatNumber             – seat designator, unique within the flight.
//  SeatClass              – cabin class (ECONOMY, BUSINESS, FIRST).
//  Status                 – AVAILABLE, HELD or CONFIRMED.
//  HeldByPassengerID      – holder, present only while HELD.
//  HeldUntil              – hold expiry, present only while HELD.
//  ConfirmedByPassengerID – confirmer, present only once CONFIRMED.
//  Version                – optimistic lock counter.
//  CreatedAt/UpdatedAt    – row timestamps.
type Seat struct {
    ID                     string     // seats.id
    FlightID               string     // seats.flight_id
    SeatNumber             string     // seats.seat_number
    SeatClass              string     // seats.seat_class
    Status                 SeatStatus // seats.status
    HeldByPassengerID      *string    // seats.held_by_passenger_id (nullable)
    HeldUntil              *time.Time // seats.held_until (nullable)
    ConfirmedByPassengerID *string    // seats.confirmed_by_passenger_id (nullable)
    Version                int        // seats.version
    CreatedAt              time.Time  // seats.created_at
    UpdatedAt              time.Time  // seats.updated_at
}

func (s *Seat) IsAvailable() bool { return s.Status == SeatAvailable }
func (s *Seat) IsHeld() bool      { return s.Status == SeatHeld }
func (s *Seat) IsConfirmed() bool { return s.Status == SeatConfirmed }

// IsHeldBy reports whether the seat is currently held by the given
// passenger.  A seat that is not HELD is held by nobody.
func (s *Seat) IsHeldBy(passengerID string) bool {
    return s.IsHeld() && s.HeldByPassengerID != nil && *s.HeldByPassengerID == passengerID
}

// IsHoldExpired reports whether a HELD seat's hold window has passed
// at the given instant.  Expiry is self-describing data on the row;
// callers pass their own clock so sweeps and tests stay deterministic.
func (s *Seat) IsHoldExpired(now time.Time) bool {
    return s.IsHeld() && s.HeldUntil != nil && now.After(*s.HeldUntil)
}
