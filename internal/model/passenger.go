package model

import "time"

// Passenger is a traveller who can authenticate against one of their
// bookings.  There is no password credential: identity is proven by
// the booking reference plus matching last name and email.
type Passenger struct {
    ID        string    // passengers.id
    FirstName string    // passengers.first_name
    LastName  string    // passengers.last_name
    Email     string    // passengers.email
    CreatedAt time.Time // passengers.created_at
    UpdatedAt time.Time // passengers.updated_at
}

// BookingStatus values for the bookings table.
const (
    BookingActive    = "ACTIVE"
    BookingCancelled = "CANCELLED"
    BookingCompleted = "COMPLETED"
)

// Booking links a passenger to a flight.  A passenger has at most one
// booking per flight; the six-character reference is globally unique.
type Booking struct {
    ID               string    // bookings.id
    BookingReference string    // bookings.booking_reference
    PassengerID      string    // bookings.passenger_id
    FlightID         string    // bookings.flight_id
    Status           string    // bookings.status
    CreatedAt        time.Time // bookings.created_at
    UpdatedAt        time.Time // bookings.updated_at
}

func (b *Booking) IsActive() bool { return b.Status == BookingActive }
