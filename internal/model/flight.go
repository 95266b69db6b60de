package model

import "time"

// Flight represents a scheduled flight as stored in the `flights`
// table.  Seats are created in bulk when the flight is set up and
// are never deleted while the flight exists.
//
// Fields:
//  ID            – primary key (UUID).
//  FlightNumber  – airline designator, e.g. "SH101".
//  DepartureTime – scheduled departure (UTC).
//  ArrivalTime   – scheduled arrival (UTC).
//  Origin        – IATA code of the origin airport.
//  Destination   – IATA code of the destination airport.
//  AircraftType  – equipment description.
//  Status        – SCHEDULED, BOARDING, DEPARTED or CANCELLED.
//  TotalSeats    – number of physical seats.
//  Gate          – assigned gate, empty until published.
type Flight struct {
    ID            string    // flights.id
    FlightNumber  string    // flights.flight_number
    DepartureTime time.Time // flights.departure_time
    ArrivalTime   time.Time // flights.arrival_time
    Origin        string    // flights.origin
    Destination   string    // flights.destination
    AircraftType  string    // flights.aircraft_type
    Status        string    // flights.status
    TotalSeats    int       // flights.total_seats
    Gate          string    // flights.gate
    CreatedAt     time.Time // flights.created_at
    UpdatedAt     time.Time // flights.updated_at
}

// CheckInOpensAt returns the instant the check-in window opens,
// given the configured offset in hours before departure.
func (f *Flight) CheckInOpensAt(opensHoursBefore int) time.Time {
    return f.DepartureTime.Add(-time.Duration(opensHoursBefore) * time.Hour)
}

// CheckInClosesAt returns the instant the check-in window closes.
func (f *Flight) CheckInClosesAt(closesHoursBefore int) time.Time {
    return f.DepartureTime.Add(-time.Duration(closesHoursBefore) * time.Hour)
}
