// Package queue defines message payloads exchanged over the message broker.
package queue

// CheckInCompletedEvent is published when a passenger completes check-in.
// It contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type CheckInCompletedEvent struct {
	CheckInID        string  `json:"check_in_id"`
	BookingID        string  `json:"booking_id"`
	BookingReference string  `json:"booking_reference"`
	PassengerID      string  `json:"passenger_id"`
	PassengerName    string  `json:"passenger_name"`
	FlightID         string  `json:"flight_id"`
	FlightNumber     string  `json:"flight_number"`
	Origin           string  `json:"origin"`
	Destination      string  `json:"destination"`
	DepartureTime    string  `json:"departure_time"`
	SeatNumber       string  `json:"seat_number"`
	SeatClass        string  `json:"seat_class"`
	BaggageWeightKg  float64 `json:"baggage_weight_kg"`
	ExcessBaggageFee float64 `json:"excess_baggage_fee"`
	CompletedAt      string  `json:"completed_at"`
}
