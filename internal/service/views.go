package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/skyhigh/airline-checkin/internal/logger"
	"github.com/skyhigh/airline-checkin/internal/model"
	"github.com/skyhigh/airline-checkin/internal/repository"
)

// FlightInfo is the flight as shown inside check-in payloads, including
// the check-in window so clients can render countdowns.
type FlightInfo struct {
	ID              string    `json:"id"`
	FlightNumber    string    `json:"flight_number"`
	Origin          string    `json:"origin"`
	Destination     string    `json:"destination"`
	DepartureTime   time.Time `json:"departure_time"`
	ArrivalTime     time.Time `json:"arrival_time"`
	AircraftType    string    `json:"aircraft_type"`
	Status          string    `json:"status"`
	Gate            string    `json:"gate,omitempty"`
	CheckInOpensAt  time.Time `json:"check_in_opens_at"`
	CheckInClosesAt time.Time `json:"check_in_closes_at"`
	CheckInOpen     bool      `json:"check_in_open"`
}

// PassengerInfo is the passenger summary embedded in payloads.
type PassengerInfo struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// SeatInfo is the attached seat summary embedded in payloads.
type SeatInfo struct {
	ID         string     `json:"id"`
	SeatNumber string     `json:"seat_number"`
	SeatClass  string     `json:"seat_class"`
	Status     string     `json:"status"`
	HeldUntil  *time.Time `json:"held_until,omitempty"`
}

// PaymentInfo reflects the fee payment state on the session.
type PaymentInfo struct {
	Status    string  `json:"status"`
	Reference *string `json:"reference,omitempty"`
}

// CheckInView is the full session payload returned by every check-in
// operation. NextSteps tells the client what it can do from here.
type CheckInView struct {
	ID               string              `json:"id"`
	Status           string              `json:"status"`
	BookingReference string              `json:"booking_reference"`
	Flight           *FlightInfo         `json:"flight,omitempty"`
	Passenger        *PassengerInfo      `json:"passenger,omitempty"`
	Seat             *SeatInfo           `json:"seat,omitempty"`
	Baggage          *BaggageCharge      `json:"baggage,omitempty"`
	Payment          *PaymentInfo        `json:"payment,omitempty"`
	StartedAt        time.Time           `json:"started_at"`
	ExpiresAt        time.Time           `json:"expires_at"`
	CompletedAt      *time.Time          `json:"completed_at,omitempty"`
	NextSteps        []string            `json:"next_steps"`
	BoardingPass     *model.BoardingPass `json:"boarding_pass,omitempty"`
}

// flightInfo renders a flight with its window at the given instant.
func (s *CheckInService) flightInfo(flight *model.Flight, now time.Time) *FlightInfo {
	return flightInfoFor(flight, s.opensHours, s.closesHours, now)
}

func flightInfoFor(flight *model.Flight, opensHours, closesHours int, now time.Time) *FlightInfo {
	opens := flight.CheckInOpensAt(opensHours)
	closes := flight.CheckInClosesAt(closesHours)
	return &FlightInfo{
		ID:              flight.ID,
		FlightNumber:    flight.FlightNumber,
		Origin:          flight.Origin,
		Destination:     flight.Destination,
		DepartureTime:   flight.DepartureTime,
		ArrivalTime:     flight.ArrivalTime,
		AircraftType:    flight.AircraftType,
		Status:          flight.Status,
		Gate:            flight.Gate,
		CheckInOpensAt:  opens,
		CheckInClosesAt: closes,
		CheckInOpen:     !now.Before(opens) && !now.After(closes),
	}
}

// FlightDetails returns a flight with window info, restricted to
// passengers who hold a booking on it.
func (s *CheckInService) FlightDetails(ctx context.Context, passengerID, flightID string) (*FlightInfo, *Error) {
	flight, serr := s.getFlight(ctx, flightID)
	if serr != nil {
		return nil, serr
	}
	// Any booking grants visibility: a passenger who already completed
	// check-in still needs the flight details.
	if _, err := s.bookings.GetByPassengerAndFlight(ctx, passengerID, flightID); err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, ErrFlightAccessDenied()
		}
		logger.Error("booking lookup failed", zap.String("flight_id", flightID), zap.Error(err))
		return nil, ErrInternal()
	}
	return s.flightInfo(flight, s.now()), nil
}

func (s *CheckInService) buildView(ctx context.Context, session *model.CheckInSession, booking *model.Booking) (*CheckInView, *Error) {
	now := s.now()
	view := &CheckInView{
		ID:               session.ID,
		Status:           string(session.Status),
		BookingReference: booking.BookingReference,
		StartedAt:        session.StartedAt,
		ExpiresAt:        session.ExpiresAt,
		CompletedAt:      session.CompletedAt,
	}

	if flight, err := s.flights.GetByID(ctx, booking.FlightID); err == nil {
		view.Flight = s.flightInfo(flight, now)
	}
	if passenger, err := s.passengers.GetByID(ctx, booking.PassengerID); err == nil {
		view.Passenger = &PassengerInfo{
			ID:        passenger.ID,
			FirstName: passenger.FirstName,
			LastName:  passenger.LastName,
			Email:     passenger.Email,
		}
	}
	if session.SeatID != nil {
		if seat, err := s.seats.GetByID(ctx, *session.SeatID); err == nil {
			view.Seat = &SeatInfo{
				ID:         seat.ID,
				SeatNumber: seat.SeatNumber,
				SeatClass:  seat.SeatClass,
				Status:     string(seat.Status),
				HeldUntil:  seat.HeldUntil,
			}
		}
	}
	if session.BaggageWeightKg != nil {
		if charge, serr := s.weights.Calculate(*session.BaggageWeightKg); serr == nil {
			view.Baggage = charge
		}
	}
	if session.PaymentStatus != nil {
		view.Payment = &PaymentInfo{
			Status:    *session.PaymentStatus,
			Reference: session.PaymentReference,
		}
	}
	if session.IsCompleted() {
		if pass, err := s.passes.store.GetByCheckIn(ctx, session.ID); err == nil {
			view.BoardingPass = pass
		}
	}

	view.NextSteps = nextSteps(session, view)
	return view, nil
}

// nextSteps derives the ordered list of actions still open to the
// passenger.
func nextSteps(session *model.CheckInSession, view *CheckInView) []string {
	steps := []string{}
	switch session.Status {
	case model.CheckInCompleted:
		steps = append(steps, StepDownloadBoarding)
	case model.CheckInWaitingPayment:
		if session.SeatID == nil {
			steps = append(steps, StepSelectSeat)
		}
		steps = append(steps, StepProcessPayment)
	case model.CheckInInProgress:
		if session.SeatID == nil {
			steps = append(steps, StepSelectSeat)
		}
		if session.BaggageWeightKg == nil {
			steps = append(steps, StepAddBaggage)
		}
		if session.SeatID != nil {
			steps = append(steps, StepConfirmCheckIn)
		}
	}
	return steps
}
