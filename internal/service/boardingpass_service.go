package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/skyhigh/airline-checkin/internal/logger"
	"github.com/skyhigh/airline-checkin/internal/model"
	"github.com/skyhigh/airline-checkin/internal/repository"
)

// Boarding starts this long before departure.
const boardingLeadTime = 30 * time.Minute

// BoardingPassService issues boarding passes for completed check-ins.
// Issuance is idempotent: the unique key on check_in_id means repeated
// generation attempts converge on the first stored pass.
type BoardingPassService struct {
	store      BoardingPassStore
	checkIns   CheckInStore
	bookings   BookingStore
	passengers PassengerStore
	flights    FlightStore
	seats      SeatStore

	now func() time.Time
}

// NewBoardingPassService constructs a BoardingPassService.
func NewBoardingPassService(
	store BoardingPassStore,
	checkIns CheckInStore,
	bookings BookingStore,
	passengers PassengerStore,
	flights FlightStore,
	seats SeatStore,
) *BoardingPassService {
	return &BoardingPassService{
		store:      store,
		checkIns:   checkIns,
		bookings:   bookings,
		passengers: passengers,
		flights:    flights,
		seats:      seats,
		now:        time.Now,
	}
}

// barcodeData builds the machine-readable pass string:
// flight number + last name (truncated to 5) + seat + departure date
// (ddMMMyyyy) + an 8 character sequence, all uppercase.
func barcodeData(flightNumber, lastName, seatNumber string, departure time.Time) string {
	name := strings.ToUpper(lastName)
	if len(name) > 5 {
		name = name[:5]
	}
	seq := strings.ToUpper(strings.ReplaceAll(newID(), "-", ""))[:8]
	return fmt.Sprintf("%s%s%s%s%s",
		strings.ToUpper(flightNumber), name, strings.ToUpper(seatNumber),
		departure.Format("02Jan2006"), seq)
}

// Generate issues the pass for a completed session. If a pass already
// exists (a concurrent completion, or a retry) the stored one is
// returned unchanged.
func (s *BoardingPassService) Generate(ctx context.Context, session *model.CheckInSession, booking *model.Booking) (*model.BoardingPass, *Error) {
	if existing, err := s.store.GetByCheckIn(ctx, session.ID); err == nil {
		return existing, nil
	} else if !errors.Is(err, repository.ErrBoardingPassNotFound) {
		logger.Error("boarding pass lookup failed", zap.String("check_in_id", session.ID), zap.Error(err))
		return nil, ErrInternal()
	}

	if session.SeatID == nil {
		return nil, ErrValidation("Check-in has no seat attached")
	}

	passenger, err := s.passengers.GetByID(ctx, booking.PassengerID)
	if err != nil {
		logger.Error("passenger lookup failed", zap.String("passenger_id", booking.PassengerID), zap.Error(err))
		return nil, ErrInternal()
	}
	flight, err := s.flights.GetByID(ctx, booking.FlightID)
	if err != nil {
		logger.Error("flight lookup failed", zap.String("flight_id", booking.FlightID), zap.Error(err))
		return nil, ErrInternal()
	}
	seat, err := s.seats.GetByID(ctx, *session.SeatID)
	if err != nil {
		logger.Error("seat lookup failed", zap.String("seat_id", *session.SeatID), zap.Error(err))
		return nil, ErrInternal()
	}

	barcode := barcodeData(flight.FlightNumber, passenger.LastName, seat.SeatNumber, flight.DepartureTime)
	png, err := qrcode.Encode(barcode, qrcode.Medium, 256)
	if err != nil {
		logger.Error("qr code encoding failed", zap.String("check_in_id", session.ID), zap.Error(err))
		return nil, ErrInternal()
	}

	pass := &model.BoardingPass{
		ID:            newID(),
		CheckInID:     session.ID,
		PassengerName: strings.ToUpper(passenger.LastName) + "/" + strings.ToUpper(passenger.FirstName),
		FlightNumber:  flight.FlightNumber,
		SeatNumber:    seat.SeatNumber,
		SeatClass:     seat.SeatClass,
		Origin:        flight.Origin,
		Destination:   flight.Destination,
		DepartureTime: flight.DepartureTime,
		Gate:          flight.Gate,
		BoardingTime:  flight.DepartureTime.Add(-boardingLeadTime),
		BarcodeData:   barcode,
		QRCodeData:    base64.StdEncoding.EncodeToString(png),
		GeneratedAt:   s.now().UTC(),
	}
	if err := s.store.Create(ctx, pass); err != nil {
		// Most likely a duplicate from a concurrent request; the stored
		// pass wins.
		if existing, gerr := s.store.GetByCheckIn(ctx, session.ID); gerr == nil {
			return existing, nil
		}
		logger.Error("boarding pass insert failed", zap.String("check_in_id", session.ID), zap.Error(err))
		return nil, ErrInternal()
	}
	logger.Info("boarding pass issued",
		zap.String("check_in_id", session.ID), zap.String("barcode", pass.BarcodeData))
	return pass, nil
}

// GetForPassenger fetches the pass for a completed check-in, enforcing
// ownership. If completion succeeded but issuance previously failed,
// the pass is generated on the spot.
func (s *BoardingPassService) GetForPassenger(ctx context.Context, checkInID, passengerID string) (*model.BoardingPass, *Error) {
	session, err := s.checkIns.GetByID(ctx, checkInID)
	if err != nil {
		if errors.Is(err, repository.ErrCheckInNotFound) {
			return nil, ErrNotFound("Check-in session")
		}
		logger.Error("check-in lookup failed", zap.String("check_in_id", checkInID), zap.Error(err))
		return nil, ErrInternal()
	}
	booking, err := s.bookings.GetByID(ctx, session.BookingID)
	if err != nil {
		logger.Error("booking lookup failed", zap.String("booking_id", session.BookingID), zap.Error(err))
		return nil, ErrInternal()
	}
	if booking.PassengerID != passengerID {
		return nil, ErrFlightAccessDenied()
	}
	if !session.IsCompleted() {
		return nil, ErrValidation("Check-in must be completed before a boarding pass is issued")
	}
	return s.Generate(ctx, session, booking)
}
