package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/skyhigh/airline-checkin/internal/logger"
	"github.com/skyhigh/airline-checkin/internal/model"
	"github.com/skyhigh/airline-checkin/internal/queue"
	"github.com/skyhigh/airline-checkin/internal/repository"
)

// EventPublisher sends a completed check-in to the message broker.
// Failures are the publisher's problem; check-in never fails because a
// broker was down.
type EventPublisher func(ctx context.Context, event queue.CheckInCompletedEvent) error

// Next-step hints returned on every session payload.
const (
	StepSelectSeat       = "SELECT_SEAT"
	StepAddBaggage       = "ADD_BAGGAGE"
	StepProcessPayment   = "PROCESS_PAYMENT"
	StepConfirmCheckIn   = "CONFIRM_CHECK_IN"
	StepDownloadBoarding = "DOWNLOAD_BOARDING_PASS"
)

// CheckInService drives the session state machine from start through
// seat selection, baggage, payment and completion. The session row
// carries a sliding expiry; every activity-bearing call pushes it out.
type CheckInService struct {
	checkIns   CheckInStore
	bookings   BookingStore
	flights    FlightStore
	passengers PassengerStore
	seats      SeatStore

	seatSvc    *SeatService
	weights    *WeightService
	payments   *PaymentService
	passes     *BoardingPassService
	locker     lockForceReleaser
	publish    EventPublisher

	sessionTimeout time.Duration
	opensHours     int
	closesHours    int

	now func() time.Time
}

// lockForceReleaser is the slice of the seat locker the session side
// needs: cleanup of abandoned locks without ownership.
type lockForceReleaser interface {
	ForceRelease(ctx context.Context, flightID, seatNumber string) error
}

// NewCheckInService constructs a CheckInService.
func NewCheckInService(
	checkIns CheckInStore,
	bookings BookingStore,
	flights FlightStore,
	passengers PassengerStore,
	seats SeatStore,
	seatSvc *SeatService,
	weights *WeightService,
	payments *PaymentService,
	passes *BoardingPassService,
	locker lockForceReleaser,
	publish EventPublisher,
	sessionTimeout time.Duration,
	opensHours, closesHours int,
) *CheckInService {
	return &CheckInService{
		checkIns:       checkIns,
		bookings:       bookings,
		flights:        flights,
		passengers:     passengers,
		seats:          seats,
		seatSvc:        seatSvc,
		weights:        weights,
		payments:       payments,
		passes:         passes,
		locker:         locker,
		publish:        publish,
		sessionTimeout: sessionTimeout,
		opensHours:     opensHours,
		closesHours:    closesHours,
		now:            time.Now,
	}
}

func (s *CheckInService) getFlight(ctx context.Context, flightID string) (*model.Flight, *Error) {
	flight, err := s.flights.GetByID(ctx, flightID)
	if err != nil {
		if errors.Is(err, repository.ErrFlightNotFound) {
			return nil, ErrNotFound("Flight")
		}
		logger.Error("flight lookup failed", zap.String("flight_id", flightID), zap.Error(err))
		return nil, ErrInternal()
	}
	return flight, nil
}

// checkWindow enforces the check-in window for a flight at the given
// instant.
func (s *CheckInService) checkWindow(flight *model.Flight, now time.Time) *Error {
	opens := flight.CheckInOpensAt(s.opensHours)
	if now.Before(opens) {
		return ErrCheckInNotOpen(int(opens.Sub(now).Seconds()))
	}
	if now.After(flight.CheckInClosesAt(s.closesHours)) {
		return ErrCheckInWindowClosed()
	}
	return nil
}

// Start opens a check-in session for the passenger's booking on the
// flight. Only one live session may exist per booking: a second Start
// while one is IN_PROGRESS or WAITING_PAYMENT is rejected.
func (s *CheckInService) Start(ctx context.Context, passengerID, flightID string) (*CheckInView, *Error) {
	now := s.now()

	flight, serr := s.getFlight(ctx, flightID)
	if serr != nil {
		return nil, serr
	}
	booking, err := s.bookings.GetActiveByPassengerAndFlight(ctx, passengerID, flightID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return nil, ErrFlightAccessDenied()
		}
		logger.Error("booking lookup failed", zap.String("passenger_id", passengerID), zap.Error(err))
		return nil, ErrInternal()
	}
	if !booking.IsActive() {
		return nil, ErrBookingNotActive()
	}
	if serr := s.checkWindow(flight, now); serr != nil {
		return nil, serr
	}

	if _, err := s.checkIns.GetCompletedByBooking(ctx, booking.ID); err == nil {
		return nil, ErrCheckInAlreadyExists("Check-in has already been completed for this booking")
	} else if !errors.Is(err, repository.ErrCheckInNotFound) {
		logger.Error("completed check-in lookup failed", zap.String("booking_id", booking.ID), zap.Error(err))
		return nil, ErrInternal()
	}

	session, err := s.checkIns.GetActiveByBooking(ctx, booking.ID)
	switch {
	case err == nil:
		if session.IsExpired(now) {
			session.Status = model.CheckInExpired
			if uerr := s.checkIns.UpdateVersioned(ctx, session); uerr != nil && !errors.Is(uerr, repository.ErrVersionConflict) {
				logger.Error("expiring stale session failed", zap.String("check_in_id", session.ID), zap.Error(uerr))
			}
			// Fall through and start fresh.
		} else {
			return nil, ErrCheckInAlreadyExists("A check-in session is already in progress for this booking")
		}
	case !errors.Is(err, repository.ErrCheckInNotFound):
		logger.Error("active check-in lookup failed", zap.String("booking_id", booking.ID), zap.Error(err))
		return nil, ErrInternal()
	}

	session = &model.CheckInSession{
		ID:        newID(),
		BookingID: booking.ID,
		Status:    model.CheckInInProgress,
		StartedAt: now,
	}
	session.Touch(now, s.sessionTimeout)
	if err := s.checkIns.Create(ctx, session); err != nil {
		logger.Error("creating check-in session failed", zap.String("booking_id", booking.ID), zap.Error(err))
		return nil, ErrInternal()
	}
	logger.Info("check-in session started",
		zap.String("check_in_id", session.ID),
		zap.String("booking_reference", booking.BookingReference),
		zap.String("flight_id", flightID))
	return s.buildView(ctx, session, booking)
}

// Get returns the current session state. Read-only: it reflects an
// overdue expiry in the payload but does not slide the deadline.
func (s *CheckInService) Get(ctx context.Context, checkInID, passengerID string) (*CheckInView, *Error) {
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
	if !session.IsTerminal() && session.IsExpired(s.now()) {
		session.Status = model.CheckInExpired
		if uerr := s.checkIns.UpdateVersioned(ctx, session); uerr != nil && !errors.Is(uerr, repository.ErrVersionConflict) {
			logger.Error("expiring session failed", zap.String("check_in_id", session.ID), zap.Error(uerr))
		}
	}
	return s.buildView(ctx, session, booking)
}

// AddBaggage records the declared baggage weight and computes any
// excess fee. A fee moves the session to WAITING_PAYMENT; re-declaring
// a lighter bag clears the fee and returns to IN_PROGRESS.
func (s *CheckInService) AddBaggage(ctx context.Context, checkInID, passengerID string, weightKg float64) (*CheckInView, *Error) {
	now := s.now()
	session, booking, serr := loadOwnedActiveSession(ctx, s.checkIns, s.bookings, checkInID, passengerID, now)
	if serr != nil {
		return nil, serr
	}

	charge, serr := s.weights.Calculate(weightKg)
	if serr != nil {
		return nil, serr
	}

	session.BaggageWeightKg = &charge.WeightKg
	if charge.PaymentRequired {
		fee := charge.Fee
		pending := model.PaymentPending
		session.ExcessBaggageFee = &fee
		session.PaymentStatus = &pending
		session.PaymentReference = nil
		session.Status = model.CheckInWaitingPayment
	} else {
		session.ExcessBaggageFee = nil
		session.PaymentStatus = nil
		session.PaymentReference = nil
		session.Status = model.CheckInInProgress
	}
	session.Touch(now, s.sessionTimeout)

	if err := s.checkIns.UpdateVersioned(ctx, session); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrConcurrentUpdate()
		}
		logger.Error("baggage update failed", zap.String("check_in_id", session.ID), zap.Error(err))
		return nil, ErrInternal()
	}
	return s.buildView(ctx, session, booking)
}

// Pay collects the outstanding excess baggage fee. A failed attempt
// still counts as session activity, so the passenger does not lose the
// session while wrestling with their card.
func (s *CheckInService) Pay(ctx context.Context, checkInID, passengerID string, amount float64, currency, idempotencyKey string) (*CheckInView, *Error) {
	now := s.now()
	session, booking, serr := loadOwnedActiveSession(ctx, s.checkIns, s.bookings, checkInID, passengerID, now)
	if serr != nil {
		return nil, serr
	}

	if !session.IsWaitingPayment() || session.ExcessBaggageFee == nil {
		return nil, ErrValidation("No payment is due for this check-in")
	}
	owed := *session.ExcessBaggageFee
	if amount < owed {
		return nil, ErrPaymentRequired(owed)
	}

	result, serr := s.payments.Charge(amount, currency, idempotencyKey)
	if serr != nil {
		return nil, serr
	}

	session.Touch(now, s.sessionTimeout)
	var payErr *Error
	switch result.Status {
	case PaymentResultCompleted:
		completed := model.PaymentCompleted
		session.PaymentStatus = &completed
		session.PaymentReference = &result.Reference
		session.Status = model.CheckInInProgress
	case PaymentResultDeclined:
		declined := model.PaymentDeclined
		session.PaymentStatus = &declined
		payErr = ErrPaymentFailed("the card was declined")
	default:
		failed := model.PaymentFailed
		session.PaymentStatus = &failed
		payErr = ErrPaymentFailed("the payment gateway is unavailable")
	}

	if err := s.checkIns.UpdateVersioned(ctx, session); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrConcurrentUpdate()
		}
		logger.Error("payment update failed", zap.String("check_in_id", session.ID), zap.Error(err))
		return nil, ErrInternal()
	}
	if payErr != nil {
		return nil, payErr
	}
	logger.Info("excess baggage fee paid",
		zap.String("check_in_id", session.ID),
		zap.Float64("amount", amount),
		zap.Stringp("reference", session.PaymentReference))
	return s.buildView(ctx, session, booking)
}

// Complete finishes check-in: the held seat is confirmed, the session
// goes COMPLETED, the booking closes and a boarding pass is issued.
func (s *CheckInService) Complete(ctx context.Context, checkInID, passengerID string) (*CheckInView, *Error) {
	now := s.now()
	session, booking, serr := loadOwnedActiveSession(ctx, s.checkIns, s.bookings, checkInID, passengerID, now)
	if serr != nil {
		return nil, serr
	}

	if session.IsWaitingPayment() {
		owed := 0.0
		if session.ExcessBaggageFee != nil {
			owed = *session.ExcessBaggageFee
		}
		return nil, ErrPaymentRequired(owed)
	}
	if session.SeatID == nil {
		return nil, ErrValidation("A seat must be selected before completing check-in")
	}

	seat, serr := s.seatSvc.Confirm(ctx, *session.SeatID, passengerID)
	if serr != nil {
		if serr.Code == "SEAT_HOLD_EXPIRED" {
			// The seat went back to the pool; detach it so the session
			// does not point at a seat it no longer holds.
			session.SeatID = nil
			session.Touch(now, s.sessionTimeout)
			if uerr := s.checkIns.UpdateVersioned(ctx, session); uerr != nil && !errors.Is(uerr, repository.ErrVersionConflict) {
				logger.Error("detaching expired seat failed", zap.String("check_in_id", session.ID), zap.Error(uerr))
			}
		}
		return nil, serr
	}

	session.Status = model.CheckInCompleted
	session.CompletedAt = &now
	session.LastActivityAt = now
	if err := s.checkIns.UpdateVersioned(ctx, session); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrConcurrentUpdate()
		}
		logger.Error("completing session failed", zap.String("check_in_id", session.ID), zap.Error(err))
		return nil, ErrInternal()
	}

	if err := s.bookings.UpdateStatus(ctx, booking.ID, model.BookingCompleted); err != nil {
		logger.Warn("closing booking failed", zap.String("booking_id", booking.ID), zap.Error(err))
	}

	view, serr := s.buildView(ctx, session, booking)
	if serr != nil {
		return nil, serr
	}

	pass, perr := s.passes.Generate(ctx, session, booking)
	if perr != nil {
		// Check-in stands; the pass can be regenerated via its endpoint.
		logger.Error("boarding pass generation failed",
			zap.String("check_in_id", session.ID), zap.String("code", perr.Code))
	} else {
		view.BoardingPass = pass
	}

	s.publishCompleted(ctx, session, booking, seat)
	logger.Info("check-in completed",
		zap.String("check_in_id", session.ID),
		zap.String("booking_reference", booking.BookingReference),
		zap.String("seat", seat.SeatNumber))
	return view, nil
}

func (s *CheckInService) publishCompleted(ctx context.Context, session *model.CheckInSession, booking *model.Booking, seat *model.Seat) {
	if s.publish == nil {
		return
	}
	flight, err := s.flights.GetByID(ctx, booking.FlightID)
	if err != nil {
		return
	}
	passenger, err := s.passengers.GetByID(ctx, booking.PassengerID)
	if err != nil {
		return
	}
	ev := queue.CheckInCompletedEvent{
		CheckInID:        session.ID,
		BookingID:        booking.ID,
		BookingReference: booking.BookingReference,
		PassengerID:      passenger.ID,
		PassengerName:    passenger.FirstName + " " + passenger.LastName,
		FlightID:         flight.ID,
		FlightNumber:     flight.FlightNumber,
		Origin:           flight.Origin,
		Destination:      flight.Destination,
		DepartureTime:    flight.DepartureTime.UTC().Format(time.RFC3339),
		SeatNumber:       seat.SeatNumber,
		SeatClass:        seat.SeatClass,
		CompletedAt:      s.now().UTC().Format(time.RFC3339),
	}
	if session.BaggageWeightKg != nil {
		ev.BaggageWeightKg = *session.BaggageWeightKg
	}
	if session.ExcessBaggageFee != nil {
		ev.ExcessBaggageFee = *session.ExcessBaggageFee
	}
	// Fire and forget; the publisher logs its own failures.
	_ = s.publish(ctx, ev)
}

// Cancel abandons the session and frees any held seat. Cancelling an
// already-cancelled session is a no-op.
func (s *CheckInService) Cancel(ctx context.Context, checkInID, passengerID string) (*CheckInView, *Error) {
	now := s.now()
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
	if session.Status == model.CheckInCancelled {
		return s.buildView(ctx, session, booking)
	}
	if session.IsCompleted() {
		return nil, ErrInvalidSeatState("Check-in has already been completed")
	}
	if session.Status == model.CheckInExpired || session.IsExpired(now) {
		if session.Status != model.CheckInExpired {
			session.Status = model.CheckInExpired
			if uerr := s.checkIns.UpdateVersioned(ctx, session); uerr != nil && !errors.Is(uerr, repository.ErrVersionConflict) {
				logger.Error("expiring session failed", zap.String("check_in_id", session.ID), zap.Error(uerr))
			}
		}
		return nil, ErrSessionExpired()
	}

	if session.SeatID != nil {
		s.freeSeatOnTermination(ctx, *session.SeatID, passengerID, auditCheckInCancel)
	}

	session.Status = model.CheckInCancelled
	session.SeatID = nil
	session.LastActivityAt = now
	if err := s.checkIns.UpdateVersioned(ctx, session); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrConcurrentUpdate()
		}
		logger.Error("cancelling session failed", zap.String("check_in_id", session.ID), zap.Error(err))
		return nil, ErrInternal()
	}
	logger.Info("check-in cancelled", zap.String("check_in_id", session.ID))
	return s.buildView(ctx, session, booking)
}

// freeSeatOnTermination demotes the session's held seat when the
// session ends without completing. Best effort; an untouched hold would
// lapse on its own anyway.
func (s *CheckInService) freeSeatOnTermination(ctx context.Context, seatID, passengerID, reason string) {
	seat, err := s.seats.GetByID(ctx, seatID)
	if err != nil {
		logger.Warn("seat lookup on termination failed", zap.String("seat_id", seatID), zap.Error(err))
		return
	}
	if !seat.IsHeldBy(passengerID) {
		return
	}
	previous := seat.Status
	seat.Status = model.SeatAvailable
	seat.HeldByPassengerID = nil
	seat.HeldUntil = nil
	if err := s.seats.UpdateVersioned(ctx, seat); err != nil {
		if !errors.Is(err, repository.ErrVersionConflict) {
			logger.Warn("freeing seat on termination failed", zap.String("seat_id", seatID), zap.Error(err))
		}
		return
	}
	if err := s.locker.ForceRelease(ctx, seat.FlightID, seat.SeatNumber); err != nil {
		logger.Warn("lock cleanup on termination failed", zap.String("seat_id", seatID), zap.Error(err))
	}
	s.seatSvc.appendAudit(ctx, seat, previous, reason, &passengerID)
	s.seatSvc.cache.Invalidate(ctx, seat.FlightID)
}

// ExpireSessions sweeps sessions whose sliding deadline lapsed. Each is
// flipped to EXPIRED and its seat's advisory lock force-released; the
// seat row itself is left to the hold sweep, which owns that demotion.
func (s *CheckInService) ExpireSessions(ctx context.Context, limit int) (int, error) {
	now := s.now()
	sessions, err := s.checkIns.FindExpired(ctx, now, limit)
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range sessions {
		session := sessions[i]
		if !session.IsExpired(now) {
			continue
		}
		session.Status = model.CheckInExpired
		if err := s.checkIns.UpdateVersioned(ctx, &session); err != nil {
			if !errors.Is(err, repository.ErrVersionConflict) {
				logger.Error("session expiry sweep write failed",
					zap.String("check_in_id", session.ID), zap.Error(err))
			}
			continue
		}
		expired++

		if session.SeatID != nil {
			if seat, serr := s.seats.GetByID(ctx, *session.SeatID); serr == nil && seat.IsHeld() {
				if lerr := s.locker.ForceRelease(ctx, seat.FlightID, seat.SeatNumber); lerr != nil {
					logger.Warn("lock cleanup for expired session failed",
						zap.String("seat_id", seat.ID), zap.Error(lerr))
				}
			}
		}
	}
	return expired, nil
}
