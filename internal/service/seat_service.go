package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/skyhigh/airline-checkin/internal/lock"
	"github.com/skyhigh/airline-checkin/internal/logger"
	"github.com/skyhigh/airline-checkin/internal/model"
	"github.com/skyhigh/airline-checkin/internal/repository"
)

// Audit reasons recorded on seat transitions.
const (
	auditSeatHeld       = "SEAT_HELD"
	auditHoldExtended   = "HOLD_EXTENDED"
	auditSeatReleased   = "SEAT_RELEASED"
	auditSeatConfirmed  = "SEAT_CONFIRMED"
	auditHoldExpired    = "HOLD_EXPIRED"
	auditSeatSwapped    = "SEAT_SWAPPED"
	auditCheckInCancel  = "CHECK_IN_CANCELLED"
	auditSessionExpired = "SESSION_EXPIRED"
)

// SeatService owns the seat state machine. Every transition follows the
// same shape: read the durable row, take the advisory lock where a new
// hold is being established, then write through the version guard. The
// guarded write is the only step that decides a race; everything before
// it just keeps losers cheap.
type SeatService struct {
	seats    SeatStore
	flights  FlightStore
	checkIns CheckInStore
	bookings BookingStore
	audit    AuditStore
	locker   lock.SeatLocker
	cache    SeatMapCacher

	holdDuration   time.Duration
	sessionTimeout time.Duration

	now func() time.Time
}

// NewSeatService constructs a SeatService.
func NewSeatService(
	seats SeatStore,
	flights FlightStore,
	checkIns CheckInStore,
	bookings BookingStore,
	audit AuditStore,
	locker lock.SeatLocker,
	cache SeatMapCacher,
	holdDuration, sessionTimeout time.Duration,
) *SeatService {
	return &SeatService{
		seats:          seats,
		flights:        flights,
		checkIns:       checkIns,
		bookings:       bookings,
		audit:          audit,
		locker:         locker,
		cache:          cache,
		holdDuration:   holdDuration,
		sessionTimeout: sessionTimeout,
		now:            time.Now,
	}
}

// effectiveHoldDuration clamps a per-request override to the configured
// hold duration. Callers may shorten their hold, never lengthen it.
func (s *SeatService) effectiveHoldDuration(overrideSeconds int) time.Duration {
	if overrideSeconds <= 0 {
		return s.holdDuration
	}
	d := time.Duration(overrideSeconds) * time.Second
	if d > s.holdDuration {
		return s.holdDuration
	}
	if d < 5*time.Second {
		return 5 * time.Second
	}
	return d
}

func (s *SeatService) appendAudit(ctx context.Context, seat *model.Seat, previous model.SeatStatus, reason string, passengerID *string) {
	err := s.audit.Append(ctx, &model.SeatAuditLog{
		ID:                   newID(),
		SeatID:               seat.ID,
		FlightID:             seat.FlightID,
		SeatNumber:           seat.SeatNumber,
		PreviousStatus:       string(previous),
		NewStatus:            string(seat.Status),
		ChangedByPassengerID: passengerID,
		ChangeReason:         reason,
	})
	if err != nil {
		// The transition itself already committed; losing one audit row
		// is logged, not surfaced.
		logger.Warn("seat audit append failed",
			zap.String("seat_id", seat.ID), zap.String("reason", reason), zap.Error(err))
	}
}

func (s *SeatService) getSeat(ctx context.Context, seatID string) (*model.Seat, *Error) {
	seat, err := s.seats.GetByID(ctx, seatID)
	if err != nil {
		if errors.Is(err, repository.ErrSeatNotFound) {
			return nil, ErrNotFound("Seat")
		}
		logger.Error("seat lookup failed", zap.String("seat_id", seatID), zap.Error(err))
		return nil, ErrInternal()
	}
	return seat, nil
}

// loadOwnedSession fetches a session, verifies the passenger owns its
// booking, and enforces the sliding expiry before any other rule. An
// expired session is flipped to EXPIRED right here.
func (s *SeatService) loadOwnedSession(ctx context.Context, checkInID, passengerID string) (*model.CheckInSession, *model.Booking, *Error) {
	return loadOwnedActiveSession(ctx, s.checkIns, s.bookings, checkInID, passengerID, s.now())
}

// loadOwnedActiveSession is the shared gate in front of every
// activity-bearing session operation: ownership, terminal-state and
// expiry checks, in that order. Expiry wins over all business rules, so
// an expired session is flipped to EXPIRED here and reported as such.
func loadOwnedActiveSession(ctx context.Context, checkIns CheckInStore, bookings BookingStore, checkInID, passengerID string, now time.Time) (*model.CheckInSession, *model.Booking, *Error) {
	session, err := checkIns.GetByID(ctx, checkInID)
	if err != nil {
		if errors.Is(err, repository.ErrCheckInNotFound) {
			return nil, nil, ErrNotFound("Check-in session")
		}
		logger.Error("check-in lookup failed", zap.String("check_in_id", checkInID), zap.Error(err))
		return nil, nil, ErrInternal()
	}
	booking, err := bookings.GetByID(ctx, session.BookingID)
	if err != nil {
		logger.Error("booking lookup failed", zap.String("booking_id", session.BookingID), zap.Error(err))
		return nil, nil, ErrInternal()
	}
	if booking.PassengerID != passengerID {
		return nil, nil, ErrFlightAccessDenied()
	}
	if session.IsTerminal() {
		if session.Status == model.CheckInExpired {
			return nil, nil, ErrSessionExpired()
		}
		return nil, nil, ErrInvalidSeatState("Check-in session is no longer active")
	}
	if session.IsExpired(now) {
		session.Status = model.CheckInExpired
		if err := checkIns.UpdateVersioned(ctx, session); err != nil && !errors.Is(err, repository.ErrVersionConflict) {
			logger.Error("expiring session failed", zap.String("check_in_id", session.ID), zap.Error(err))
		}
		return nil, nil, ErrSessionExpired()
	}
	return session, booking, nil
}

func remainingHoldSeconds(seat *model.Seat, now time.Time) int {
	if seat.HeldUntil == nil {
		return 0
	}
	rem := int(seat.HeldUntil.Sub(now).Seconds())
	if rem < 0 {
		return 0
	}
	return rem
}

// Hold places or refreshes a hold on a seat for the passenger's active
// check-in session. Holding a new seat while the session already has a
// different held seat releases the old one first, so a session never
// pins two seats.
func (s *SeatService) Hold(ctx context.Context, seatID, passengerID, checkInID string, holdSeconds int) (*model.Seat, *Error) {
	now := s.now()
	dur := s.effectiveHoldDuration(holdSeconds)

	seat, serr := s.getSeat(ctx, seatID)
	if serr != nil {
		return nil, serr
	}
	session, booking, serr := s.loadOwnedSession(ctx, checkInID, passengerID)
	if serr != nil {
		return nil, serr
	}
	if booking.FlightID != seat.FlightID {
		return nil, ErrValidation("Seat does not belong to the flight being checked in")
	}

	if seat.IsConfirmed() {
		return nil, ErrSeatAlreadyConfirmed(seat.SeatNumber)
	}

	// Idempotent re-hold: the current holder refreshes their own hold
	// window instead of failing.
	if seat.IsHeldBy(passengerID) && !seat.IsHoldExpired(now) {
		return s.extendHold(ctx, seat, session, passengerID, now, dur)
	}

	if seat.IsHeld() && !seat.IsHoldExpired(now) {
		return nil, ErrSeatAlreadyHeld(seat.SeatNumber, remainingHoldSeconds(seat, now))
	}

	// The row says the previous hold lapsed; a lock entry that outlived
	// it (clock skew, missed cleanup) must not block the takeover.
	if seat.IsHeld() && seat.IsHoldExpired(now) {
		if err := s.locker.ForceRelease(ctx, seat.FlightID, seat.SeatNumber); err != nil {
			logger.Warn("stale lock cleanup failed", zap.String("seat_id", seat.ID), zap.Error(err))
		}
	}

	// Advisory lock. Store failures count as "not acquired": when in
	// doubt, nobody gets the seat this round.
	ok, err := s.locker.Acquire(ctx, seat.FlightID, seat.SeatNumber, passengerID, dur)
	if err != nil {
		logger.Warn("seat lock store unavailable", zap.String("seat_id", seat.ID), zap.Error(err))
		ok = false
	}
	if !ok {
		return nil, ErrSeatAlreadyHeld(seat.SeatNumber, int(dur.Seconds()))
	}

	// One held seat per session: drop the previously held one.
	if session.SeatID != nil && *session.SeatID != seat.ID {
		s.releaseForSwap(ctx, *session.SeatID, passengerID)
	}

	previous := seat.Status
	until := now.Add(dur)
	seat.Status = model.SeatHeld
	seat.HeldByPassengerID = &passengerID
	seat.HeldUntil = &until
	seat.ConfirmedByPassengerID = nil

	if err := s.seats.UpdateVersioned(ctx, seat); err != nil {
		if _, rerr := s.locker.Release(ctx, seat.FlightID, seat.SeatNumber, passengerID); rerr != nil {
			logger.Warn("seat lock release after lost race failed", zap.String("seat_id", seat.ID), zap.Error(rerr))
		}
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrConcurrentUpdate()
		}
		logger.Error("seat hold write failed", zap.String("seat_id", seat.ID), zap.Error(err))
		return nil, ErrInternal()
	}

	session.SeatID = &seat.ID
	session.Touch(now, s.sessionTimeout)
	if err := s.checkIns.UpdateVersioned(ctx, session); err != nil && !errors.Is(err, repository.ErrVersionConflict) {
		logger.Error("attaching seat to session failed",
			zap.String("check_in_id", session.ID), zap.Error(err))
	}

	reason := auditSeatHeld
	if previous == model.SeatHeld {
		reason = auditSeatSwapped
	}
	s.appendAudit(ctx, seat, previous, reason, &passengerID)
	s.cache.Invalidate(ctx, seat.FlightID)
	return seat, nil
}

func (s *SeatService) extendHold(ctx context.Context, seat *model.Seat, session *model.CheckInSession, passengerID string, now time.Time, dur time.Duration) (*model.Seat, *Error) {
	until := now.Add(dur)
	seat.HeldUntil = &until
	if err := s.seats.UpdateVersioned(ctx, seat); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrConcurrentUpdate()
		}
		logger.Error("hold extension write failed", zap.String("seat_id", seat.ID), zap.Error(err))
		return nil, ErrInternal()
	}
	if _, err := s.locker.Acquire(ctx, seat.FlightID, seat.SeatNumber, passengerID, dur); err != nil {
		logger.Warn("hold extension lock refresh failed", zap.String("seat_id", seat.ID), zap.Error(err))
	}

	session.Touch(now, s.sessionTimeout)
	if err := s.checkIns.UpdateVersioned(ctx, session); err != nil && !errors.Is(err, repository.ErrVersionConflict) {
		logger.Error("session activity refresh failed", zap.String("check_in_id", session.ID), zap.Error(err))
	}

	s.appendAudit(ctx, seat, model.SeatHeld, auditHoldExtended, &passengerID)
	s.cache.Invalidate(ctx, seat.FlightID)
	return seat, nil
}

// releaseForSwap demotes the session's previously held seat when the
// passenger moves to a different one. Best effort: a failure leaves the
// old hold to expire on its own.
func (s *SeatService) releaseForSwap(ctx context.Context, seatID, passengerID string) {
	seat, err := s.seats.GetByID(ctx, seatID)
	if err != nil {
		logger.Warn("previous seat lookup failed during swap", zap.String("seat_id", seatID), zap.Error(err))
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
		logger.Warn("previous seat release failed during swap", zap.String("seat_id", seatID), zap.Error(err))
		return
	}
	if _, err := s.locker.Release(ctx, seat.FlightID, seat.SeatNumber, passengerID); err != nil {
		logger.Warn("previous seat lock release failed during swap", zap.String("seat_id", seatID), zap.Error(err))
	}
	s.appendAudit(ctx, seat, previous, auditSeatSwapped, &passengerID)
	s.cache.Invalidate(ctx, seat.FlightID)
}

// Release gives up the passenger's hold. Releasing a seat that is not
// held, confirmed seats included, is a no-op so retried releases stay
// safe.
func (s *SeatService) Release(ctx context.Context, seatID, passengerID string) (*model.Seat, *Error) {
	seat, serr := s.getSeat(ctx, seatID)
	if serr != nil {
		return nil, serr
	}
	if !seat.IsHeld() {
		return seat, nil
	}
	if !seat.IsHeldBy(passengerID) {
		return nil, ErrInvalidSeatState("Seat is held by another passenger")
	}

	previous := seat.Status
	seat.Status = model.SeatAvailable
	seat.HeldByPassengerID = nil
	seat.HeldUntil = nil
	if err := s.seats.UpdateVersioned(ctx, seat); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrConcurrentUpdate()
		}
		logger.Error("seat release write failed", zap.String("seat_id", seat.ID), zap.Error(err))
		return nil, ErrInternal()
	}
	if _, err := s.locker.Release(ctx, seat.FlightID, seat.SeatNumber, passengerID); err != nil {
		logger.Warn("seat lock release failed", zap.String("seat_id", seat.ID), zap.Error(err))
	}

	s.detachFromSession(ctx, seat, passengerID)
	s.appendAudit(ctx, seat, previous, auditSeatReleased, &passengerID)
	s.cache.Invalidate(ctx, seat.FlightID)
	return seat, nil
}

// detachFromSession clears the seat from the passenger's active session
// after an explicit release.
func (s *SeatService) detachFromSession(ctx context.Context, seat *model.Seat, passengerID string) {
	booking, err := s.bookings.GetActiveByPassengerAndFlight(ctx, passengerID, seat.FlightID)
	if err != nil {
		return
	}
	session, err := s.checkIns.GetActiveByBooking(ctx, booking.ID)
	if err != nil {
		return
	}
	if session.SeatID == nil || *session.SeatID != seat.ID {
		return
	}
	session.SeatID = nil
	session.Touch(s.now(), s.sessionTimeout)
	if err := s.checkIns.UpdateVersioned(ctx, session); err != nil && !errors.Is(err, repository.ErrVersionConflict) {
		logger.Warn("detaching seat from session failed", zap.String("check_in_id", session.ID), zap.Error(err))
	}
}

// Confirm makes the passenger's hold permanent. It is terminal and not
// idempotent: a second confirm fails even for the confirming passenger.
// A hold that silently expired is healed to AVAILABLE on the spot and
// reported as expired so the passenger can immediately re-hold.
func (s *SeatService) Confirm(ctx context.Context, seatID, passengerID string) (*model.Seat, *Error) {
	now := s.now()

	seat, serr := s.getSeat(ctx, seatID)
	if serr != nil {
		return nil, serr
	}
	if seat.IsConfirmed() {
		return nil, ErrSeatAlreadyConfirmed(seat.SeatNumber)
	}
	if !seat.IsHeld() {
		return nil, ErrInvalidSeatState("Seat must be held before it can be confirmed")
	}
	if !seat.IsHeldBy(passengerID) {
		return nil, ErrInvalidSeatState("Seat is held by another passenger")
	}
	if seat.IsHoldExpired(now) {
		s.demoteExpiredHold(ctx, seat, auditHoldExpired)
		return nil, ErrSeatHoldExpired(seat.SeatNumber)
	}

	previous := seat.Status
	seat.Status = model.SeatConfirmed
	seat.ConfirmedByPassengerID = &passengerID
	seat.HeldByPassengerID = nil
	seat.HeldUntil = nil
	if err := s.seats.UpdateVersioned(ctx, seat); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrInvalidSeatState("Seat was modified by another process. Please try again.")
		}
		logger.Error("seat confirm write failed", zap.String("seat_id", seat.ID), zap.Error(err))
		return nil, ErrInternal()
	}
	if _, err := s.locker.Release(ctx, seat.FlightID, seat.SeatNumber, passengerID); err != nil {
		logger.Warn("seat lock release after confirm failed", zap.String("seat_id", seat.ID), zap.Error(err))
	}

	s.appendAudit(ctx, seat, previous, auditSeatConfirmed, &passengerID)
	s.cache.Invalidate(ctx, seat.FlightID)
	return seat, nil
}

// demoteExpiredHold returns a lapsed HELD seat to the pool. Used both by
// Confirm's self-heal path and the background sweep. A lost version race
// means someone else already transitioned the seat, which is fine.
func (s *SeatService) demoteExpiredHold(ctx context.Context, seat *model.Seat, reason string) {
	previous := seat.Status
	seat.Status = model.SeatAvailable
	seat.HeldByPassengerID = nil
	seat.HeldUntil = nil
	if err := s.seats.UpdateVersioned(ctx, seat); err != nil {
		if !errors.Is(err, repository.ErrVersionConflict) {
			logger.Error("expired hold demotion failed", zap.String("seat_id", seat.ID), zap.Error(err))
		}
		return
	}
	if err := s.locker.ForceRelease(ctx, seat.FlightID, seat.SeatNumber); err != nil {
		logger.Warn("expired hold lock cleanup failed", zap.String("seat_id", seat.ID), zap.Error(err))
	}
	s.appendAudit(ctx, seat, previous, reason, nil)
	s.cache.Invalidate(ctx, seat.FlightID)
}

// ExpireHolds sweeps HELD seats whose window lapsed and returns how many
// were demoted. Per-seat failures are logged and skipped so one bad row
// cannot stall the sweep.
func (s *SeatService) ExpireHolds(ctx context.Context, limit int) (int, error) {
	now := s.now()
	seats, err := s.seats.FindExpiredHolds(ctx, now, limit)
	if err != nil {
		return 0, err
	}
	demoted := 0
	for i := range seats {
		seat := seats[i]
		if !seat.IsHoldExpired(now) {
			continue
		}
		before := seat.Version
		s.demoteExpiredHold(ctx, &seat, auditHoldExpired)
		if seat.Version > before {
			demoted++
		}
	}
	return demoted, nil
}
