package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyhigh/airline-checkin/internal/model"
)

func TestCheckInService_StartOpensSession(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	view, serr := env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.Nil(t, serr)
	assert.Equal(t, string(model.CheckInInProgress), view.Status)
	assert.Equal(t, "ABC123", view.BookingReference)
	assert.Equal(t, env.clock.Add(10*time.Minute), view.ExpiresAt)
	assert.Equal(t, []string{StepSelectSeat, StepAddBaggage}, view.NextSteps)
	require.NotNil(t, view.Flight)
	assert.True(t, view.Flight.CheckInOpen)
}

func TestCheckInService_StartWithoutBooking(t *testing.T) {
	env := newTestEnv()

	_, serr := env.checkInSvc.Start(context.Background(), "PAX-STRANGER", flightID1)
	require.NotNil(t, serr)
	assert.Equal(t, "FLIGHT_ACCESS_DENIED", serr.Code)
}

func TestCheckInService_StartBeforeWindowOpens(t *testing.T) {
	env := newTestEnv()
	// Window opens 24h before the 15:00 departure; rewind to 20h before
	// the base instant, i.e. 2h before it opens.
	env.advance(-20 * time.Hour)

	_, serr := env.checkInSvc.Start(context.Background(), paxAlice, flightID1)
	require.NotNil(t, serr)
	assert.Equal(t, "CHECK_IN_NOT_OPEN", serr.Code)
	assert.True(t, serr.Retryable)
	require.NotNil(t, serr.RetryAfterSeconds)
	assert.Equal(t, 2*60*60, *serr.RetryAfterSeconds)
}

func TestCheckInService_StartAfterWindowCloses(t *testing.T) {
	env := newTestEnv()
	// Window closes 1h before departure (base+5h).
	env.advance(5*time.Hour + 30*time.Minute)

	_, serr := env.checkInSvc.Start(context.Background(), paxAlice, flightID1)
	require.NotNil(t, serr)
	assert.Equal(t, "CHECK_IN_WINDOW_CLOSED", serr.Code)
	assert.False(t, serr.Retryable)
}

func TestCheckInService_StartRejectsActiveSession(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	first, serr := env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.Nil(t, serr)

	_, serr = env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.NotNil(t, serr)
	assert.Equal(t, "CHECK_IN_ALREADY_EXISTS", serr.Code)

	// Same answer while the session waits on a baggage fee.
	_, serr = env.checkInSvc.AddBaggage(ctx, first.ID, paxAlice, 30)
	require.Nil(t, serr)
	_, serr = env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.NotNil(t, serr)
	assert.Equal(t, "CHECK_IN_ALREADY_EXISTS", serr.Code)
}

func TestCheckInService_StartAfterExpiredSessionOpensFresh(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	first, serr := env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.Nil(t, serr)

	env.advance(11 * time.Minute)

	second, serr := env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.Nil(t, serr)
	assert.NotEqual(t, first.ID, second.ID)

	stale, err := env.checkIns.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CheckInExpired, stale.Status)
}

func TestCheckInService_StartAfterCompletedCheckIn(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	done := env.clock
	completed := &model.CheckInSession{
		ID:          "CHK-DONE",
		BookingID:   bookingA,
		Status:      model.CheckInCompleted,
		StartedAt:   env.clock.Add(-time.Hour),
		CompletedAt: &done,
	}
	require.NoError(t, env.checkIns.Create(ctx, completed))

	_, serr := env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.NotNil(t, serr)
	assert.Equal(t, "CHECK_IN_ALREADY_EXISTS", serr.Code)
}

func TestCheckInService_SlidingExpiry(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	view, serr := env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.Nil(t, serr)
	id := view.ID

	// Activity at minute 9 pushes the deadline to minute 19.
	env.advance(9 * time.Minute)
	_, serr = env.checkInSvc.AddBaggage(ctx, id, paxAlice, 18)
	require.Nil(t, serr)

	env.advance(9 * time.Minute)
	view, serr = env.checkInSvc.Get(ctx, id, paxAlice)
	require.Nil(t, serr)
	assert.Equal(t, string(model.CheckInInProgress), view.Status)

	// No further activity: minute 20 is past the slid deadline. A
	// read reflects the expiry without sliding anything.
	env.advance(2 * time.Minute)
	view, serr = env.checkInSvc.Get(ctx, id, paxAlice)
	require.Nil(t, serr)
	assert.Equal(t, string(model.CheckInExpired), view.Status)

	_, serr = env.checkInSvc.AddBaggage(ctx, id, paxAlice, 20)
	require.NotNil(t, serr)
	assert.Equal(t, "SESSION_EXPIRED", serr.Code)
}

func TestCheckInService_ExpiryBeatsBusinessRules(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	view, serr := env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.Nil(t, serr)
	_, serr = env.checkInSvc.AddBaggage(ctx, view.ID, paxAlice, 30)
	require.Nil(t, serr)

	env.advance(11 * time.Minute)

	// The session is lapsed, so payment is not even evaluated.
	_, serr = env.checkInSvc.Pay(ctx, view.ID, paxAlice, 1000, "INR", "")
	require.NotNil(t, serr)
	assert.Equal(t, "SESSION_EXPIRED", serr.Code)
}

func TestCheckInService_BaggageFee(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	start, serr := env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.Nil(t, serr)

	view, serr := env.checkInSvc.AddBaggage(ctx, start.ID, paxAlice, 30)
	require.Nil(t, serr)
	assert.Equal(t, string(model.CheckInWaitingPayment), view.Status)
	require.NotNil(t, view.Baggage)
	assert.Equal(t, 5.0, view.Baggage.ExcessKg)
	assert.Equal(t, 1000.0, view.Baggage.Fee)
	require.NotNil(t, view.Payment)
	assert.Equal(t, model.PaymentPending, view.Payment.Status)
	assert.Contains(t, view.NextSteps, StepProcessPayment)

	// Re-declaring within the allowance clears the fee.
	view, serr = env.checkInSvc.AddBaggage(ctx, start.ID, paxAlice, 20)
	require.Nil(t, serr)
	assert.Equal(t, string(model.CheckInInProgress), view.Status)
	assert.False(t, view.Baggage.PaymentRequired)
	assert.Nil(t, view.Payment)
}

func TestCheckInService_CompleteBlockedByUnpaidFee(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	start, serr := env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.Nil(t, serr)
	_, serr = env.checkInSvc.AddBaggage(ctx, start.ID, paxAlice, 30)
	require.Nil(t, serr)

	_, serr = env.checkInSvc.Complete(ctx, start.ID, paxAlice)
	require.NotNil(t, serr)
	assert.Equal(t, "PAYMENT_REQUIRED", serr.Code)
	require.NotNil(t, serr.AmountDue)
	assert.Equal(t, 1000.0, *serr.AmountDue)
}

func TestCheckInService_Payment(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	start, serr := env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.Nil(t, serr)
	_, serr = env.checkInSvc.AddBaggage(ctx, start.ID, paxAlice, 30)
	require.Nil(t, serr)

	// Underpayment is rejected before touching the gateway.
	_, serr = env.checkInSvc.Pay(ctx, start.ID, paxAlice, 500, "INR", "")
	require.NotNil(t, serr)
	assert.Equal(t, "PAYMENT_REQUIRED", serr.Code)

	// A declined card keeps the session in WAITING_PAYMENT but still
	// counts as activity.
	env.advance(5 * time.Minute)
	_, serr = env.checkInSvc.Pay(ctx, start.ID, paxAlice, 1000.99, "INR", "")
	require.NotNil(t, serr)
	assert.Equal(t, "PAYMENT_FAILED", serr.Code)
	assert.True(t, serr.Retryable)

	view, serr := env.checkInSvc.Get(ctx, start.ID, paxAlice)
	require.Nil(t, serr)
	assert.Equal(t, string(model.CheckInWaitingPayment), view.Status)
	require.NotNil(t, view.Payment)
	assert.Equal(t, model.PaymentDeclined, view.Payment.Status)
	assert.Equal(t, env.clock.Add(10*time.Minute), view.ExpiresAt, "failed attempt still slides the deadline")

	// Paying the exact fee succeeds and reopens the session.
	view, serr = env.checkInSvc.Pay(ctx, start.ID, paxAlice, 1000, "INR", "pay-once-1")
	require.Nil(t, serr)
	assert.Equal(t, string(model.CheckInInProgress), view.Status)
	require.NotNil(t, view.Payment)
	assert.Equal(t, model.PaymentCompleted, view.Payment.Status)
	assert.NotNil(t, view.Payment.Reference)
}

func TestCheckInService_PayWithNothingDue(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	start, serr := env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.Nil(t, serr)

	_, serr = env.checkInSvc.Pay(ctx, start.ID, paxAlice, 100, "INR", "")
	require.NotNil(t, serr)
	assert.Equal(t, "VALIDATION_FAILED", serr.Code)
}

func TestCheckInService_CompleteRequiresSeat(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	start, serr := env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.Nil(t, serr)

	_, serr = env.checkInSvc.Complete(ctx, start.ID, paxAlice)
	require.NotNil(t, serr)
	assert.Equal(t, "VALIDATION_FAILED", serr.Code)
}

func TestCheckInService_CompleteHappyPath(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	start, serr := env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.Nil(t, serr)
	_, serr = env.seatSvc.Hold(ctx, seat12A, paxAlice, start.ID, 0)
	require.Nil(t, serr)

	view, serr := env.checkInSvc.Complete(ctx, start.ID, paxAlice)
	require.Nil(t, serr)
	assert.Equal(t, string(model.CheckInCompleted), view.Status)
	require.NotNil(t, view.CompletedAt)
	assert.Equal(t, []string{StepDownloadBoarding}, view.NextSteps)
	require.NotNil(t, view.BoardingPass)
	assert.Equal(t, "12A", view.BoardingPass.SeatNumber)

	seat, err := env.seats.GetByID(ctx, seat12A)
	require.NoError(t, err)
	assert.Equal(t, model.SeatConfirmed, seat.Status)

	booking, err := env.bookings.GetByID(ctx, bookingA)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCompleted, booking.Status)

	require.Len(t, env.events.events, 1)
	ev := env.events.events[0]
	assert.Equal(t, start.ID, ev.CheckInID)
	assert.Equal(t, "ABC123", ev.BookingReference)
	assert.Equal(t, "SH101", ev.FlightNumber)
	assert.Equal(t, "12A", ev.SeatNumber)
	assert.Equal(t, "Alice Janssen", ev.PassengerName)
}

func TestCheckInService_CompleteWithLapsedHold(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	start, serr := env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.Nil(t, serr)
	_, serr = env.seatSvc.Hold(ctx, seat12A, paxAlice, start.ID, 0)
	require.Nil(t, serr)

	// The 2 minute hold lapses while the 10 minute session survives.
	env.advance(3 * time.Minute)

	_, serr = env.checkInSvc.Complete(ctx, start.ID, paxAlice)
	require.NotNil(t, serr)
	assert.Equal(t, "SEAT_HOLD_EXPIRED", serr.Code)

	// The seat came off the session so the passenger re-selects.
	session, err := env.checkIns.GetByID(ctx, start.ID)
	require.NoError(t, err)
	assert.Nil(t, session.SeatID)
	assert.Equal(t, model.CheckInInProgress, session.Status)

	seat, err := env.seats.GetByID(ctx, seat12A)
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, seat.Status)
}

func TestCheckInService_CancelFreesSeat(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	start, serr := env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.Nil(t, serr)
	_, serr = env.seatSvc.Hold(ctx, seat12A, paxAlice, start.ID, 0)
	require.Nil(t, serr)

	view, serr := env.checkInSvc.Cancel(ctx, start.ID, paxAlice)
	require.Nil(t, serr)
	assert.Equal(t, string(model.CheckInCancelled), view.Status)

	seat, err := env.seats.GetByID(ctx, seat12A)
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, seat.Status)

	entries := env.audit.bySeat(seat12A)
	require.NotEmpty(t, entries)
	assert.Equal(t, "CHECK_IN_CANCELLED", entries[len(entries)-1].ChangeReason)

	// Cancelling again is a no-op.
	view, serr = env.checkInSvc.Cancel(ctx, start.ID, paxAlice)
	require.Nil(t, serr)
	assert.Equal(t, string(model.CheckInCancelled), view.Status)
}

func TestCheckInService_CancelCompletedCheckIn(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	start, serr := env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.Nil(t, serr)
	_, serr = env.seatSvc.Hold(ctx, seat12A, paxAlice, start.ID, 0)
	require.Nil(t, serr)
	_, serr = env.checkInSvc.Complete(ctx, start.ID, paxAlice)
	require.Nil(t, serr)

	_, serr = env.checkInSvc.Cancel(ctx, start.ID, paxAlice)
	require.NotNil(t, serr)
	assert.Equal(t, "INVALID_SEAT_STATE", serr.Code)
}

func TestCheckInService_ExpireSessionsSweep(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	start, serr := env.checkInSvc.Start(ctx, paxAlice, flightID1)
	require.Nil(t, serr)
	_, serr = env.seatSvc.Hold(ctx, seat12A, paxAlice, start.ID, 0)
	require.Nil(t, serr)

	env.advance(11 * time.Minute)

	expired, err := env.checkInSvc.ExpireSessions(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	session, err := env.checkIns.GetByID(ctx, start.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CheckInExpired, session.Status)

	// The session sweep only drops the lock; demoting the seat row is
	// the hold sweep's job.
	seat, err := env.seats.GetByID(ctx, seat12A)
	require.NoError(t, err)
	assert.Equal(t, model.SeatHeld, seat.Status)

	demoted, err := env.seatSvc.ExpireHolds(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, demoted)

	seat, err = env.seats.GetByID(ctx, seat12A)
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, seat.Status)
}

func TestCheckInService_FlightDetails(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	info, serr := env.checkInSvc.FlightDetails(ctx, paxAlice, flightID1)
	require.Nil(t, serr)
	assert.Equal(t, "SH101", info.FlightNumber)
	assert.True(t, info.CheckInOpen)
	assert.Equal(t, testBase.Add(6*time.Hour).Add(-24*time.Hour), info.CheckInOpensAt)
	assert.Equal(t, testBase.Add(6*time.Hour).Add(-time.Hour), info.CheckInClosesAt)

	_, serr = env.checkInSvc.FlightDetails(ctx, "PAX-STRANGER", flightID1)
	require.NotNil(t, serr)
	assert.Equal(t, "FLIGHT_ACCESS_DENIED", serr.Code)
}
