package service

import (
	"time"

	"github.com/skyhigh/airline-checkin/internal/lock"
	"github.com/skyhigh/airline-checkin/internal/model"
)

// Fixed fixture ids used across the service tests.
const (
	flightID1  = "FL-1"
	paxAlice   = "PAX-ALICE"
	paxBruno   = "PAX-BRUNO"
	bookingA   = "BK-ALICE"
	bookingB   = "BK-BRUNO"
	seat12A    = "SEAT-12A"
	seat12B    = "SEAT-12B"
	checkInA   = "CHK-ALICE"
	testSecret = "test-secret"
)

var testBase = time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

// testEnv wires the services against in-memory stores with a manually
// advanced clock.
type testEnv struct {
	clock time.Time

	seats      *memSeats
	checkIns   *memCheckIns
	bookings   *memBookings
	flights    *memFlights
	passengers *memPassengers
	audit      *memAudit
	passes     *memPasses
	tokens     *memTokens
	cache      *memCache
	locker     *lock.MemorySeatLock
	events     *capturedEvents

	seatSvc    *SeatService
	checkInSvc *CheckInService
	passSvc    *BoardingPassService
	authSvc    *AuthService
}

func newTestEnv() *testEnv {
	env := &testEnv{clock: testBase}
	now := func() time.Time { return env.clock }

	// FL-1 departs in six hours: check-in window (24h..1h) is open.
	env.flights = newMemFlights(model.Flight{
		ID:            flightID1,
		FlightNumber:  "SH101",
		Origin:        "AMS",
		Destination:   "LIS",
		DepartureTime: testBase.Add(6 * time.Hour),
		ArrivalTime:   testBase.Add(9 * time.Hour),
		AircraftType:  "A320",
		Status:        "SCHEDULED",
		Gate:          "D7",
	})
	env.passengers = newMemPassengers(
		model.Passenger{ID: paxAlice, FirstName: "Alice", LastName: "Janssen", Email: "alice@example.com"},
		model.Passenger{ID: paxBruno, FirstName: "Bruno", LastName: "Costa", Email: "bruno@example.com"},
	)
	env.bookings = newMemBookings(
		model.Booking{ID: bookingA, BookingReference: "ABC123", PassengerID: paxAlice, FlightID: flightID1, Status: model.BookingActive},
		model.Booking{ID: bookingB, BookingReference: "DEF456", PassengerID: paxBruno, FlightID: flightID1, Status: model.BookingActive},
	)
	env.seats = newMemSeats(
		model.Seat{ID: seat12A, FlightID: flightID1, SeatNumber: "12A", SeatClass: "ECONOMY", Status: model.SeatAvailable},
		model.Seat{ID: seat12B, FlightID: flightID1, SeatNumber: "12B", SeatClass: "ECONOMY", Status: model.SeatAvailable},
	)
	env.checkIns = newMemCheckIns()
	env.audit = &memAudit{}
	env.passes = newMemPasses()
	env.tokens = newMemTokens()
	env.cache = newMemCache()
	env.locker = lock.NewMemorySeatLock()
	env.events = &capturedEvents{}

	env.seatSvc = NewSeatService(
		env.seats, env.flights, env.checkIns, env.bookings, env.audit,
		env.locker, env.cache,
		2*time.Minute, 10*time.Minute,
	)
	env.seatSvc.now = now

	weights := NewWeightService(25, 200)
	payments := NewPaymentService()

	env.passSvc = NewBoardingPassService(
		env.passes, env.checkIns, env.bookings, env.passengers, env.flights, env.seats,
	)
	env.passSvc.now = now

	env.checkInSvc = NewCheckInService(
		env.checkIns, env.bookings, env.flights, env.passengers, env.seats,
		env.seatSvc, weights, payments, env.passSvc,
		env.locker, env.events.publish,
		10*time.Minute, 24, 1,
	)
	env.checkInSvc.now = now

	env.authSvc = NewAuthService(
		env.bookings, env.passengers, env.flights, env.tokens,
		testSecret, 30, 7, 24, 1,
	)
	env.authSvc.now = now

	return env
}

// advance moves the test clock forward.
func (e *testEnv) advance(d time.Duration) { e.clock = e.clock.Add(d) }

// startSession opens a check-in session for Alice with a fixed id.
func (e *testEnv) startSession(id, bookingID string) *model.CheckInSession {
	session := &model.CheckInSession{
		ID:        id,
		BookingID: bookingID,
		Status:    model.CheckInInProgress,
		StartedAt: e.clock,
	}
	session.Touch(e.clock, 10*time.Minute)
	_ = e.checkIns.Create(nil, session)
	return session
}
