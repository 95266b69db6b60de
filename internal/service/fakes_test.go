package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/skyhigh/airline-checkin/internal/model"
	"github.com/skyhigh/airline-checkin/internal/queue"
	"github.com/skyhigh/airline-checkin/internal/repository"
)

// In-memory stores mirroring the repository semantics, including the
// version guard: a write against a stale version is rejected exactly
// like the SQL implementation rejects it.

type memSeats struct {
	mu sync.Mutex
	m  map[string]model.Seat
}

func newMemSeats(seats ...model.Seat) *memSeats {
	s := &memSeats{m: make(map[string]model.Seat)}
	for _, seat := range seats {
		s.m[seat.ID] = seat
	}
	return s
}

func (s *memSeats) GetByID(_ context.Context, id string) (*model.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat, ok := s.m[id]
	if !ok {
		return nil, repository.ErrSeatNotFound
	}
	return &seat, nil
}

func (s *memSeats) GetByFlight(_ context.Context, flightID string) ([]model.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Seat
	for _, seat := range s.m {
		if seat.FlightID == flightID {
			out = append(out, seat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (s *memSeats) UpdateVersioned(_ context.Context, seat *model.Seat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.m[seat.ID]
	if !ok || cur.Version != seat.Version {
		return repository.ErrVersionConflict
	}
	seat.Version++
	s.m[seat.ID] = *seat
	return nil
}

func (s *memSeats) FindExpiredHolds(_ context.Context, now time.Time, limit int) ([]model.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Seat
	for _, seat := range s.m {
		if seat.Status == model.SeatHeld && seat.HeldUntil != nil && !now.Before(*seat.HeldUntil) {
			out = append(out, seat)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type memCheckIns struct {
	mu sync.Mutex
	m  map[string]model.CheckInSession
}

func newMemCheckIns() *memCheckIns {
	return &memCheckIns{m: make(map[string]model.CheckInSession)}
}

func (s *memCheckIns) GetByID(_ context.Context, id string) (*model.CheckInSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.m[id]
	if !ok {
		return nil, repository.ErrCheckInNotFound
	}
	return &c, nil
}

func (s *memCheckIns) GetActiveByBooking(_ context.Context, bookingID string) (*model.CheckInSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.m {
		if c.BookingID == bookingID &&
			(c.Status == model.CheckInInProgress || c.Status == model.CheckInWaitingPayment) {
			out := c
			return &out, nil
		}
	}
	return nil, repository.ErrCheckInNotFound
}

func (s *memCheckIns) GetCompletedByBooking(_ context.Context, bookingID string) (*model.CheckInSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.m {
		if c.BookingID == bookingID && c.Status == model.CheckInCompleted {
			out := c
			return &out, nil
		}
	}
	return nil, repository.ErrCheckInNotFound
}

func (s *memCheckIns) Create(_ context.Context, c *model.CheckInSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[c.ID] = *c
	return nil
}

func (s *memCheckIns) UpdateVersioned(_ context.Context, c *model.CheckInSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.m[c.ID]
	if !ok || cur.Version != c.Version {
		return repository.ErrVersionConflict
	}
	c.Version++
	s.m[c.ID] = *c
	return nil
}

func (s *memCheckIns) FindExpired(_ context.Context, now time.Time, limit int) ([]model.CheckInSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.CheckInSession
	for _, c := range s.m {
		if (c.Status == model.CheckInInProgress || c.Status == model.CheckInWaitingPayment) &&
			!now.Before(c.ExpiresAt) {
			out = append(out, c)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type memBookings struct {
	mu sync.Mutex
	m  map[string]model.Booking
}

func newMemBookings(bookings ...model.Booking) *memBookings {
	s := &memBookings{m: make(map[string]model.Booking)}
	for _, b := range bookings {
		s.m[b.ID] = b
	}
	return s
}

func (s *memBookings) GetByID(_ context.Context, id string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.m[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return &b, nil
}

func (s *memBookings) GetByReferenceAndDetails(_ context.Context, reference, lastName, email string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.m {
		if b.BookingReference == reference {
			out := b
			return &out, nil
		}
	}
	return nil, repository.ErrBookingNotFound
}

func (s *memBookings) GetActiveByPassengerAndFlight(_ context.Context, passengerID, flightID string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.m {
		if b.PassengerID == passengerID && b.FlightID == flightID && b.Status == model.BookingActive {
			out := b
			return &out, nil
		}
	}
	return nil, repository.ErrBookingNotFound
}

func (s *memBookings) GetByPassengerAndFlight(_ context.Context, passengerID, flightID string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.m {
		if b.PassengerID == passengerID && b.FlightID == flightID {
			out := b
			return &out, nil
		}
	}
	return nil, repository.ErrBookingNotFound
}

func (s *memBookings) ListActiveByPassenger(_ context.Context, passengerID string) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.m {
		if b.PassengerID == passengerID && b.Status == model.BookingActive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memBookings) UpdateStatus(_ context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.m[id]
	if !ok {
		return repository.ErrBookingNotFound
	}
	b.Status = status
	s.m[id] = b
	return nil
}

type memFlights struct {
	m map[string]model.Flight
}

func newMemFlights(flights ...model.Flight) *memFlights {
	s := &memFlights{m: make(map[string]model.Flight)}
	for _, f := range flights {
		s.m[f.ID] = f
	}
	return s
}

func (s *memFlights) GetByID(_ context.Context, id string) (*model.Flight, error) {
	f, ok := s.m[id]
	if !ok {
		return nil, repository.ErrFlightNotFound
	}
	return &f, nil
}

type memPassengers struct {
	m map[string]model.Passenger
}

func newMemPassengers(passengers ...model.Passenger) *memPassengers {
	s := &memPassengers{m: make(map[string]model.Passenger)}
	for _, p := range passengers {
		s.m[p.ID] = p
	}
	return s
}

func (s *memPassengers) GetByID(_ context.Context, id string) (*model.Passenger, error) {
	p, ok := s.m[id]
	if !ok {
		return nil, repository.ErrPassengerNotFound
	}
	return &p, nil
}

type memAudit struct {
	mu      sync.Mutex
	entries []model.SeatAuditLog
}

func (s *memAudit) Append(_ context.Context, e *model.SeatAuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *e)
	return nil
}

func (s *memAudit) bySeat(seatID string) []model.SeatAuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.SeatAuditLog
	for _, e := range s.entries {
		if e.SeatID == seatID {
			out = append(out, e)
		}
	}
	return out
}

type memPasses struct {
	mu sync.Mutex
	m  map[string]model.BoardingPass
}

func newMemPasses() *memPasses {
	return &memPasses{m: make(map[string]model.BoardingPass)}
}

func (s *memPasses) GetByCheckIn(_ context.Context, checkInID string) (*model.BoardingPass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bp, ok := s.m[checkInID]
	if !ok {
		return nil, repository.ErrBoardingPassNotFound
	}
	return &bp, nil
}

func (s *memPasses) Create(_ context.Context, bp *model.BoardingPass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.m[bp.CheckInID]; exists {
		return errors.New("duplicate boarding pass")
	}
	s.m[bp.CheckInID] = *bp
	return nil
}

type memTokens struct {
	mu sync.Mutex
	m  map[string]model.RefreshToken // keyed by hash
}

func newMemTokens() *memTokens {
	return &memTokens{m: make(map[string]model.RefreshToken)}
}

func (s *memTokens) Create(_ context.Context, t *model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[t.TokenHash] = *t
	return nil
}

func (s *memTokens) GetByHash(_ context.Context, hash string) (*model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.m[hash]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	return &t, nil
}

func (s *memTokens) Revoke(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for hash, t := range s.m {
		if t.ID == id {
			t.Revoked = true
			s.m[hash] = t
		}
	}
	return nil
}

type memCache struct {
	mu           sync.Mutex
	m            map[string][]byte
	invalidation int
}

func newMemCache() *memCache {
	return &memCache{m: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, flightID string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.m[flightID]
	return data, ok
}

func (c *memCache) Set(_ context.Context, flightID string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[flightID] = data
}

func (c *memCache) Invalidate(_ context.Context, flightID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, flightID)
	c.invalidation++
}

type capturedEvents struct {
	mu     sync.Mutex
	events []queue.CheckInCompletedEvent
}

func (c *capturedEvents) publish(_ context.Context, ev queue.CheckInCompletedEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}
