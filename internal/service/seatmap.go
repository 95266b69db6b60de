package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/skyhigh/airline-checkin/internal/logger"
	"github.com/skyhigh/airline-checkin/internal/model"
	"github.com/skyhigh/airline-checkin/internal/repository"
)

// SeatMapSeat is one seat as shown on the map. HeldUntil is exposed so
// clients can display when a held seat might free up.
type SeatMapSeat struct {
	SeatNumber string     `json:"seat_number"`
	Status     string     `json:"status"`
	HeldUntil  *time.Time `json:"held_until,omitempty"`
}

// SeatMapSummary aggregates seat counts across the flight.
type SeatMapSummary struct {
	Total            int            `json:"total"`
	Available        int            `json:"available"`
	Held             int            `json:"held"`
	Confirmed        int            `json:"confirmed"`
	AvailableByClass map[string]int `json:"available_by_class"`
}

// SeatMapView is the rendered seat map: seats grouped by cabin class
// plus summary counts. This is also the shape cached in Redis.
type SeatMapView struct {
	FlightID string                   `json:"flight_id"`
	Cabins   map[string][]SeatMapSeat `json:"cabins"`
	Summary  SeatMapSummary           `json:"summary"`
}

// SeatMap renders the seat map for a flight, serving from the cache
// when possible. A hold that has lapsed but not yet been swept is shown
// as AVAILABLE so the map never advertises a dead hold.
func (s *SeatService) SeatMap(ctx context.Context, flightID string) (*SeatMapView, *Error) {
	if data, ok := s.cache.Get(ctx, flightID); ok {
		var view SeatMapView
		if err := json.Unmarshal(data, &view); err == nil {
			return &view, nil
		}
		// Corrupt entry: drop it and rebuild from the database.
		s.cache.Invalidate(ctx, flightID)
	}

	if _, err := s.flights.GetByID(ctx, flightID); err != nil {
		if errors.Is(err, repository.ErrFlightNotFound) {
			return nil, ErrNotFound("Flight")
		}
		logger.Error("flight lookup failed", zap.String("flight_id", flightID), zap.Error(err))
		return nil, ErrInternal()
	}

	seats, err := s.seats.GetByFlight(ctx, flightID)
	if err != nil {
		logger.Error("seat map query failed", zap.String("flight_id", flightID), zap.Error(err))
		return nil, ErrInternal()
	}

	now := s.now()
	view := &SeatMapView{
		FlightID: flightID,
		Cabins:   make(map[string][]SeatMapSeat),
		Summary: SeatMapSummary{
			AvailableByClass: make(map[string]int),
		},
	}
	for i := range seats {
		seat := seats[i]
		status := seat.Status
		var heldUntil *time.Time
		switch {
		case seat.IsHoldExpired(now):
			status = model.SeatAvailable
		case seat.IsHeld():
			heldUntil = seat.HeldUntil
		}

		view.Cabins[seat.SeatClass] = append(view.Cabins[seat.SeatClass], SeatMapSeat{
			SeatNumber: seat.SeatNumber,
			Status:     string(status),
			HeldUntil:  heldUntil,
		})
		view.Summary.Total++
		switch status {
		case model.SeatAvailable:
			view.Summary.Available++
			view.Summary.AvailableByClass[seat.SeatClass]++
		case model.SeatHeld:
			view.Summary.Held++
		case model.SeatConfirmed:
			view.Summary.Confirmed++
		}
	}

	if data, err := json.Marshal(view); err == nil {
		s.cache.Set(ctx, flightID, data)
	}
	return view, nil
}
