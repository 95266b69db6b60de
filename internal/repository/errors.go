// Package repository defines data access for flights, seats, bookings,
// check-in sessions and their supporting records. The sentinel errors
// declared here let higher layers distinguish failure scenarios without
// string matching. ErrVersionConflict in particular is the signal that
// an optimistic, version-guarded write lost a race and the caller must
// re-read state before deciding how to respond.
package repository

import "errors"

// ErrFlightNotFound is returned when a flight lookup yields no rows.
var ErrFlightNotFound = errors.New("flight not found")

// ErrSeatNotFound is returned when a seat lookup yields no rows.
var ErrSeatNotFound = errors.New("seat not found")

// ErrPassengerNotFound is returned when a passenger lookup yields no rows.
var ErrPassengerNotFound = errors.New("passenger not found")

// ErrBookingNotFound is returned when a booking lookup yields no rows.
var ErrBookingNotFound = errors.New("booking not found")

// ErrCheckInNotFound is returned when a check-in session lookup yields no rows.
var ErrCheckInNotFound = errors.New("check-in session not found")

// ErrBoardingPassNotFound is returned when a boarding pass lookup yields no rows.
var ErrBoardingPassNotFound = errors.New("boarding pass not found")

// ErrVersionConflict is returned when a version-guarded UPDATE matched no
// rows because another writer bumped the version first. The in-memory
// entity is stale; callers must reload before retrying or reporting.
var ErrVersionConflict = errors.New("version conflict")
