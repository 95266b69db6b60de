// Package service implements the check-in domain: seat transitions,
// session lifecycle, baggage fees, payments and boarding passes.
// Domain failures are expressed as *Error values carrying a stable code
// and retry guidance; handlers translate them to HTTP uniformly.
package service

import (
	"fmt"
	"net/http"
)

// Error is the domain error type. Code is stable across releases and is
// what clients should branch on. Retryable tells the client whether the
// same request can succeed later; RetryAfterSeconds hints when.
type Error struct {
	Code              string   `json:"code"`
	Message           string   `json:"message"`
	Retryable         bool     `json:"retryable"`
	RetryAfterSeconds *int     `json:"retry_after_seconds,omitempty"`
	Suggestions       []string `json:"suggestions,omitempty"`
	// AmountDue is set on PAYMENT_REQUIRED so clients can pre-fill the
	// payment form.
	AmountDue *float64 `json:"amount_due,omitempty"`

	httpStatus int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HTTPStatus returns the status the handler layer should respond with.
func (e *Error) HTTPStatus() int {
	if e.httpStatus == 0 {
		return http.StatusInternalServerError
	}
	return e.httpStatus
}

func retryAfter(seconds int) *int { return &seconds }

// ErrNotFound covers lookups of flights, seats, sessions and passes.
func ErrNotFound(what string) *Error {
	return &Error{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", what),
		httpStatus: http.StatusNotFound,
	}
}

// ErrInvalidCredentials is returned when login details do not match any
// booking. Deliberately vague about which field was wrong.
func ErrInvalidCredentials() *Error {
	return &Error{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Booking reference, last name and email did not match any booking",
		httpStatus: http.StatusUnauthorized,
	}
}

// ErrFlightAccessDenied is returned when the authenticated passenger has
// no booking on the requested flight.
func ErrFlightAccessDenied() *Error {
	return &Error{
		Code:       "FLIGHT_ACCESS_DENIED",
		Message:    "You do not have a booking on this flight",
		httpStatus: http.StatusForbidden,
	}
}

// ErrSeatAlreadyHeld is returned when another passenger holds the seat.
// remainingSeconds is the time left on their hold, after which the seat
// may free up.
func ErrSeatAlreadyHeld(seatNumber string, remainingSeconds int) *Error {
	return &Error{
		Code:              "SEAT_ALREADY_HELD",
		Message:           fmt.Sprintf("Seat %s is currently held by another passenger", seatNumber),
		Retryable:         true,
		RetryAfterSeconds: retryAfter(remainingSeconds),
		Suggestions:       []string{"Choose a different seat", "Retry after the hold expires"},
		httpStatus:        http.StatusConflict,
	}
}

// ErrSeatAlreadyConfirmed is returned for any operation on a CONFIRMED
// seat. Confirmation is terminal, so this is never retryable.
func ErrSeatAlreadyConfirmed(seatNumber string) *Error {
	return &Error{
		Code:        "SEAT_ALREADY_CONFIRMED",
		Message:     fmt.Sprintf("Seat %s has already been confirmed", seatNumber),
		Suggestions: []string{"Choose a different seat"},
		httpStatus:  http.StatusConflict,
	}
}

// ErrCheckInAlreadyExists is returned when the booking already has a
// check-in, whether still in progress or completed.
func ErrCheckInAlreadyExists(msg string) *Error {
	return &Error{
		Code:       "CHECK_IN_ALREADY_EXISTS",
		Message:    msg,
		httpStatus: http.StatusConflict,
	}
}

// ErrConcurrentUpdate is returned when a version-guarded write lost a
// race and the caller should re-read and retry.
func ErrConcurrentUpdate() *Error {
	return &Error{
		Code:              "CONCURRENT_UPDATE",
		Message:           "The record was modified by another request. Please retry.",
		Retryable:         true,
		RetryAfterSeconds: retryAfter(1),
		httpStatus:        http.StatusConflict,
	}
}

// ErrSeatHoldExpired is returned when the caller's hold lapsed before
// confirmation. The seat has been returned to the pool, so an immediate
// retry of hold() can succeed.
func ErrSeatHoldExpired(seatNumber string) *Error {
	return &Error{
		Code:              "SEAT_HOLD_EXPIRED",
		Message:           fmt.Sprintf("Your hold on seat %s has expired", seatNumber),
		Retryable:         true,
		RetryAfterSeconds: retryAfter(0),
		Suggestions:       []string{"Hold the seat again"},
		httpStatus:        http.StatusUnprocessableEntity,
	}
}

// ErrInvalidSeatState is returned when a transition is requested from a
// state that does not allow it.
func ErrInvalidSeatState(message string) *Error {
	return &Error{
		Code:       "INVALID_SEAT_STATE",
		Message:    message,
		httpStatus: http.StatusUnprocessableEntity,
	}
}

// ErrSessionExpired is returned when a session timed out. The passenger
// can start a fresh session immediately.
func ErrSessionExpired() *Error {
	return &Error{
		Code:        "SESSION_EXPIRED",
		Message:     "Your check-in session has expired. Please start again.",
		Retryable:   true,
		Suggestions: []string{"Start a new check-in session"},
		httpStatus:  http.StatusUnprocessableEntity,
	}
}

// ErrCheckInNotOpen is returned before the window opens. secondsUntilOpen
// lets clients schedule a retry.
func ErrCheckInNotOpen(secondsUntilOpen int) *Error {
	return &Error{
		Code:              "CHECK_IN_NOT_OPEN",
		Message:           "Check-in has not opened for this flight yet",
		Retryable:         true,
		RetryAfterSeconds: retryAfter(secondsUntilOpen),
		httpStatus:        http.StatusUnprocessableEntity,
	}
}

// ErrCheckInWindowClosed is returned after the window closes. There is
// nothing the passenger can do online at that point.
func ErrCheckInWindowClosed() *Error {
	return &Error{
		Code:        "CHECK_IN_WINDOW_CLOSED",
		Message:     "Online check-in for this flight has closed",
		Suggestions: []string{"Proceed to the airport check-in desk"},
		httpStatus:  http.StatusUnprocessableEntity,
	}
}

// ErrBookingNotActive is returned for cancelled or already-flown bookings.
func ErrBookingNotActive() *Error {
	return &Error{
		Code:       "BOOKING_NOT_ACTIVE",
		Message:    "This booking is not active",
		httpStatus: http.StatusUnprocessableEntity,
	}
}

// ErrPaymentRequired is returned when completion is blocked by an unpaid
// excess baggage fee.
func ErrPaymentRequired(amountDue float64) *Error {
	return &Error{
		Code:        "PAYMENT_REQUIRED",
		Message:     "Excess baggage fee must be paid before completing check-in",
		AmountDue:   &amountDue,
		Suggestions: []string{"Pay the outstanding fee", "Reduce baggage weight"},
		httpStatus:  http.StatusPaymentRequired,
	}
}

// ErrPaymentFailed wraps gateway declines and failures. Retryable since
// the passenger can fix the payment method and try again.
func ErrPaymentFailed(reason string) *Error {
	return &Error{
		Code:        "PAYMENT_FAILED",
		Message:     fmt.Sprintf("Payment failed: %s", reason),
		Retryable:   true,
		Suggestions: []string{"Check the payment details and retry"},
		httpStatus:  http.StatusUnprocessableEntity,
	}
}

// ErrValidation is returned for malformed or out-of-range input.
func ErrValidation(message string) *Error {
	return &Error{
		Code:       "VALIDATION_FAILED",
		Message:    message,
		httpStatus: http.StatusBadRequest,
	}
}

// ErrInternal hides unexpected failures behind a stable code. The
// underlying error is logged server-side, never sent to the client.
func ErrInternal() *Error {
	return &Error{
		Code:              "INTERNAL_ERROR",
		Message:           "An unexpected error occurred",
		Retryable:         true,
		RetryAfterSeconds: retryAfter(5),
		httpStatus:        http.StatusInternalServerError,
	}
}
