package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skyhigh/airline-checkin/internal/metrics"
	"github.com/skyhigh/airline-checkin/internal/middleware"
	"github.com/skyhigh/airline-checkin/internal/service"
)

// SeatHandler serves the seat hold/release/confirm operations.
type SeatHandler struct {
	Seats *service.SeatService
}

func NewSeatHandler(seats *service.SeatService) *SeatHandler {
	return &SeatHandler{Seats: seats}
}

type holdReq struct {
	CheckInID string `json:"check_in_id"`
	// Optional shorter hold window in seconds; clamped server-side.
	HoldDurationSeconds int `json:"hold_duration_seconds"`
}

// Hold handles POST /v1/seats/:id/hold. The hold is tied to the
// caller's active check-in session; re-holding the same seat refreshes
// the window.
func (h *SeatHandler) Hold(c echo.Context) error {
	var req holdReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, service.ErrValidation("Invalid request body"))
	}
	if req.CheckInID == "" {
		return respondError(c, service.ErrValidation("check_in_id is required"))
	}

	seat, serr := h.Seats.Hold(c.Request().Context(), c.Param("id"), middleware.PassengerID(c), req.CheckInID, req.HoldDurationSeconds)
	recordHoldOutcome(serr)
	if serr != nil {
		return respondError(c, serr)
	}
	return c.JSON(http.StatusOK, seat)
}

// Release handles DELETE /v1/seats/:id/hold. Releasing a seat that is
// not held is a successful no-op.
func (h *SeatHandler) Release(c echo.Context) error {
	seat, serr := h.Seats.Release(c.Request().Context(), c.Param("id"), middleware.PassengerID(c))
	if serr != nil {
		return respondError(c, serr)
	}
	return c.JSON(http.StatusOK, seat)
}

// Confirm handles POST /v1/seats/:id/confirm, making the caller's hold
// permanent.
func (h *SeatHandler) Confirm(c echo.Context) error {
	seat, serr := h.Seats.Confirm(c.Request().Context(), c.Param("id"), middleware.PassengerID(c))
	if serr != nil {
		return respondError(c, serr)
	}
	return c.JSON(http.StatusOK, seat)
}

func recordHoldOutcome(serr *service.Error) {
	m := metrics.Get()
	if m == nil {
		return
	}
	status := "success"
	if serr != nil {
		switch serr.Code {
		case "SEAT_ALREADY_HELD", "SEAT_ALREADY_CONFIRMED", "CONCURRENT_UPDATE":
			status = "conflict"
		case "SEAT_HOLD_EXPIRED", "SESSION_EXPIRED":
			status = "expired"
		default:
			status = "error"
		}
	}
	m.SeatHoldsTotal.WithLabelValues(status).Inc()
}
